package tui

import "errors"

var (
	// ErrInvalidPorts means NewApp was given no ports.
	ErrInvalidPorts = errors.New("tui: ports are required")

	// ErrMissingQueryService means the ports carry no query service.
	ErrMissingQueryService = errors.New("tui: chat needs a query service")
)
