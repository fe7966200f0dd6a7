package chat

import "errors"

// ErrNoQueryService is returned when no query service is configured.
var ErrNoQueryService = errors.New("query service not available")
