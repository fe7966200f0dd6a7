// Package tui provides an interactive chat interface for docqa.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates the driving ports and data the chat needs.
type Ports struct {
	// Query answers questions.
	Query driving.QueryService

	// Stats feeds the sidebar. Optional.
	Stats driving.StatsRecorder

	// Catalogue lists the categories the filter cycles through.
	Catalogue domain.Catalogue
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
