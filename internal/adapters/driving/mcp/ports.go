package mcp

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates everything the MCP server needs.
type Ports struct {
	// Query answers questions.
	Query driving.QueryService

	// Stats exposes session usage. Optional.
	Stats driving.StatsRecorder

	// Catalogue lists the categories the ask tool accepts.
	Catalogue domain.Catalogue
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
