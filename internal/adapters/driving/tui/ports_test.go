package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{"nil ports", nil, ErrInvalidPorts},
		{"missing query", &Ports{Stats: &MockStatsRecorder{}}, ErrMissingQueryService},
		{"query only", &Ports{Query: &MockQueryService{}}, nil},
		{"all set", &Ports{
			Query:     &MockQueryService{},
			Stats:     &MockStatsRecorder{},
			Catalogue: domain.DefaultCatalogue(),
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
