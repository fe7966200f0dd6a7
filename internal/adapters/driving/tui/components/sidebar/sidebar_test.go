package sidebar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestPanel_Empty(t *testing.T) {
	p := NewPanel(nil, []string{"Healthcare"})

	view := p.View()

	assert.Contains(t, view, "Usage Statistics")
	assert.Contains(t, view, "Healthcare")
	assert.Contains(t, view, "No documents yet")
	assert.Equal(t, DefaultWidth, p.Width())
}

func TestPanel_WithStats(t *testing.T) {
	p := NewPanel(nil, []string{"Finance & Banking", "Supply Chain"})
	p.SetDimensions(40, 30)
	p.SetStats(domain.StatsSnapshot{
		Queries:           4,
		SuccessfulQueries: 3,
		TotalResponseTime: 8 * time.Second,
		Categories:        map[string]int{"Finance & Banking": 5, "Supply Chain": 2},
		Documents:         map[string]int{"citi.pdf": 4, "ups-annual.pdf": 2},
	})

	view := p.View()

	assert.Contains(t, view, "Total queries")
	assert.Contains(t, view, "75%")
	assert.Contains(t, view, "2s")
	assert.Contains(t, view, "ups annual")
	assert.NotContains(t, view, "No documents yet")
	assert.Equal(t, 4, p.Stats().Queries)
}

func TestPanel_RowTruncatesLongLabel(t *testing.T) {
	p := NewPanel(nil, nil)

	row := p.row("A very long category name that does not fit", "12", 20)

	assert.Contains(t, row, "…")
	assert.Contains(t, row, "12")
}

func TestPanel_SetDimensionsIgnoresZero(t *testing.T) {
	p := NewPanel(nil, nil)

	p.SetDimensions(0, 0)

	assert.Equal(t, DefaultWidth, p.Width())
}
