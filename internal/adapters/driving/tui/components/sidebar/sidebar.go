// Package sidebar provides the usage statistics panel for the chat.
package sidebar

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DefaultWidth is the panel width including its border.
const DefaultWidth = 34

// topDocuments is how many documents the panel lists.
const topDocuments = 5

// Panel renders session usage statistics.
type Panel struct {
	styles     *styles.Styles
	categories []string
	stats      domain.StatsSnapshot
	width      int
	height     int
}

// NewPanel creates a statistics panel listing categories in the given order.
func NewPanel(s *styles.Styles, categories []string) *Panel {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Panel{
		styles:     s,
		categories: categories,
		width:      DefaultWidth,
		height:     20,
	}
}

// SetStats replaces the snapshot shown.
func (p *Panel) SetStats(stats domain.StatsSnapshot) {
	p.stats = stats
}

// Stats returns the snapshot shown.
func (p *Panel) Stats() domain.StatsSnapshot {
	return p.stats
}

// SetDimensions sets the panel size.
func (p *Panel) SetDimensions(width, height int) {
	if width > 0 {
		p.width = width
	}
	if height > 0 {
		p.height = height
	}
}

// Width returns the panel width.
func (p *Panel) Width() int {
	return p.width
}

// View renders the panel.
func (p *Panel) View() string {
	inner := p.width - 4
	if inner < 10 {
		inner = 10
	}

	lines := []string{
		p.styles.Title.Render("Usage Statistics"),
		"",
		p.row("Total queries", fmt.Sprintf("%d", p.stats.Queries), inner),
		p.row("Avg response", p.stats.AverageResponseTime().Round(10*time.Millisecond).String(), inner),
		p.row("Success rate", fmt.Sprintf("%.0f%%", p.stats.SuccessRate()*100), inner),
	}

	if len(p.categories) > 0 {
		lines = append(lines, "", p.styles.Subtitle.Render("Category usage"))
		for _, name := range p.categories {
			lines = append(lines, p.row(name, fmt.Sprintf("%d", p.stats.Categories[name]), inner))
		}
	}

	top := p.stats.TopDocuments(topDocuments)
	lines = append(lines, "", p.styles.Subtitle.Render("Most used documents"))
	if len(top) == 0 {
		lines = append(lines, p.styles.Muted.Render("No documents yet"))
	}
	for _, d := range top {
		lines = append(lines, p.row(domain.DisplayName(d.Document), fmt.Sprintf("%d", d.Count), inner))
	}

	return p.styles.Sidebar.Width(p.width - 2).Height(p.height - 2).Render(strings.Join(lines, "\n"))
}

// row renders "label  value" in width columns, truncating the label.
func (p *Panel) row(label, value string, width int) string {
	room := width - len(value) - 1
	if room < 4 {
		room = 4
	}
	runes := []rune(label)
	if len(runes) > room {
		label = string(runes[:room-1]) + "…"
	}
	pad := width - len([]rune(label)) - len(value)
	if pad < 1 {
		pad = 1
	}
	return p.styles.Normal.Render(label) + strings.Repeat(" ", pad) + p.styles.Muted.Render(value)
}
