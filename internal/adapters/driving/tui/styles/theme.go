// Package styles holds the palette and lipgloss styles of the chat.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colours the chat draws with. Colours adapt to light
// and dark terminals.
type Palette struct {
	Accent    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	Dim       lipgloss.AdaptiveColor
	Caution   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor
	Frame     lipgloss.AdaptiveColor
	Bar       lipgloss.AdaptiveColor
}

// DefaultPalette returns the built-in palette.
func DefaultPalette() Palette {
	return Palette{
		Accent:    lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"},
		Highlight: lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"},
		Text:      lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"},
		Dim:       lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		Caution:   lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"},
		Danger:    lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"},
		Frame:     lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"},
		Bar:       lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#111827"},
	}
}

// Styles are the rendered styles shared by the chat components.
type Styles struct {
	Palette Palette

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style

	// Transcript.
	Question lipgloss.Style
	Answer   lipgloss.Style
	Citation lipgloss.Style

	// Frames.
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Sidebar    lipgloss.Style
}

// NewStyles derives the styles from p.
func NewStyles(p Palette) *Styles {
	text := lipgloss.NewStyle().Foreground(p.Text)
	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Frame).
		Padding(0, 1)

	return &Styles{
		Palette:  p,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(p.Highlight),
		Normal:   text,
		Muted:    lipgloss.NewStyle().Foreground(p.Dim),
		Error:    lipgloss.NewStyle().Foreground(p.Danger),
		Warning:  lipgloss.NewStyle().Foreground(p.Caution),

		Question: lipgloss.NewStyle().Bold(true).Foreground(p.Highlight),
		Answer:   text,
		Citation: lipgloss.NewStyle().Foreground(p.Dim).PaddingLeft(2),

		InputField: framed,
		StatusBar:  lipgloss.NewStyle().Foreground(p.Dim).Background(p.Bar).Padding(0, 1),
		Sidebar:    framed,
	}
}

// DefaultStyles returns styles for the default palette.
func DefaultStyles() *Styles {
	return NewStyles(DefaultPalette())
}
