package term

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/seo-optimizer/reportview/gauge"
)

// Styles holds the terminal styles for reports.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Label   lipgloss.Style
	Normal  lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Banner  lipgloss.Style
	Track   lipgloss.Style
	Spinner lipgloss.Style
	Card    lipgloss.Style
}

// DefaultStyles returns the default style set
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			PaddingBottom(1),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#93C5FD")),

		Label: lipgloss.NewStyle().
			Bold(true).
			Width(12),

		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")),

		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#737373")).
			Italic(true),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(gauge.DangerColor)),

		Banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FECACA")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(gauge.DangerColor)).
			Padding(0, 1),

		Track: lipgloss.NewStyle().
			Foreground(lipgloss.Color(gauge.TrackColor)),

		Spinner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")),

		Card: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3B82F6")).
			PaddingLeft(1).
			MarginBottom(1),
	}
}

// Score colors a score the same way the page gauges do.
func (s Styles) Score(score int) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(gauge.Color(score)))
}
