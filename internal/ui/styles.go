package ui

import (
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/api"
	"taskdeck/internal/theme"
)

// backgroundTints maps each background variant to a subtle accent used for
// the header rule, standing in for the web client's page gradients.
var backgroundTints = map[api.Background]string{
	api.Gradient1: "#6C8EEF",
	api.Gradient2: "#B06CEF",
	api.Gradient3: "#6CEFB0",
	api.Gradient4: "#EFB06C",
	api.Gradient5: "#EF6C8E",
}

// Styles is the rendered form of the shared theme preference.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Accent   lipgloss.Style
	Cursor   lipgloss.Style
	Dim      lipgloss.Style
	Error    lipgloss.Style
	Toast    lipgloss.Style
	Selected lipgloss.Style
	High     lipgloss.Style
	Medium   lipgloss.Style
	Low      lipgloss.Style
}

// NewStyles derives screen styles from the current preference.
func NewStyles(p theme.Preferences) Styles {
	fg := lipgloss.Color("#1A1A2E")
	dim := lipgloss.Color("240")
	if p.Mode == api.ModeDark {
		fg = lipgloss.Color("#E8E8F0")
		dim = lipgloss.Color("245")
	}
	primary := lipgloss.Color(p.PrimaryColor)
	secondary := lipgloss.Color(p.SecondaryColor)
	tint, ok := backgroundTints[p.Background]
	if !ok {
		tint = backgroundTints[api.Gradient1]
	}

	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(primary),
		Header:   lipgloss.NewStyle().Foreground(lipgloss.Color(tint)),
		Accent:   lipgloss.NewStyle().Foreground(secondary),
		Cursor:   lipgloss.NewStyle().Bold(true).Foreground(primary),
		Dim:      lipgloss.NewStyle().Foreground(dim),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#E85D5D")),
		Toast:    lipgloss.NewStyle().Foreground(fg).Background(lipgloss.Color("236")).Padding(0, 1),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(secondary),
		High:     lipgloss.NewStyle().Foreground(lipgloss.Color("#E85D5D")),
		Medium:   lipgloss.NewStyle().Foreground(lipgloss.Color("#E8C15D")),
		Low:      lipgloss.NewStyle().Foreground(lipgloss.Color("#5DE88A")),
	}
}

func (st Styles) priority(p api.Priority) lipgloss.Style {
	switch p {
	case api.PriorityHigh:
		return st.High
	case api.PriorityLow:
		return st.Low
	default:
		return st.Medium
	}
}
