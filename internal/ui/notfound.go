package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateNotFound(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch msg.String() {
	case k.Quit:
		return m, tea.Quit
	case k.Cancel, k.Confirm, k.List:
		return m, m.navigate("/")
	}
	return m, nil
}

func (m Model) viewNotFound(st Styles) string {
	var b strings.Builder
	b.WriteString(st.Error.Render("404"))
	b.WriteString("\n\n")
	b.WriteString("Nothing lives at " + st.Selected.Render(m.route.Path))
	b.WriteString("\n\n")
	b.WriteString(st.Dim.Render("Press " + m.cfg.Keys.Confirm + " to return to your tasks"))
	b.WriteString("\n")
	return b.String()
}
