package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/api"
	"taskdeck/internal/cache"
)

// currentTasks returns the snapshot backing the list screen.
func (m *Model) currentTasks() cache.Snapshot[[]api.Task] {
	return m.taskLists.Get(taskListKey(m.sortKey))
}

func (m *Model) clampCursor() {
	n := len(m.currentTasks().Value)
	if n == 0 {
		m.cursor = 0
		return
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	k := m.cfg.Keys

	if m.pendingDel != nil {
		return m.updateDeleteConfirm(key)
	}

	tasks := m.currentTasks().Value
	switch key {
	case k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		m.cursor++
		m.clampCursor()
	case k.Up, "up":
		m.cursor--
		m.clampCursor()
	case k.Add:
		return m, m.navigate("/task/new")
	case k.Edit:
		if m.cursor < len(tasks) {
			return m, m.navigate(EditPath(tasks[m.cursor].ID))
		}
	case k.Delete:
		if m.cursor < len(tasks) {
			t := tasks[m.cursor]
			m.pendingDel = &t
		}
	case k.SortToggle:
		if m.sortKey == api.SortByReminderTime {
			m.sortKey = api.SortByPriority
		} else {
			m.sortKey = api.SortByReminderTime
		}
		// Always issue a fetch on sort change; a still-running fetch for
		// the same key is superseded (last issued wins).
		return m, m.fetchTasks(m.sortKey)
	case k.Refresh:
		m.taskLists.Invalidate("tasks")
		return m, m.fetchTasks(m.sortKey)
	case k.Settings:
		return m, m.navigate("/settings")
	case k.ThemeToggle:
		m.themes.ToggleMode()
	case k.Confirm:
		if len(tasks) == 0 {
			return m, m.navigate("/task/new")
		}
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		t := m.pendingDel
		m.pendingDel = nil
		if t == nil {
			return m, nil
		}
		return m, m.deleteTask(t.ID)
	case "n", "N", m.cfg.Keys.Cancel:
		m.pendingDel = nil
		return m, m.showToast("Delete cancelled")
	}
	return m, nil
}

// deleteTask issues the delete request. The confirmation step has already
// happened; cancellation never reaches here.
func (m *Model) deleteTask(id int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestWindow)
		defer cancel()
		err := client.DeleteTask(ctx, id)
		return taskDeletedMsg{id: id, err: err}
	}
}

func (m Model) viewList(st Styles) string {
	snap := m.currentTasks()

	var b strings.Builder
	sortLabel := "time"
	if m.sortKey == api.SortByPriority {
		sortLabel = "priority"
	}
	b.WriteString(st.Accent.Render("Tasks") + st.Dim.Render(" · sorted by "+sortLabel))
	if snap.Status == cache.StatusLoading || snap.Status == cache.StatusStale {
		if snap.HasValue {
			// Stale data stays visible while the refetch runs.
			b.WriteString(st.Dim.Render(" · refreshing"))
		}
	}
	b.WriteString("\n\n")

	switch {
	case !snap.HasValue && snap.Status == cache.StatusError:
		b.WriteString(st.Error.Render("Error loading tasks. Please try again later."))
		b.WriteString("\n")
	case !snap.HasValue:
		b.WriteString(m.spin.View() + st.Dim.Render(" loading tasks"))
		b.WriteString("\n")
	case len(snap.Value) == 0:
		b.WriteString(st.Dim.Render("No tasks found"))
		b.WriteString("\n\n")
		b.WriteString("Press " + st.Cursor.Render(m.cfg.Keys.Add) + " to create your first task")
		b.WriteString("\n")
	default:
		for i, t := range snap.Value {
			cursor := "  "
			if i == m.cursor {
				cursor = st.Cursor.Render("> ")
			}
			line := fmt.Sprintf("%s%s %s", cursor, st.priority(t.Priority).Render(fmt.Sprintf("[%-6s]", t.Priority)), t.Title)
			if ts, err := t.Reminder(); err == nil {
				line += st.Dim.Render("  " + ts.Local().Format("Jan 2 15:04"))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if m.pendingDel != nil {
		b.WriteString("\n")
		b.WriteString(st.Error.Render(fmt.Sprintf("Delete %q? y/n", m.pendingDel.Title)))
		b.WriteString("\n")
	}
	return b.String()
}
