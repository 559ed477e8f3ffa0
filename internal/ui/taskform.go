package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/api"
	"taskdeck/internal/form"
)

// Form field order: title, priority, reminder time.
const (
	fieldTitle = iota
	fieldPriority
	fieldReminder
	fieldCount
)

func formFieldLabel(i int) string {
	switch i {
	case fieldTitle:
		return "Title"
	case fieldPriority:
		return "Priority"
	case fieldReminder:
		return "Reminder time"
	}
	return ""
}

// syncFormInput points the shared text input at the current field.
func (m *Model) syncFormInput() {
	if m.form == nil {
		return
	}
	switch m.formField {
	case fieldTitle:
		m.input.SetValue(m.form.Title)
		m.input.Placeholder = "Task title"
		m.input.Focus()
	case fieldReminder:
		m.input.SetValue(m.form.Reminder)
		m.input.Placeholder = api.TimeLayout
		m.input.Focus()
	default:
		m.input.Blur()
	}
}

// commitFormField writes the text input back into the draft.
func (m *Model) commitFormField() {
	if m.form == nil {
		return
	}
	switch m.formField {
	case fieldTitle:
		m.form.Title = strings.TrimSpace(m.input.Value())
	case fieldReminder:
		m.form.Reminder = strings.TrimSpace(m.input.Value())
	}
}

func (m *Model) moveFormField(delta int) {
	m.commitFormField()
	m.formField = (m.formField + delta + fieldCount) % fieldCount
	m.syncFormInput()
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	k := m.cfg.Keys

	if m.form == nil {
		return m, m.navigate("/")
	}

	// A failed hydration behaves like not-found: only the way back works.
	if m.form.LoadFailed() {
		switch key {
		case k.Cancel, k.Confirm, k.Quit:
			return m, m.navigate("/")
		}
		return m, nil
	}

	switch key {
	case k.Cancel:
		// Discards the draft; an in-flight submission keeps running but
		// its outcome no longer reaches this screen.
		return m, m.navigate("/")
	case k.NextField, "down":
		m.moveFormField(1)
		return m, nil
	case k.PrevField, "up":
		m.moveFormField(-1)
		return m, nil
	case k.Confirm:
		m.commitFormField()
		if m.formField < fieldCount-1 {
			m.formField++
			m.syncFormInput()
			return m, nil
		}
		return m.submitForm()
	}

	if m.formField == fieldPriority {
		switch key {
		case k.ValueForward, "right":
			m.form.Priority = nextPriority(m.form.Priority, 1)
		case k.ValueBack, "left":
			m.form.Priority = nextPriority(m.form.Priority, -1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func nextPriority(p api.Priority, delta int) api.Priority {
	order := []api.Priority{api.PriorityHigh, api.PriorityMedium, api.PriorityLow}
	for i, cand := range order {
		if cand == p {
			return order[(i+delta+len(order))%len(order)]
		}
	}
	return api.PriorityMedium
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	if !m.form.Editing() && m.form.State() != form.StateFailed {
		return m, nil
	}
	if err := m.form.BeginSubmit(); err != nil {
		if form.IsValidation(err) {
			return m, m.showToast(err.Error())
		}
		return m, m.showToast("Cannot submit right now")
	}

	m.submitSeq++
	seq := m.submitSeq
	client := m.client
	creating := m.form.TaskID() == 0

	if creating {
		draft := m.form.CreatePayload()
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestWindow)
			defer cancel()
			_, err := client.CreateTask(ctx, draft)
			return taskSavedMsg{seq: seq, creating: true, err: err}
		}
	}

	id := m.form.TaskID()
	update := m.form.UpdatePayload()
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestWindow)
		defer cancel()
		_, err := client.UpdateTask(ctx, id, update)
		return taskSavedMsg{seq: seq, creating: false, err: err}
	}
}

func (m Model) viewForm(st Styles) string {
	var b strings.Builder

	if m.form == nil {
		return ""
	}

	title := "Create New Task"
	if m.form.TaskID() != 0 {
		title = "Edit Task"
	}
	b.WriteString(st.Accent.Render(title))
	b.WriteString("\n\n")

	switch m.form.State() {
	case form.StateLoading:
		b.WriteString(m.spin.View() + st.Dim.Render(" loading task"))
		b.WriteString("\n")
		return b.String()
	case form.StateFailed:
		if m.form.LoadFailed() {
			b.WriteString(st.Error.Render("Task not found"))
			b.WriteString("\n\n")
			b.WriteString(st.Dim.Render("Press " + m.cfg.Keys.Confirm + " to go back"))
			b.WriteString("\n")
			return b.String()
		}
	}

	values := []string{m.form.Title, string(m.form.Priority), m.form.Reminder}
	for i := 0; i < fieldCount; i++ {
		prefix := "  "
		if i == m.formField {
			prefix = st.Cursor.Render("> ")
		}
		val := values[i]
		if i == m.formField && i != fieldPriority {
			val = m.input.View()
		} else if i == fieldPriority {
			val = st.priority(api.Priority(val)).Render(val)
			if i == m.formField {
				val += st.Dim.Render("  (" + m.cfg.Keys.ValueBack + "/" + m.cfg.Keys.ValueForward + " to change)")
			}
		}
		b.WriteString(prefix + st.Selected.Render(formFieldLabel(i)) + "\n")
		b.WriteString("    " + val + "\n\n")
	}

	if m.form.State() == form.StateSubmitting {
		b.WriteString(m.spin.View() + st.Dim.Render(" saving"))
		b.WriteString("\n")
	} else if err := m.form.Err(); err != nil {
		b.WriteString(st.Error.Render("Save failed, draft kept. Press " + m.cfg.Keys.Confirm + " on the last field to retry."))
		b.WriteString("\n")
	}
	return b.String()
}
