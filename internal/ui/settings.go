package ui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/api"
	"taskdeck/internal/cache"
)

// Settings field order mirrors the settings screen: the theme section, then
// notifications. The light/dark mode lives on the global theme-toggle key
// and never goes through auto-save.
const (
	setPrimary = iota
	setSecondary
	setBackground
	setSound
	setNotifyType
	setVolume
	setFieldCount
)

var hexColorInput = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func settingsFieldLabel(i int) string {
	switch i {
	case setPrimary:
		return "Primary color"
	case setSecondary:
		return "Secondary color"
	case setBackground:
		return "Background style"
	case setSound:
		return "Sound enabled"
	case setNotifyType:
		return "Notification type"
	case setVolume:
		return "Volume"
	}
	return ""
}

func (m Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	k := m.cfg.Keys

	if m.editing {
		return m.updateSettingsEdit(msg)
	}

	switch key {
	case k.Quit:
		return m, tea.Quit
	case k.Cancel, k.List:
		return m, m.navigate("/")
	case k.ThemeToggle:
		m.themes.ToggleMode()
		return m, nil
	case k.Down, "down":
		if m.setField < setFieldCount-1 {
			m.setField++
		}
		return m, nil
	case k.Up, "up":
		if m.setField > 0 {
			m.setField--
		}
		return m, nil
	}

	if !m.hydrated {
		return m, nil
	}

	switch key {
	case k.Confirm:
		switch m.setField {
		case setPrimary, setSecondary:
			m.editing = true
			if m.setField == setPrimary {
				m.input.SetValue(m.draft.Theme.PrimaryColor)
			} else {
				m.input.SetValue(m.draft.Theme.SecondaryColor)
			}
			m.input.Placeholder = "#RRGGBB"
			m.input.Focus()
			return m, nil
		case setSound:
			m.draft.Notifications.SoundEnabled = !m.draft.Notifications.SoundEnabled
			return m, m.saveNotifications("sound_enabled")
		}
	case k.ValueForward, "right":
		return m.adjustSetting(1)
	case k.ValueBack, "left":
		return m.adjustSetting(-1)
	}
	return m, nil
}

// adjustSetting cycles or nudges the selected field and auto-saves it.
func (m Model) adjustSetting(delta int) (tea.Model, tea.Cmd) {
	switch m.setField {
	case setBackground:
		m.draft.Theme.Background = cycleBackground(m.draft.Theme.Background, delta)
		// Optimistic: applies to every mounted view before the save lands.
		m.themes.SetBackground(m.draft.Theme.Background)
		return m, m.saveTheme("background")
	case setSound:
		m.draft.Notifications.SoundEnabled = !m.draft.Notifications.SoundEnabled
		return m, m.saveNotifications("sound_enabled")
	case setNotifyType:
		m.draft.Notifications.NotificationType = cycleNotifyType(m.draft.Notifications.NotificationType, delta)
		return m, m.saveNotifications("notification_type")
	case setVolume:
		v := m.draft.Notifications.Volume + 0.1*float64(delta)
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		m.draft.Notifications.Volume = round1(v)
		return m, m.saveNotifications("volume")
	}
	return m, nil
}

func (m Model) updateSettingsEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch msg.String() {
	case k.Cancel:
		m.editing = false
		m.input.Blur()
		return m, nil
	case k.Confirm:
		value := strings.TrimSpace(m.input.Value())
		if !hexColorInput.MatchString(value) {
			return m, m.showToast("Colors must look like #1A2B3C")
		}
		m.editing = false
		m.input.Blur()
		if m.setField == setPrimary {
			m.draft.Theme.PrimaryColor = value
		} else {
			m.draft.Theme.SecondaryColor = value
		}
		m.themes.SetColors(m.draft.Theme.PrimaryColor, m.draft.Theme.SecondaryColor)
		field := "primary_color"
		if m.setField == setSecondary {
			field = "secondary_color"
		}
		return m, m.saveTheme(field)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// saveTheme submits the whole theme category carrying the changed field.
// Saves for different fields run independently; per field, the latest
// issued save wins.
func (m *Model) saveTheme(field string) tea.Cmd {
	seq := m.autosave.Begin("theme." + field)
	payload := m.draft.Theme
	payload.Mode = m.themes.Current().Mode
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestWindow)
		defer cancel()
		_, err := client.UpdateTheme(ctx, payload)
		return themeSavedMsg{field: field, seq: seq, err: err}
	}
}

func (m *Model) saveNotifications(field string) tea.Cmd {
	seq := m.autosave.Begin("notifications." + field)
	payload := m.draft.Notifications
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestWindow)
		defer cancel()
		_, err := client.UpdateNotifications(ctx, payload)
		return notifSavedMsg{field: field, seq: seq, err: err}
	}
}

func cycleBackground(bg api.Background, delta int) api.Background {
	all := api.Backgrounds()
	for i, cand := range all {
		if cand == bg {
			return all[(i+delta+len(all))%len(all)]
		}
	}
	return all[0]
}

func cycleNotifyType(t api.NotificationType, delta int) api.NotificationType {
	all := []api.NotificationType{api.NotifySound, api.NotifyBrowser, api.NotifyBoth}
	for i, cand := range all {
		if cand == t {
			return all[(i+delta+len(all))%len(all)]
		}
	}
	return api.NotifyBoth
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func (m Model) viewSettings(st Styles) string {
	var b strings.Builder
	b.WriteString(st.Accent.Render("Settings"))
	b.WriteString("\n\n")

	snap := m.settings.Get(settingsKey)
	if !m.hydrated {
		if snap.Status == cache.StatusError {
			b.WriteString(st.Error.Render("Error loading settings. Please try again later."))
		} else {
			b.WriteString(m.spin.View() + st.Dim.Render(" loading settings"))
		}
		b.WriteString("\n")
		return b.String()
	}

	values := []string{
		m.draft.Theme.PrimaryColor,
		m.draft.Theme.SecondaryColor,
		string(m.draft.Theme.Background),
		onOff(m.draft.Notifications.SoundEnabled),
		string(m.draft.Notifications.NotificationType),
		fmt.Sprintf("%.1f", m.draft.Notifications.Volume),
	}
	fieldNames := []string{
		"theme.primary_color",
		"theme.secondary_color",
		"theme.background",
		"notifications.sound_enabled",
		"notifications.notification_type",
		"notifications.volume",
	}

	for i := 0; i < setFieldCount; i++ {
		if i == setPrimary {
			b.WriteString(st.Selected.Render("Theme") + "\n")
		}
		if i == setSound {
			b.WriteString("\n" + st.Selected.Render("Notifications") + "\n")
		}
		prefix := "  "
		if i == m.setField {
			prefix = st.Cursor.Render("> ")
		}
		val := values[i]
		if m.editing && i == m.setField {
			val = m.input.View()
		}
		line := fmt.Sprintf("%s%-18s : %s", prefix, settingsFieldLabel(i), val)
		if m.autosave.Saving(fieldNames[i]) {
			line += st.Dim.Render("  saving…")
		} else if m.autosave.Err(fieldNames[i]) != nil {
			line += st.Error.Render("  save failed")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(st.Dim.Render("Mode: " + string(m.themes.Current().Mode) + " (" + m.cfg.Keys.ThemeToggle + " to toggle, applies instantly, no network)"))
	b.WriteString("\n")
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
