// Package api is the HTTP client for the taskdeck backend.
package api

import "time"

// TimeLayout is the wire format for reminder times. The backend accepts
// RFC 3339 with or without a zone offset; we always send without.
const TimeLayout = "2006-01-02T15:04:05"

// Priority is the task priority level.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the three known levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities for display: high before medium before low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// SortKey selects the server-side ordering of the task list.
type SortKey string

const (
	SortByReminderTime SortKey = "reminder_time"
	SortByPriority     SortKey = "priority"
)

// Task is a task as owned by the backend. Timestamps are server-assigned.
type Task struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Priority     Priority `json:"priority"`
	ReminderTime string   `json:"reminder_time"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

// Reminder parses the task's reminder time.
func (t Task) Reminder() (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, t.ReminderTime); err == nil {
		return ts, nil
	}
	return time.ParseInLocation(TimeLayout, t.ReminderTime, time.Local)
}

// TaskCreate is the payload for creating a task.
type TaskCreate struct {
	Title        string   `json:"title"`
	Priority     Priority `json:"priority"`
	ReminderTime string   `json:"reminder_time"`
}

// TaskUpdate is a partial update; nil fields are left untouched by the server.
type TaskUpdate struct {
	Title        *string   `json:"title,omitempty"`
	Priority     *Priority `json:"priority,omitempty"`
	ReminderTime *string   `json:"reminder_time,omitempty"`
}

// ThemeMode is the light/dark switch.
type ThemeMode string

const (
	ModeLight ThemeMode = "light"
	ModeDark  ThemeMode = "dark"
)

// Background names one of the five background variants.
type Background string

const (
	Gradient1 Background = "gradient-1"
	Gradient2 Background = "gradient-2"
	Gradient3 Background = "gradient-3"
	Gradient4 Background = "gradient-4"
	Gradient5 Background = "gradient-5"
)

// Backgrounds lists the variants in cycle order.
func Backgrounds() []Background {
	return []Background{Gradient1, Gradient2, Gradient3, Gradient4, Gradient5}
}

// ThemeSettings is the theme half of the settings singleton.
type ThemeSettings struct {
	Mode           ThemeMode  `json:"mode"`
	PrimaryColor   string     `json:"primary_color"`
	SecondaryColor string     `json:"secondary_color"`
	Background     Background `json:"background"`
}

// NotificationType selects the delivery channel.
type NotificationType string

const (
	NotifySound   NotificationType = "sound"
	NotifyBrowser NotificationType = "browser"
	NotifyBoth    NotificationType = "both"
)

// NotificationSettings is the notification half of the settings singleton.
type NotificationSettings struct {
	SoundEnabled     bool             `json:"sound_enabled"`
	NotificationType NotificationType `json:"notification_type"`
	Volume           float64          `json:"volume"`
}

// Settings is the per-user settings singleton.
type Settings struct {
	Theme         ThemeSettings        `json:"theme"`
	Notifications NotificationSettings `json:"notifications"`
}

// DefaultSettings mirrors the backend defaults for first launch.
func DefaultSettings() Settings {
	return Settings{
		Theme: ThemeSettings{
			Mode:           ModeLight,
			PrimaryColor:   "#007AFF",
			SecondaryColor: "#5856D6",
			Background:     Gradient1,
		},
		Notifications: NotificationSettings{
			SoundEnabled:     true,
			NotificationType: NotifyBoth,
			Volume:           0.7,
		},
	}
}
