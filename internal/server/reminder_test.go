package server

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"taskdeck/internal/api"
)

func TestParseReminderLayouts(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2025-06-01T09:30:00", false},
		{"2025-06-01T09:30", false},
		{"2025-06-01T09:30:00Z", false},
		{"2025-06-01T09:30:00+02:00", false},
		{"tomorrow", true},
		{"2025-06-01", true},
		{"", true},
	}
	for _, tt := range tests {
		_, err := ParseReminder(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseReminder(%q): err=%v, wantErr=%v", tt.in, err, tt.wantErr)
		}
	}
}

func TestProfileFor(t *testing.T) {
	high := profileFor(api.PriorityHigh)
	if high.Sound != "alert.mp3" || high.Volume != 1.0 || high.RepeatInterval != 5*time.Minute {
		t.Errorf("high profile: got %+v", high)
	}
	low := profileFor(api.PriorityLow)
	if low.Sound != "subtle.mp3" || low.Volume != 0.5 || low.RepeatInterval != 15*time.Minute {
		t.Errorf("low profile: got %+v", low)
	}
	med := profileFor(api.PriorityMedium)
	if med.Sound != "notification.mp3" || med.Volume != 0.7 || med.RepeatInterval != 10*time.Minute {
		t.Errorf("medium profile: got %+v", med)
	}
}

func TestNotifierScanRespectsRepeatInterval(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	due, err := store.CreateTask(api.TaskCreate{
		Title:        "due",
		Priority:     api.PriorityHigh,
		ReminderTime: "2025-06-01T09:00:00",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := store.CreateTask(api.TaskCreate{
		Title:        "future",
		Priority:     api.PriorityLow,
		ReminderTime: "2099-01-01T00:00:00",
	}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	n := NewNotifier(store, log.New(io.Discard), time.Minute)

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	n.scan(now)
	if len(n.notified) != 1 {
		t.Fatalf("notified: got %d tasks, want 1", len(n.notified))
	}
	first, ok := n.notified[due.ID]
	if !ok {
		t.Fatal("the due task should be notified")
	}

	// Within the high-priority repeat interval nothing fires again.
	n.scan(now.Add(2 * time.Minute))
	if got := n.notified[due.ID]; !got.Equal(first) {
		t.Error("notification repeated inside the repeat interval")
	}

	// Past the interval the reminder fires again.
	later := now.Add(6 * time.Minute)
	n.scan(later)
	if got := n.notified[due.ID]; !got.Equal(later) {
		t.Errorf("notification not repeated after the interval: got %v", got)
	}
}
