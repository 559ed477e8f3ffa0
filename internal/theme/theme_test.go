package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskdeck/internal/api"
)

func TestOpenDefaults(t *testing.T) {
	s := Open(t.TempDir())

	p := s.Current()
	if p.Mode != api.ModeLight {
		t.Errorf("mode: got %v, want light", p.Mode)
	}
	if p.PrimaryColor != "#007AFF" || p.SecondaryColor != "#5856D6" {
		t.Errorf("colors: got %q %q", p.PrimaryColor, p.SecondaryColor)
	}
	if p.Background != api.Gradient1 {
		t.Errorf("background: got %v, want gradient-1", p.Background)
	}
}

func TestToggleModePersistsAndRestores(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir)

	if got := s.ToggleMode(); got != api.ModeDark {
		t.Errorf("first toggle: got %v, want dark", got)
	}

	data, err := os.ReadFile(filepath.Join(dir, ModeFileName))
	if err != nil {
		t.Fatalf("mode file: %v", err)
	}
	if strings.TrimSpace(string(data)) != "dark" {
		t.Errorf("persisted mode: got %q, want dark", data)
	}

	// A fresh store sees the persisted mode.
	if got := Open(dir).Current().Mode; got != api.ModeDark {
		t.Errorf("reopened mode: got %v, want dark", got)
	}

	if got := s.ToggleMode(); got != api.ModeLight {
		t.Errorf("second toggle: got %v, want light", got)
	}
	if got := Open(dir).Current().Mode; got != api.ModeLight {
		t.Errorf("mode after toggling twice: got %v, want light", got)
	}
}

func TestOpenIgnoresGarbledModeFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ModeFileName), []byte("purple\n"), 0o644)

	if got := Open(dir).Current().Mode; got != api.ModeLight {
		t.Errorf("mode: got %v, want light fallback", got)
	}
}

func TestSubscribeSeesEveryChange(t *testing.T) {
	s := Open(t.TempDir())

	var seen []Preferences
	s.Subscribe(func(p Preferences) { seen = append(seen, p) })

	s.ToggleMode()
	s.SetColors("#112233", "#445566")
	s.SetBackground(api.Gradient4)

	if len(seen) != 3 {
		t.Fatalf("notifications: got %d, want 3", len(seen))
	}
	last := seen[2]
	if last.Mode != api.ModeDark || last.PrimaryColor != "#112233" || last.Background != api.Gradient4 {
		t.Errorf("final prefs: got %+v", last)
	}
}

func TestApplyRemoteKeepsLocalModeWhenEqual(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir)

	s.ApplyRemote(api.ThemeSettings{
		Mode:           api.ModeDark,
		PrimaryColor:   "#FF0000",
		SecondaryColor: "#00FF00",
		Background:     api.Gradient2,
	})

	p := s.Current()
	if p.Mode != api.ModeDark || p.PrimaryColor != "#FF0000" || p.Background != api.Gradient2 {
		t.Errorf("prefs: got %+v", p)
	}
	if got := Open(dir).Current().Mode; got != api.ModeDark {
		t.Error("remote mode should persist like a manual toggle")
	}
}

func TestSettingsPayload(t *testing.T) {
	s := Open(t.TempDir())
	s.SetColors("#112233", "#445566")

	got := s.Settings()
	want := api.ThemeSettings{
		Mode:           api.ModeLight,
		PrimaryColor:   "#112233",
		SecondaryColor: "#445566",
		Background:     api.Gradient1,
	}
	if got != want {
		t.Errorf("payload: got %+v, want %+v", got, want)
	}
}
