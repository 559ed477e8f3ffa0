// Package theme is the process-wide presentation preference store.
//
// The store is constructed once at startup and passed to consumers; there is
// no package-level global. Mode toggles persist synchronously to a small file
// under the config directory and never touch the network. Color and
// background changes apply immediately to every subscriber regardless of
// whether the corresponding server update succeeds; a failed save is
// reported elsewhere as a toast and never rolled back here.
package theme

import (
	"os"
	"path/filepath"
	"strings"

	"taskdeck/internal/api"
)

// ModeFileName is the file holding the persisted mode, one word: light or dark.
const ModeFileName = "theme"

// Preferences is the current presentation preference.
type Preferences struct {
	Mode           api.ThemeMode
	PrimaryColor   string
	SecondaryColor string
	Background     api.Background
}

// Store owns the shared preference and notifies subscribers on change.
type Store struct {
	prefs Preferences
	path  string
	subs  []func(Preferences)
}

// Open loads the persisted mode from dir (creating nothing yet) and fills
// the remaining fields with defaults. Missing or garbled files fall back to
// light mode.
func Open(dir string) *Store {
	defaults := api.DefaultSettings().Theme
	s := &Store{
		prefs: Preferences{
			Mode:           defaults.Mode,
			PrimaryColor:   defaults.PrimaryColor,
			SecondaryColor: defaults.SecondaryColor,
			Background:     defaults.Background,
		},
		path: filepath.Join(dir, ModeFileName),
	}
	if data, err := os.ReadFile(s.path); err == nil {
		if mode := api.ThemeMode(strings.TrimSpace(string(data))); mode == api.ModeLight || mode == api.ModeDark {
			s.prefs.Mode = mode
		}
	}
	return s
}

// Current returns the preference as of now.
func (s *Store) Current() Preferences { return s.prefs }

// Subscribe registers fn to run after every change.
func (s *Store) Subscribe(fn func(Preferences)) {
	s.subs = append(s.subs, fn)
}

// ToggleMode flips light/dark, persists the new mode and returns it.
func (s *Store) ToggleMode() api.ThemeMode {
	if s.prefs.Mode == api.ModeDark {
		s.prefs.Mode = api.ModeLight
	} else {
		s.prefs.Mode = api.ModeDark
	}
	s.persistMode()
	s.notify()
	return s.prefs.Mode
}

// SetMode sets the mode explicitly, persisting on change.
func (s *Store) SetMode(mode api.ThemeMode) {
	if mode != api.ModeLight && mode != api.ModeDark {
		return
	}
	if s.prefs.Mode == mode {
		return
	}
	s.prefs.Mode = mode
	s.persistMode()
	s.notify()
}

// SetColors applies accent colors to all mounted views.
func (s *Store) SetColors(primary, secondary string) {
	s.prefs.PrimaryColor = primary
	s.prefs.SecondaryColor = secondary
	s.notify()
}

// SetBackground applies the background variant to all mounted views.
func (s *Store) SetBackground(bg api.Background) {
	s.prefs.Background = bg
	s.notify()
}

// ApplyRemote folds fetched or server-confirmed theme settings into the
// preference. The mode is persisted like a manual change.
func (s *Store) ApplyRemote(t api.ThemeSettings) {
	if t.PrimaryColor != "" {
		s.prefs.PrimaryColor = t.PrimaryColor
	}
	if t.SecondaryColor != "" {
		s.prefs.SecondaryColor = t.SecondaryColor
	}
	if t.Background != "" {
		s.prefs.Background = t.Background
	}
	if (t.Mode == api.ModeLight || t.Mode == api.ModeDark) && t.Mode != s.prefs.Mode {
		s.prefs.Mode = t.Mode
		s.persistMode()
	}
	s.notify()
}

// Settings renders the preference as the wire theme payload.
func (s *Store) Settings() api.ThemeSettings {
	return api.ThemeSettings{
		Mode:           s.prefs.Mode,
		PrimaryColor:   s.prefs.PrimaryColor,
		SecondaryColor: s.prefs.SecondaryColor,
		Background:     s.prefs.Background,
	}
}

func (s *Store) persistMode() {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return
	}
	// Persistence failures are tolerated: the preference still applies
	// for this session.
	_ = os.WriteFile(s.path, []byte(string(s.prefs.Mode)+"\n"), 0o644)
}

func (s *Store) notify() {
	for _, fn := range s.subs {
		fn(s.prefs)
	}
}
