package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"taskdeck/internal/api"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultServerURL      = "http://localhost:8000"
	DefaultLogFileName    = "taskdeck.log"
)

type Keymap struct {
	Quit         string `toml:"quit"`
	Up           string `toml:"up"`
	Down         string `toml:"down"`
	Add          string `toml:"add"`
	Edit         string `toml:"edit"`
	Delete       string `toml:"delete"`
	Confirm      string `toml:"confirm"`
	Cancel       string `toml:"cancel"`
	Refresh      string `toml:"refresh"`
	SortToggle   string `toml:"sort_toggle"`
	Settings     string `toml:"settings"`
	List         string `toml:"list"`
	ThemeToggle  string `toml:"theme_toggle"`
	NextField    string `toml:"next_field"`
	PrevField    string `toml:"prev_field"`
	ValueForward string `toml:"value_forward"`
	ValueBack    string `toml:"value_back"`
}

type Config struct {
	ServerURL   string `toml:"server_url"`
	ReadRetries int    `toml:"read_retries"`
	DefaultSort string `toml:"default_sort"`
	LogPath     string `toml:"log_path"`
	Keys        Keymap `toml:"keys"`
}

// ResolveConfigDir returns the per-user config directory for taskdeck.
func ResolveConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "taskdeck")
}

// ResolveConfigPath returns the config file path inside the config dir.
func ResolveConfigPath() string {
	return filepath.Join(ResolveConfigDir(), DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing defaults first if the file
// does not exist.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if cfg.ReadRetries < 0 {
		cfg.ReadRetries = 0
	}
	if cfg.DefaultSort != string(api.SortByPriority) {
		cfg.DefaultSort = string(api.SortByReminderTime)
	}
	return cfg, nil
}

// Sort returns the configured default sort key.
func (c Config) Sort() api.SortKey {
	if c.DefaultSort == string(api.SortByPriority) {
		return api.SortByPriority
	}
	return api.SortByReminderTime
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig(dir string) Config {
	return Config{
		ServerURL:   DefaultServerURL,
		ReadRetries: api.DefaultReadRetries,
		DefaultSort: string(api.SortByReminderTime),
		LogPath:     filepath.Join(dir, DefaultLogFileName),
		Keys: Keymap{
			Quit:         "q",
			Up:           "k",
			Down:         "j",
			Add:          "a",
			Edit:         "e",
			Delete:       "d",
			Confirm:      "enter",
			Cancel:       "esc",
			Refresh:      "r",
			SortToggle:   "o",
			Settings:     "s",
			List:         "g",
			ThemeToggle:  "t",
			NextField:    "tab",
			PrevField:    "shift+tab",
			ValueForward: "l",
			ValueBack:    "h",
		},
	}
}
