package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/theme"
	"taskdeck/internal/ui"
)

func main() {
	open := flag.String("open", "/", "path to open at startup, e.g. /settings or /task/edit/3")
	server := flag.String("server", "", "backend URL (overrides the config file)")
	flag.Parse()

	cfg, err := config.LoadOrCreate(config.ResolveConfigPath())
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *server != "" {
		cfg.ServerURL = *server
	}

	logger := newLogger(cfg.LogPath)

	client := api.New(cfg.ServerURL)
	client.ReadRetries = cfg.ReadRetries

	themes := theme.Open(config.ResolveConfigDir())

	if err := ui.Run(client, cfg, themes, logger, *open); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}

// newLogger logs to the configured file. The terminal belongs to the UI, so
// a broken log path silently discards logs rather than corrupting the screen.
func newLogger(path string) *log.Logger {
	var w io.Writer = io.Discard
	if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		w = f
	}
	return log.NewWithOptions(w, log.Options{ReportTimestamp: true})
}
