// taskdeckd is the development backend for taskdeck. It serves the task and
// settings API over SQLite and logs reminders as they come due.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"taskdeck/internal/config"
	"taskdeck/internal/server"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	dbPath := flag.String("db", filepath.Join(config.ResolveConfigDir(), "taskdeckd.db"), "sqlite database path")
	scanEvery := flag.Duration("scan", 30*time.Second, "reminder scan interval")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	store, err := server.OpenStore(*dbPath)
	if err != nil {
		logger.Fatal("failed to open database", "path", *dbPath, "err", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := server.NewNotifier(store, logger, *scanEvery)
	go notifier.Run(ctx)

	srv := &http.Server{
		Addr:    *addr,
		Handler: server.New(store, logger),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", *addr, "db", *dbPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped", "err", err)
	}
}
