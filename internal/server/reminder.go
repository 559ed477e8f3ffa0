package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"taskdeck/internal/api"
)

// reminderProfile is the per-priority notification shape.
type reminderProfile struct {
	Sound          string
	Volume         float64
	RepeatInterval time.Duration
}

func profileFor(p api.Priority) reminderProfile {
	switch p {
	case api.PriorityHigh:
		return reminderProfile{Sound: "alert.mp3", Volume: 1.0, RepeatInterval: 5 * time.Minute}
	case api.PriorityLow:
		return reminderProfile{Sound: "subtle.mp3", Volume: 0.5, RepeatInterval: 15 * time.Minute}
	default:
		return reminderProfile{Sound: "notification.mp3", Volume: 0.7, RepeatInterval: 10 * time.Minute}
	}
}

// Notifier watches the store for tasks whose reminder time has arrived and
// logs the notification that a production backend would deliver. Each task
// is notified at most once per process; repeat delivery is left to the
// profile's interval hint.
type Notifier struct {
	store    *Store
	logger   *log.Logger
	interval time.Duration
	notified map[int]time.Time
}

// NewNotifier returns a notifier scanning every interval.
func NewNotifier(store *Store, logger *log.Logger, interval time.Duration) *Notifier {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Notifier{
		store:    store,
		logger:   logger,
		interval: interval,
		notified: make(map[int]time.Time),
	}
}

// Run blocks until ctx is done, scanning for due reminders.
func (n *Notifier) Run(ctx context.Context) {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n.scan(now)
		}
	}
}

func (n *Notifier) scan(now time.Time) {
	tasks, err := n.store.ListTasks(api.SortByReminderTime)
	if err != nil {
		n.logger.Error("reminder scan", "err", err)
		return
	}
	for _, t := range tasks {
		due, err := ParseReminder(t.ReminderTime)
		if err != nil || due.After(now) {
			continue
		}
		if last, ok := n.notified[t.ID]; ok {
			if now.Sub(last) < profileFor(t.Priority).RepeatInterval {
				continue
			}
		}
		n.notified[t.ID] = now
		p := profileFor(t.Priority)
		n.logger.Info("reminder due",
			"task", t.Title,
			"priority", t.Priority,
			"sound", p.Sound,
			"volume", p.Volume,
		)
	}
}
