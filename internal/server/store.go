// Package server is the development backend: the REST contract the client
// speaks, backed by SQLite.
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"taskdeck/internal/api"
)

// ErrNotFound is returned for ids that do not exist.
var ErrNotFound = errors.New("task not found")

// reminderLayouts are the accepted client formats for reminder_time.
var reminderLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Store persists tasks and the settings singleton.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the database at dbPath.
func OpenStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	priority TEXT NOT NULL,
	reminder_time TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	data TEXT NOT NULL
);`
	_, err := s.db.Exec(ddl)
	return err
}

// ParseReminder parses a client-supplied reminder time.
func ParseReminder(v string) (time.Time, error) {
	var lastErr error
	for _, layout := range reminderLayouts {
		if ts, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return ts, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

// ListTasks returns all tasks ordered by the sort key: reminder time
// ascending, or priority high before medium before low.
func (s *Store) ListTasks(sortBy api.SortKey) ([]api.Task, error) {
	rows, err := s.db.Query(`SELECT id, title, priority, reminder_time, created_at, updated_at FROM tasks ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []api.Task{}
	for rows.Next() {
		var t api.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Priority, &t.ReminderTime, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch sortBy {
	case api.SortByPriority:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Priority.Rank() < tasks[j].Priority.Rank()
		})
	default:
		sort.SliceStable(tasks, func(i, j int) bool {
			ti, erri := ParseReminder(tasks[i].ReminderTime)
			tj, errj := ParseReminder(tasks[j].ReminderTime)
			if erri != nil || errj != nil {
				return tasks[i].ReminderTime < tasks[j].ReminderTime
			}
			return ti.Before(tj)
		})
	}
	return tasks, nil
}

// GetTask returns the task with the given id, or ErrNotFound.
func (s *Store) GetTask(id int) (api.Task, error) {
	var t api.Task
	err := s.db.QueryRow(`SELECT id, title, priority, reminder_time, created_at, updated_at FROM tasks WHERE id = ?;`, id).
		Scan(&t.ID, &t.Title, &t.Priority, &t.ReminderTime, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Task{}, ErrNotFound
	}
	return t, err
}

// CreateTask inserts a draft and returns the stored task with server-set
// id and timestamps.
func (s *Store) CreateTask(draft api.TaskCreate) (api.Task, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`INSERT INTO tasks (title, priority, reminder_time, created_at, updated_at) VALUES (?, ?, ?, ?, ?);`,
		draft.Title, string(draft.Priority), draft.ReminderTime, now, now)
	if err != nil {
		return api.Task{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return api.Task{}, err
	}
	return s.GetTask(int(id))
}

// UpdateTask merges the provided fields into the task and bumps updated_at.
func (s *Store) UpdateTask(id int, update api.TaskUpdate) (api.Task, error) {
	t, err := s.GetTask(id)
	if err != nil {
		return api.Task{}, err
	}
	if update.Title != nil {
		t.Title = *update.Title
	}
	if update.Priority != nil {
		t.Priority = *update.Priority
	}
	if update.ReminderTime != nil {
		t.ReminderTime = *update.ReminderTime
	}
	t.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(`UPDATE tasks SET title = ?, priority = ?, reminder_time = ?, updated_at = ? WHERE id = ?;`,
		t.Title, string(t.Priority), t.ReminderTime, t.UpdatedAt, id)
	if err != nil {
		return api.Task{}, err
	}
	return t, nil
}

// DeleteTask removes the task, or returns ErrNotFound.
func (s *Store) DeleteTask(id int) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Settings loads the singleton, seeding defaults on first access.
func (s *Store) Settings() (api.Settings, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM settings WHERE id = 1;`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		defaults := api.DefaultSettings()
		if err := s.SaveSettings(defaults); err != nil {
			return api.Settings{}, err
		}
		return defaults, nil
	}
	if err != nil {
		return api.Settings{}, err
	}
	var out api.Settings
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return api.Settings{}, err
	}
	return out, nil
}

// SaveSettings stores the singleton.
func (s *Store) SaveSettings(settings api.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO settings (id, data) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET data = excluded.data;`, string(data))
	return err
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
