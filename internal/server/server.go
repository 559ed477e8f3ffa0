package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/charmbracelet/log"

	"taskdeck/internal/api"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Server exposes the REST API over a Store.
type Server struct {
	store  *Store
	logger *log.Logger
	mux    *http.ServeMux
}

// New wires the route table.
func New(store *Store, logger *log.Logger) *Server {
	s := &Server{store: store, logger: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	s.mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	s.mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	s.mux.HandleFunc("PUT /api/tasks/{id}", s.handleUpdateTask)
	s.mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)
	s.mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.mux.HandleFunc("PUT /api/settings/theme", s.handleUpdateTheme)
	s.mux.HandleFunc("PUT /api/settings/notifications", s.handleUpdateNotifications)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	sortBy := api.SortKey(r.URL.Query().Get("sort_by"))
	if sortBy == "" {
		sortBy = api.SortByReminderTime
	}
	tasks, err := s.store.ListTasks(sortBy)
	if err != nil {
		s.internalError(w, "list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var draft api.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if msg := validateDraft(draft); msg != "" {
		detail(w, http.StatusUnprocessableEntity, msg)
		return
	}
	task, err := s.store.CreateTask(draft)
	if err != nil {
		s.internalError(w, "create task", err)
		return
	}
	s.logger.Info("task created", "id", task.ID, "title", task.Title, "priority", task.Priority)
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	task, err := s.store.GetTask(id)
	if errors.Is(err, ErrNotFound) {
		detail(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		s.internalError(w, "get task", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var update api.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if msg := validateUpdate(update); msg != "" {
		detail(w, http.StatusUnprocessableEntity, msg)
		return
	}
	task, err := s.store.UpdateTask(id, update)
	if errors.Is(err, ErrNotFound) {
		detail(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		s.internalError(w, "update task", err)
		return
	}
	s.logger.Info("task updated", "id", task.ID)
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	err := s.store.DeleteTask(id)
	if errors.Is(err, ErrNotFound) {
		detail(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		s.internalError(w, "delete task", err)
		return
	}
	s.logger.Info("task deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings()
	if err != nil {
		s.internalError(w, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handleUpdateTheme merges the provided fields over the stored theme, so a
// partial body behaves like a field-level update.
func (s *Server) handleUpdateTheme(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings()
	if err != nil {
		s.internalError(w, "get settings", err)
		return
	}
	theme := settings.Theme
	if err := json.NewDecoder(r.Body).Decode(&theme); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if msg := validateTheme(theme); msg != "" {
		detail(w, http.StatusUnprocessableEntity, msg)
		return
	}
	settings.Theme = theme
	if err := s.store.SaveSettings(settings); err != nil {
		s.internalError(w, "save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, theme)
}

func (s *Server) handleUpdateNotifications(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings()
	if err != nil {
		s.internalError(w, "get settings", err)
		return
	}
	notif := settings.Notifications
	if err := json.NewDecoder(r.Body).Decode(&notif); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if msg := validateNotifications(notif); msg != "" {
		detail(w, http.StatusUnprocessableEntity, msg)
		return
	}
	settings.Notifications = notif
	if err := s.store.SaveSettings(settings); err != nil {
		s.internalError(w, "save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, notif)
}

func validateDraft(draft api.TaskCreate) string {
	if draft.Title == "" || len(draft.Title) > 200 {
		return "title must be 1-200 characters"
	}
	if !draft.Priority.Valid() {
		return "priority must be high, medium or low"
	}
	if _, err := ParseReminder(draft.ReminderTime); err != nil {
		return "reminder_time must be an ISO 8601 timestamp"
	}
	return ""
}

func validateUpdate(update api.TaskUpdate) string {
	if update.Title != nil && (*update.Title == "" || len(*update.Title) > 200) {
		return "title must be 1-200 characters"
	}
	if update.Priority != nil && !update.Priority.Valid() {
		return "priority must be high, medium or low"
	}
	if update.ReminderTime != nil {
		if _, err := ParseReminder(*update.ReminderTime); err != nil {
			return "reminder_time must be an ISO 8601 timestamp"
		}
	}
	return ""
}

func validateTheme(t api.ThemeSettings) string {
	if t.Mode != api.ModeLight && t.Mode != api.ModeDark {
		return "mode must be light or dark"
	}
	if !hexColor.MatchString(t.PrimaryColor) {
		return "primary_color must be a hex color"
	}
	if !hexColor.MatchString(t.SecondaryColor) {
		return "secondary_color must be a hex color"
	}
	for _, bg := range api.Backgrounds() {
		if t.Background == bg {
			return ""
		}
	}
	return "background must be gradient-1 through gradient-5"
}

func validateNotifications(n api.NotificationSettings) string {
	switch n.NotificationType {
	case api.NotifySound, api.NotifyBrowser, api.NotifyBoth:
	default:
		return "notification_type must be sound, browser or both"
	}
	if n.Volume < 0 || n.Volume > 1 {
		return "volume must be between 0.0 and 1.0"
	}
	return ""
}

func taskID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		detail(w, http.StatusUnprocessableEntity, "task id must be a positive integer")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, "err", err)
	detail(w, http.StatusInternalServerError, fmt.Sprintf("%s failed", op))
}
