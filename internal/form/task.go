// Package form holds draft state for the task form and the settings
// auto-save screen, independent of any rendering.
package form

import (
	"errors"
	"fmt"
	"time"

	"taskdeck/internal/api"
)

// State is the task form lifecycle state.
type State int

const (
	// StateIdle means no draft exists.
	StateIdle State = iota
	// StateEditingNew is a blank draft for a task to be created.
	StateEditingNew
	// StateLoading means the task to edit is being fetched.
	StateLoading
	// StateEditingExisting is a draft hydrated from a fetched task.
	StateEditingExisting
	// StateSubmitting means a create/update request is in flight.
	StateSubmitting
	// StateSubmitted is terminal; the caller navigates away.
	StateSubmitted
	// StateFailed means the fetch or submission failed. After a failed
	// submission the draft is preserved and may be resubmitted.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditingNew:
		return "editing-new"
	case StateLoading:
		return "loading"
	case StateEditingExisting:
		return "editing-existing"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ValidationError is a client-side rejection raised before submission.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TaskForm stages a draft task through editing and submission.
type TaskForm struct {
	state State
	prev  State // editing state to return to on failure
	err   error

	taskID int // 0 for a new task

	Title    string
	Priority api.Priority
	Reminder string // TimeLayout-formatted local time
}

// NewCreate returns a form in editing-new with the default draft: medium
// priority, reminder set to the current local time.
func NewCreate(now time.Time) *TaskForm {
	return &TaskForm{
		state:    StateEditingNew,
		Priority: api.PriorityMedium,
		Reminder: now.Format(api.TimeLayout),
	}
}

// NewEdit returns a form waiting on the fetch of the task to edit.
func NewEdit(id int) *TaskForm {
	return &TaskForm{state: StateLoading, taskID: id}
}

// Hydrate fills the draft from a fetched task and enters editing-existing.
func (f *TaskForm) Hydrate(t api.Task) {
	f.Title = t.Title
	f.Priority = t.Priority
	if ts, err := t.Reminder(); err == nil {
		f.Reminder = ts.Local().Format(api.TimeLayout)
	} else {
		f.Reminder = t.ReminderTime
	}
	f.state = StateEditingExisting
	f.err = nil
}

// FetchFailed records a failed hydration. The caller surfaces a
// not-found style error.
func (f *TaskForm) FetchFailed(err error) {
	f.state = StateFailed
	f.prev = StateIdle
	f.err = err
}

// State returns the current lifecycle state.
func (f *TaskForm) State() State { return f.state }

// LoadFailed reports whether hydration failed, as opposed to a failed
// submission (which keeps an editable draft).
func (f *TaskForm) LoadFailed() bool {
	return f.state == StateFailed && f.prev == StateIdle
}

// TaskID returns the id being edited, or 0 for a new task.
func (f *TaskForm) TaskID() int { return f.taskID }

// Err returns the last fetch/submit error, if any.
func (f *TaskForm) Err() error { return f.err }

// Editing reports whether field changes are currently accepted.
func (f *TaskForm) Editing() bool {
	return f.state == StateEditingNew || f.state == StateEditingExisting
}

// Validate checks the draft before submission.
func (f *TaskForm) Validate() error {
	if f.Title == "" {
		return &ValidationError{Field: "title", Msg: "cannot be empty"}
	}
	if !f.Priority.Valid() {
		return &ValidationError{Field: "priority", Msg: "must be high, medium or low"}
	}
	if _, err := time.ParseInLocation(api.TimeLayout, f.Reminder, time.Local); err != nil {
		return &ValidationError{Field: "reminder_time", Msg: "must look like " + api.TimeLayout}
	}
	return nil
}

// BeginSubmit validates the draft and enters submitting. From failed it
// resubmits the preserved draft.
func (f *TaskForm) BeginSubmit() error {
	if !f.Editing() && f.state != StateFailed {
		return fmt.Errorf("cannot submit from state %s", f.state)
	}
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Editing() {
		f.prev = f.state
	}
	f.state = StateSubmitting
	f.err = nil
	return nil
}

// SubmitSucceeded moves to the terminal submitted state.
func (f *TaskForm) SubmitSucceeded() {
	f.state = StateSubmitted
	f.err = nil
}

// SubmitFailed returns to the editing state the submission came from,
// keeping the draft so the user may retry.
func (f *TaskForm) SubmitFailed(err error) {
	f.state = f.prev
	if f.state == StateIdle {
		f.state = StateFailed
	}
	f.err = err
}

// CreatePayload builds the creation request from the draft.
func (f *TaskForm) CreatePayload() api.TaskCreate {
	return api.TaskCreate{
		Title:        f.Title,
		Priority:     f.Priority,
		ReminderTime: f.Reminder,
	}
}

// UpdatePayload builds the partial-update request from the draft. Every
// editable field is sent; untouched server fields (timestamps) are not.
func (f *TaskForm) UpdatePayload() api.TaskUpdate {
	title := f.Title
	prio := f.Priority
	reminder := f.Reminder
	return api.TaskUpdate{
		Title:        &title,
		Priority:     &prio,
		ReminderTime: &reminder,
	}
}
