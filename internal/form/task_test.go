package form

import (
	"errors"
	"testing"
	"time"

	"taskdeck/internal/api"
)

func TestNewCreateDefaults(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.Local)
	f := NewCreate(now)

	if f.State() != StateEditingNew {
		t.Errorf("state: got %v, want %v", f.State(), StateEditingNew)
	}
	if f.Priority != api.PriorityMedium {
		t.Errorf("priority: got %v, want medium", f.Priority)
	}
	if f.Reminder != "2025-06-01T09:30:00" {
		t.Errorf("reminder: got %q", f.Reminder)
	}
	if f.Title != "" {
		t.Errorf("title: got %q, want empty", f.Title)
	}
}

func TestEditLifecycle(t *testing.T) {
	f := NewEdit(7)
	if f.State() != StateLoading {
		t.Fatalf("state: got %v, want %v", f.State(), StateLoading)
	}
	if f.Editing() {
		t.Error("loading form should not accept edits")
	}

	f.Hydrate(api.Task{
		ID:           7,
		Title:        "Buy milk",
		Priority:     api.PriorityHigh,
		ReminderTime: "2025-06-01T09:30:00",
	})
	if f.State() != StateEditingExisting {
		t.Errorf("state: got %v, want %v", f.State(), StateEditingExisting)
	}
	if f.Title != "Buy milk" || f.Priority != api.PriorityHigh {
		t.Errorf("draft not hydrated: %q %v", f.Title, f.Priority)
	}
	if f.TaskID() != 7 {
		t.Errorf("task id: got %d, want 7", f.TaskID())
	}
}

func TestFetchFailed(t *testing.T) {
	f := NewEdit(99)
	f.FetchFailed(errors.New("not found"))

	if f.State() != StateFailed {
		t.Errorf("state: got %v, want %v", f.State(), StateFailed)
	}
	if !f.LoadFailed() {
		t.Error("a failed hydration should report LoadFailed")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*TaskForm)
		wantField string
	}{
		{"valid", func(f *TaskForm) { f.Title = "x" }, ""},
		{"empty title", func(f *TaskForm) {}, "title"},
		{"bad priority", func(f *TaskForm) { f.Title = "x"; f.Priority = "urgent" }, "priority"},
		{"bad reminder", func(f *TaskForm) { f.Title = "x"; f.Reminder = "tomorrow" }, "reminder_time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewCreate(time.Now())
			tt.mutate(f)
			err := f.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("want ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("field: got %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestBeginSubmitRejectsInvalidDraft(t *testing.T) {
	f := NewCreate(time.Now())
	err := f.BeginSubmit()
	if !IsValidation(err) {
		t.Fatalf("want validation error, got %v", err)
	}
	if f.State() != StateEditingNew {
		t.Errorf("state after rejected submit: got %v, want %v", f.State(), StateEditingNew)
	}
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	f := NewCreate(time.Now())
	f.Title = "Buy milk"

	if err := f.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	if f.State() != StateSubmitting {
		t.Fatalf("state: got %v, want %v", f.State(), StateSubmitting)
	}

	f.SubmitFailed(errors.New("503"))
	if f.State() != StateEditingNew {
		t.Errorf("state: got %v, want %v", f.State(), StateEditingNew)
	}
	if f.Title != "Buy milk" {
		t.Errorf("draft lost on failure: %q", f.Title)
	}
	if f.Err() == nil {
		t.Error("error should be reported")
	}
	if f.LoadFailed() {
		t.Error("a failed submission is not a failed load")
	}

	// Retry goes straight back to submitting with the same draft.
	if err := f.BeginSubmit(); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	f.SubmitSucceeded()
	if f.State() != StateSubmitted {
		t.Errorf("state: got %v, want %v", f.State(), StateSubmitted)
	}
}

func TestSubmitFailureReturnsToExistingEdit(t *testing.T) {
	f := NewEdit(3)
	f.Hydrate(api.Task{ID: 3, Title: "Old", Priority: api.PriorityLow, ReminderTime: "2025-06-01T09:30:00"})
	f.Title = "New title"

	if err := f.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	f.SubmitFailed(errors.New("down"))

	if f.State() != StateEditingExisting {
		t.Errorf("state: got %v, want %v", f.State(), StateEditingExisting)
	}
	if f.Title != "New title" {
		t.Errorf("draft lost on failure: %q", f.Title)
	}
}

func TestUpdatePayloadCarriesAllEditableFields(t *testing.T) {
	f := NewEdit(3)
	f.Hydrate(api.Task{ID: 3, Title: "Old", Priority: api.PriorityLow, ReminderTime: "2025-06-01T09:30:00"})
	f.Priority = api.PriorityHigh

	p := f.UpdatePayload()
	if p.Title == nil || *p.Title != "Old" {
		t.Error("title missing from update payload")
	}
	if p.Priority == nil || *p.Priority != api.PriorityHigh {
		t.Error("priority missing from update payload")
	}
	if p.ReminderTime == nil || *p.ReminderTime != "2025-06-01T09:30:00" {
		t.Error("reminder missing from update payload")
	}
}
