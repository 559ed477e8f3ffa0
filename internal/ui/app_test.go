package ui

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"taskdeck/internal/api"
	"taskdeck/internal/cache"
	"taskdeck/internal/config"
	"taskdeck/internal/form"
	"taskdeck/internal/theme"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.LoadOrCreate(filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	client := api.New("http://127.0.0.1:1") // never reached in these tests
	return New(client, cfg, theme.Open(dir), log.New(io.Discard), "/")
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func seedTasks(m *Model, tasks []api.Task) {
	key := taskListKey(m.sortKey)
	seq := m.taskLists.Begin(key)
	m.taskLists.Resolve(key, seq, tasks, nil)
}

func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	model, _ := m.Update(msg)
	out, ok := model.(Model)
	if !ok {
		t.Fatalf("Update returned %T", model)
	}
	return out
}

func TestStaleListResponseIsDropped(t *testing.T) {
	m := newTestModel(t)
	key := taskListKey(m.sortKey)

	seq1 := m.taskLists.Begin(key)
	seq2 := m.taskLists.Begin(key)

	m = apply(t, m, tasksLoadedMsg{key: key, seq: seq2, tasks: []api.Task{{ID: 2, Title: "new"}}})
	m = apply(t, m, tasksLoadedMsg{key: key, seq: seq1, tasks: []api.Task{{ID: 1, Title: "old"}}})

	snap := m.taskLists.Get(key)
	if len(snap.Value) != 1 || snap.Value[0].ID != 2 {
		t.Errorf("list: got %+v, want the later response only", snap.Value)
	}
}

func TestSortToggleIssuesFreshFetch(t *testing.T) {
	m := newTestModel(t)
	seedTasks(&m, []api.Task{{ID: 1, Title: "x", Priority: api.PriorityLow}})

	model, cmd := m.Update(keyMsg(m.cfg.Keys.SortToggle))
	m = model.(Model)

	if m.sortKey != api.SortByPriority {
		t.Errorf("sort key: got %v, want priority", m.sortKey)
	}
	if cmd == nil {
		t.Fatal("sort toggle should issue a fetch")
	}
	if m.taskLists.Get(taskListKey(api.SortByPriority)).Status != cache.StatusLoading {
		t.Error("new sort key should be loading")
	}
}

func TestSortSwitchShowsNewOrderRegardlessOfArrival(t *testing.T) {
	m := newTestModel(t)
	keyA := taskListKey(api.SortByReminderTime)
	seqA := m.taskLists.Begin(keyA)

	// Switching to priority issues the next sequence for the priority key.
	m = apply(t, m, keyMsg(m.cfg.Keys.SortToggle))
	keyB := taskListKey(api.SortByPriority)

	// The priority response lands first, the superseded reminder-time
	// response afterwards.
	m = apply(t, m, tasksLoadedMsg{key: keyB, seq: seqA + 1, tasks: []api.Task{{ID: 2}, {ID: 1}}})
	m = apply(t, m, tasksLoadedMsg{key: keyA, seq: seqA, tasks: []api.Task{{ID: 1}, {ID: 2}}})

	if m.sortKey != api.SortByPriority {
		t.Fatalf("sort key: got %v, want priority", m.sortKey)
	}
	got := m.currentTasks().Value
	if len(got) != 2 || got[0].ID != 2 {
		t.Errorf("displayed order: got %v, want the priority response", got)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m := newTestModel(t)
	seedTasks(&m, []api.Task{{ID: 1, Title: "Buy milk", Priority: api.PriorityLow}})

	m = apply(t, m, keyMsg(m.cfg.Keys.Delete))
	if m.pendingDel == nil || m.pendingDel.ID != 1 {
		t.Fatal("delete should stage a confirmation first")
	}

	// Declining leaves the task alone.
	m = apply(t, m, keyMsg("n"))
	if m.pendingDel != nil {
		t.Error("confirmation should be cleared")
	}
	if m.toast != "Delete cancelled" {
		t.Errorf("toast: got %q", m.toast)
	}
	if len(m.taskLists.Get(taskListKey(m.sortKey)).Value) != 1 {
		t.Error("cancelled delete must not touch the list")
	}
}

func TestDeleteConfirmIssuesRequest(t *testing.T) {
	m := newTestModel(t)
	seedTasks(&m, []api.Task{{ID: 1, Title: "Buy milk", Priority: api.PriorityLow}})

	m = apply(t, m, keyMsg(m.cfg.Keys.Delete))
	model, cmd := m.Update(keyMsg("y"))
	m = model.(Model)

	if m.pendingDel != nil {
		t.Error("confirmation should be consumed")
	}
	if cmd == nil {
		t.Fatal("confirmed delete should issue the request")
	}
}

func TestDeleteSuccessInvalidatesLists(t *testing.T) {
	m := newTestModel(t)
	seedTasks(&m, []api.Task{{ID: 1, Title: "Buy milk", Priority: api.PriorityLow}})
	seq := m.taskByID.Begin(taskKey(1))
	m.taskByID.Resolve(taskKey(1), seq, api.Task{ID: 1, Title: "Buy milk"}, nil)

	m = apply(t, m, taskDeletedMsg{id: 1})

	snap := m.taskLists.Get(taskListKey(m.sortKey))
	if snap.Status != cache.StatusLoading {
		t.Errorf("list status: got %v, want loading (refetch issued)", snap.Status)
	}
	if !snap.HasValue {
		t.Error("prior list should stay visible while the refetch runs")
	}
	if !m.taskByID.NeedsFetch(taskKey(1)) {
		t.Error("the single-task entry should be dropped")
	}
	if m.toast != "Task deleted successfully" {
		t.Errorf("toast: got %q", m.toast)
	}
}

func TestSubmitOutcomeAfterLeavingFormIsDropped(t *testing.T) {
	m := newTestModel(t)
	m.route = Route{Screen: ScreenForm, Path: "/task/new"}
	m.form = form.NewCreate(time.Now())
	m.form.Title = "Buy milk"
	if err := m.form.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	m.submitSeq = 2

	// An outcome from a submission issued before the current one.
	m = apply(t, m, taskSavedMsg{seq: 1, creating: true})

	if m.form.State() != form.StateSubmitting {
		t.Errorf("state: got %v, want submitting", m.form.State())
	}
	if m.route.Screen != ScreenForm {
		t.Error("a dropped outcome must not navigate")
	}
}

func TestSubmitSuccessNavigatesAndInvalidates(t *testing.T) {
	m := newTestModel(t)
	seedTasks(&m, []api.Task{})
	m.route = Route{Screen: ScreenForm, Path: "/task/new"}
	m.form = form.NewCreate(time.Now())
	m.form.Title = "Buy milk"
	if err := m.form.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	m.submitSeq = 1

	m = apply(t, m, taskSavedMsg{seq: 1, creating: true})

	if m.route.Screen != ScreenList {
		t.Errorf("screen: got %v, want list", m.route.Screen)
	}
	if m.form != nil {
		t.Error("form should be torn down after navigation")
	}
	if m.toast != "Task created successfully" {
		t.Errorf("toast: got %q", m.toast)
	}
}

func TestCancelDiscardsDraft(t *testing.T) {
	m := newTestModel(t)
	seedTasks(&m, []api.Task{})
	m.route = Route{Screen: ScreenForm, Path: "/task/new"}
	m.form = form.NewCreate(time.Now())
	m.form.Title = "half-typed"

	m = apply(t, m, keyMsg("esc"))

	if m.route.Screen != ScreenList {
		t.Errorf("screen: got %v, want list", m.route.Screen)
	}
	if m.form != nil {
		t.Error("draft should be discarded on cancel")
	}
}

func TestSupersededThemeSaveErrorIsDropped(t *testing.T) {
	m := newTestModel(t)

	seq1 := m.autosave.Begin("theme.background")
	seq2 := m.autosave.Begin("theme.background")

	m = apply(t, m, themeSavedMsg{field: "background", seq: seq1, err: errors.New("boom")})
	if m.toast != "" {
		t.Errorf("superseded failure should not toast, got %q", m.toast)
	}

	m = apply(t, m, themeSavedMsg{field: "background", seq: seq2})
	if m.autosave.Err("theme.background") != nil {
		t.Error("latest save succeeded; no error should remain")
	}
	if m.toast != "Theme settings updated" {
		t.Errorf("toast: got %q", m.toast)
	}
}

func TestStaleToastDoesNotClearNewerOne(t *testing.T) {
	m := newTestModel(t)

	m.showToast("first")
	firstID := m.toastID
	m.showToast("second")

	m = apply(t, m, toastExpiredMsg{id: firstID})
	if m.toast != "second" {
		t.Errorf("toast: got %q, want the newer toast to survive", m.toast)
	}
	m = apply(t, m, toastExpiredMsg{id: m.toastID})
	if m.toast != "" {
		t.Errorf("toast: got %q, want cleared", m.toast)
	}
}
