// Package ui is the terminal client: four screens routed over shared
// cached server state.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"taskdeck/internal/api"
	"taskdeck/internal/cache"
	"taskdeck/internal/config"
	"taskdeck/internal/form"
	"taskdeck/internal/theme"
)

const (
	settingsKey   = "settings"
	toastDuration = 4 * time.Second
	requestWindow = 30 * time.Second
)

func taskListKey(sort api.SortKey) string {
	return "tasks?sort_by=" + string(sort)
}

func taskKey(id int) string {
	return fmt.Sprintf("task/%d", id)
}

// Model is the application state. All mutation happens in Update; commands
// only perform network calls and report back as messages.
type Model struct {
	client *api.Client
	cfg    config.Config
	themes *theme.Store
	logger *log.Logger

	route Route

	taskLists *cache.Store[[]api.Task]
	taskByID  *cache.Store[api.Task]
	settings  *cache.Store[api.Settings]

	// list screen
	sortKey    api.SortKey
	cursor     int
	pendingDel *api.Task

	// form screen
	form      *form.TaskForm
	formField int
	submitSeq uint64

	// settings screen
	autosave *form.AutoSave
	draft    api.Settings
	hydrated bool
	setField int
	editing  bool // a settings text field is being edited

	input textinput.Model
	spin  spinner.Model

	toast   string
	toastID int
	loading int // fetches in flight, drives the spinner

	width  int
	height int
}

// New builds the model for the given start path.
func New(client *api.Client, cfg config.Config, themes *theme.Store, logger *log.Logger, startPath string) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		client:    client,
		cfg:       cfg,
		themes:    themes,
		logger:    logger,
		taskLists: cache.New[[]api.Task](),
		taskByID:  cache.New[api.Task](),
		settings:  cache.New[api.Settings](),
		sortKey:   cfg.Sort(),
		autosave:  form.NewAutoSave(),
		input:     ti,
		spin:      sp,
		route:     Route{Screen: ScreenList, Path: "/"},
	}
	m.route = ParseRoute(startPath)
	return m
}

// Run starts the program.
func Run(client *api.Client, cfg config.Config, themes *theme.Store, logger *log.Logger, startPath string) error {
	program := tea.NewProgram(New(client, cfg, themes, logger, startPath), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// Messages carried back from commands.

type tasksLoadedMsg struct {
	key   string
	seq   uint64
	tasks []api.Task
	err   error
}

type taskLoadedMsg struct {
	key  string
	seq  uint64
	task api.Task
	err  error
}

type settingsLoadedMsg struct {
	seq      uint64
	settings api.Settings
	err      error
}

type taskSavedMsg struct {
	seq      uint64
	creating bool
	err      error
}

type taskDeletedMsg struct {
	id  int
	err error
}

type themeSavedMsg struct {
	field string
	seq   uint64
	err   error
}

type notifSavedMsg struct {
	field string
	seq   uint64
	err   error
}

type toastExpiredMsg struct{ id int }

// mountMsg triggers the entry effects of the start route once the program
// loop is running.
type mountMsg struct{}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return mountMsg{} }
}

// mount runs the entry effects of the current route and returns the fetches
// it needs.
func (m *Model) mount() tea.Cmd {
	var cmds []tea.Cmd
	switch m.route.Screen {
	case ScreenList:
		if cmd := m.ensureTasks(m.sortKey); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case ScreenForm:
		if m.route.TaskID == 0 {
			m.form = form.NewCreate(time.Now())
			m.formField = 0
			m.syncFormInput()
		} else {
			m.form = form.NewEdit(m.route.TaskID)
			m.formField = 0
			cmds = append(cmds, m.fetchTask(m.route.TaskID))
		}
	case ScreenSettings:
		if cmd := m.ensureSettings(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if snap := m.settings.Get(settingsKey); snap.HasValue && !m.hydrated {
			m.draft = snap.Value
			m.hydrated = true
		}
		m.setField = 0
		m.editing = false
	}
	if m.loading > 0 {
		cmds = append(cmds, m.spin.Tick)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// navigate switches routes. In-flight work keyed to the old screen resolves
// into the caches but no longer reaches the abandoned screen state.
func (m *Model) navigate(path string) tea.Cmd {
	m.route = ParseRoute(path)
	m.pendingDel = nil
	m.editing = false
	if m.route.Screen != ScreenForm {
		m.form = nil
	}
	m.input.Blur()
	return m.mount()
}

// ensureTasks issues a list fetch if the cache needs one.
func (m *Model) ensureTasks(sort api.SortKey) tea.Cmd {
	key := taskListKey(sort)
	if !m.taskLists.NeedsFetch(key) {
		return nil
	}
	return m.fetchTasks(sort)
}

// fetchTasks always issues a fetch, superseding any in-flight one.
func (m *Model) fetchTasks(sort api.SortKey) tea.Cmd {
	key := taskListKey(sort)
	seq := m.taskLists.Begin(key)
	m.loading++
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestWindow)
		defer cancel()
		tasks, err := client.ListTasks(ctx, sort)
		return tasksLoadedMsg{key: key, seq: seq, tasks: tasks, err: err}
	}
}

func (m *Model) fetchTask(id int) tea.Cmd {
	key := taskKey(id)
	seq := m.taskByID.Begin(key)
	m.loading++
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestWindow)
		defer cancel()
		task, err := client.GetTask(ctx, id)
		return taskLoadedMsg{key: key, seq: seq, task: task, err: err}
	}
}

func (m *Model) ensureSettings() tea.Cmd {
	if !m.settings.NeedsFetch(settingsKey) {
		return nil
	}
	seq := m.settings.Begin(settingsKey)
	m.loading++
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestWindow)
		defer cancel()
		settings, err := client.GetSettings(ctx)
		return settingsLoadedMsg{seq: seq, settings: settings, err: err}
	}
}

func (m *Model) showToast(text string) tea.Cmd {
	m.toast = text
	m.toastID++
	id := m.toastID
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *Model) fetchDone() {
	if m.loading > 0 {
		m.loading--
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case mountMsg:
		cmd := m.mount()
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = min(msg.Width-10, 60)
		return m, nil

	case spinner.TickMsg:
		if m.loading == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case toastExpiredMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil

	case tasksLoadedMsg:
		m.fetchDone()
		if !m.taskLists.Resolve(msg.key, msg.seq, msg.tasks, msg.err) {
			return m, nil // superseded: last issued wins
		}
		if msg.err != nil {
			m.logger.Error("list fetch failed", "key", msg.key, "err", msg.err)
			if m.route.Screen == ScreenList {
				return m, m.showToast("Failed to load tasks")
			}
			return m, nil
		}
		m.clampCursor()
		return m, nil

	case taskLoadedMsg:
		m.fetchDone()
		if !m.taskByID.Resolve(msg.key, msg.seq, msg.task, msg.err) {
			return m, nil
		}
		// Hydrate the form only if it is still waiting on this task.
		if m.form != nil && m.route.Screen == ScreenForm && taskKey(m.form.TaskID()) == msg.key {
			if msg.err != nil {
				m.form.FetchFailed(msg.err)
				return m, m.showToast("Task not found")
			}
			m.form.Hydrate(msg.task)
			m.syncFormInput()
		}
		return m, nil

	case settingsLoadedMsg:
		m.fetchDone()
		if !m.settings.Resolve(settingsKey, msg.seq, msg.settings, msg.err) {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("settings fetch failed", "err", msg.err)
			if m.route.Screen == ScreenSettings {
				return m, m.showToast("Failed to load settings")
			}
			return m, nil
		}
		m.draft = msg.settings
		m.hydrated = true
		m.themes.ApplyRemote(msg.settings.Theme)
		return m, nil

	case taskSavedMsg:
		return m.applyTaskSaved(msg)

	case taskDeletedMsg:
		return m.applyTaskDeleted(msg)

	case themeSavedMsg:
		if !m.autosave.Resolve("theme."+msg.field, msg.seq, msg.err) {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("theme save failed", "field", msg.field, "err", msg.err)
			return m, m.showToast("Failed to update theme settings")
		}
		m.settings.Invalidate(settingsKey)
		return m, m.showToast("Theme settings updated")

	case notifSavedMsg:
		if !m.autosave.Resolve("notifications."+msg.field, msg.seq, msg.err) {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("notification save failed", "field", msg.field, "err", msg.err)
			return m, m.showToast("Failed to update notification settings")
		}
		m.settings.Invalidate(settingsKey)
		return m, m.showToast("Notification settings updated")

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) applyTaskSaved(msg taskSavedMsg) (tea.Model, tea.Cmd) {
	// A submission from a form the user already left is dropped silently.
	if m.form == nil || msg.seq != m.submitSeq || m.form.State() != form.StateSubmitting {
		return m, nil
	}
	if msg.err != nil {
		m.form.SubmitFailed(msg.err)
		m.logger.Error("task save failed", "err", msg.err)
		if msg.creating {
			return m, m.showToast("Failed to create task")
		}
		return m, m.showToast("Failed to update task")
	}
	m.form.SubmitSucceeded()
	m.taskLists.Invalidate("tasks")
	if !msg.creating {
		m.taskByID.Invalidate(taskKey(m.form.TaskID()))
	}
	text := "Task updated successfully"
	if msg.creating {
		text = "Task created successfully"
	}
	toast := m.showToast(text)
	nav := m.navigate("/")
	return m, tea.Batch(toast, nav)
}

func (m Model) applyTaskDeleted(msg taskDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Error("task delete failed", "id", msg.id, "err", msg.err)
		return m, m.showToast("Failed to delete task")
	}
	m.taskLists.Invalidate("tasks")
	m.taskByID.Drop(taskKey(msg.id))
	var refetch tea.Cmd
	if m.route.Screen == ScreenList {
		refetch = m.ensureTasks(m.sortKey)
	}
	return m, tea.Batch(m.showToast("Task deleted successfully"), refetch)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.route.Screen {
	case ScreenList:
		return m.updateList(msg)
	case ScreenForm:
		return m.updateForm(msg)
	case ScreenSettings:
		return m.updateSettings(msg)
	default:
		return m.updateNotFound(msg)
	}
}

func (m Model) View() string {
	st := NewStyles(m.themes.Current())

	var body string
	switch m.route.Screen {
	case ScreenList:
		body = m.viewList(st)
	case ScreenForm:
		body = m.viewForm(st)
	case ScreenSettings:
		body = m.viewSettings(st)
	default:
		body = m.viewNotFound(st)
	}

	header := st.Title.Render("taskdeck") + "  " + st.Header.Render(m.route.Path)
	if m.themes.Current().Mode == api.ModeDark {
		header += "  " + st.Dim.Render("dark")
	} else {
		header += "  " + st.Dim.Render("light")
	}

	status := m.statusLine(st)
	return header + "\n\n" + body + "\n" + status + "\n"
}

func (m Model) statusLine(st Styles) string {
	if m.toast != "" {
		return st.Toast.Render(m.toast)
	}
	if m.loading > 0 {
		return m.spin.View() + st.Dim.Render(" loading")
	}
	return st.Dim.Render(m.helpLine())
}

func (m Model) helpLine() string {
	k := m.cfg.Keys
	switch m.route.Screen {
	case ScreenList:
		return fmt.Sprintf("%s/%s move • %s add • %s edit • %s delete • %s sort • %s settings • %s theme • %s quit",
			k.Up, k.Down, k.Add, k.Edit, k.Delete, k.SortToggle, k.Settings, k.ThemeToggle, k.Quit)
	case ScreenForm:
		return fmt.Sprintf("%s next field • %s save (last field) • %s cancel", k.NextField, k.Confirm, k.Cancel)
	case ScreenSettings:
		return fmt.Sprintf("%s/%s move • %s/%s adjust • %s edit value • %s back",
			k.Up, k.Down, k.ValueBack, k.ValueForward, k.Confirm, k.Cancel)
	default:
		return fmt.Sprintf("%s back to list", k.Confirm)
	}
}
