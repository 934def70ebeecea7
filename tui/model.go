// Package tui is the interactive operator console. It follows the Elm
// architecture: all state lives in Model, all state changes happen in
// Update, network calls run as commands whose completions come back as
// messages. That single update loop is the console's concurrency model —
// responses are applied (or discarded as stale) one at a time.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/imageops/pullconsole/internal/api"
	"github.com/imageops/pullconsole/internal/auditlog"
	"github.com/imageops/pullconsole/internal/config"
	"github.com/imageops/pullconsole/internal/selection"
	"github.com/imageops/pullconsole/internal/session"
	"github.com/imageops/pullconsole/internal/store"
)

// Tab identifies a top-level view.
type Tab int

const (
	TabDashboard Tab = iota
	TabTasks
	TabScheduled
	TabHistory
	TabLibrary
	TabSecrets
	TabUsers
	TabLogs
	tabCount
)

var tabNames = [tabCount]string{
	"Dashboard", "Tasks", "Scheduled", "History", "Library", "Secrets", "Users", "Logs",
}

// Modal identifies which blocking overlay is open, if any. While a modal
// is open the polling tick does not issue refreshes.
type Modal int

const (
	ModalNone Modal = iota
	ModalConfirm
	ModalDetail
	ModalCreateTask
	ModalCreateSchedule
	ModalAddImage
	ModalCreateSecret
	ModalCreateUser
	ModalPassword
)

// confirmDialog is the generic confirm-before-destructive-action dialog.
// Each open replaces the bound action wholesale, so repeated use can never
// invoke a stale or duplicate handler.
type confirmDialog struct {
	title   string
	message string
	action  tea.Cmd
}

// toast is one transient notification. Several can be visible at once,
// ordered by creation.
type toast struct {
	id      int
	level   auditlog.Level
	message string
	created time.Time
}

// dashboardStats is the summary rendered on the Dashboard tab.
type dashboardStats struct {
	nodes           api.NodeStats
	runningTasks    int
	pendingTasks    int
	completedToday  int
	successRate     int
	activeSchedules int
	loaded          bool
}

// Model is the console's entire state.
type Model struct {
	cfg    *config.Config
	client *api.Client
	guard  *session.Guard
	audit  *auditlog.Store
	logger *zap.Logger

	width  int
	height int

	// Auth
	authed    bool
	login     form
	loggingIn bool

	// Active view
	activeTab Tab
	cursor    int

	// Collections
	tasks      *store.Store[api.Task]
	scheduled  *store.Store[api.ScheduledTask]
	executions *store.Store[api.ScheduledExecution]
	library    *store.Store[api.LibraryImage]
	secrets    *store.Store[api.Secret]
	users      *store.Store[api.User]

	// Selections
	taskSel   *selection.Set
	schedSel  *selection.Set
	libSel    *selection.Set
	secretSel *selection.Set

	// History tab scope: executions belong to one schedule.
	historySchedID   string
	historySchedName string

	stats dashboardStats

	// Interaction state
	modal      Modal
	confirm    confirmDialog
	detail     *api.Task
	execDetail *api.ScheduledExecution
	activeForm form
	formErr    string
	menuRow    string // row id with its action menu open; "" means none
	menuIdx    int
	searching  bool

	toasts      []toast
	nextToastID int

	// Local audit entries shown on the Logs tab.
	logEntries []auditlog.Entry

	// Polling: one timer per session, retargeted on tab switch. pollGen
	// invalidates ticks scheduled before a logout/login boundary.
	pollGen      int
	pollInterval time.Duration
}

// NewModel assembles the console. audit may be nil (audit logging
// disabled); logger must not be nil.
func NewModel(cfg *config.Config, client *api.Client, guard *session.Guard, audit *auditlog.Store, logger *zap.Logger) Model {
	ps := cfg.Console.PageSize

	m := Model{
		cfg:    cfg,
		client: client,
		guard:  guard,
		audit:  audit,
		logger: logger,

		authed:       guard.IsAuthenticated(),
		login:        newLoginForm(),
		pollInterval: cfg.PollInterval(),

		tasks: store.New(ps,
			func(t api.Task) string { return t.TaskID },
			func(t api.Task, term string) bool { return matchTask(t, term) }),
		scheduled: store.New(ps,
			func(t api.ScheduledTask) string { return t.ID },
			func(t api.ScheduledTask, term string) bool { return matchScheduled(t, term) }),
		executions: store.New(ps,
			func(e api.ScheduledExecution) string { return formatExecID(e.ID) },
			nil),
		library: store.New(ps,
			func(i api.LibraryImage) string { return formatItemID(i.ID) },
			func(i api.LibraryImage, term string) bool { return matchLibrary(i, term) }),
		secrets: store.New(ps,
			func(s api.Secret) string { return formatItemID(s.ID) },
			func(s api.Secret, term string) bool { return matchSecret(s, term) }),
		users: store.New(100,
			func(u api.User) string { return formatItemID(u.ID) },
			nil),

		taskSel:   selection.New(),
		schedSel:  selection.New(),
		libSel:    selection.New(),
		secretSel: selection.New(),

		menuRow: "",
	}
	return m
}

// Init probes the backend and, when a session exists, starts the polling
// timer and loads the first view.
func (m Model) Init() tea.Cmd {
	if !m.authed {
		return m.checkHealth()
	}
	return tea.Batch(m.pollTick(), m.refreshActive(false), m.checkHealth())
}

// tickMsg drives the silent-refresh poll. gen ties the tick to one
// login session so a tick scheduled before logout cannot survive into the
// next session and double the timer.
type tickMsg struct {
	gen int
	at  time.Time
}

func (m Model) pollTick() tea.Cmd {
	gen := m.pollGen
	return tea.Tick(m.pollInterval, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

// toastExpiredMsg removes one toast after its display duration.
type toastExpiredMsg struct{ id int }

// pushToast queues a toast and schedules its expiry.
func (m *Model) pushToast(level auditlog.Level, message string) tea.Cmd {
	m.nextToastID++
	t := toast{id: m.nextToastID, level: level, message: message, created: time.Now()}
	m.toasts = append(m.toasts, t)

	id := t.id
	return tea.Tick(m.cfg.ToastDuration(), func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *Model) expireToast(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// record appends to the local audit log; failures are diagnostic only.
func (m *Model) record(level auditlog.Level, message, details string) {
	if m.audit == nil {
		return
	}
	if err := m.audit.Append(level, message, details); err != nil {
		m.logger.Warn("audit append failed", zap.Error(err))
	}
}

// selectionFor returns the selection set backing a tab, or nil for tabs
// without row selection.
func (m *Model) selectionFor(tab Tab) *selection.Set {
	switch tab {
	case TabTasks:
		return m.taskSel
	case TabScheduled:
		return m.schedSel
	case TabLibrary:
		return m.libSel
	case TabSecrets:
		return m.secretSel
	}
	return nil
}

// visibleCount returns the number of rows rendered on the active tab.
func (m *Model) visibleCount() int {
	switch m.activeTab {
	case TabTasks:
		return len(m.tasks.Visible())
	case TabScheduled:
		return len(m.scheduled.Visible())
	case TabHistory:
		return len(m.executions.Items())
	case TabLibrary:
		return len(m.library.Visible())
	case TabSecrets:
		return len(m.secrets.Visible())
	case TabUsers:
		return len(m.users.Items())
	case TabLogs:
		return len(m.logEntries)
	}
	return 0
}

func (m *Model) clampCursor() {
	n := m.visibleCount()
	if n == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
