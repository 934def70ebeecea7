package tui

import (
	"context"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/imageops/pullconsole/internal/api"
	"github.com/imageops/pullconsole/internal/auditlog"
	"github.com/imageops/pullconsole/internal/selection"
	"github.com/imageops/pullconsole/internal/session"
	"github.com/imageops/pullconsole/internal/store"
)

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m.handleTick(msg)

	case toastExpiredMsg:
		m.expireToast(msg.id)
		return m, nil

	case ConfigReloadedMsg:
		m.cfg = msg.Cfg
		m.pollInterval = msg.Cfg.PollInterval()
		m.logger.Info("config reloaded")
		return m, m.pushToast(auditlog.LevelInfo, "Configuration reloaded")

	case healthMsg:
		if msg.err != nil {
			m.logger.Warn("backend unreachable", zap.Error(msg.err))
			return m, m.pushToast(auditlog.LevelWarning, "Backend unreachable: "+api.UserMessage(msg.err))
		}
		return m, nil

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case listFetchedMsg[api.Task]:
		cmd := applyList(&m, m.tasks, m.taskSel, msg)
		return m, cmd

	case listFetchedMsg[api.ScheduledTask]:
		cmd := applyList(&m, m.scheduled, m.schedSel, msg)
		// The History tab needs a schedule to scope executions to; default
		// to the first one known.
		if m.historySchedID == "" && len(m.scheduled.Items()) > 0 {
			first := m.scheduled.Items()[0]
			m.historySchedID = first.ID
			m.historySchedName = first.Name
		}
		return m, cmd

	case listFetchedMsg[api.ScheduledExecution]:
		cmd := applyList(&m, m.executions, nil, msg)
		return m, cmd

	case listFetchedMsg[api.LibraryImage]:
		cmd := applyList(&m, m.library, m.libSel, msg)
		return m, cmd

	case listFetchedMsg[api.Secret]:
		cmd := applyList(&m, m.secrets, m.secretSel, msg)
		return m, cmd

	case listFetchedMsg[api.User]:
		cmd := applyList(&m, m.users, nil, msg)
		return m, cmd

	case dashboardMsg:
		if msg.err != nil {
			if api.IsAuth(msg.err) {
				return m, m.forceLogout()
			}
			m.logger.Warn("dashboard fetch failed", zap.Error(msg.err))
			return m, nil
		}
		m.stats = msg.stats
		return m, nil

	case detailMsg:
		if msg.err != nil {
			if api.IsAuth(msg.err) {
				return m, m.forceLogout()
			}
			return m, m.pushToast(auditlog.LevelError, api.UserMessage(msg.err))
		}
		m.detail = msg.task
		m.modal = ModalDetail
		return m, nil

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case batchDoneMsg:
		return m.handleBatchDone(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// applyList installs one completed list response and reconciles the
// attached selection. Stale responses are dropped by the store's sequence
// check; silent failures are logged, never surfaced.
func applyList[T any](m *Model, st *store.Store[T], sel *selection.Set, msg listFetchedMsg[T]) tea.Cmd {
	if msg.err != nil {
		if api.IsAuth(msg.err) {
			return m.forceLogout()
		}
		st.Fail(msg.seq)
		if msg.silent {
			m.logger.Warn("silent refresh failed", zap.Error(msg.err))
			return nil
		}
		return m.pushToast(auditlog.LevelError, api.UserMessage(msg.err))
	}
	if !st.Apply(msg.seq, msg.items, msg.total) {
		m.logger.Debug("dropped stale list response")
		return nil
	}
	if sel != nil {
		sel.Reconcile(st.IDs())
	}
	m.clampCursor()
	return nil
}

func (m Model) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.pollGen || !m.authed {
		// Tick from a previous session; let it die so only one timer runs.
		return m, nil
	}
	cmds := []tea.Cmd{m.pollTick()}
	if m.modal == ModalNone {
		// A blocking modal suspends silent refresh so the data the user is
		// reading or editing is not replaced mid-interaction.
		if cmd := m.refreshActive(true); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.loggingIn = false
	if msg.err != nil {
		m.formErr = api.UserMessage(msg.err)
		return m, nil
	}

	if err := m.guard.Establish(session.Session{Token: msg.resp.Token, User: msg.resp.User}); err != nil {
		m.logger.Warn("persisting session failed", zap.Error(err))
	}
	m.authed = true
	m.formErr = ""
	m.login = newLoginForm()
	m.pollGen++
	m.record(auditlog.LevelInfo, "signed in", msg.resp.User.Username)

	cmds := []tea.Cmd{
		m.pollTick(),
		m.refreshActive(false),
		m.pushToast(auditlog.LevelSuccess, "Signed in as "+msg.resp.User.Username),
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if api.IsAuth(msg.err) {
			return m, m.forceLogout()
		}
		m.record(auditlog.LevelError, msg.verb+" failed", api.UserMessage(msg.err))
		return m, m.pushToast(auditlog.LevelError, api.UserMessage(msg.err))
	}

	m.record(auditlog.LevelSuccess, msg.verb, "")
	if msg.closeModal {
		m.modal = ModalNone
		m.activeForm = form{}
		m.formErr = ""
	}

	cmds := []tea.Cmd{m.pushToast(auditlog.LevelSuccess, msg.verb)}
	if msg.refresh == m.activeTab {
		cmds = append(cmds, m.refreshActive(false))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleBatchDone(msg batchDoneMsg) (tea.Model, tea.Cmd) {
	// One summary notification for the whole batch, never one per item.
	summary := fmt.Sprintf("%s: %d succeeded, %d failed", msg.verb, msg.res.Succeeded, msg.res.Failed)
	level := auditlog.LevelSuccess
	if msg.res.Failed > 0 {
		level = auditlog.LevelWarning
		for id, err := range msg.res.Errors {
			m.logger.Warn("batch item failed", zap.String("id", id), zap.Error(err))
		}
	}
	m.record(level, summary, "")

	// Selection cleared and view refreshed regardless of failures.
	if sel := m.selectionFor(msg.tab); sel != nil {
		sel.Clear()
	}

	cmds := []tea.Cmd{m.pushToast(level, summary)}
	if msg.tab == m.activeTab {
		cmds = append(cmds, m.refreshActive(false))
	}
	return m, tea.Batch(cmds...)
}

// forceLogout clears the session after a 401 and returns to the login
// screen. The poll generation bump kills the session's timer.
func (m *Model) forceLogout() tea.Cmd {
	if err := m.guard.Clear(); err != nil {
		m.logger.Warn("clearing session failed", zap.Error(err))
	}
	m.authed = false
	m.pollGen++
	m.resetViews()
	m.login = newLoginForm()
	m.formErr = ""
	m.record(auditlog.LevelWarning, "session expired", "")
	return m.pushToast(auditlog.LevelWarning, "Session expired, sign in again")
}

func (m *Model) resetViews() {
	m.tasks.Reset()
	m.scheduled.Reset()
	m.executions.Reset()
	m.library.Reset()
	m.secrets.Reset()
	m.users.Reset()
	m.taskSel.Clear()
	m.schedSel.Clear()
	m.libSel.Clear()
	m.secretSel.Clear()
	m.modal = ModalNone
	m.confirm = confirmDialog{}
	m.detail = nil
	m.execDetail = nil
	m.stats = dashboardStats{}
	m.menuRow = ""
	m.searching = false
	m.cursor = 0
	m.historySchedID = ""
	m.historySchedName = ""
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.authed {
		return m.handleLoginKey(msg)
	}
	if m.modal != ModalNone {
		return m.handleModalKey(msg)
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.menuRow != "" {
		return m.handleMenuKey(msg)
	}
	return m.handleTableKey(msg)
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		if m.loggingIn {
			return m, nil
		}
		username := m.login.get(fldUsername)
		password := m.login.get(fldPassword)
		if username == "" || password == "" {
			m.formErr = "username and password are required"
			return m, nil
		}
		m.loggingIn = true
		m.formErr = ""
		return m, m.loginCmd(username, password)
	}
	m.login.handleKey(msg)
	return m, nil
}

func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case ModalConfirm:
		switch msg.String() {
		case "y", "enter":
			action := m.confirm.action
			// Detach before running: the next open rebinds from scratch.
			m.confirm = confirmDialog{}
			m.modal = ModalNone
			return m, action
		case "n", "esc", "q":
			m.confirm = confirmDialog{}
			m.modal = ModalNone
			return m, nil
		}
		return m, nil

	case ModalDetail:
		switch msg.String() {
		case "esc", "q":
			m.modal = ModalNone
			m.detail = nil
			m.execDetail = nil
			return m, nil
		case "x":
			if m.detail != nil && !m.detail.Status.Terminal() {
				id := m.detail.TaskID
				m.detail = nil
				m.openConfirm("Cancel task", "Cancel task "+id+"?",
					m.actionCmd("Task cancelled", TabTasks, false, func(ctx context.Context) error {
						return m.client.CancelTask(ctx, id)
					}))
			}
			return m, nil
		}
		return m, nil
	}

	// Form modals.
	switch msg.String() {
	case "esc":
		m.modal = ModalNone
		m.activeForm = form{}
		m.formErr = ""
		return m, nil
	case "enter":
		return m.submitForm()
	}
	m.activeForm.handleKey(msg)
	return m, nil
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	switch m.modal {
	case ModalCreateTask:
		req, err := parseTaskForm(&m.activeForm)
		if err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		return m, m.actionCmd("Task created", TabTasks, true, func(ctx context.Context) error {
			_, err := m.client.CreateTask(ctx, *req)
			return err
		})

	case ModalCreateSchedule:
		req, err := parseScheduleForm(&m.activeForm)
		if err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		return m, m.actionCmd("Schedule created", TabScheduled, true, func(ctx context.Context) error {
			_, err := m.client.CreateScheduledTask(ctx, *req)
			return err
		})

	case ModalAddImage:
		name := m.activeForm.get(fldName)
		images := splitImages(m.activeForm.get(fldImage))
		if len(images) == 0 {
			m.formErr = "at least one image reference is required"
			return m, nil
		}
		if len(images) == 1 {
			image := images[0]
			return m, m.actionCmd("Image saved", TabLibrary, true, func(ctx context.Context) error {
				return m.client.SaveImage(ctx, api.SaveImageRequest{Name: name, Image: image})
			})
		}
		// Bulk add: one save per reference through the sequential executor,
		// summarized like any other batch.
		m.modal = ModalNone
		m.activeForm = form{}
		m.formErr = ""
		return m, m.batchCmd("Library add", TabLibrary, images, func(ctx context.Context, image string) error {
			return m.client.SaveImage(ctx, api.SaveImageRequest{Image: image})
		})

	case ModalCreateSecret:
		req, err := parseSecretForm(&m.activeForm)
		if err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		return m, m.actionCmd("Secret created", TabSecrets, true, func(ctx context.Context) error {
			_, err := m.client.CreateSecret(ctx, *req)
			return err
		})

	case ModalCreateUser:
		req, err := parseUserForm(&m.activeForm)
		if err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		return m, m.actionCmd("User created", TabUsers, true, func(ctx context.Context) error {
			_, err := m.client.CreateUser(ctx, *req)
			return err
		})

	case ModalPassword:
		pass, err := parsePasswordForm(&m.activeForm)
		if err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		user := m.currentUser()
		if user == nil {
			m.modal = ModalNone
			return m, nil
		}
		id := user.ID
		return m, m.actionCmd("Password updated", TabUsers, true, func(ctx context.Context) error {
			return m.client.UpdateUser(ctx, id, api.UpdateUserRequest{NewPassword: pass})
		})
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.activeSearchStore()
	if st == nil {
		m.searching = false
		return m, nil
	}
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		st.set("")
		m.clampCursor()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		return m, nil
	case tea.KeyBackspace:
		cur := st.get()
		if len(cur) > 0 {
			st.set(trimLastRune(cur))
		}
		m.clampCursor()
		return m, nil
	case tea.KeySpace:
		st.set(st.get() + " ")
		return m, nil
	case tea.KeyRunes:
		st.set(st.get() + string(msg.Runes))
		m.clampCursor()
		return m, nil
	}
	return m, nil
}

// searchAccess adapts one store's search term for the input routine.
type searchAccess struct {
	get func() string
	set func(string)
}

func (m *Model) activeSearchStore() *searchAccess {
	switch m.activeTab {
	case TabTasks:
		return &searchAccess{
			get: func() string { return m.tasks.Filter().Search },
			set: m.tasks.SetSearch,
		}
	case TabScheduled:
		return &searchAccess{
			get: func() string { return m.scheduled.Filter().Search },
			set: m.scheduled.SetSearch,
		}
	case TabLibrary:
		return &searchAccess{
			get: func() string { return m.library.Filter().Search },
			set: m.library.SetSearch,
		}
	case TabSecrets:
		return &searchAccess{
			get: func() string { return m.secrets.Filter().Search },
			set: m.secrets.SetSearch,
		}
	}
	return nil
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	opts := m.menuOptions()
	switch msg.String() {
	case "j", "down":
		if m.menuIdx < len(opts)-1 {
			m.menuIdx++
		}
		return m, nil
	case "k", "up":
		if m.menuIdx > 0 {
			m.menuIdx--
		}
		return m, nil
	case "enter":
		m.menuRow = ""
		if m.menuIdx < len(opts) {
			cmd := opts[m.menuIdx].run(&m)
			return m, cmd
		}
		return m, nil
	default:
		// Any other interaction closes the menu, matching
		// click-anywhere-closes semantics.
		m.menuRow = ""
		m.menuIdx = 0
		return m, nil
	}
}

func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "ctrl+l":
		cmd := m.logout()
		return m, cmd

	case "tab":
		return m.switchTab(Tab((int(m.activeTab) + 1) % int(tabCount)))
	case "shift+tab":
		return m.switchTab(Tab((int(m.activeTab) + int(tabCount) - 1) % int(tabCount)))
	case "1", "2", "3", "4", "5", "6", "7", "8":
		n, _ := strconv.Atoi(msg.String())
		return m.switchTab(Tab(n - 1))

	case "j", "down":
		if m.cursor < m.visibleCount()-1 {
			m.cursor++
		}
		return m, nil
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "r":
		return m, m.refreshActive(false)

	case "n", "right":
		if st := m.activePager(); st != nil && st.next() {
			m.cursor = 0
			return m, m.refreshActive(false)
		}
		return m, nil
	case "p", "left":
		if st := m.activePager(); st != nil && st.prev() {
			m.cursor = 0
			return m, m.refreshActive(false)
		}
		return m, nil

	case "+":
		return m.cyclePageSize()

	case "/":
		if m.activeSearchStore() != nil {
			m.searching = true
		}
		return m, nil

	case "f":
		return m.cycleStatusFilter()

	case " ":
		if sel := m.selectionFor(m.activeTab); sel != nil {
			if id := m.currentRowID(); id != "" {
				sel.Toggle(id)
			}
		}
		return m, nil

	case "a":
		if sel := m.selectionFor(m.activeTab); sel != nil {
			sel.SelectAll(m.visibleIDs())
		}
		return m, nil

	case "c":
		return m.openCreateModal()

	case "enter":
		return m.openRow()

	case "m":
		if id := m.currentRowID(); id != "" && len(m.menuOptionsFor(m.activeTab)) > 0 {
			// Opening one menu closes any other: a single open-row field
			// makes them mutually exclusive by construction.
			m.menuRow = id
			m.menuIdx = 0
		}
		return m, nil

	case "x":
		return m.cancelCurrent()

	case "d":
		return m.deleteCurrent()

	case "X":
		return m.batchCancel()

	case "D":
		return m.batchDelete()

	case "e":
		return m.toggleScheduleEnabled()

	case "t":
		return m.triggerCurrent()

	case "P":
		if m.activeTab == TabUsers {
			if u := m.currentUser(); u != nil {
				m.activeForm = newPasswordForm(u.Username)
				m.formErr = ""
				m.modal = ModalPassword
			}
		}
		return m, nil

	case "esc":
		if sel := m.selectionFor(m.activeTab); sel != nil {
			sel.Clear()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) switchTab(tab Tab) (tea.Model, tea.Cmd) {
	if tab < 0 || tab >= tabCount {
		return m, nil
	}
	m.activeTab = tab
	m.cursor = 0
	m.menuRow = ""
	m.searching = false
	// The polling timer retargets implicitly: it always refreshes the
	// active view. Switching just triggers an immediate fetch.
	return m, m.refreshActive(false)
}

func (m *Model) logout() tea.Cmd {
	if err := m.guard.Clear(); err != nil {
		m.logger.Warn("clearing session failed", zap.Error(err))
	}
	m.record(auditlog.LevelInfo, "signed out", "")
	m.authed = false
	m.pollGen++
	m.resetViews()
	m.login = newLoginForm()
	m.formErr = ""
	return nil
}

// openConfirm rebinds the confirm dialog: the previous action, if any, is
// replaced before the new one is attached.
func (m *Model) openConfirm(title, message string, action tea.Cmd) {
	m.confirm = confirmDialog{title: title, message: message, action: action}
	m.modal = ModalConfirm
}

func (m Model) openCreateModal() (tea.Model, tea.Cmd) {
	switch m.activeTab {
	case TabTasks:
		m.activeForm = newTaskForm()
		m.modal = ModalCreateTask
	case TabScheduled:
		m.activeForm = newScheduleForm()
		m.modal = ModalCreateSchedule
	case TabLibrary:
		m.activeForm = newImageForm()
		m.modal = ModalAddImage
	case TabSecrets:
		m.activeForm = newSecretForm()
		m.modal = ModalCreateSecret
	case TabUsers:
		if !m.guard.IsAdmin() {
			return m, m.pushToast(auditlog.LevelWarning, "Admin role required")
		}
		m.activeForm = newUserForm()
		m.modal = ModalCreateUser
	default:
		return m, nil
	}
	m.formErr = ""
	return m, nil
}

func (m Model) openRow() (tea.Model, tea.Cmd) {
	switch m.activeTab {
	case TabTasks:
		if t := m.currentTask(); t != nil {
			return m, m.fetchDetail(t.TaskID)
		}
	case TabScheduled:
		if s := m.currentSchedule(); s != nil {
			m.historySchedID = s.ID
			m.historySchedName = s.Name
			return m.switchTab(TabHistory)
		}
	case TabHistory:
		if e := m.currentExecution(); e != nil {
			m.execDetail = e
			m.modal = ModalDetail
		}
	}
	return m, nil
}

func (m Model) cancelCurrent() (tea.Model, tea.Cmd) {
	if m.activeTab != TabTasks {
		return m, nil
	}
	t := m.currentTask()
	if t == nil {
		return m, nil
	}
	if t.Status.Terminal() {
		return m, m.pushToast(auditlog.LevelWarning, "Task is already finished")
	}
	id := t.TaskID
	m.openConfirm("Cancel task", "Cancel task "+id+"?",
		m.actionCmd("Task cancelled", TabTasks, false, func(ctx context.Context) error {
			return m.client.CancelTask(ctx, id)
		}))
	return m, nil
}

func (m Model) deleteCurrent() (tea.Model, tea.Cmd) {
	switch m.activeTab {
	case TabTasks:
		if t := m.currentTask(); t != nil {
			id := t.TaskID
			m.openConfirm("Delete task", "Permanently delete task "+id+"?",
				m.actionCmd("Task deleted", TabTasks, false, func(ctx context.Context) error {
					return m.client.DeleteTask(ctx, id)
				}))
		}
	case TabScheduled:
		if s := m.currentSchedule(); s != nil {
			id, name := s.ID, s.Name
			m.openConfirm("Delete schedule", "Delete schedule "+name+"?",
				m.actionCmd("Schedule deleted", TabScheduled, false, func(ctx context.Context) error {
					return m.client.DeleteScheduledTask(ctx, id)
				}))
		}
	case TabLibrary:
		if img := m.currentImage(); img != nil {
			id := img.ID
			m.openConfirm("Delete image", "Delete library image "+img.Image+"?",
				m.actionCmd("Image deleted", TabLibrary, false, func(ctx context.Context) error {
					return m.client.DeleteImage(ctx, id)
				}))
		}
	case TabSecrets:
		if s := m.currentSecret(); s != nil {
			id := s.ID
			m.openConfirm("Delete secret", "Delete secret "+s.Name+"?",
				m.actionCmd("Secret deleted", TabSecrets, false, func(ctx context.Context) error {
					return m.client.DeleteSecret(ctx, id)
				}))
		}
	case TabUsers:
		if !m.guard.IsAdmin() {
			return m, m.pushToast(auditlog.LevelWarning, "Admin role required")
		}
		if u := m.currentUser(); u != nil {
			id, name := u.ID, u.Username
			m.openConfirm("Delete user", "Delete user "+name+"?",
				m.actionCmd("User deleted", TabUsers, false, func(ctx context.Context) error {
					return m.client.DeleteUser(ctx, id)
				}))
		}
	}
	return m, nil
}

func (m Model) batchDelete() (tea.Model, tea.Cmd) {
	sel := m.selectionFor(m.activeTab)
	if sel == nil || sel.Count() == 0 {
		return m, nil
	}
	ids := sel.IDs()
	tab := m.activeTab

	var action func(ctx context.Context, id string) error
	switch tab {
	case TabTasks:
		action = func(ctx context.Context, id string) error { return m.client.DeleteTask(ctx, id) }
	case TabScheduled:
		action = func(ctx context.Context, id string) error { return m.client.DeleteScheduledTask(ctx, id) }
	case TabLibrary:
		action = func(ctx context.Context, id string) error {
			n, err := strconv.ParseInt(id, 10, 64)
			if err != nil {
				return err
			}
			return m.client.DeleteImage(ctx, n)
		}
	case TabSecrets:
		action = func(ctx context.Context, id string) error {
			n, err := strconv.ParseInt(id, 10, 64)
			if err != nil {
				return err
			}
			return m.client.DeleteSecret(ctx, n)
		}
	default:
		return m, nil
	}

	msg := fmt.Sprintf("Delete %d selected items?", len(ids))
	m.openConfirm("Batch delete", msg, m.batchCmd("Batch delete", tab, ids, action))
	return m, nil
}

func (m Model) batchCancel() (tea.Model, tea.Cmd) {
	if m.activeTab != TabTasks || m.taskSel.Count() == 0 {
		return m, nil
	}
	ids := m.taskSel.IDs()
	msg := fmt.Sprintf("Cancel %d selected tasks?", len(ids))
	m.openConfirm("Batch cancel", msg,
		m.batchCmd("Batch cancel", TabTasks, ids, func(ctx context.Context, id string) error {
			return m.client.CancelTask(ctx, id)
		}))
	return m, nil
}

func (m Model) toggleScheduleEnabled() (tea.Model, tea.Cmd) {
	if m.activeTab != TabScheduled {
		return m, nil
	}
	s := m.currentSchedule()
	if s == nil {
		return m, nil
	}
	id := s.ID
	if s.Enabled {
		return m, m.actionCmd("Schedule disabled", TabScheduled, false, func(ctx context.Context) error {
			return m.client.DisableScheduledTask(ctx, id)
		})
	}
	return m, m.actionCmd("Schedule enabled", TabScheduled, false, func(ctx context.Context) error {
		return m.client.EnableScheduledTask(ctx, id)
	})
}

func (m Model) triggerCurrent() (tea.Model, tea.Cmd) {
	if m.activeTab != TabScheduled {
		return m, nil
	}
	s := m.currentSchedule()
	if s == nil {
		return m, nil
	}
	id, name := s.ID, s.Name
	m.openConfirm("Trigger now", "Fire schedule "+name+" immediately?",
		m.actionCmd("Schedule triggered", TabScheduled, false, func(ctx context.Context) error {
			return m.client.TriggerScheduledTask(ctx, id)
		}))
	return m, nil
}

func (m Model) cyclePageSize() (tea.Model, tea.Cmd) {
	st := m.activePager()
	if st == nil {
		return m, nil
	}
	next := map[int]int{10: 25, 25: 50, 50: 10}
	size := next[st.pageSize()]
	if size == 0 {
		size = 10
	}
	st.setPageSize(size)
	m.cursor = 0
	return m, m.refreshActive(false)
}

func (m Model) cycleStatusFilter() (tea.Model, tea.Cmd) {
	switch m.activeTab {
	case TabTasks:
		order := []string{"", "pending", "running", "completed", "failed", "cancelled"}
		m.tasks.SetStatus(nextIn(order, m.tasks.Filter().Status))
	case TabScheduled:
		order := []string{"", "enabled", "disabled"}
		m.scheduled.SetStatus(nextIn(order, m.scheduled.Filter().Status))
	default:
		return m, nil
	}
	m.cursor = 0
	return m, m.refreshActive(false)
}

func nextIn(order []string, cur string) string {
	for i, v := range order {
		if v == cur {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}
