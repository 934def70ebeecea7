package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/imageops/pullconsole/internal/api"
	"github.com/imageops/pullconsole/internal/batch"
	"github.com/imageops/pullconsole/internal/config"
)

// listFetchedMsg carries one completed list response. seq ties it to the
// refresh that issued it; Update applies it through the store, which
// drops anything older than the newest applied response.
type listFetchedMsg[T any] struct {
	seq    uint64
	items  []T
	total  int
	err    error
	silent bool
}

// ConfigReloadedMsg is injected from outside the program when the config
// file changes on disk. The new poll interval takes effect on the next
// scheduled tick.
type ConfigReloadedMsg struct{ Cfg *config.Config }

// healthMsg completes the startup reachability probe.
type healthMsg struct{ err error }

func (m *Model) checkHealth() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return healthMsg{err: client.Health(ctx)}
	}
}

// loginResultMsg completes a login attempt.
type loginResultMsg struct {
	resp *api.LoginResponse
	err  error
}

// actionDoneMsg completes one user-initiated mutation. refresh names the
// tab to re-fetch; closeModal dismisses the open form on success.
type actionDoneMsg struct {
	verb       string
	err        error
	refresh    Tab
	closeModal bool
}

// batchDoneMsg completes a batch mutation with its outcome counts.
type batchDoneMsg struct {
	verb string
	tab  Tab
	res  batch.Result
}

// detailMsg completes a task detail fetch.
type detailMsg struct {
	task *api.Task
	err  error
}

// dashboardMsg completes the dashboard summary fetch.
type dashboardMsg struct {
	stats dashboardStats
	err   error
}

func (m *Model) loginCmd(username, password string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		resp, err := client.Login(context.Background(), username, password)
		return loginResultMsg{resp: resp, err: err}
	}
}

// refreshActive builds the fetch command for the currently active tab.
func (m *Model) refreshActive(silent bool) tea.Cmd {
	switch m.activeTab {
	case TabDashboard:
		return m.fetchDashboard()
	case TabTasks:
		return m.fetchTasks(silent)
	case TabScheduled:
		return m.fetchScheduled(silent)
	case TabHistory:
		return m.fetchExecutions(silent)
	case TabLibrary:
		return m.fetchLibrary(silent)
	case TabSecrets:
		return m.fetchSecrets(silent)
	case TabUsers:
		return m.fetchUsers(silent)
	case TabLogs:
		m.loadLogEntries()
		return nil
	}
	return nil
}

func (m *Model) fetchTasks(silent bool) tea.Cmd {
	seq := m.tasks.Begin(silent)
	params := api.ListTasksParams{
		Limit:  m.tasks.Pagination().PageSize,
		Offset: m.tasks.Offset(),
		Status: api.TaskStatus(m.tasks.Filter().Status),
	}
	client := m.client
	return func() tea.Msg {
		resp, err := client.ListTasks(context.Background(), params)
		if err != nil {
			return listFetchedMsg[api.Task]{seq: seq, err: err, silent: silent}
		}
		return listFetchedMsg[api.Task]{seq: seq, items: resp.Tasks, total: resp.Total, silent: silent}
	}
}

func (m *Model) fetchScheduled(silent bool) tea.Cmd {
	seq := m.scheduled.Begin(silent)
	params := api.ListScheduledTasksParams{
		Limit:  m.scheduled.Pagination().PageSize,
		Offset: m.scheduled.Offset(),
	}
	switch m.scheduled.Filter().Status {
	case "enabled":
		v := true
		params.Enabled = &v
	case "disabled":
		v := false
		params.Enabled = &v
	}
	client := m.client
	return func() tea.Msg {
		resp, err := client.ListScheduledTasks(context.Background(), params)
		if err != nil {
			return listFetchedMsg[api.ScheduledTask]{seq: seq, err: err, silent: silent}
		}
		return listFetchedMsg[api.ScheduledTask]{seq: seq, items: resp.Tasks, total: resp.Total, silent: silent}
	}
}

func (m *Model) fetchExecutions(silent bool) tea.Cmd {
	if m.historySchedID == "" {
		return nil
	}
	seq := m.executions.Begin(silent)
	limit := m.executions.Pagination().PageSize
	offset := m.executions.Offset()
	schedID := m.historySchedID
	client := m.client
	return func() tea.Msg {
		resp, err := client.ListExecutions(context.Background(), schedID, limit, offset)
		if err != nil {
			return listFetchedMsg[api.ScheduledExecution]{seq: seq, err: err, silent: silent}
		}
		return listFetchedMsg[api.ScheduledExecution]{seq: seq, items: resp.Executions, total: resp.Total, silent: silent}
	}
}

func (m *Model) fetchLibrary(silent bool) tea.Cmd {
	seq := m.library.Begin(silent)
	limit := m.library.Pagination().PageSize
	offset := m.library.Offset()
	client := m.client
	return func() tea.Msg {
		resp, err := client.ListLibrary(context.Background(), limit, offset)
		if err != nil {
			return listFetchedMsg[api.LibraryImage]{seq: seq, err: err, silent: silent}
		}
		return listFetchedMsg[api.LibraryImage]{seq: seq, items: resp.Images, total: resp.Total, silent: silent}
	}
}

func (m *Model) fetchSecrets(silent bool) tea.Cmd {
	seq := m.secrets.Begin(silent)
	// Secrets paginate with page/pageSize on the wire, not limit/offset.
	page := m.secrets.Pagination().Page
	pageSize := m.secrets.Pagination().PageSize
	client := m.client
	return func() tea.Msg {
		resp, err := client.ListSecrets(context.Background(), page, pageSize)
		if err != nil {
			return listFetchedMsg[api.Secret]{seq: seq, err: err, silent: silent}
		}
		return listFetchedMsg[api.Secret]{seq: seq, items: resp.Secrets, total: resp.Total, silent: silent}
	}
}

func (m *Model) fetchUsers(silent bool) tea.Cmd {
	seq := m.users.Begin(silent)
	client := m.client
	return func() tea.Msg {
		users, err := client.ListUsers(context.Background())
		if err != nil {
			return listFetchedMsg[api.User]{seq: seq, err: err, silent: silent}
		}
		return listFetchedMsg[api.User]{seq: seq, items: users, total: len(users), silent: silent}
	}
}

// fetchDashboard gathers the summary with concurrent reads. Only the
// batch executor serializes requests; independent GETs are free to fan
// out.
func (m *Model) fetchDashboard() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		var (
			statsResp *api.StatsResponse
			tasksResp *api.ListTasksResponse
			schedResp *api.ListScheduledTasksResponse
		)

		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			statsResp, err = client.Stats(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			tasksResp, err = client.ListTasks(ctx, api.ListTasksParams{Limit: 500})
			return err
		})
		g.Go(func() error {
			var err error
			schedResp, err = client.ListScheduledTasks(ctx, api.ListScheduledTasksParams{Limit: 500})
			return err
		})
		if err := g.Wait(); err != nil {
			return dashboardMsg{err: err}
		}

		return dashboardMsg{stats: summarize(statsResp, tasksResp.Tasks, schedResp.Tasks)}
	}
}

func summarize(stats *api.StatsResponse, tasks []api.Task, schedules []api.ScheduledTask) dashboardStats {
	ds := dashboardStats{nodes: stats.Nodes, loaded: true}

	today := time.Now().Format("2006-01-02")
	var todayTotal, todayCompleted int
	for _, t := range tasks {
		switch t.Status {
		case api.TaskRunning:
			ds.runningTasks++
		case api.TaskPending:
			ds.pendingTasks++
		}
		if len(t.CreatedAt) >= len(today) && t.CreatedAt[:len(today)] == today {
			todayTotal++
			if t.Status == api.TaskCompleted {
				todayCompleted++
			}
		}
	}
	ds.completedToday = todayCompleted
	if todayTotal > 0 {
		ds.successRate = todayCompleted * 100 / todayTotal
	} else {
		ds.successRate = 100
	}

	for _, s := range schedules {
		if s.Enabled {
			ds.activeSchedules++
		}
	}
	return ds
}

func (m *Model) fetchDetail(taskID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		task, err := client.GetTask(context.Background(), taskID)
		return detailMsg{task: task, err: err}
	}
}

// actionCmd wraps one mutation into a command producing actionDoneMsg.
func (m *Model) actionCmd(verb string, refresh Tab, closeModal bool, do func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := do(context.Background())
		return actionDoneMsg{verb: verb, err: err, refresh: refresh, closeModal: closeModal}
	}
}

// batchCmd runs the sequential batch executor over the given ids.
func (m *Model) batchCmd(verb string, tab Tab, ids []string, action batch.Action) tea.Cmd {
	return func() tea.Msg {
		res := batch.Run(context.Background(), ids, action)
		return batchDoneMsg{verb: verb, tab: tab, res: res}
	}
}

// loadLogEntries reads the local audit log; it is synchronous because the
// data is on disk, not on the network.
func (m *Model) loadLogEntries() {
	if m.audit == nil {
		m.logEntries = nil
		return
	}
	entries, err := m.audit.Recent(200)
	if err != nil {
		m.logger.Warn("reading audit log", zap.Error(err))
		return
	}
	m.logEntries = entries
}

func formatItemID(id int64) string { return fmt.Sprintf("%d", id) }

func formatExecID(id int64) string { return fmt.Sprintf("%d", id) }
