package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/imageops/pullconsole/internal/api"
	"github.com/imageops/pullconsole/internal/auditlog"
	"github.com/imageops/pullconsole/internal/schedule"
	"github.com/imageops/pullconsole/internal/store"
)

var (
	headerStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Foreground(lipgloss.Color("255")).
		Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("205")).
		Padding(1, 2)

	tabActiveStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Underline(true)

	tabInactiveStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	errStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	cursorStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("237")).
		Foreground(lipgloss.Color("255"))

	selectedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Foreground(lipgloss.Color("250"))
)

// View renders the console.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if !m.authed {
		return m.renderLogin()
	}

	var b strings.Builder

	user := "-"
	if s := m.guard.Current(); s != nil {
		user = fmt.Sprintf("%s (%s)", s.User.Username, s.User.Role)
	}
	header := fmt.Sprintf(" Pull Console │ %s │ %s ", m.cfg.Server.URL, user)
	b.WriteString(headerStyle.Width(m.width).Render(header))
	b.WriteString("\n")

	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	if m.modal != ModalNone {
		b.WriteString(m.renderModal())
	} else {
		var content string
		switch m.activeTab {
		case TabDashboard:
			content = m.renderDashboard()
		case TabTasks:
			content = m.renderTasks()
		case TabScheduled:
			content = m.renderScheduled()
		case TabHistory:
			content = m.renderHistory()
		case TabLibrary:
			content = m.renderLibrary()
		case TabSecrets:
			content = m.renderSecrets()
		case TabUsers:
			content = m.renderUsers()
		case TabLogs:
			content = m.renderLogs()
		}
		b.WriteString(sectionStyle.Width(m.width - 2).Render(content))
		if m.menuRow != "" {
			b.WriteString("\n" + m.renderMenu())
		}
	}
	b.WriteString("\n")

	for _, t := range m.toasts {
		b.WriteString(toastStyle(t.level).Render(" "+t.message+" ") + "\n")
	}

	b.WriteString(statusBarStyle.Width(m.width).Render(m.helpLine()))
	return b.String()
}

func (m Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Pull Console") + "\n")
	b.WriteString(dimStyle.Render(m.cfg.Server.URL) + "\n\n")
	b.WriteString(renderForm(&m.login, m.formErr))
	if m.loggingIn {
		b.WriteString("\n" + dimStyle.Render("Signing in..."))
	} else {
		b.WriteString("\n" + dimStyle.Render("enter: sign in │ ctrl+c: quit"))
	}
	return modalStyle.Render(b.String())
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, int(tabCount))
	for i := Tab(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d:%s ", int(i)+1, tabNames[i])
		if i == m.activeTab {
			parts = append(parts, tabActiveStyle.Render(label))
		} else {
			parts = append(parts, tabInactiveStyle.Render(label))
		}
	}
	return strings.Join(parts, "│")
}

func (m Model) renderDashboard() string {
	if !m.stats.loaded {
		return dimStyle.Render("Loading summary...")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Cluster") + "\n")
	b.WriteString(fmt.Sprintf("  Nodes ready: %d/%d (%.0f%% image coverage)\n",
		m.stats.nodes.Ready, m.stats.nodes.Total, m.stats.nodes.Coverage))
	b.WriteString("\n" + titleStyle.Render("Tasks") + "\n")
	b.WriteString(fmt.Sprintf("  Running: %s   Pending: %s   Completed today: %d   Success rate: %d%%\n",
		okStyle.Render(fmt.Sprintf("%d", m.stats.runningTasks)),
		warnStyle.Render(fmt.Sprintf("%d", m.stats.pendingTasks)),
		m.stats.completedToday, m.stats.successRate))
	b.WriteString("\n" + titleStyle.Render("Schedules") + "\n")
	b.WriteString(fmt.Sprintf("  Active: %d\n", m.stats.activeSchedules))
	return b.String()
}

func (m Model) renderTasks() string {
	var b strings.Builder
	b.WriteString(m.renderFilterLine(m.tasks.Filter(), "status"))

	if m.tasks.Loading() {
		b.WriteString(dimStyle.Render("Loading tasks...") + "\n")
		return b.String()
	}

	rows := m.tasks.Visible()
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("No tasks") + "\n")
	}
	for i, t := range rows {
		progress := "-"
		if t.Progress != nil {
			progress = fmt.Sprintf("%3.0f%% (%d/%d nodes)",
				t.Progress.Percentage, t.Progress.CompletedNodes, t.Progress.TotalNodes)
		}
		line := fmt.Sprintf("%s %-14s %s %-18s %s",
			checkbox(m.taskSel.Has(t.TaskID)),
			truncate(t.TaskID, 14),
			statusCell(string(t.Status), 10),
			progress,
			truncate(strings.Join(t.Images, ", "), max(10, m.width-56)))
		b.WriteString(m.rowLine(i, line))
	}
	b.WriteString(m.renderPageFooter(m.tasks.Pagination(), m.tasks.CanPrev(), m.tasks.CanNext(), m.taskSel.Count()))
	return b.String()
}

func (m Model) renderScheduled() string {
	var b strings.Builder
	b.WriteString(m.renderFilterLine(m.scheduled.Filter(), "enabled"))

	if m.scheduled.Loading() {
		b.WriteString(dimStyle.Render("Loading schedules...") + "\n")
		return b.String()
	}

	rows := m.scheduled.Visible()
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("No scheduled tasks") + "\n")
	}
	for i, s := range rows {
		state := errStyle.Render("off")
		if s.Enabled {
			state = okStyle.Render("on ")
		}
		next := s.NextExecutionAt
		if next == "" {
			next = "-"
		}
		line := fmt.Sprintf("%s %-24s %s  %-14s next: %s",
			checkbox(m.schedSel.Has(s.ID)),
			truncate(s.Name, 24),
			state,
			s.CronExpr,
			truncate(next, 20))
		b.WriteString(m.rowLine(i, line))
	}
	b.WriteString(m.renderPageFooter(m.scheduled.Pagination(), m.scheduled.CanPrev(), m.scheduled.CanNext(), m.schedSel.Count()))
	return b.String()
}

func (m Model) renderHistory() string {
	var b strings.Builder
	if m.historySchedID == "" {
		return dimStyle.Render("No schedule selected; open one from the Scheduled tab")
	}
	b.WriteString(titleStyle.Render("Executions: "+m.historySchedName) + "\n")

	if m.executions.Loading() {
		b.WriteString(dimStyle.Render("Loading executions...") + "\n")
		return b.String()
	}

	rows := m.executions.Items()
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("No executions yet") + "\n")
	}
	for i, e := range rows {
		line := fmt.Sprintf("%s %-20s %6.1fs  task: %-14s %s",
			statusCell(string(e.Status), 8),
			truncate(e.TriggeredAt, 20),
			e.DurationSeconds,
			truncate(e.TaskID, 14),
			truncate(e.ErrorMessage, max(10, m.width-64)))
		b.WriteString(m.rowLine(i, line))
	}
	b.WriteString(m.renderPageFooter(m.executions.Pagination(), m.executions.CanPrev(), m.executions.CanNext(), 0))
	return b.String()
}

func (m Model) renderLibrary() string {
	var b strings.Builder
	b.WriteString(m.renderFilterLine(m.library.Filter(), ""))

	if m.library.Loading() {
		b.WriteString(dimStyle.Render("Loading library...") + "\n")
		return b.String()
	}

	rows := m.library.Visible()
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("Library is empty") + "\n")
	}
	for i, img := range rows {
		line := fmt.Sprintf("%s %-20s %s",
			checkbox(m.libSel.Has(formatItemID(img.ID))),
			truncate(img.Name, 20),
			truncate(img.Image, max(10, m.width-34)))
		b.WriteString(m.rowLine(i, line))
	}
	b.WriteString(m.renderPageFooter(m.library.Pagination(), m.library.CanPrev(), m.library.CanNext(), m.libSel.Count()))
	return b.String()
}

func (m Model) renderSecrets() string {
	var b strings.Builder
	b.WriteString(m.renderFilterLine(m.secrets.Filter(), ""))

	if m.secrets.Loading() {
		b.WriteString(dimStyle.Render("Loading secrets...") + "\n")
		return b.String()
	}

	rows := m.secrets.Visible()
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("No secrets") + "\n")
	}
	for i, s := range rows {
		line := fmt.Sprintf("%s %-20s %-30s %s",
			checkbox(m.secretSel.Has(formatItemID(s.ID))),
			truncate(s.Name, 20),
			truncate(s.Registry, 30),
			truncate(s.Username, 20))
		b.WriteString(m.rowLine(i, line))
	}
	b.WriteString(m.renderPageFooter(m.secrets.Pagination(), m.secrets.CanPrev(), m.secrets.CanNext(), m.secretSel.Count()))
	return b.String()
}

func (m Model) renderUsers() string {
	var b strings.Builder
	if m.users.Loading() {
		return dimStyle.Render("Loading users...")
	}
	rows := m.users.Items()
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("No users") + "\n")
	}
	for i, u := range rows {
		role := string(u.Role)
		if u.Role == api.RoleAdmin {
			role = warnStyle.Render(role)
		}
		line := fmt.Sprintf("  %-24s %-10s created %s", truncate(u.Username, 24), role, truncate(u.CreatedAt, 20))
		b.WriteString(m.rowLine(i, line))
	}
	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder
	if len(m.logEntries) == 0 {
		return dimStyle.Render("No recorded actions")
	}
	for i, e := range m.logEntries {
		line := fmt.Sprintf("%s %s %s",
			dimStyle.Render(e.Timestamp.Local().Format(time.DateTime)),
			toastStyle(e.Level).Render(fmt.Sprintf("%-7s", e.Level)),
			e.Message)
		if e.Details != "" {
			line += dimStyle.Render(" (" + e.Details + ")")
		}
		b.WriteString(m.rowLine(i, line))
	}
	return b.String()
}

func (m Model) renderFilterLine(f store.Filter, statusLabel string) string {
	var parts []string
	if m.searching {
		parts = append(parts, titleStyle.Render("/"+f.Search+"▌"))
	} else if f.Search != "" {
		parts = append(parts, dimStyle.Render("search: "+f.Search))
	}
	if statusLabel != "" {
		v := f.Status
		if v == "" {
			v = "all"
		}
		parts = append(parts, dimStyle.Render(statusLabel+": "+v))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "  ") + "\n"
}

// renderPageFooter shows the displayed row range; prev/next hints appear
// only when the page actually exists.
func (m Model) renderPageFooter(pg store.Pagination, canPrev, canNext bool, selected int) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%d-%d of %d", pg.Start(), pg.End(), pg.Total))
	if canPrev {
		parts = append(parts, "p:prev")
	}
	if canNext {
		parts = append(parts, "n:next")
	}
	parts = append(parts, fmt.Sprintf("size %d", pg.PageSize))
	if selected > 0 {
		parts = append(parts, selectedStyle.Render(fmt.Sprintf("%d selected", selected)))
	}
	return dimStyle.Render(strings.Join(parts, " │ "))
}

func (m Model) renderModal() string {
	var body string
	switch m.modal {
	case ModalConfirm:
		var b strings.Builder
		b.WriteString(titleStyle.Render(m.confirm.title) + "\n\n")
		b.WriteString(m.confirm.message + "\n\n")
		b.WriteString(dimStyle.Render("y/enter: confirm │ n/esc: cancel"))
		body = b.String()

	case ModalDetail:
		if m.execDetail != nil {
			body = m.renderExecutionDetail()
		} else {
			body = m.renderTaskDetail()
		}

	default:
		var b strings.Builder
		b.WriteString(renderForm(&m.activeForm, m.formErr))
		if m.modal == ModalCreateSchedule {
			b.WriteString(m.renderCronPreview())
		}
		b.WriteString("\n" + dimStyle.Render("enter: submit │ tab: next field │ esc: cancel"))
		body = b.String()
	}
	return modalStyle.Width(min(m.width-4, 90)).Render(body)
}

func (m Model) renderTaskDetail() string {
	t := m.detail
	if t == nil {
		return dimStyle.Render("Loading task...")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Task "+t.TaskID) + "\n\n")
	b.WriteString(fmt.Sprintf("Status:    %s\n", statusCell(string(t.Status), 10)))
	b.WriteString(fmt.Sprintf("Images:    %s\n", strings.Join(t.Images, ", ")))
	b.WriteString(fmt.Sprintf("Batch:     %d   Priority: %d   Retries: %d/%d (%s)\n",
		t.BatchSize, t.Priority, t.RetryCount, t.MaxRetries, t.RetryStrategy))
	if len(t.NodeSelector) > 0 {
		pairs := make([]string, 0, len(t.NodeSelector))
		for k, v := range t.NodeSelector {
			pairs = append(pairs, k+"="+v)
		}
		b.WriteString("Selector:  " + strings.Join(pairs, ",") + "\n")
	}
	if t.Registry != "" {
		b.WriteString("Registry:  " + t.Registry + "\n")
	}
	if t.Progress != nil {
		p := t.Progress
		b.WriteString(fmt.Sprintf("Progress:  %.0f%%  nodes %d/%d (%d failed)  batch %d/%d\n",
			p.Percentage, p.CompletedNodes, p.TotalNodes, p.FailedNodes, p.CurrentBatch, p.TotalBatches))
	}
	b.WriteString(fmt.Sprintf("Created:   %s\n", t.CreatedAt))
	if t.StartedAt != "" {
		b.WriteString(fmt.Sprintf("Started:   %s\n", t.StartedAt))
	}
	if t.FinishedAt != "" {
		b.WriteString(fmt.Sprintf("Finished:  %s\n", t.FinishedAt))
	}
	if t.ErrorMessage != "" {
		b.WriteString(errStyle.Render("Error: "+t.ErrorMessage) + "\n")
	}
	if len(t.FailedNodeDetails) > 0 {
		b.WriteString("\n" + titleStyle.Render("Failed nodes") + "\n")
		for _, fn := range t.FailedNodeDetails {
			b.WriteString(fmt.Sprintf("  %s  %s  %s\n", fn.NodeName, truncate(fn.Image, 30), fn.Reason))
		}
	}
	b.WriteString("\n" + dimStyle.Render("x: cancel task │ esc: close"))
	return b.String()
}

func (m Model) renderExecutionDetail() string {
	e := m.execDetail
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Execution #%d", e.ID)) + "\n\n")
	b.WriteString(fmt.Sprintf("Schedule:  %s\n", m.historySchedName))
	b.WriteString(fmt.Sprintf("Status:    %s\n", statusCell(string(e.Status), 8)))
	b.WriteString(fmt.Sprintf("Triggered: %s\n", e.TriggeredAt))
	b.WriteString(fmt.Sprintf("Started:   %s\n", e.StartedAt))
	if e.FinishedAt != "" {
		b.WriteString(fmt.Sprintf("Finished:  %s\n", e.FinishedAt))
	}
	b.WriteString(fmt.Sprintf("Duration:  %.1fs\n", e.DurationSeconds))
	if e.TaskID != "" {
		b.WriteString(fmt.Sprintf("Task:      %s\n", e.TaskID))
	}
	if e.ErrorMessage != "" {
		b.WriteString(errStyle.Render("Error: "+e.ErrorMessage) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("esc: close"))
	return b.String()
}

// renderCronPreview shows the next firings for the expression currently
// typed into the schedule form, as soon as it parses.
func (m Model) renderCronPreview() string {
	expr := m.activeForm.get(fldCron)
	if expr == "" {
		return ""
	}
	if err := schedule.Validate(expr); err != nil {
		return "\n" + dimStyle.Render("cron: not yet valid")
	}
	next := schedule.Preview(expr, time.Now(), 3)
	parts := make([]string, 0, len(next))
	for _, t := range next {
		parts = append(parts, t.Local().Format("Mon 15:04"))
	}
	return "\n" + dimStyle.Render("next firings: "+strings.Join(parts, ", "))
}

func renderForm(f *form, formErr string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(f.title) + "\n\n")
	for i, fld := range f.fields {
		marker := "  "
		if i == f.focus {
			marker = titleStyle.Render("> ")
		}
		value := fld.value
		if fld.secret {
			value = strings.Repeat("*", len(value))
		}
		if value == "" && fld.placeholder != "" {
			value = dimStyle.Render(fld.placeholder)
		}
		if i == f.focus {
			value += "▌"
		}
		b.WriteString(fmt.Sprintf("%s%-22s %s\n", marker, fld.label+":", value))
	}
	if formErr != "" {
		b.WriteString("\n" + errStyle.Render(formErr) + "\n")
	}
	return b.String()
}

func (m Model) renderMenu() string {
	opts := m.menuOptions()
	var b strings.Builder
	b.WriteString(dimStyle.Render("actions for "+m.menuRow) + "\n")
	for i, opt := range opts {
		if i == m.menuIdx {
			b.WriteString(cursorStyle.Render(" > "+opt.label+" ") + "\n")
		} else {
			b.WriteString("   " + opt.label + "\n")
		}
	}
	return modalStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) helpLine() string {
	if m.modal != ModalNone {
		return " esc: close "
	}
	switch m.activeTab {
	case TabTasks:
		return " c:create enter:detail space:select a:all x:cancel d:delete X/D:batch f:filter /:search r:refresh q:quit "
	case TabScheduled:
		return " c:create enter:history e:on/off t:trigger d:delete f:filter /:search r:refresh q:quit "
	case TabUsers:
		return " c:create P:password d:delete r:refresh q:quit "
	case TabHistory, TabLogs, TabDashboard:
		return " tab:switch r:refresh q:quit "
	}
	return " c:create space:select a:all d:delete /:search r:refresh q:quit "
}

func (m Model) rowLine(i int, line string) string {
	if i == m.cursor {
		return cursorStyle.Width(m.width - 4).Render(line) + "\n"
	}
	return line + "\n"
}

func toastStyle(level auditlog.Level) lipgloss.Style {
	switch level {
	case auditlog.LevelSuccess:
		return okStyle
	case auditlog.LevelWarning:
		return warnStyle
	case auditlog.LevelError:
		return errStyle
	}
	return dimStyle
}

func statusCell(status string, width int) string {
	padded := fmt.Sprintf("%-*s", width, status)
	switch status {
	case "completed", "success":
		return okStyle.Render(padded)
	case "running", "pending", "skipped", "timeout":
		return warnStyle.Render(padded)
	case "failed", "cancelled":
		return errStyle.Render(padded)
	}
	return padded
}

func checkbox(checked bool) string {
	if checked {
		return selectedStyle.Render("[x]")
	}
	return dimStyle.Render("[ ]")
}

// truncate cuts at rune boundaries so multibyte cell content never renders
// a split sequence.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
