package tui

import (
	"strings"

	"github.com/imageops/pullconsole/internal/api"
)

// Row accessors return the item under the cursor on the active tab, nil
// when the view is empty or the cursor is on a different tab's rows.

func (m *Model) currentTask() *api.Task {
	if m.activeTab != TabTasks {
		return nil
	}
	rows := m.tasks.Visible()
	if m.cursor >= len(rows) {
		return nil
	}
	return &rows[m.cursor]
}

func (m *Model) currentSchedule() *api.ScheduledTask {
	if m.activeTab != TabScheduled {
		return nil
	}
	rows := m.scheduled.Visible()
	if m.cursor >= len(rows) {
		return nil
	}
	return &rows[m.cursor]
}

func (m *Model) currentExecution() *api.ScheduledExecution {
	if m.activeTab != TabHistory {
		return nil
	}
	rows := m.executions.Items()
	if m.cursor >= len(rows) {
		return nil
	}
	return &rows[m.cursor]
}

func (m *Model) currentImage() *api.LibraryImage {
	if m.activeTab != TabLibrary {
		return nil
	}
	rows := m.library.Visible()
	if m.cursor >= len(rows) {
		return nil
	}
	return &rows[m.cursor]
}

func (m *Model) currentSecret() *api.Secret {
	if m.activeTab != TabSecrets {
		return nil
	}
	rows := m.secrets.Visible()
	if m.cursor >= len(rows) {
		return nil
	}
	return &rows[m.cursor]
}

func (m *Model) currentUser() *api.User {
	if m.activeTab != TabUsers {
		return nil
	}
	rows := m.users.Items()
	if m.cursor >= len(rows) {
		return nil
	}
	return &rows[m.cursor]
}

// currentRowID returns the identifier of the row under the cursor.
func (m *Model) currentRowID() string {
	switch m.activeTab {
	case TabTasks:
		if t := m.currentTask(); t != nil {
			return t.TaskID
		}
	case TabScheduled:
		if s := m.currentSchedule(); s != nil {
			return s.ID
		}
	case TabLibrary:
		if i := m.currentImage(); i != nil {
			return formatItemID(i.ID)
		}
	case TabSecrets:
		if s := m.currentSecret(); s != nil {
			return formatItemID(s.ID)
		}
	}
	return ""
}

// visibleIDs returns the identifiers select-all operates on for the
// active tab.
func (m *Model) visibleIDs() []string {
	switch m.activeTab {
	case TabTasks:
		return m.tasks.VisibleIDs()
	case TabScheduled:
		return m.scheduled.VisibleIDs()
	case TabLibrary:
		return m.library.VisibleIDs()
	case TabSecrets:
		return m.secrets.VisibleIDs()
	}
	return nil
}

// pager erases the store's element type for the handful of pagination
// operations key handling needs.
type pager struct {
	next        func() bool
	prev        func() bool
	pageSize    func() int
	setPageSize func(int)
}

func (m *Model) activePager() *pager {
	switch m.activeTab {
	case TabTasks:
		return &pager{m.tasks.NextPage, m.tasks.PrevPage,
			func() int { return m.tasks.Pagination().PageSize }, m.tasks.SetPageSize}
	case TabScheduled:
		return &pager{m.scheduled.NextPage, m.scheduled.PrevPage,
			func() int { return m.scheduled.Pagination().PageSize }, m.scheduled.SetPageSize}
	case TabHistory:
		return &pager{m.executions.NextPage, m.executions.PrevPage,
			func() int { return m.executions.Pagination().PageSize }, m.executions.SetPageSize}
	case TabLibrary:
		return &pager{m.library.NextPage, m.library.PrevPage,
			func() int { return m.library.Pagination().PageSize }, m.library.SetPageSize}
	case TabSecrets:
		return &pager{m.secrets.NextPage, m.secrets.PrevPage,
			func() int { return m.secrets.Pagination().PageSize }, m.secrets.SetPageSize}
	}
	return nil
}

// Search predicates, case-insensitive substring over the fields the
// corresponding table displays.

func matchTask(t api.Task, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(t.TaskID), term) {
		return true
	}
	if strings.Contains(strings.ToLower(string(t.Status)), term) {
		return true
	}
	for _, img := range t.Images {
		if strings.Contains(strings.ToLower(img), term) {
			return true
		}
	}
	return false
}

func matchScheduled(t api.ScheduledTask, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(t.Name), term) ||
		strings.Contains(strings.ToLower(t.Description), term) ||
		strings.Contains(strings.ToLower(t.CronExpr), term)
}

func matchLibrary(i api.LibraryImage, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(i.Name), term) ||
		strings.Contains(strings.ToLower(i.Image), term)
}

func matchSecret(s api.Secret, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(s.Name), term) ||
		strings.Contains(strings.ToLower(s.Registry), term) ||
		strings.Contains(strings.ToLower(s.Username), term)
}
