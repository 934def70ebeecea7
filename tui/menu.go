package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imageops/pullconsole/internal/api"
)

// menuOption is one entry in a row's action menu. run mutates the model
// (opening a confirm dialog or a form) and may return a command.
type menuOption struct {
	label string
	run   func(m *Model) tea.Cmd
}

func (m *Model) menuOptions() []menuOption { return m.menuOptionsFor(m.activeTab) }

// menuOptionsFor lists the actions available from the row menu on a tab.
// They mirror the single-key shortcuts; the menu exists for discoverability.
func (m *Model) menuOptionsFor(tab Tab) []menuOption {
	switch tab {
	case TabTasks:
		return []menuOption{
			{label: "Detail", run: func(mm *Model) tea.Cmd {
				if t := mm.currentTask(); t != nil {
					return mm.fetchDetail(t.TaskID)
				}
				return nil
			}},
			{label: "Cancel", run: func(mm *Model) tea.Cmd {
				t := mm.currentTask()
				if t == nil || t.Status.Terminal() {
					return nil
				}
				id := t.TaskID
				mm.openConfirm("Cancel task", "Cancel task "+id+"?",
					mm.actionCmd("Task cancelled", TabTasks, false, func(ctx context.Context) error {
						return mm.client.CancelTask(ctx, id)
					}))
				return nil
			}},
			{label: "Delete", run: func(mm *Model) tea.Cmd {
				t := mm.currentTask()
				if t == nil {
					return nil
				}
				id := t.TaskID
				mm.openConfirm("Delete task", "Permanently delete task "+id+"?",
					mm.actionCmd("Task deleted", TabTasks, false, func(ctx context.Context) error {
						return mm.client.DeleteTask(ctx, id)
					}))
				return nil
			}},
		}

	case TabScheduled:
		return []menuOption{
			{label: "History", run: func(mm *Model) tea.Cmd {
				if s := mm.currentSchedule(); s != nil {
					mm.historySchedID = s.ID
					mm.historySchedName = s.Name
					mm.activeTab = TabHistory
					mm.cursor = 0
					return mm.refreshActive(false)
				}
				return nil
			}},
			{label: "Enable/disable", run: func(mm *Model) tea.Cmd {
				s := mm.currentSchedule()
				if s == nil {
					return nil
				}
				id := s.ID
				if s.Enabled {
					return mm.actionCmd("Schedule disabled", TabScheduled, false, func(ctx context.Context) error {
						return mm.client.DisableScheduledTask(ctx, id)
					})
				}
				return mm.actionCmd("Schedule enabled", TabScheduled, false, func(ctx context.Context) error {
					return mm.client.EnableScheduledTask(ctx, id)
				})
			}},
			{label: "Trigger now", run: func(mm *Model) tea.Cmd {
				s := mm.currentSchedule()
				if s == nil {
					return nil
				}
				id, name := s.ID, s.Name
				mm.openConfirm("Trigger now", "Fire schedule "+name+" immediately?",
					mm.actionCmd("Schedule triggered", TabScheduled, false, func(ctx context.Context) error {
						return mm.client.TriggerScheduledTask(ctx, id)
					}))
				return nil
			}},
			{label: "Delete", run: func(mm *Model) tea.Cmd {
				s := mm.currentSchedule()
				if s == nil {
					return nil
				}
				id, name := s.ID, s.Name
				mm.openConfirm("Delete schedule", "Delete schedule "+name+"?",
					mm.actionCmd("Schedule deleted", TabScheduled, false, func(ctx context.Context) error {
						return mm.client.DeleteScheduledTask(ctx, id)
					}))
				return nil
			}},
		}

	case TabLibrary:
		return []menuOption{
			{label: "New task from image", run: func(mm *Model) tea.Cmd {
				img := mm.currentImage()
				if img == nil {
					return nil
				}
				f := newTaskForm()
				for i := range f.fields {
					if f.fields[i].label == fldImages {
						f.fields[i].value = img.Image
					}
				}
				mm.activeForm = f
				mm.formErr = ""
				mm.modal = ModalCreateTask
				return nil
			}},
			{label: "Delete", run: func(mm *Model) tea.Cmd {
				img := mm.currentImage()
				if img == nil {
					return nil
				}
				id := img.ID
				mm.openConfirm("Delete image", "Delete library image "+img.Image+"?",
					mm.actionCmd("Image deleted", TabLibrary, false, func(ctx context.Context) error {
						return mm.client.DeleteImage(ctx, id)
					}))
				return nil
			}},
		}

	case TabSecrets:
		return []menuOption{
			{label: "Delete", run: func(mm *Model) tea.Cmd {
				s := mm.currentSecret()
				if s == nil {
					return nil
				}
				id := s.ID
				mm.openConfirm("Delete secret", "Delete secret "+s.Name+"?",
					mm.actionCmd("Secret deleted", TabSecrets, false, func(ctx context.Context) error {
						return mm.client.DeleteSecret(ctx, id)
					}))
				return nil
			}},
		}

	case TabUsers:
		if !m.guard.IsAdmin() {
			return nil
		}
		return []menuOption{
			{label: "Toggle role", run: func(mm *Model) tea.Cmd {
				u := mm.currentUser()
				if u == nil {
					return nil
				}
				id := u.ID
				role := api.RoleAdmin
				if u.Role == api.RoleAdmin {
					role = api.RoleViewer
				}
				return mm.actionCmd("Role changed to "+string(role), TabUsers, false, func(ctx context.Context) error {
					return mm.client.UpdateUser(ctx, id, api.UpdateUserRequest{Role: role})
				})
			}},
			{label: "Change password", run: func(mm *Model) tea.Cmd {
				if u := mm.currentUser(); u != nil {
					mm.activeForm = newPasswordForm(u.Username)
					mm.formErr = ""
					mm.modal = ModalPassword
				}
				return nil
			}},
			{label: "Delete", run: func(mm *Model) tea.Cmd {
				u := mm.currentUser()
				if u == nil {
					return nil
				}
				id, name := u.ID, u.Username
				mm.openConfirm("Delete user", "Delete user "+name+"?",
					mm.actionCmd("User deleted", TabUsers, false, func(ctx context.Context) error {
						return mm.client.DeleteUser(ctx, id)
					}))
				return nil
			}},
		}
	}
	return nil
}
