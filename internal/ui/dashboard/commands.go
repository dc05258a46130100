package dashboard

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/ui/detail"
	"github.com/mpmf/NexxtTask/internal/ui/taskform"
)

// membersLoadedMsg carries the assignee options for the create form.
type membersLoadedMsg struct {
	members []model.TeamMember
	err     error
}

// taskCreatedMsg is sent after a task from the form is persisted.
type taskCreatedMsg struct {
	task *model.Task
	err  error
}

// actionFailedMsg reports a failed mutation from the detail view.
type actionFailedMsg struct {
	err error
}

// loadTaskDetail returns a command that loads a task with its checklists.
func (m Model) loadTaskDetail(taskID string) tea.Cmd {
	ctx, tasks := m.ctx, m.svc.Tasks
	return func() tea.Msg {
		task, err := tasks.GetTask(ctx, taskID)
		return detail.DetailLoadedMsg{Task: task, Err: err}
	}
}

// toggleItem flips a checklist item and reloads its task so the progress
// bars follow.
func (m Model) toggleItem(taskID, itemID string) tea.Cmd {
	ctx, tasks := m.ctx, m.svc.Tasks
	return func() tea.Msg {
		if _, err := tasks.ToggleChecklistItem(ctx, itemID); err != nil {
			return actionFailedMsg{err: fmt.Errorf("toggling item: %w", err)}
		}
		task, err := tasks.GetTask(ctx, taskID)
		return detail.DetailLoadedMsg{Task: task, Err: err}
	}
}

// setStatus moves a task to the given status.
func (m Model) setStatus(taskID string, status model.TaskStatus) tea.Cmd {
	ctx, tasks := m.ctx, m.svc.Tasks
	return func() tea.Msg {
		task, err := tasks.UpdateTaskStatus(ctx, taskID, status)
		if err != nil {
			return actionFailedMsg{err: fmt.Errorf("updating status: %w", err)}
		}
		return detail.DetailLoadedMsg{Task: task}
	}
}

// toggleTag attaches tag to the task, or detaches it when already present,
// and reloads the task.
func (m Model) toggleTag(task model.Task, tag model.Tag) tea.Cmd {
	ctx, tasks := m.ctx, m.svc.Tasks
	attached := false
	for _, t := range task.Tags {
		if t.ID == tag.ID {
			attached = true
			break
		}
	}
	return func() tea.Msg {
		var err error
		if attached {
			err = tasks.RemoveTagFromTask(ctx, task.ID, tag.ID)
		} else {
			err = tasks.AddTagToTask(ctx, task.ID, tag.ID)
		}
		if err != nil {
			return actionFailedMsg{err: fmt.Errorf("tagging task: %w", err)}
		}
		updated, err := tasks.GetTask(ctx, task.ID)
		return detail.DetailLoadedMsg{Task: updated, Err: err}
	}
}

// loadMembers fetches the users offered as assignees.
func (m Model) loadMembers() tea.Cmd {
	ctx, users := m.ctx, m.svc.Users
	return func() tea.Msg {
		members, err := users.ListTeamMembers(ctx)
		return membersLoadedMsg{members: members, err: err}
	}
}

// createTask resolves the form's tag names and creates the task.
func (m Model) createTask(result taskform.Result) tea.Cmd {
	ctx, tasks, tags := m.ctx, m.svc.Tasks, m.svc.Tags
	return func() tea.Msg {
		input := result.Input
		if len(result.TagNames) > 0 {
			resolved, err := tags.ResolveTags(ctx, result.TagNames)
			if err != nil {
				return taskCreatedMsg{err: fmt.Errorf("resolving tags: %w", err)}
			}
			for _, t := range resolved {
				input.TagIDs = append(input.TagIDs, t.ID)
			}
		}

		task, err := tasks.CreateTask(ctx, input)
		return taskCreatedMsg{task: task, err: err}
	}
}

// Run starts the dashboard on the terminal's alternate screen and blocks
// until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
