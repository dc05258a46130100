package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mpmf/NexxtTask/internal/keys"
	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/theme"
	"github.com/mpmf/NexxtTask/internal/ui/tasklist"
)

const detailBarWidth = 30

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// DetailLoadedMsg carries the loaded task.
type DetailLoadedMsg struct {
	Task *model.Task
	Err  error
}

// ToggleItemMsg asks the parent to toggle a checklist item.
type ToggleItemMsg struct {
	TaskID string
	ItemID string
}

// SetStatusMsg asks the parent to move the task to Status.
type SetStatusMsg struct {
	TaskID string
	Status model.TaskStatus
}

// Model is the task detail view: header, progress and checklists with an
// item cursor.
type Model struct {
	task     *model.Task
	err      error
	cursor   int
	viewport viewport.Model
	bar      progress.Model
	keys     *keys.KeyMap
	width    int
	height   int
	loading  bool
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		bar:      tasklist.NewProgressBar(detailBarWidth),
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DetailLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err == nil {
			sameTask := m.task != nil && msg.Task != nil && m.task.ID == msg.Task.ID
			m.task = msg.Task
			if !sameTask {
				m.cursor = 0
				m.viewport.GotoTop()
			}
			m.cursor = min(m.cursor, max(len(m.items())-1, 0))
		}
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items())-1 {
				m.cursor++
				m.syncViewport()
			}
			return m, nil

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.syncViewport()
			}
			return m, nil

		case key.Matches(msg, m.keys.Toggle):
			item, ok := m.SelectedItem()
			if !ok {
				return m, nil
			}
			taskID := m.task.ID
			return m, func() tea.Msg {
				return ToggleItemMsg{TaskID: taskID, ItemID: item.ID}
			}

		case key.Matches(msg, m.keys.CycleStatus):
			if m.task == nil {
				return m, nil
			}
			taskID, next := m.task.ID, m.task.Status.Next()
			return m, func() tea.Msg {
				return SetStatusMsg{TaskID: taskID, Status: next}
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	placeholder := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.loading:
		return placeholder.Render("Loading task details...")
	case m.err != nil:
		return placeholder.Foreground(theme.ColorRed).Render(m.err.Error())
	case m.task == nil:
		return placeholder.Render("No task selected")
	}

	return m.viewport.View()
}

// items flattens the checklists in display order.
func (m Model) items() []model.ChecklistItem {
	if m.task == nil {
		return nil
	}
	return m.task.Items()
}

// SelectedItem returns the checklist item under the cursor.
func (m Model) SelectedItem() (model.ChecklistItem, bool) {
	items := m.items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return model.ChecklistItem{}, false
	}
	return items[m.cursor], true
}

// Task returns the displayed task, if any.
func (m Model) Task() *model.Task { return m.task }

// syncViewport re-renders the content and scrolls the cursor into view.
func (m *Model) syncViewport() {
	content, cursorLine := m.renderContent()
	m.viewport.SetContent(content)

	if cursorLine < 0 {
		return
	}
	if cursorLine < m.viewport.YOffset {
		m.viewport.SetYOffset(cursorLine)
	} else if cursorLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(cursorLine - m.viewport.Height + 1)
	}
}

// renderContent builds the detail content and reports the line holding
// the item cursor, or -1 when the task has no items.
func (m Model) renderContent() (string, int) {
	if m.task == nil {
		return "", -1
	}

	task := m.task
	var lines []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	lines = append(lines, titleStyle.Render(task.Title))

	badges := []string{theme.StatusStyle(task.Status).Render(string(task.Status))}
	for _, t := range task.Tags {
		badges = append(badges, theme.TagStyle(t).Render("#"+t.Name))
	}
	lines = append(lines, strings.Join(badges, " "), "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	lines = append(lines, fmt.Sprintf("%s  %s",
		metaStyle.Render("Created:"), task.CreatedAt.Format("2006-01-02 15:04")))
	if n := len(task.Assignments); n > 0 {
		lines = append(lines, fmt.Sprintf("%s %d user(s)", metaStyle.Render("Assigned:"), n))
	}
	lines = append(lines, fmt.Sprintf("%s %s",
		metaStyle.Render("Progress:"), m.bar.ViewAs(float64(task.Progress)/100)))

	separator := lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	lines = append(lines, "", separator, "")

	if task.Description != "" {
		lines = append(lines, task.Description, "", separator, "")
	}

	if len(task.Checklists) == 0 {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No checklists"))
		return strings.Join(lines, "\n"), -1
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	cursorLine := -1
	idx := 0
	for _, cl := range task.Checklists {
		lines = append(lines, headerStyle.Render(fmt.Sprintf("%s (%d%%)",
			cl.Title, model.CalculateProgress(cl.Items))))
		for _, item := range cl.Items {
			box := "[ ]"
			content := item.Content
			if item.IsChecked {
				box = "[x]"
				content = theme.DimmedStyle.Render(content)
			}
			line := box + " " + content
			if idx == m.cursor {
				cursorLine = len(lines)
				line = theme.SelectedItemStyle.Render(line)
			} else {
				line = theme.ListItemStyle.Render(line)
			}
			lines = append(lines, line)
			idx++
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n"), cursorLine
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.syncViewport()
}
