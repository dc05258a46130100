package tasklist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mpmf/NexxtTask/internal/keys"
	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/theme"
)

// Tab selects which half of the task list is shown.
type Tab int

const (
	TabActive Tab = iota
	TabArchived
)

// TabLabels are the tab titles in Tab order.
var TabLabels = []string{"Active", "Archived"}

const rowBarWidth = 12

// Lister loads every task visible to the signed in user.
type Lister interface {
	GetTasks(ctx context.Context) ([]model.Task, error)
}

// TasksLoadedMsg is sent when tasks have been loaded.
type TasksLoadedMsg struct {
	Tasks []model.Task
	Err   error
}

// SelectedTaskMsg is sent when a user selects a task to view details.
type SelectedTaskMsg struct {
	TaskID string
}

// Model is the paginated task list with Active/Archived tabs and a tag filter.
type Model struct {
	list        list.Model
	tasks       Lister
	ctx         context.Context
	keys        *keys.KeyMap
	all         []model.Task
	tab         Tab
	tagQuery    string
	page        int
	totalPages  int
	total       int
	filterMode  bool
	filterInput textinput.Model
	err         error
	width       int
	height      int
}

// New creates a new task list model. ctx carries the acting user.
func New(ctx context.Context, tasks Lister, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, NewItemDelegate(rowBarWidth), width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)

	fi := textinput.New()
	fi.Placeholder = "filter by tag..."
	fi.Prompt = "# "
	fi.Width = width - 4

	return Model{
		list:        l,
		tasks:       tasks,
		ctx:         ctx,
		keys:        k,
		page:        1,
		filterInput: fi,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial set of tasks.
func (m Model) Init() tea.Cmd {
	return m.LoadTasks()
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.all = msg.Tasks
		}
		cmd := m.refreshPage()
		return m, cmd

	case tea.KeyMsg:
		if m.filterMode {
			return m.handleFilterKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleFilterKeys processes key input while the tag filter is focused.
func (m Model) handleFilterKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filterMode = false
		m.filterInput.Blur()
		m.tagQuery = m.filterInput.Value()
		m.page = 1
		cmd := m.refreshPage()
		return m, cmd

	case "esc":
		m.filterMode = false
		m.filterInput.Blur()
		m.filterInput.Reset()
		m.tagQuery = ""
		m.page = 1
		cmd := m.refreshPage()
		return m, cmd
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input outside the tag filter.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedTaskMsg{TaskID: task.ID}
		}

	case key.Matches(msg, m.keys.FilterTag):
		m.filterMode = true
		m.filterInput.SetValue(m.tagQuery)
		cmd := m.filterInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.SwitchTab):
		m.tab = (m.tab + 1) % Tab(len(TabLabels))
		m.page = 1
		cmd := m.refreshPage()
		return m, cmd

	case key.Matches(msg, m.keys.NextPage):
		if m.page < m.totalPages {
			m.page++
			cmd := m.refreshPage()
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevPage):
		if m.page > 1 {
			m.page--
			cmd := m.refreshPage()
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// SetTagFilter replaces the tag filter and returns to the first page.
func (m *Model) SetTagFilter(query string) tea.Cmd {
	m.tagQuery = query
	m.filterInput.SetValue(query)
	m.page = 1
	return m.refreshPage()
}

// TagFilter returns the active tag query.
func (m Model) TagFilter() string { return m.tagQuery }

// refreshPage recomputes the visible page from the loaded tasks.
func (m *Model) refreshPage() tea.Cmd {
	active, archived := model.SplitByArchive(model.FilterByTag(m.all, m.tagQuery))
	view := active
	if m.tab == TabArchived {
		view = archived
	}

	m.total = len(view)
	pageTasks, totalPages := model.Paginate(view, m.page, model.DefaultPerPage)
	m.totalPages = totalPages
	if m.page > totalPages && totalPages > 0 {
		m.page = totalPages
		pageTasks, _ = model.Paginate(view, m.page, model.DefaultPerPage)
	}

	items := make([]list.Item, len(pageTasks))
	for i, t := range pageTasks {
		items[i] = TaskItem{Task: t}
	}
	return m.list.SetItems(items)
}

// View renders the task list view.
func (m Model) View() string {
	var top string
	if m.filterMode {
		top = lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.filterInput.View())
	}

	var body string
	switch {
	case m.err != nil:
		body = theme.ErrorStyle.Padding(1, 2).Render("Could not load tasks: " + m.err.Error())
	case len(m.list.Items()) == 0:
		body = m.renderEmptyState()
	default:
		body = m.list.View()
	}

	if top == "" {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, body)
}

// renderEmptyState shows guidance text when no tasks are available.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.tagQuery != "" {
		return style.Render(fmt.Sprintf("No tasks tagged %q.\nPress esc in the filter to clear it.", m.tagQuery))
	}
	if m.tab == TabArchived {
		return style.Render("No archived tasks.")
	}
	return style.Render("No tasks yet.\n\nCreate one with: nexxttask task create")
}

// LoadTasks returns a tea.Cmd that fetches the visible tasks.
func (m Model) LoadTasks() tea.Cmd {
	ctx, lister := m.ctx, m.tasks
	return func() tea.Msg {
		tasks, err := lister.GetTasks(ctx)
		return TasksLoadedMsg{Tasks: tasks, Err: err}
	}
}

// SelectedTask returns the task under the cursor.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// Tab returns the selected tab.
func (m Model) Tab() Tab { return m.tab }

// Filtering reports whether the tag filter input has focus.
func (m Model) Filtering() bool { return m.filterMode }

// Summary describes the current page and filter for the status bar.
func (m Model) Summary() string {
	s := fmt.Sprintf("page %d/%d · %d tasks", m.page, max(m.totalPages, 1), m.total)
	if m.tagQuery != "" {
		s += fmt.Sprintf(" · tag %q", m.tagQuery)
	}
	return s
}

// Page returns the current page number and the total page count.
func (m Model) Page() (int, int) { return m.page, m.totalPages }

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
	m.filterInput.Width = width - 4
}
