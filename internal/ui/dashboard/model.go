package dashboard

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mpmf/NexxtTask/internal/keys"
	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/services"
	"github.com/mpmf/NexxtTask/internal/theme"
	"github.com/mpmf/NexxtTask/internal/ui"
	"github.com/mpmf/NexxtTask/internal/ui/detail"
	"github.com/mpmf/NexxtTask/internal/ui/help"
	"github.com/mpmf/NexxtTask/internal/ui/tagmgr"
	"github.com/mpmf/NexxtTask/internal/ui/taskform"
	"github.com/mpmf/NexxtTask/internal/ui/tasklist"
)

// ViewState identifies which view is active.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
	ViewCreate
	ViewTags
)

// Services are the operations the dashboard drives.
type Services struct {
	Tasks services.TaskService
	Tags  services.TagService
	Users services.UserService
}

// Model is the root Bubble Tea model for the dashboard.
type Model struct {
	ctx          context.Context
	svc          Services
	user         string
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	taskList     tasklist.Model
	detail       detail.Model
	helpView     help.Model
	form         taskform.Model
	tagMgr       tagmgr.Model
	flash        string
	flashErr     bool
	ready        bool
}

// New creates the dashboard. ctx must carry the acting user; user is the
// label shown in the header.
func New(ctx context.Context, svc Services, user string) Model {
	k := keys.DefaultKeyMap()
	return Model{
		ctx:         ctx,
		svc:         svc,
		user:        user,
		currentView: ViewList,
		keys:        k,
		taskList:    tasklist.New(ctx, svc.Tasks, k, 80, 20),
		detail:      detail.New(k, 80, 20),
		helpView:    help.New(k, 80, 20),
		form:        taskform.New(80, 20),
		tagMgr:      tagmgr.New(ctx, svc.Tags, k, 80, 20),
	}
}

// Init loads the first page of tasks.
func (m Model) Init() tea.Cmd {
	return m.taskList.Init()
}

// Update routes messages to the active view and handles global keys.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		contentHeight := m.layout.ContentHeight()
		m.taskList.SetSize(msg.Width, contentHeight)
		m.detail.SetSize(msg.Width, contentHeight)
		m.helpView.SetSize(msg.Width, contentHeight)
		m.form.SetSize(msg.Width, contentHeight)
		m.tagMgr.SetSize(msg.Width, contentHeight)
		m.ready = true
		return m, nil

	case tasklist.SelectedTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetLoading(true)
		return m, m.loadTaskDetail(msg.TaskID)

	case detail.BackMsg:
		m.currentView = ViewList
		return m, m.taskList.LoadTasks()

	case detail.ToggleItemMsg:
		return m, m.toggleItem(msg.TaskID, msg.ItemID)

	case detail.SetStatusMsg:
		return m, m.setStatus(msg.TaskID, msg.Status)

	case membersLoadedMsg:
		if msg.err != nil {
			m.setFlash("loading team members: "+msg.err.Error(), true)
		}
		m.form.SetMembers(msg.members)
		cmd := m.form.StartCreate()
		return m, cmd

	case taskform.SubmitMsg:
		m.currentView = ViewList
		return m, m.createTask(msg.Result)

	case taskform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case taskCreatedMsg:
		if msg.err != nil {
			m.setFlash("creating task: "+msg.err.Error(), true)
			return m, nil
		}
		m.setFlash("created "+msg.task.Title, false)
		return m, m.taskList.LoadTasks()

	case tagmgr.CloseMsg:
		m.currentView = m.previousView
		if task := m.detail.Task(); m.currentView == ViewDetail && task != nil {
			return m, m.loadTaskDetail(task.ID)
		}
		return m, nil

	case tagmgr.SelectedMsg:
		m.currentView = m.previousView
		if task := m.detail.Task(); m.currentView == ViewDetail && task != nil {
			return m, m.toggleTag(*task, msg.Tag)
		}
		cmd := m.taskList.SetTagFilter(msg.Tag.Name)
		return m, cmd

	case actionFailedMsg:
		m.setFlash(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		// The form and the tag filter own every key while focused.
		if m.currentView == ViewCreate ||
			(m.currentView == ViewList && m.taskList.Filtering()) ||
			(m.currentView == ViewTags && m.tagMgr.Editing()) {
			return m.updateActiveView(msg)
		}
		m.setFlash("", false)

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
			} else {
				m.previousView = m.currentView
				m.currentView = ViewHelp
			}
			return m, nil

		case key.Matches(msg, m.keys.Back):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}

		case key.Matches(msg, m.keys.Refresh):
			switch m.currentView {
			case ViewList:
				return m, m.taskList.LoadTasks()
			case ViewDetail:
				if task := m.detail.Task(); task != nil {
					return m, m.loadTaskDetail(task.ID)
				}
			}

		case key.Matches(msg, m.keys.Tags):
			if m.currentView == ViewList || m.currentView == ViewDetail {
				var marked []model.Tag
				if task := m.detail.Task(); m.currentView == ViewDetail && task != nil {
					marked = task.Tags
				}
				m.previousView = m.currentView
				m.currentView = ViewTags
				cmd := m.tagMgr.Open(marked)
				return m, cmd
			}

		case key.Matches(msg, m.keys.NewTask):
			if m.currentView == ViewList {
				m.previousView = m.currentView
				m.currentView = ViewCreate
				return m, m.loadMembers()
			}
		}
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewCreate:
		m.form, cmd = m.form.Update(msg)
	case ViewTags:
		m.tagMgr, cmd = m.tagMgr.Update(msg)
	}

	// Loads finishing after a view switch still land in their view.
	switch msg.(type) {
	case tasklist.TasksLoadedMsg:
		if m.currentView != ViewList {
			m.taskList, cmd = m.taskList.Update(msg)
		}
	case detail.DetailLoadedMsg:
		if m.currentView != ViewDetail {
			m.detail, cmd = m.detail.Update(msg)
		}
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("NexxtTask", m.user)
	tabs := m.layout.RenderTabs(tasklist.TabLabels, int(m.taskList.Tab()))
	statusBar := m.layout.RenderStatusBar(m.statusLine())

	return m.layout.RenderWithFrame(header, tabs, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.taskList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCreate:
		return m.form.View()
	case ViewTags:
		return m.tagMgr.View()
	default:
		return ""
	}
}

// statusLine returns the flash message or the key hints for the status bar.
func (m Model) statusLine() string {
	if m.flash != "" {
		if m.flashErr {
			return theme.ErrorStyle.Render(m.flash)
		}
		return m.flash
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewDetail:
		return "esc back | j/k move | x toggle item | s cycle status | t tags | r refresh"
	case ViewCreate:
		return "enter next | shift+tab back | ctrl+c cancel"
	case ViewTags:
		if m.tagMgr.Editing() {
			return "enter next | ctrl+c cancel"
		}
		if m.previousView == ViewDetail {
			return "enter add/remove on task | n new tag | esc back"
		}
		return "enter filter list | n new tag | esc back"
	default:
		return m.taskList.Summary() + " | " + m.helpView.ShortView()
	}
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

// Flash returns the message shown in the status bar, if any.
func (m Model) Flash() string { return m.flash }

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState { return m.currentView }
