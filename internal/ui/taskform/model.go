package taskform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/theme"
)

// SubmitMsg is dispatched when the form is completed.
type SubmitMsg struct {
	Result Result
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// Result is the task described by a completed form. TagNames still have to
// be resolved to tag ids before the task is created.
type Result struct {
	Input    model.CreateTaskInput
	TagNames []string
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title          string
	description    string
	checklistTitle string
	items          string
	tags           string
	assigneeIDs    []string
}

// Result converts the bound values, dropping a checklist without a title
// and blank item lines.
func (fb *formBindings) Result() Result {
	in := model.CreateTaskInput{
		Title:           strings.TrimSpace(fb.title),
		Description:     strings.TrimSpace(fb.description),
		AssignedUserIDs: fb.assigneeIDs,
	}

	if title := strings.TrimSpace(fb.checklistTitle); title != "" {
		cl := model.ChecklistInput{Title: title}
		for _, line := range strings.Split(fb.items, "\n") {
			if content := strings.TrimSpace(line); content != "" {
				cl.Items = append(cl.Items, model.ChecklistItemInput{Content: content})
			}
		}
		in.Checklists = []model.ChecklistInput{cl}
	}

	return Result{Input: in, TagNames: SplitTagNames(fb.tags)}
}

// SplitTagNames splits a comma-separated tag list, dropping blank entries.
func SplitTagNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Model is the Bubble Tea model for the create-task form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	members []model.TeamMember
	width   int
	height  int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetMembers sets the users offered as assignees.
func (m *Model) SetMembers(members []model.TeamMember) {
	m.members = members
}

// StartCreate resets the bindings and builds a fresh form.
func (m *Model) StartCreate() tea.Cmd {
	*m.fb = formBindings{}
	m.form = buildForm(m.fb, m.members).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		result := m.fb.Result()
		m.form = nil
		return m, func() tea.Msg { return SubmitMsg{Result: result} }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("New Task") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Run shows the form on the terminal outside of a Bubble Tea program and
// returns the described task.
func Run(members []model.TeamMember) (Result, error) {
	fb := &formBindings{}
	if err := buildForm(fb, members).Run(); err != nil {
		return Result{}, err
	}
	return fb.Result(), nil
}

func buildForm(fb *formBindings, members []model.TeamMember) *huh.Form {
	task := huh.NewGroup(
		huh.NewInput().
			Title("Title").
			Placeholder("What needs to be done?").
			Value(&fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&fb.description),
		huh.NewInput().
			Title("Tags").
			Description("Comma separated; unknown tags are created").
			Placeholder("backend, urgent").
			Value(&fb.tags),
	)

	checklist := huh.NewGroup(
		huh.NewInput().
			Title("Checklist").
			Placeholder("Optional checklist title").
			Value(&fb.checklistTitle),
		huh.NewText().
			Title("Items").
			Description("One item per line").
			Value(&fb.items),
	)

	groups := []*huh.Group{task, checklist}
	if len(members) > 0 {
		opts := make([]huh.Option[string], len(members))
		for i, u := range members {
			opts[i] = huh.NewOption(fmt.Sprintf("%s <%s>", u.FullName, u.Email), u.ID)
		}
		groups = append(groups, huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Assignees").
				Options(opts...).
				Value(&fb.assigneeIDs),
		))
	}

	return huh.NewForm(groups...)
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
