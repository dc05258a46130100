package tagmgr

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mpmf/NexxtTask/internal/keys"
	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/theme"
)

// CloseMsg signals the parent to close the tag view.
type CloseMsg struct{}

// SelectedMsg is sent when the user picks a tag with enter.
type SelectedMsg struct {
	Tag model.Tag
}

// Catalogue is the subset of the tag service the view needs.
type Catalogue interface {
	GetTags(ctx context.Context) ([]model.Tag, error)
	CreateTag(ctx context.Context, input model.CreateTagInput) (*model.Tag, error)
}

type tagMode int

const (
	modeList tagMode = iota
	modeForm
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type formBindings struct {
	name  string
	color string
}

type tagsLoadedMsg struct {
	tags []model.Tag
	err  error
}

type tagSavedMsg struct {
	tag *model.Tag
	err error
}

// Model lists the tag catalogue and creates tags. Tags already on the
// task being edited are marked.
type Model struct {
	ctx         context.Context
	catalogue   Catalogue
	mode        tagMode
	keys        *keys.KeyMap
	tags        []model.Tag
	marked      map[string]bool
	selectedIdx int
	form        *huh.Form
	fb          *formBindings
	statusMsg   string
	statusErr   bool
	width       int
	height      int
}

// New creates a tag manager model.
func New(ctx context.Context, c Catalogue, k *keys.KeyMap, width, height int) Model {
	return Model{
		ctx:       ctx,
		catalogue: c,
		mode:      modeList,
		keys:      k,
		fb:        &formBindings{},
		width:     width,
		height:    height,
	}
}

// Init loads the tags.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Open resets the view to the list, marks the given tags and reloads.
func (m *Model) Open(marked []model.Tag) tea.Cmd {
	m.mode = modeList
	m.statusMsg = ""
	m.marked = make(map[string]bool, len(marked))
	for _, t := range marked {
		m.marked[t.ID] = true
	}
	return m.Load()
}

// Editing reports whether the create form has focus.
func (m Model) Editing() bool { return m.mode == modeForm }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tagsLoadedMsg:
		if msg.err != nil {
			m.setStatus("Could not load tags: "+msg.err.Error(), true)
			return m, nil
		}
		m.tags = msg.tags
		if m.selectedIdx >= len(m.tags) {
			m.selectedIdx = max(len(m.tags)-1, 0)
		}
		return m, nil

	case tagSavedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.setStatus("Error: "+msg.err.Error(), true)
			return m, nil
		}
		m.setStatus("Created #"+msg.tag.Name, false)
		return m, m.Load()

	case tea.KeyMsg:
		if m.mode == modeForm {
			return m.updateForm(msg)
		}
		return m.handleListKey(msg)
	}

	if m.mode == modeForm {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.tags) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.tags)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.tags) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.tags) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if len(m.tags) == 0 {
			return m, nil
		}
		tag := m.tags[m.selectedIdx]
		return m, func() tea.Msg { return SelectedMsg{Tag: tag} }

	case msg.String() == "n":
		m.fb.name = ""
		m.fb.color = ""
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Tag name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Color").
				Description("Leave empty to pick one from the palette.").
				Placeholder("#f97316").
				Value(&m.fb.color).
				Validate(validateColor),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func validateColor(s string) error {
	s = strings.TrimSpace(s)
	if s != "" && !hexColor.MatchString(s) {
		return fmt.Errorf("%q is not a #rrggbb color", s)
	}
	return nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m, m.saveTag()
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// View renders the tag manager.
func (m Model) View() string {
	if m.mode == modeForm && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(titleStyle.Render("Tags"))
	b.WriteString("\n\n")

	if len(m.tags) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No tags yet. Press 'n' to create one."))
	}
	for i, t := range m.tags {
		mark := "  "
		if m.marked[t.ID] {
			mark = "✓ "
		}
		label := mark + theme.TagStyle(t).Render("#"+t.Name)

		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		style := lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true)
		if m.statusErr {
			style = theme.ErrorStyle
		}
		b.WriteString("\n")
		b.WriteString(style.Render(m.statusMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// Status returns the last message shown below the list.
func (m Model) Status() string { return m.statusMsg }

// Tags returns the loaded catalogue.
func (m Model) Tags() []model.Tag { return m.tags }

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) setStatus(text string, isErr bool) {
	m.statusMsg = text
	m.statusErr = isErr
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

// Load fetches the catalogue.
func (m Model) Load() tea.Cmd {
	ctx, c := m.ctx, m.catalogue
	return func() tea.Msg {
		tags, err := c.GetTags(ctx)
		return tagsLoadedMsg{tags: tags, err: err}
	}
}

func (m Model) saveTag() tea.Cmd {
	ctx, c := m.ctx, m.catalogue
	input := model.CreateTagInput{
		Name:  strings.TrimSpace(m.fb.name),
		Color: strings.TrimSpace(m.fb.color),
	}
	return func() tea.Msg {
		tag, err := c.CreateTag(ctx, input)
		return tagSavedMsg{tag: tag, err: err}
	}
}
