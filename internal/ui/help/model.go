package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/mpmf/NexxtTask/internal/keys"
	"github.com/mpmf/NexxtTask/internal/theme"
)

// sectionTitles name the FullHelp groups of the dashboard key map, in order.
var sectionTitles = []string{"Move", "Browse tasks", "Edit"}

var (
	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorOrange)
	sectionStyle = theme.BorderStyle.Padding(0, 1).MarginRight(1)
)

// Model is the dashboard's key reference. The status bar shows the short
// hints; "?" swaps the task list for one bordered box per binding group.
type Model struct {
	keys   *keys.KeyMap
	hints  help.Model
	width  int
	height int
}

// New creates the key reference for the given key map.
func New(k *keys.KeyMap, width, height int) Model {
	hints := help.New()
	hints.Width = width
	return Model{keys: k, hints: hints, width: width, height: height}
}

// ShortView renders the status bar hints.
func (m Model) ShortView() string {
	return m.hints.ShortHelpView(m.keys.ShortHelp())
}

// View renders every group of bindings side by side, wrapping to a new row
// when the terminal is too narrow.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		Render("Dashboard keys")

	var rows []string
	var row []string
	rowWidth := 0
	limit := max(m.width-6, 0)
	for i, group := range m.keys.FullHelp() {
		box := sectionStyle.Render(renderSection(sectionTitle(i), group))
		if w := lipgloss.Width(box); len(row) > 0 && rowWidth+w > limit {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		row = append(row, box)
		rowWidth += lipgloss.Width(box)
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	footer := theme.HelpStyle.Render("Press " + m.keys.Help.Help().Key + " to return to the tasks.")
	content := lipgloss.JoinVertical(lipgloss.Left,
		title, "", lipgloss.JoinVertical(lipgloss.Left, rows...), "", footer)

	return theme.DetailPanelStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(content)
}

func sectionTitle(i int) string {
	if i < len(sectionTitles) {
		return sectionTitles[i]
	}
	return "More"
}

// renderSection lists the enabled bindings of one group as "key  action".
func renderSection(title string, bindings []key.Binding) string {
	keyWidth := 0
	for _, b := range bindings {
		if b.Enabled() {
			keyWidth = max(keyWidth, lipgloss.Width(b.Help().Key))
		}
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(title))
	for _, binding := range bindings {
		if !binding.Enabled() {
			continue
		}
		h := binding.Help()
		b.WriteString("\n")
		b.WriteString(keyStyle.Width(keyWidth + 2).Render(h.Key))
		b.WriteString(theme.HelpStyle.Render(h.Desc))
	}
	return b.String()
}

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.hints.Width = width - 4
}
