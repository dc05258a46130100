package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/theme"
)

// maxRowTags caps the tag pills shown on one row.
const maxRowTags = 3

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// ItemDelegate implements list.ItemDelegate for rendering task rows.
type ItemDelegate struct {
	bar progress.Model
}

// NewItemDelegate creates a delegate drawing a progress bar of barWidth cells.
func NewItemDelegate(barWidth int) ItemDelegate {
	return ItemDelegate{bar: NewProgressBar(barWidth)}
}

// NewProgressBar returns the progress bar used on task rows and in the detail pane.
func NewProgressBar(width int) progress.Model {
	from, to := theme.ProgressGradient()
	return progress.New(
		progress.WithGradient(from, to),
		progress.WithWidth(width),
	)
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}

	line := RenderRow(ti.Task, d.bar)
	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// RenderRow renders a task as one line: status marker and badge, title,
// progress bar, tags and age.
func RenderRow(task model.Task, bar progress.Model) string {
	statusBadge := theme.StatusStyle(task.Status).Render(string(task.Status))

	title := task.Title
	if task.Status.Archived() {
		title = theme.DimmedStyle.Render(title)
	}

	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(task.CreatedAt))

	parts := []string{
		statusMarker(task.Status),
		statusBadge,
		title,
		bar.ViewAs(float64(task.Progress) / 100),
	}
	if tags := renderTags(task.Tags); tags != "" {
		parts = append(parts, tags)
	}
	parts = append(parts, timeStr)

	return strings.Join(parts, " ")
}

func statusMarker(status model.TaskStatus) string {
	switch status {
	case model.TaskStatusCompleted:
		return "✓"
	case model.TaskStatusCanceled:
		return "✗"
	default:
		return "○"
	}
}

func renderTags(tags []model.Tag) string {
	if len(tags) == 0 {
		return ""
	}

	shown := tags
	if len(shown) > maxRowTags {
		shown = shown[:maxRowTags]
	}
	pills := make([]string, 0, len(shown)+1)
	for _, t := range shown {
		pills = append(pills, theme.TagStyle(t).Render("#"+t.Name))
	}
	if len(tags) > maxRowTags {
		pills = append(pills, fmt.Sprintf("+%d", len(tags)-maxRowTags))
	}
	return strings.Join(pills, "")
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
