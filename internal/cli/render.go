package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/theme"
	"github.com/mpmf/NexxtTask/internal/ui/tasklist"
)

const cliBarWidth = 20

var (
	idStyle    = lipgloss.NewStyle().Foreground(theme.ColorGray)
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// renderTaskRows writes one line per task, prefixed with its id.
func renderTaskRows(w io.Writer, tasks []model.Task) {
	bar := tasklist.NewProgressBar(cliBarWidth)
	for _, t := range tasks {
		fmt.Fprintf(w, "%s %s\n", idStyle.Render(t.ID), tasklist.RenderRow(t, bar))
	}
}

// renderTask writes the full task with its checklists and item ids.
func renderTask(w io.Writer, t *model.Task, members map[string]model.TeamMember) {
	bar := tasklist.NewProgressBar(cliBarWidth)

	fmt.Fprintln(w, titleStyle.Render(t.Title))
	fmt.Fprintf(w, "%s %s %s\n",
		idStyle.Render(t.ID),
		theme.StatusStyle(t.Status).Render(string(t.Status)),
		bar.ViewAs(float64(t.Progress)/100))

	if len(t.Tags) > 0 {
		pills := make([]string, len(t.Tags))
		for i, tag := range t.Tags {
			pills[i] = theme.TagStyle(tag).Render("#" + tag.Name)
		}
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(pills, ""))
	}
	if len(t.Assignments) > 0 {
		names := make([]string, len(t.Assignments))
		for i, a := range t.Assignments {
			names[i] = a.UserID
			if m, ok := members[a.UserID]; ok {
				names[i] = m.FullName
			}
		}
		fmt.Fprintf(w, "Assigned: %s\n", strings.Join(names, ", "))
	}
	if t.Description != "" {
		fmt.Fprintf(w, "\n%s\n", t.Description)
	}

	for _, cl := range t.Checklists {
		fmt.Fprintf(w, "\n%s %s (%d%%)\n",
			idStyle.Render(cl.ID), titleStyle.Render(cl.Title), model.CalculateProgress(cl.Items))
		for _, item := range cl.Items {
			box := "[ ]"
			content := item.Content
			if item.IsChecked {
				box = "[x]"
				content = theme.DimmedStyle.Render(content)
			}
			fmt.Fprintf(w, "  %s %s %s\n", box, content, idStyle.Render(item.ID))
		}
	}
}
