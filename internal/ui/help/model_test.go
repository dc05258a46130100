package help_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpmf/NexxtTask/internal/keys"
	"github.com/mpmf/NexxtTask/internal/ui/help"
)

func TestView_ListsEveryGroup(t *testing.T) {
	m := help.New(keys.DefaultKeyMap(), 120, 30)
	view := m.View()

	for _, want := range []string{
		"Dashboard keys",
		"Move", "Browse tasks", "Edit",
		"open detail", "active/archived", "filter by tag", "cycle status", "toggle item",
		"Press ? to return to the tasks.",
	} {
		assert.Contains(t, view, want)
	}
}

func TestView_WrapsNarrowTerminal(t *testing.T) {
	wide := help.New(keys.DefaultKeyMap(), 160, 30)
	narrow := help.New(keys.DefaultKeyMap(), 40, 30)

	assert.Contains(t, narrow.View(), "Edit")
	assert.Greater(t, countLines(narrow.View()), countLines(wide.View()))
}

func TestShortView(t *testing.T) {
	m := help.New(keys.DefaultKeyMap(), 200, 10)
	short := m.ShortView()

	assert.Contains(t, short, "filter by tag")
	assert.Contains(t, short, "quit")
	assert.NotContains(t, short, "cycle status")
}

func countLines(s string) int {
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
