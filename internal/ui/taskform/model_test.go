package taskform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpmf/NexxtTask/internal/model"
)

func TestFormBindings_Result(t *testing.T) {
	fb := &formBindings{
		title:          "  Ship release  ",
		description:    "notes",
		checklistTitle: "Steps",
		items:          "build\n\n  tag  \n   \npublish",
		tags:           "backend, , urgent",
		assigneeIDs:    []string{"u1"},
	}

	got := fb.Result()

	assert.Equal(t, "Ship release", got.Input.Title)
	assert.Equal(t, "notes", got.Input.Description)
	assert.Equal(t, []string{"u1"}, got.Input.AssignedUserIDs)
	assert.Equal(t, []model.ChecklistInput{{
		Title: "Steps",
		Items: []model.ChecklistItemInput{{Content: "build"}, {Content: "tag"}, {Content: "publish"}},
	}}, got.Input.Checklists)
	assert.Equal(t, []string{"backend", "urgent"}, got.TagNames)
}

func TestFormBindings_ResultDropsUntitledChecklist(t *testing.T) {
	fb := &formBindings{title: "Solo", checklistTitle: "   ", items: "orphan"}

	got := fb.Result()

	assert.Empty(t, got.Input.Checklists)
	assert.Empty(t, got.TagNames)
}

func TestSplitTagNames(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" , ,", nil},
		{"a", []string{"a"}},
		{" a ,b,, c ", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTagNames(tt.in))
		})
	}
}
