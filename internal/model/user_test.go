package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{name: "full name", user: User{FullName: "Ada Lovelace", Email: "ada@example.com"}, want: "Ada Lovelace"},
		{name: "email local part", user: User{Email: "grace@example.com"}, want: "grace"},
		{name: "blank full name", user: User{FullName: "  ", Email: "linus@example.com"}, want: "linus"},
		{name: "nothing known", user: User{}, want: "User"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}

func TestTaskStatus(t *testing.T) {
	assert.True(t, TaskStatusActive.Valid())
	assert.False(t, TaskStatus("done").Valid())
	assert.False(t, TaskStatusActive.Archived())
	assert.True(t, TaskStatusCanceled.Archived())
	assert.Equal(t, TaskStatusCompleted, TaskStatusActive.Next())
	assert.Equal(t, TaskStatusActive, TaskStatusCanceled.Next())
}

func TestTag_DisplayColor(t *testing.T) {
	assert.Equal(t, "#123456", Tag{Name: "x", Color: "#123456"}.DisplayColor())
	// 'a' is 97, 97 % 5 == 2.
	assert.Equal(t, "#14b8a6", Tag{Name: "api"}.DisplayColor())
	assert.Equal(t, "#f97316", Tag{}.DisplayColor())
}
