package model

import "time"

// Tag is a globally named label that can be attached to many tasks.
type Tag struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color,omitempty" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateTagInput is the payload for creating a tag.
type CreateTagInput struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// tagPalette holds the colors offered to tags created without one.
var tagPalette = []string{"#f97316", "#2dd4bf", "#14b8a6", "#ea580c", "#5eead4"}

// DisplayColor returns the tag's color, or a palette color derived from
// the first character of its name when none is set.
func (t Tag) DisplayColor() string {
	if t.Color != "" {
		return t.Color
	}
	if t.Name == "" {
		return tagPalette[0]
	}
	return tagPalette[int(t.Name[0])%len(tagPalette)]
}
