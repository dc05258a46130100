package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func items(checked, total int) []ChecklistItem {
	out := make([]ChecklistItem, total)
	for i := 0; i < checked; i++ {
		out[i].IsChecked = true
	}
	return out
}

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		name    string
		checked int
		total   int
		want    int
	}{
		{name: "empty set", checked: 0, total: 0, want: 0},
		{name: "none checked", checked: 0, total: 5, want: 0},
		{name: "all checked", checked: 5, total: 5, want: 100},
		{name: "one of three rounds down", checked: 1, total: 3, want: 33},
		{name: "two of three rounds up", checked: 2, total: 3, want: 67},
		{name: "half rounds away from zero", checked: 1, total: 8, want: 13},
		{name: "one of two", checked: 1, total: 2, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateProgress(items(tt.checked, tt.total)))
		})
	}
}

func TestCalculateProgress_Bounds(t *testing.T) {
	for n := 1; n <= 50; n++ {
		assert.Equal(t, 0, CalculateProgress(items(0, n)), "0 of %d", n)
		assert.Equal(t, 100, CalculateProgress(items(n, n)), "%d of %d", n, n)
	}
}

func TestCalculateProgress_NilSlice(t *testing.T) {
	assert.Equal(t, 0, CalculateProgress(nil))
}
