package model

import "math"

// CalculateProgress returns the percentage of checked items rounded to the
// nearest integer, or 0 for an empty set.
func CalculateProgress(items []ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}

	checked := 0
	for _, item := range items {
		if item.IsChecked {
			checked++
		}
	}
	return int(math.Round(float64(checked) / float64(len(items)) * 100))
}
