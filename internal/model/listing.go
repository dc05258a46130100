package model

import "strings"

// DefaultPerPage is the dashboard page size.
const DefaultPerPage = 10

// FilterByTag keeps tasks carrying at least one tag whose name contains
// query, ignoring case. An empty query keeps every task.
func FilterByTag(tasks []Task, query string) []Task {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return tasks
	}

	filtered := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		for _, tag := range t.Tags {
			if strings.Contains(strings.ToLower(tag.Name), query) {
				filtered = append(filtered, t)
				break
			}
		}
	}
	return filtered
}

// SplitByArchive separates active tasks from completed or canceled ones,
// preserving order within each group.
func SplitByArchive(tasks []Task) (active, archived []Task) {
	active = make([]Task, 0, len(tasks))
	archived = make([]Task, 0)
	for _, t := range tasks {
		if t.Status.Archived() {
			archived = append(archived, t)
		} else {
			active = append(active, t)
		}
	}
	return active, archived
}

// Paginate returns the 1-based page of tasks and the total page count.
// Pages outside the valid range yield an empty slice.
func Paginate(tasks []Task, page, perPage int) ([]Task, int) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	totalPages := (len(tasks) + perPage - 1) / perPage

	if page < 1 || page > totalPages {
		return []Task{}, totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > len(tasks) {
		end = len(tasks)
	}
	return tasks[start:end], totalPages
}
