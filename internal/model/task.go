package model

import "time"

// TaskStatus is the lifecycle state of a task. Any status may follow any other.
type TaskStatus string

const (
	TaskStatusActive    TaskStatus = "active"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusCanceled  TaskStatus = "canceled"
)

// TaskStatuses lists every valid status in display order.
var TaskStatuses = []TaskStatus{
	TaskStatusActive,
	TaskStatusCompleted,
	TaskStatusCanceled,
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusActive, TaskStatusCompleted, TaskStatusCanceled:
		return true
	}
	return false
}

// Archived reports whether a task in this status belongs to the archive view.
func (s TaskStatus) Archived() bool {
	return s == TaskStatusCompleted || s == TaskStatusCanceled
}

// Next returns the status that follows s when cycling through TaskStatuses.
func (s TaskStatus) Next() TaskStatus {
	for i, st := range TaskStatuses {
		if st == s {
			return TaskStatuses[(i+1)%len(TaskStatuses)]
		}
	}
	return TaskStatusActive
}

// Task is a unit of work owned by a user, optionally assigned to others.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id" db:"id"`

	// Title is the human-readable summary of the task.
	Title string `json:"title" db:"title"`

	// Description is optional free-form detail.
	Description string `json:"description" db:"description"`

	// OwnerID is the user who created the task.
	OwnerID string `json:"owner_id" db:"owner_id"`

	// Status is the lifecycle state (use TaskStatus* constants).
	Status TaskStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Checklists, Assignments and Tags are populated when the task is
	// assembled by the service layer; never nil on an assembled task.
	Checklists  []Checklist  `json:"checklists" db:"-"`
	Assignments []Assignment `json:"assignments" db:"-"`
	Tags        []Tag        `json:"tags" db:"-"`

	// Progress is the derived percentage of checked items (0-100).
	Progress int `json:"progress" db:"-"`
}

// Items returns every checklist item of the task across all checklists.
func (t Task) Items() []ChecklistItem {
	var items []ChecklistItem
	for _, c := range t.Checklists {
		items = append(items, c.Items...)
	}
	return items
}

// Checklist is a named, ordered group of items belonging to a task.
type Checklist struct {
	ID        string          `json:"id" db:"id"`
	TaskID    string          `json:"task_id" db:"task_id"`
	Title     string          `json:"title" db:"title"`
	Position  int             `json:"position" db:"position"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	Items     []ChecklistItem `json:"items" db:"-"`
}

// ChecklistItem is a single checkable entry of a checklist.
type ChecklistItem struct {
	ID          string    `json:"id" db:"id"`
	ChecklistID string    `json:"checklist_id" db:"checklist_id"`
	Content     string    `json:"content" db:"content"`
	IsChecked   bool      `json:"is_checked" db:"is_checked"`
	Position    int       `json:"position" db:"position"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Assignment associates a user with a task, granting read/update access.
type Assignment struct {
	ID         string    `json:"id" db:"id"`
	TaskID     string    `json:"task_id" db:"task_id"`
	UserID     string    `json:"user_id" db:"user_id"`
	AssignedAt time.Time `json:"assigned_at" db:"assigned_at"`
}

// ChecklistItemInput is the content of an item created along with a checklist.
type ChecklistItemInput struct {
	Content string `json:"content"`
}

// ChecklistInput describes a checklist created along with a task.
type ChecklistInput struct {
	Title string               `json:"title"`
	Items []ChecklistItemInput `json:"items,omitempty"`
}

// CreateTaskInput is the payload for creating a task with its sub-resources.
type CreateTaskInput struct {
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	Checklists      []ChecklistInput `json:"checklists,omitempty"`
	AssignedUserIDs []string         `json:"assigned_user_ids,omitempty"`
	TagIDs          []string         `json:"tag_ids,omitempty"`
}

// UpdateTaskInput carries the task fields to change; nil fields are left as is.
type UpdateTaskInput struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
}

// Empty reports whether the input changes nothing.
func (in UpdateTaskInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil
}

// UpdateChecklistItemInput carries the item fields to change.
type UpdateChecklistItemInput struct {
	Content   *string `json:"content,omitempty"`
	IsChecked *bool   `json:"is_checked,omitempty"`
}

// Empty reports whether the input changes nothing.
func (in UpdateChecklistItemInput) Empty() bool {
	return in.Content == nil && in.IsChecked == nil
}
