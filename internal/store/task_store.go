package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mpmf/NexxtTask/internal/model"
)

// accessibleTasks selects the ids of tasks a user owns or is assigned to.
// It takes the user id twice.
const accessibleTasks = `
	SELECT id FROM tasks WHERE owner_id = ?
	UNION
	SELECT task_id FROM task_assignments WHERE user_id = ?`

const taskColumns = "id, title, description, owner_id, status, created_at, updated_at"

// CreateTask inserts a new task row. ID, timestamps and a default status
// are filled in when empty.
func (s *SQLStore) CreateTask(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = model.TaskStatusActive
	}
	task.CreatedAt = now()
	task.UpdatedAt = task.CreatedAt

	_, err := s.exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Description, task.OwnerID,
		string(task.Status), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

// GetTask retrieves a single task row visible to userID.
func (s *SQLStore) GetTask(ctx context.Context, id, userID string) (*model.Task, error) {
	var t model.Task
	err := s.get(ctx, &t,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND id IN ("+accessibleTasks+")",
		id, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return &t, nil
}

// GetTasks retrieves every task row visible to userID, newest first.
func (s *SQLStore) GetTasks(ctx context.Context, userID string) ([]model.Task, error) {
	tasks := []model.Task{}
	err := s.selectAll(ctx, &tasks,
		"SELECT "+taskColumns+" FROM tasks WHERE id IN ("+accessibleTasks+
			") ORDER BY created_at DESC, id DESC",
		userID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies the non-nil fields of in to a task the user may edit.
func (s *SQLStore) UpdateTask(
	ctx context.Context,
	id, userID string,
	in model.UpdateTaskInput,
) error {
	sets := []string{"updated_at = ?"}
	args := []interface{}{now()}

	if in.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *in.Title)
	}
	if in.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *in.Description)
	}
	if in.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*in.Status))
	}
	args = append(args, id, userID, userID)

	query := "UPDATE tasks SET " + strings.Join(sets, ", ") +
		" WHERE id = ? AND id IN (" + accessibleTasks + ")"
	if err := s.execAffecting(ctx, "task "+id, query, args...); err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	return nil
}

// DeleteTask removes a task owned by ownerID. CASCADE removes checklists,
// items, assignments and tag links.
func (s *SQLStore) DeleteTask(ctx context.Context, id, ownerID string) error {
	err := s.execAffecting(ctx, "task "+id,
		"DELETE FROM tasks WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

// GetTaskAccess returns the task owner and whether userID is assigned.
// It returns ErrNotFound if the task does not exist.
func (s *SQLStore) GetTaskAccess(ctx context.Context, taskID, userID string) (*TaskAccess, error) {
	var a TaskAccess
	err := s.get(ctx, &a, `
		SELECT owner_id,
		       EXISTS (
		           SELECT 1 FROM task_assignments
		           WHERE task_id = tasks.id AND user_id = ?
		       ) AS assigned
		FROM tasks
		WHERE id = ?`,
		userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("checking access to task %s: %w", taskID, err)
	}
	return &a, nil
}
