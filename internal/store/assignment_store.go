package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mpmf/NexxtTask/internal/model"
)

const assignmentColumns = "id, task_id, user_id, assigned_at"

// CreateAssignments inserts assignment rows, filling in IDs and timestamps
// on the given slice.
func (s *SQLStore) CreateAssignments(ctx context.Context, assignments []model.Assignment) error {
	for i := range assignments {
		a := &assignments[i]
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		a.AssignedAt = now()

		_, err := s.exec(ctx, `
			INSERT INTO task_assignments (`+assignmentColumns+`)
			VALUES (?, ?, ?, ?)`,
			a.ID, a.TaskID, a.UserID, a.AssignedAt,
		)
		if err != nil {
			return fmt.Errorf("assigning user %s to task %s: %w", a.UserID, a.TaskID, err)
		}
	}
	return nil
}

// AssignUser assigns userID to a task owned by ownerID. The owner check
// and the insert share one transaction; task ownership never changes.
func (s *SQLStore) AssignUser(
	ctx context.Context,
	taskID, userID, ownerID string,
) (*model.Assignment, error) {
	a := model.Assignment{TaskID: taskID, UserID: userID}

	err := s.WithTx(ctx, func(tx Store) error {
		txs := tx.(*SQLStore)

		var owned int
		if err := txs.get(ctx, &owned,
			"SELECT COUNT(*) FROM tasks WHERE id = ? AND owner_id = ?",
			taskID, ownerID); err != nil {
			return err
		}
		if owned == 0 {
			return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
		}

		assignments := []model.Assignment{a}
		if err := txs.CreateAssignments(ctx, assignments); err != nil {
			return err
		}
		a = assignments[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UnassignUser removes userID from a task owned by ownerID. Removing a
// user that is not assigned is not an error.
func (s *SQLStore) UnassignUser(ctx context.Context, taskID, userID, ownerID string) error {
	_, err := s.exec(ctx, `
		DELETE FROM task_assignments
		WHERE task_id = ? AND user_id = ?
		  AND task_id IN (SELECT id FROM tasks WHERE owner_id = ?)`,
		taskID, userID, ownerID)
	if err != nil {
		return fmt.Errorf("unassigning user %s from task %s: %w", userID, taskID, err)
	}
	return nil
}

// GetAssignments retrieves the assignments of the given tasks.
func (s *SQLStore) GetAssignments(ctx context.Context, taskIDs []string) ([]model.Assignment, error) {
	assignments := []model.Assignment{}
	if len(taskIDs) == 0 {
		return assignments, nil
	}

	err := s.selectIn(ctx, &assignments,
		"SELECT "+assignmentColumns+" FROM task_assignments WHERE task_id IN (?) ORDER BY assigned_at, id",
		taskIDs)
	if err != nil {
		return nil, fmt.Errorf("querying assignments: %w", err)
	}
	return assignments, nil
}
