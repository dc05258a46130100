package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mpmf/NexxtTask/internal/model"
)

// accessibleChecklists selects the ids of checklists on tasks a user may
// edit. It takes the user id twice.
const accessibleChecklists = `
	SELECT id FROM task_checklists WHERE task_id IN (` + accessibleTasks + `)`

const (
	checklistColumns = "id, task_id, title, position, created_at"
	itemColumns      = "id, checklist_id, content, is_checked, position, created_at"
)

// CreateChecklist inserts a checklist at checklist.Position.
func (s *SQLStore) CreateChecklist(ctx context.Context, checklist *model.Checklist) error {
	if checklist.ID == "" {
		checklist.ID = uuid.New().String()
	}
	checklist.CreatedAt = now()

	_, err := s.exec(ctx, `
		INSERT INTO task_checklists (`+checklistColumns+`)
		VALUES (?, ?, ?, ?, ?)`,
		checklist.ID, checklist.TaskID, checklist.Title,
		checklist.Position, checklist.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating checklist: %w", err)
	}
	return nil
}

// NextChecklistPosition returns the position after the last checklist of
// a task, or 0 when it has none.
func (s *SQLStore) NextChecklistPosition(ctx context.Context, taskID string) (int, error) {
	var next int
	err := s.get(ctx, &next,
		"SELECT COALESCE(MAX(position), -1) + 1 FROM task_checklists WHERE task_id = ?",
		taskID)
	if err != nil {
		return 0, fmt.Errorf("getting max checklist position: %w", err)
	}
	return next, nil
}

// GetChecklist retrieves a checklist row without its items.
func (s *SQLStore) GetChecklist(ctx context.Context, id string) (*model.Checklist, error) {
	var c model.Checklist
	err := s.get(ctx, &c,
		"SELECT "+checklistColumns+" FROM task_checklists WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting checklist %s: %w", id, err)
	}
	return &c, nil
}

// GetChecklists retrieves the checklists of the given tasks ordered by
// position.
func (s *SQLStore) GetChecklists(ctx context.Context, taskIDs []string) ([]model.Checklist, error) {
	checklists := []model.Checklist{}
	if len(taskIDs) == 0 {
		return checklists, nil
	}

	err := s.selectIn(ctx, &checklists,
		"SELECT "+checklistColumns+" FROM task_checklists WHERE task_id IN (?) ORDER BY position, created_at",
		taskIDs)
	if err != nil {
		return nil, fmt.Errorf("querying checklists: %w", err)
	}
	return checklists, nil
}

// UpdateChecklistTitle renames a checklist on a task the user may edit.
func (s *SQLStore) UpdateChecklistTitle(ctx context.Context, id, userID, title string) error {
	err := s.execAffecting(ctx, "checklist "+id, `
		UPDATE task_checklists SET title = ?
		WHERE id = ? AND task_id IN (`+accessibleTasks+`)`,
		title, id, userID, userID)
	if err != nil {
		return fmt.Errorf("updating checklist %s: %w", id, err)
	}
	return nil
}

// DeleteChecklist removes a checklist and, by CASCADE, its items.
func (s *SQLStore) DeleteChecklist(ctx context.Context, id, userID string) error {
	err := s.execAffecting(ctx, "checklist "+id, `
		DELETE FROM task_checklists
		WHERE id = ? AND task_id IN (`+accessibleTasks+`)`,
		id, userID, userID)
	if err != nil {
		return fmt.Errorf("deleting checklist %s: %w", id, err)
	}
	return nil
}

// SetChecklistPosition moves a checklist of taskID to position. A checklist
// that belongs to another task is left untouched.
func (s *SQLStore) SetChecklistPosition(
	ctx context.Context,
	id, taskID, userID string,
	position int,
) error {
	_, err := s.exec(ctx, `
		UPDATE task_checklists SET position = ?
		WHERE id = ? AND task_id = ? AND task_id IN (`+accessibleTasks+`)`,
		position, id, taskID, userID, userID)
	if err != nil {
		return fmt.Errorf("reordering checklist %s: %w", id, err)
	}
	return nil
}

// CreateChecklistItems inserts items unchecked, filling in IDs and
// timestamps on the given slice.
func (s *SQLStore) CreateChecklistItems(ctx context.Context, items []model.ChecklistItem) error {
	for i := range items {
		item := &items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.IsChecked = false
		item.CreatedAt = now()

		_, err := s.exec(ctx, `
			INSERT INTO task_checklist_items (`+itemColumns+`)
			VALUES (?, ?, ?, ?, ?, ?)`,
			item.ID, item.ChecklistID, item.Content,
			boolToInt(item.IsChecked), item.Position, item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("adding checklist item: %w", err)
		}
	}
	return nil
}

// NextChecklistItemPosition returns the position after the last item of a
// checklist, or 0 when it has none.
func (s *SQLStore) NextChecklistItemPosition(ctx context.Context, checklistID string) (int, error) {
	var next int
	err := s.get(ctx, &next,
		"SELECT COALESCE(MAX(position), -1) + 1 FROM task_checklist_items WHERE checklist_id = ?",
		checklistID)
	if err != nil {
		return 0, fmt.Errorf("getting max checklist item position: %w", err)
	}
	return next, nil
}

// GetChecklistItem retrieves a single checklist item.
func (s *SQLStore) GetChecklistItem(ctx context.Context, id string) (*model.ChecklistItem, error) {
	var item model.ChecklistItem
	err := s.get(ctx, &item,
		"SELECT "+itemColumns+" FROM task_checklist_items WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting checklist item %s: %w", id, err)
	}
	return &item, nil
}

// GetChecklistItems retrieves the items of the given checklists ordered by
// position.
func (s *SQLStore) GetChecklistItems(
	ctx context.Context,
	checklistIDs []string,
) ([]model.ChecklistItem, error) {
	items := []model.ChecklistItem{}
	if len(checklistIDs) == 0 {
		return items, nil
	}

	err := s.selectIn(ctx, &items,
		"SELECT "+itemColumns+" FROM task_checklist_items WHERE checklist_id IN (?) ORDER BY position, created_at",
		checklistIDs)
	if err != nil {
		return nil, fmt.Errorf("querying checklist items: %w", err)
	}
	return items, nil
}

// GetChecklistItemTaskID resolves the task an item belongs to through its
// checklist.
func (s *SQLStore) GetChecklistItemTaskID(ctx context.Context, itemID string) (string, error) {
	var taskID string
	err := s.get(ctx, &taskID, `
		SELECT c.task_id
		FROM task_checklist_items i
		INNER JOIN task_checklists c ON c.id = i.checklist_id
		WHERE i.id = ?`, itemID)
	if err != nil {
		return "", fmt.Errorf("resolving task of checklist item %s: %w", itemID, err)
	}
	return taskID, nil
}

// UpdateChecklistItem applies the non-nil fields of in to an item on a
// task the user may edit.
func (s *SQLStore) UpdateChecklistItem(
	ctx context.Context,
	id, userID string,
	in model.UpdateChecklistItemInput,
) error {
	var (
		sets []string
		args []interface{}
	)
	if in.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *in.Content)
	}
	if in.IsChecked != nil {
		sets = append(sets, "is_checked = ?")
		args = append(args, boolToInt(*in.IsChecked))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id, userID, userID)

	query := "UPDATE task_checklist_items SET " + strings.Join(sets, ", ") +
		" WHERE id = ? AND checklist_id IN (" + accessibleChecklists + ")"
	if err := s.execAffecting(ctx, "checklist item "+id, query, args...); err != nil {
		return fmt.Errorf("updating checklist item %s: %w", id, err)
	}
	return nil
}

// ToggleChecklistItem flips the checked state of a checklist item.
func (s *SQLStore) ToggleChecklistItem(ctx context.Context, id, userID string) error {
	err := s.execAffecting(ctx, "checklist item "+id, `
		UPDATE task_checklist_items
		SET is_checked = CASE WHEN is_checked = 0 THEN 1 ELSE 0 END
		WHERE id = ? AND checklist_id IN (`+accessibleChecklists+`)`,
		id, userID, userID)
	if err != nil {
		return fmt.Errorf("toggling checklist item %s: %w", id, err)
	}
	return nil
}

// DeleteChecklistItem removes a checklist item by ID.
func (s *SQLStore) DeleteChecklistItem(ctx context.Context, id, userID string) error {
	err := s.execAffecting(ctx, "checklist item "+id, `
		DELETE FROM task_checklist_items
		WHERE id = ? AND checklist_id IN (`+accessibleChecklists+`)`,
		id, userID, userID)
	if err != nil {
		return fmt.Errorf("deleting checklist item %s: %w", id, err)
	}
	return nil
}

// SetChecklistItemPosition moves an item of checklistID to position. An
// item of another checklist is left untouched.
func (s *SQLStore) SetChecklistItemPosition(
	ctx context.Context,
	id, checklistID, userID string,
	position int,
) error {
	_, err := s.exec(ctx, `
		UPDATE task_checklist_items SET position = ?
		WHERE id = ? AND checklist_id = ? AND checklist_id IN (`+accessibleChecklists+`)`,
		position, id, checklistID, userID, userID)
	if err != nil {
		return fmt.Errorf("reordering checklist item %s: %w", id, err)
	}
	return nil
}
