package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mpmf/NexxtTask/internal/model"
)

const tagColumns = "id, name, color, created_at"

// CreateTag inserts a new tag. A duplicate name returns ErrConflict.
func (s *SQLStore) CreateTag(ctx context.Context, tag *model.Tag) error {
	if strings.TrimSpace(tag.Name) == "" {
		return fmt.Errorf("tag name must not be empty")
	}
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	tag.CreatedAt = now()

	_, err := s.exec(ctx,
		"INSERT INTO tags ("+tagColumns+") VALUES (?, ?, ?, ?)",
		tag.ID, tag.Name, tag.Color, tag.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating tag: %w", err)
	}
	return nil
}

// GetTagByName retrieves a tag by its exact name.
func (s *SQLStore) GetTagByName(ctx context.Context, name string) (*model.Tag, error) {
	var t model.Tag
	err := s.get(ctx, &t, "SELECT "+tagColumns+" FROM tags WHERE name = ?", name)
	if err != nil {
		return nil, fmt.Errorf("getting tag %q: %w", name, err)
	}
	return &t, nil
}

// GetTags retrieves all tags ordered by name.
func (s *SQLStore) GetTags(ctx context.Context) ([]model.Tag, error) {
	tags := []model.Tag{}
	if err := s.selectAll(ctx, &tags, "SELECT "+tagColumns+" FROM tags ORDER BY name"); err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	return tags, nil
}

// GetTaskTags retrieves the tags attached to the given tasks, ordered by
// tag name.
func (s *SQLStore) GetTaskTags(ctx context.Context, taskIDs []string) ([]TaskTag, error) {
	tags := []TaskTag{}
	if len(taskIDs) == 0 {
		return tags, nil
	}

	err := s.selectIn(ctx, &tags, `
		SELECT tt.task_id, t.id, t.name, t.color, t.created_at
		FROM tags t
		INNER JOIN task_tags tt ON t.id = tt.tag_id
		WHERE tt.task_id IN (?)
		ORDER BY t.name`, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("querying task tags: %w", err)
	}
	return tags, nil
}

// LinkTags attaches tags to a task without an access check.
func (s *SQLStore) LinkTags(ctx context.Context, taskID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		if _, err := s.exec(ctx,
			"INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?)",
			taskID, tagID); err != nil {
			return fmt.Errorf("setting tag %s on task %s: %w", tagID, taskID, err)
		}
	}
	return nil
}

// AddTagToTask attaches a tag to a task the user may edit. A tag that is
// already attached returns ErrConflict.
func (s *SQLStore) AddTagToTask(ctx context.Context, taskID, tagID, userID string) error {
	err := s.execAffecting(ctx, "task "+taskID, `
		INSERT INTO task_tags (task_id, tag_id)
		SELECT ?, ?
		WHERE ? IN (`+accessibleTasks+`)`,
		taskID, tagID, taskID, userID, userID)
	if err != nil {
		return fmt.Errorf("adding tag %s to task %s: %w", tagID, taskID, err)
	}
	return nil
}

// RemoveTagFromTask detaches a tag from a task the user may edit.
// Removing a tag that is not attached is not an error.
func (s *SQLStore) RemoveTagFromTask(ctx context.Context, taskID, tagID, userID string) error {
	_, err := s.exec(ctx, `
		DELETE FROM task_tags
		WHERE task_id = ? AND tag_id = ? AND task_id IN (`+accessibleTasks+`)`,
		taskID, tagID, userID, userID)
	if err != nil {
		return fmt.Errorf("removing tag %s from task %s: %w", tagID, taskID, err)
	}
	return nil
}
