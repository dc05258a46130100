package services

import (
	"context"
	"strings"

	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/store"
)

// checklistTask resolves the task a checklist belongs to.
func (s *taskServiceImpl) checklistTask(ctx context.Context, checklistID string) (*model.Checklist, error) {
	checklist, err := s.store.GetChecklist(ctx, checklistID)
	if err != nil {
		err = translate(err, "checklist")
		s.logger.Error().
			Err(err).
			Str("checklist_id", checklistID).
			Msg("failed to select checklist")
		return nil, err
	}
	return checklist, nil
}

// itemTask resolves the task a checklist item belongs to.
func (s *taskServiceImpl) itemTask(ctx context.Context, itemID string) (string, error) {
	taskID, err := s.store.GetChecklistItemTaskID(ctx, itemID)
	if err != nil {
		err = translate(err, "checklist item")
		s.logger.Error().
			Err(err).
			Str("item_id", itemID).
			Msg("failed to resolve task of checklist item")
		return "", err
	}
	return taskID, nil
}

func (s *taskServiceImpl) AddChecklist(
	ctx context.Context,
	taskID, title string,
	items []model.ChecklistItemInput,
) (*model.Checklist, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalidInput("checklist title is required")
	}
	for _, item := range items {
		if strings.TrimSpace(item.Content) == "" {
			return nil, invalidInput("checklist item content is required")
		}
	}

	if _, err := s.requireAccess(ctx, taskID, false, deniedAccess); err != nil {
		return nil, err
	}

	checklist := model.Checklist{TaskID: taskID, Title: title}
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		pos, err := tx.NextChecklistPosition(ctx, taskID)
		if err != nil {
			return err
		}
		checklist.Position = pos
		if err := tx.CreateChecklist(ctx, &checklist); err != nil {
			return err
		}

		checklist.Items = make([]model.ChecklistItem, len(items))
		for i, item := range items {
			checklist.Items[i] = model.ChecklistItem{
				ChecklistID: checklist.ID,
				Content:     strings.TrimSpace(item.Content),
				Position:    i,
			}
		}
		return tx.CreateChecklistItems(ctx, checklist.Items)
	})
	if err != nil {
		err = translate(err, "task")
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to add checklist")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("checklist_id", checklist.ID).
		Msg("added checklist")
	return &checklist, nil
}

func (s *taskServiceImpl) UpdateChecklist(ctx context.Context, id, title string) (*model.Checklist, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalidInput("checklist title is required")
	}

	checklist, err := s.checklistTask(ctx, id)
	if err != nil {
		return nil, err
	}
	userID, err := s.requireAccess(ctx, checklist.TaskID, false, deniedAccess)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateChecklistTitle(ctx, id, userID, title); err != nil {
		err = translate(err, "checklist")
		s.logger.Error().
			Err(err).
			Str("checklist_id", id).
			Msg("failed to update checklist")
		return nil, err
	}
	checklist.Title = title

	items, err := s.store.GetChecklistItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	checklist.Items = items

	s.logger.Info().
		Str("checklist_id", id).
		Msg("updated checklist")
	return checklist, nil
}

func (s *taskServiceImpl) DeleteChecklist(ctx context.Context, id string) error {
	checklist, err := s.checklistTask(ctx, id)
	if err != nil {
		return err
	}
	userID, err := s.requireAccess(ctx, checklist.TaskID, false, deniedAccess)
	if err != nil {
		return err
	}

	if err := s.store.DeleteChecklist(ctx, id, userID); err != nil {
		err = translate(err, "checklist")
		s.logger.Error().
			Err(err).
			Str("checklist_id", id).
			Msg("failed to delete checklist")
		return err
	}

	s.logger.Info().
		Str("checklist_id", id).
		Str("task_id", checklist.TaskID).
		Msg("deleted checklist")
	return nil
}

func (s *taskServiceImpl) ReorderChecklists(ctx context.Context, taskID string, checklistIDs []string) error {
	userID, err := s.requireAccess(ctx, taskID, false, deniedAccess)
	if err != nil {
		return err
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		for i, id := range checklistIDs {
			if err := tx.SetChecklistPosition(ctx, id, taskID, userID, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to reorder checklists")
		return err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Int("count", len(checklistIDs)).
		Msg("reordered checklists")
	return nil
}

func (s *taskServiceImpl) AddChecklistItem(
	ctx context.Context,
	checklistID, content string,
) (*model.ChecklistItem, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidInput("checklist item content is required")
	}

	checklist, err := s.checklistTask(ctx, checklistID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireAccess(ctx, checklist.TaskID, false, deniedAccess); err != nil {
		return nil, err
	}

	items := []model.ChecklistItem{{ChecklistID: checklistID, Content: content}}
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		pos, err := tx.NextChecklistItemPosition(ctx, checklistID)
		if err != nil {
			return err
		}
		items[0].Position = pos
		return tx.CreateChecklistItems(ctx, items)
	})
	if err != nil {
		err = translate(err, "checklist")
		s.logger.Error().
			Err(err).
			Str("checklist_id", checklistID).
			Msg("failed to add checklist item")
		return nil, err
	}

	s.logger.Info().
		Str("checklist_id", checklistID).
		Str("item_id", items[0].ID).
		Msg("added checklist item")
	return &items[0], nil
}

func (s *taskServiceImpl) UpdateChecklistItem(
	ctx context.Context,
	id string,
	input model.UpdateChecklistItemInput,
) (*model.ChecklistItem, error) {
	if input.Content != nil {
		content := strings.TrimSpace(*input.Content)
		if content == "" {
			return nil, invalidInput("checklist item content must not be empty")
		}
		input.Content = &content
	}

	taskID, err := s.itemTask(ctx, id)
	if err != nil {
		return nil, err
	}
	userID, err := s.requireAccess(ctx, taskID, false, deniedAccess)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateChecklistItem(ctx, id, userID, input); err != nil {
		err = translate(err, "checklist item")
		s.logger.Error().
			Err(err).
			Str("item_id", id).
			Msg("failed to update checklist item")
		return nil, err
	}

	s.logger.Info().
		Str("item_id", id).
		Msg("updated checklist item")
	return s.getItem(ctx, id)
}

func (s *taskServiceImpl) ToggleChecklistItem(ctx context.Context, id string) (*model.ChecklistItem, error) {
	taskID, err := s.itemTask(ctx, id)
	if err != nil {
		return nil, err
	}
	userID, err := s.requireAccess(ctx, taskID, false, deniedAccess)
	if err != nil {
		return nil, err
	}

	if err := s.store.ToggleChecklistItem(ctx, id, userID); err != nil {
		err = translate(err, "checklist item")
		s.logger.Error().
			Err(err).
			Str("item_id", id).
			Msg("failed to toggle checklist item")
		return nil, err
	}

	s.logger.Info().
		Str("item_id", id).
		Msg("toggled checklist item")
	return s.getItem(ctx, id)
}

func (s *taskServiceImpl) DeleteChecklistItem(ctx context.Context, id string) error {
	taskID, err := s.itemTask(ctx, id)
	if err != nil {
		return err
	}
	userID, err := s.requireAccess(ctx, taskID, false, deniedAccess)
	if err != nil {
		return err
	}

	if err := s.store.DeleteChecklistItem(ctx, id, userID); err != nil {
		err = translate(err, "checklist item")
		s.logger.Error().
			Err(err).
			Str("item_id", id).
			Msg("failed to delete checklist item")
		return err
	}

	s.logger.Info().
		Str("item_id", id).
		Msg("deleted checklist item")
	return nil
}

func (s *taskServiceImpl) ReorderChecklistItems(ctx context.Context, checklistID string, itemIDs []string) error {
	checklist, err := s.checklistTask(ctx, checklistID)
	if err != nil {
		return err
	}
	userID, err := s.requireAccess(ctx, checklist.TaskID, false, deniedAccess)
	if err != nil {
		return err
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		for i, id := range itemIDs {
			if err := tx.SetChecklistItemPosition(ctx, id, checklistID, userID, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("checklist_id", checklistID).
			Msg("failed to reorder checklist items")
		return err
	}

	s.logger.Info().
		Str("checklist_id", checklistID).
		Int("count", len(itemIDs)).
		Msg("reordered checklist items")
	return nil
}

func (s *taskServiceImpl) getItem(ctx context.Context, id string) (*model.ChecklistItem, error) {
	item, err := s.store.GetChecklistItem(ctx, id)
	if err != nil {
		return nil, translate(err, "checklist item")
	}
	return item, nil
}
