package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/store"
)

const (
	deniedAccess   = "you do not have access to this task"
	deniedDelete   = "only the task owner can delete this task"
	deniedAssign   = "only the task owner can assign users"
	deniedUnassign = "only the task owner can unassign users"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	store  store.Store
}

func NewTaskService(
	logger zerolog.Logger,
	store store.Store,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		store:  store,
	}
}

// requireAccess resolves the actor and checks it may touch the task.
// ownerOnly restricts the check to the task owner; denied is the message
// reported when the check fails.
func (s *taskServiceImpl) requireAccess(
	ctx context.Context,
	taskID string,
	ownerOnly bool,
	denied string,
) (string, error) {
	userID, err := ActorFrom(ctx)
	if err != nil {
		return "", err
	}

	access, err := s.store.GetTaskAccess(ctx, taskID, userID)
	if err != nil {
		err = translate(err, "task")
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("failed to check task access")
		return "", err
	}

	allowed := access.CanEdit(userID)
	if ownerOnly {
		allowed = access.IsOwner(userID)
	}
	if !allowed {
		s.logger.Error().
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg(denied)
		return "", permissionDenied(denied)
	}
	return userID, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, input model.CreateTaskInput) (*model.Task, error) {
	userID, err := ActorFrom(ctx)
	if err != nil {
		return nil, err
	}

	task := model.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		OwnerID:     userID,
		Status:      model.TaskStatusActive,
	}
	if task.Title == "" {
		return nil, invalidInput("title is required")
	}
	for _, c := range input.Checklists {
		if strings.TrimSpace(c.Title) == "" {
			return nil, invalidInput("checklist title is required")
		}
		for _, item := range c.Items {
			if strings.TrimSpace(item.Content) == "" {
				return nil, invalidInput("checklist item content is required")
			}
		}
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateTask(ctx, &task); err != nil {
			return err
		}

		for i, in := range input.Checklists {
			checklist := model.Checklist{
				TaskID:   task.ID,
				Title:    strings.TrimSpace(in.Title),
				Position: i,
			}
			if err := tx.CreateChecklist(ctx, &checklist); err != nil {
				return fmt.Errorf("creating checklist: %w", err)
			}

			items := make([]model.ChecklistItem, len(in.Items))
			for j, item := range in.Items {
				items[j] = model.ChecklistItem{
					ChecklistID: checklist.ID,
					Content:     strings.TrimSpace(item.Content),
					Position:    j,
				}
			}
			if err := tx.CreateChecklistItems(ctx, items); err != nil {
				return fmt.Errorf("creating checklist items: %w", err)
			}
		}

		assignees := uniqueIDs(input.AssignedUserIDs)
		assignments := make([]model.Assignment, len(assignees))
		for i, id := range assignees {
			assignments[i] = model.Assignment{TaskID: task.ID, UserID: id}
		}
		if err := tx.CreateAssignments(ctx, assignments); err != nil {
			return fmt.Errorf("creating assignments: %w", err)
		}

		if err := tx.LinkTags(ctx, task.ID, uniqueIDs(input.TagIDs)); err != nil {
			return fmt.Errorf("adding tags: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to create task")
		if errors.Is(err, store.ErrForeignKey) {
			err = fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Int("checklists", len(input.Checklists)).
		Msg("inserted task")

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", userID).
		Msg("created task")
	return s.getTask(ctx, task.ID, userID)
}

func (s *taskServiceImpl) GetTask(ctx context.Context, id string) (*model.Task, error) {
	userID, err := ActorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.getTask(ctx, id, userID)
}

func (s *taskServiceImpl) getTask(ctx context.Context, id, userID string) (*model.Task, error) {
	task, err := s.store.GetTask(ctx, id, userID)
	if err != nil {
		err = translate(err, "task")
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Str("user_id", userID).
			Msg("failed to select task")
		return nil, err
	}

	tasks := []model.Task{*task}
	if err := s.assemble(ctx, tasks); err != nil {
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("selected task")
	return &tasks[0], nil
}

func (s *taskServiceImpl) GetTasks(ctx context.Context) ([]model.Task, error) {
	userID, err := ActorFrom(ctx)
	if err != nil {
		return nil, err
	}

	tasks, err := s.store.GetTasks(ctx, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select tasks")
		return nil, err
	}
	if err := s.assemble(ctx, tasks); err != nil {
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Msg("selected tasks")
	return tasks, nil
}

// assemble loads checklists, items, assignments and tags of the given
// tasks with one query per relation and computes their progress.
func (s *taskServiceImpl) assemble(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	taskIDs := make([]string, len(tasks))
	for i := range tasks {
		taskIDs[i] = tasks[i].ID
	}

	checklists, err := s.store.GetChecklists(ctx, taskIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to select checklists")
		return err
	}
	checklistIDs := make([]string, len(checklists))
	for i := range checklists {
		checklistIDs[i] = checklists[i].ID
	}

	items, err := s.store.GetChecklistItems(ctx, checklistIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to select checklist items")
		return err
	}
	assignments, err := s.store.GetAssignments(ctx, taskIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to select assignments")
		return err
	}
	tags, err := s.store.GetTaskTags(ctx, taskIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to select task tags")
		return err
	}

	itemsByChecklist := make(map[string][]model.ChecklistItem)
	for _, item := range items {
		itemsByChecklist[item.ChecklistID] = append(itemsByChecklist[item.ChecklistID], item)
	}
	checklistsByTask := make(map[string][]model.Checklist)
	for _, c := range checklists {
		c.Items = itemsByChecklist[c.ID]
		if c.Items == nil {
			c.Items = []model.ChecklistItem{}
		}
		checklistsByTask[c.TaskID] = append(checklistsByTask[c.TaskID], c)
	}
	assignmentsByTask := make(map[string][]model.Assignment)
	for _, a := range assignments {
		assignmentsByTask[a.TaskID] = append(assignmentsByTask[a.TaskID], a)
	}
	tagsByTask := make(map[string][]model.Tag)
	for _, t := range tags {
		tagsByTask[t.TaskID] = append(tagsByTask[t.TaskID], t.Tag)
	}

	for i := range tasks {
		t := &tasks[i]
		t.Checklists = nonNil(checklistsByTask[t.ID])
		t.Assignments = nonNil(assignmentsByTask[t.ID])
		t.Tags = nonNil(tagsByTask[t.ID])
		t.Progress = model.CalculateProgress(t.Items())
	}
	return nil
}

func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id string,
	input model.UpdateTaskInput,
) (*model.Task, error) {
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, invalidInput("title must not be empty")
		}
		input.Title = &title
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, invalidInput(fmt.Sprintf("unknown task status %q", *input.Status))
	}

	userID, err := s.requireAccess(ctx, id, false, deniedAccess)
	if err != nil {
		return nil, err
	}
	if input.Empty() {
		return s.getTask(ctx, id, userID)
	}

	if err := s.store.UpdateTask(ctx, id, userID, input); err != nil {
		err = translate(err, "task")
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to update task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("updated task")

	s.logger.Info().
		Str("task_id", id).
		Str("user_id", userID).
		Msg("updated task")
	return s.getTask(ctx, id, userID)
}

func (s *taskServiceImpl) UpdateTaskStatus(
	ctx context.Context,
	id string,
	status model.TaskStatus,
) (*model.Task, error) {
	return s.UpdateTask(ctx, id, model.UpdateTaskInput{Status: &status})
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	userID, err := s.requireAccess(ctx, id, true, deniedDelete)
	if err != nil {
		return err
	}

	if err := s.store.DeleteTask(ctx, id, userID); err != nil {
		err = translate(err, "task")
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("deleted task")

	s.logger.Info().
		Str("task_id", id).
		Str("user_id", userID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) TaskProgress(ctx context.Context, id string) (int, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return 0, err
	}
	return task.Progress, nil
}

func (s *taskServiceImpl) AssignUser(ctx context.Context, taskID, userID string) (*model.Assignment, error) {
	ownerID, err := s.requireAccess(ctx, taskID, true, deniedAssign)
	if err != nil {
		return nil, err
	}

	a, err := s.store.AssignUser(ctx, taskID, userID, ownerID)
	if err != nil {
		switch err = translate(err, "user"); {
		case errors.Is(err, ErrConflict):
			err = fmt.Errorf("%w: user is already assigned to this task", ErrConflict)
		case errors.Is(err, ErrInvalidInput):
			err = fmt.Errorf("user %w", ErrNotFound)
		}
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("failed to assign user")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", userID).
		Msg("assigned user")
	return a, nil
}

func (s *taskServiceImpl) UnassignUser(ctx context.Context, taskID, userID string) error {
	ownerID, err := s.requireAccess(ctx, taskID, true, deniedUnassign)
	if err != nil {
		return err
	}

	if err := s.store.UnassignUser(ctx, taskID, userID, ownerID); err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("failed to unassign user")
		return err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", userID).
		Msg("unassigned user")
	return nil
}

func (s *taskServiceImpl) AddTagToTask(ctx context.Context, taskID, tagID string) error {
	userID, err := s.requireAccess(ctx, taskID, false, deniedAccess)
	if err != nil {
		return err
	}

	if err := s.store.AddTagToTask(ctx, taskID, tagID, userID); err != nil {
		switch err = translate(err, "task"); {
		case errors.Is(err, ErrConflict):
			err = fmt.Errorf("%w: this tag is already added to the task", ErrConflict)
		case errors.Is(err, ErrInvalidInput):
			err = fmt.Errorf("tag %w", ErrNotFound)
		}
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Str("tag_id", tagID).
			Msg("failed to add tag to task")
		return err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("tag_id", tagID).
		Msg("added tag to task")
	return nil
}

func (s *taskServiceImpl) RemoveTagFromTask(ctx context.Context, taskID, tagID string) error {
	userID, err := s.requireAccess(ctx, taskID, false, deniedAccess)
	if err != nil {
		return err
	}

	if err := s.store.RemoveTagFromTask(ctx, taskID, tagID, userID); err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Str("tag_id", tagID).
			Msg("failed to remove tag from task")
		return err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("tag_id", tagID).
		Msg("removed tag from task")
	return nil
}

// uniqueIDs drops blank and repeated ids, keeping first occurrences.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
