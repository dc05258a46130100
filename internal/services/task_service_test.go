package services_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/services"
	"github.com/mpmf/NexxtTask/internal/store"
	"github.com/mpmf/NexxtTask/tests/testutil"
)

type fixture struct {
	store    *store.SQLStore
	tasks    services.TaskService
	tags     services.TagService
	owner    model.User
	assignee model.User
	stranger model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := testutil.NewTestStore(t)
	return &fixture{
		store:    s,
		tasks:    services.NewTaskService(zerolog.Nop(), s),
		tags:     services.NewTagService(zerolog.Nop(), s),
		owner:    testutil.CreateUser(t, s, "owner@example.com"),
		assignee: testutil.CreateUser(t, s, "assignee@example.com"),
		stranger: testutil.CreateUser(t, s, "stranger@example.com"),
	}
}

func as(u model.User) context.Context {
	return services.WithActor(context.Background(), u.ID)
}

// spyStore counts task updates reaching the store.
type spyStore struct {
	store.Store
	updates int
}

func (s *spyStore) UpdateTask(ctx context.Context, id, userID string, in model.UpdateTaskInput) error {
	s.updates++
	return s.Store.UpdateTask(ctx, id, userID, in)
}

func strPtr(s string) *string { return &s }

func TestCreateTask_TitleOnly(t *testing.T) {
	f := newFixture(t)

	task, err := f.tasks.CreateTask(as(f.owner), model.CreateTaskInput{Title: "  Write docs  "})
	require.NoError(t, err)

	assert.Equal(t, "Write docs", task.Title)
	assert.Equal(t, f.owner.ID, task.OwnerID)
	assert.Equal(t, model.TaskStatusActive, task.Status)
	assert.Equal(t, 0, task.Progress)
	assert.NotNil(t, task.Checklists)
	assert.Empty(t, task.Checklists)
	assert.NotNil(t, task.Assignments)
	assert.Empty(t, task.Assignments)
	assert.NotNil(t, task.Tags)
	assert.Empty(t, task.Tags)
}

func TestCreateTask_WithSubResources(t *testing.T) {
	f := newFixture(t)
	ctx := as(f.owner)

	tag, err := f.tags.CreateTag(ctx, model.CreateTagInput{Name: "backend"})
	require.NoError(t, err)

	task, err := f.tasks.CreateTask(ctx, model.CreateTaskInput{
		Title: "Release",
		Checklists: []model.ChecklistInput{
			{Title: "Prep", Items: []model.ChecklistItemInput{{Content: "a"}, {Content: "b"}}},
			{Title: "Ship", Items: []model.ChecklistItemInput{{Content: "c"}}},
		},
		AssignedUserIDs: []string{f.assignee.ID, f.assignee.ID},
		TagIDs:          []string{tag.ID},
	})
	require.NoError(t, err)

	require.Len(t, task.Checklists, 2)
	assert.Equal(t, "Prep", task.Checklists[0].Title)
	assert.Equal(t, 0, task.Checklists[0].Position)
	assert.Equal(t, 1, task.Checklists[1].Position)
	require.Len(t, task.Checklists[0].Items, 2)
	assert.Equal(t, "a", task.Checklists[0].Items[0].Content)
	assert.Equal(t, 0, task.Checklists[0].Items[0].Position)
	assert.Equal(t, 1, task.Checklists[0].Items[1].Position)
	assert.False(t, task.Checklists[0].Items[1].IsChecked)

	require.Len(t, task.Assignments, 1)
	assert.Equal(t, f.assignee.ID, task.Assignments[0].UserID)
	require.Len(t, task.Tags, 1)
	assert.Equal(t, "backend", task.Tags[0].Name)
}

func TestCreateTask_RollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := as(f.owner)

	_, err := f.tasks.CreateTask(ctx, model.CreateTaskInput{
		Title:           "Broken",
		Checklists:      []model.ChecklistInput{{Title: "One", Items: []model.ChecklistItemInput{{Content: "x"}}}},
		AssignedUserIDs: []string{"no-such-user"},
	})
	require.ErrorIs(t, err, services.ErrInvalidInput)
	assert.Contains(t, err.Error(), "creating assignments")

	tasks, err := f.tasks.GetTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreateTask_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := as(f.owner)

	_, err := f.tasks.CreateTask(ctx, model.CreateTaskInput{Title: "   "})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = f.tasks.CreateTask(ctx, model.CreateTaskInput{
		Title:      "x",
		Checklists: []model.ChecklistInput{{Title: ""}},
	})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = f.tasks.CreateTask(context.Background(), model.CreateTaskInput{Title: "x"})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestGetTasks_VisibilityAndProgress(t *testing.T) {
	f := newFixture(t)

	first, err := f.tasks.CreateTask(as(f.owner), model.CreateTaskInput{
		Title:      "First",
		Checklists: []model.ChecklistInput{{Title: "c", Items: []model.ChecklistItemInput{{Content: "a"}, {Content: "b"}, {Content: "c"}}}},
	})
	require.NoError(t, err)
	_, err = f.tasks.CreateTask(as(f.stranger), model.CreateTaskInput{Title: "Private"})
	require.NoError(t, err)
	_, err = f.tasks.AssignUser(as(f.owner), first.ID, f.assignee.ID)
	require.NoError(t, err)

	_, err = f.tasks.ToggleChecklistItem(as(f.assignee), first.Checklists[0].Items[0].ID)
	require.NoError(t, err)

	tasks, err := f.tasks.GetTasks(as(f.assignee))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "First", tasks[0].Title)
	assert.Equal(t, 33, tasks[0].Progress)

	progress, err := f.tasks.TaskProgress(as(f.owner), first.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, progress)

	_, err = f.tasks.GetTask(as(f.stranger), first.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestUpdateTask_StrangerRejectedBeforeWrite(t *testing.T) {
	f := newFixture(t)
	spy := &spyStore{Store: f.store}
	svc := services.NewTaskService(zerolog.Nop(), spy)

	task := testutil.CreateTask(t, f.store, f.owner.ID, "Mine")

	_, err := svc.UpdateTask(as(f.stranger), task.ID, model.UpdateTaskInput{Title: strPtr("Hijacked")})
	require.ErrorIs(t, err, services.ErrPermissionDenied)
	assert.Contains(t, err.Error(), "you do not have access to this task")
	assert.Zero(t, spy.updates)

	_, err = svc.UpdateTask(as(f.owner), "missing", model.UpdateTaskInput{Title: strPtr("x")})
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Zero(t, spy.updates)

	updated, err := svc.UpdateTask(as(f.owner), task.ID, model.UpdateTaskInput{Title: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 1, spy.updates)
}

func TestUpdateTask_EmptyInputIsNoop(t *testing.T) {
	f := newFixture(t)
	spy := &spyStore{Store: f.store}
	svc := services.NewTaskService(zerolog.Nop(), spy)

	task := testutil.CreateTask(t, f.store, f.owner.ID, "Same")

	got, err := svc.UpdateTask(as(f.owner), task.ID, model.UpdateTaskInput{})
	require.NoError(t, err)
	assert.Equal(t, "Same", got.Title)
	assert.Zero(t, spy.updates)
}

func TestUpdateTaskStatus(t *testing.T) {
	f := newFixture(t)
	task := testutil.CreateTask(t, f.store, f.owner.ID, "Status")
	_, err := f.tasks.AssignUser(as(f.owner), task.ID, f.assignee.ID)
	require.NoError(t, err)

	got, err := f.tasks.UpdateTaskStatus(as(f.assignee), task.ID, model.TaskStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusCompleted, got.Status)

	_, err = f.tasks.UpdateTaskStatus(as(f.owner), task.ID, "paused")
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestDeleteTask_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	task := testutil.CreateTask(t, f.store, f.owner.ID, "Doomed")
	_, err := f.tasks.AssignUser(as(f.owner), task.ID, f.assignee.ID)
	require.NoError(t, err)

	err = f.tasks.DeleteTask(as(f.assignee), task.ID)
	require.ErrorIs(t, err, services.ErrPermissionDenied)
	assert.Contains(t, err.Error(), "only the task owner can delete this task")

	require.NoError(t, f.tasks.DeleteTask(as(f.owner), task.ID))

	_, err = f.tasks.GetTask(as(f.owner), task.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	err = f.tasks.DeleteTask(as(f.owner), task.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestAssignments(t *testing.T) {
	f := newFixture(t)
	task := testutil.CreateTask(t, f.store, f.owner.ID, "Team")

	a, err := f.tasks.AssignUser(as(f.owner), task.ID, f.assignee.ID)
	require.NoError(t, err)
	assert.Equal(t, f.assignee.ID, a.UserID)

	_, err = f.tasks.AssignUser(as(f.owner), task.ID, f.assignee.ID)
	require.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "user is already assigned to this task")

	_, err = f.tasks.AssignUser(as(f.assignee), task.ID, f.stranger.ID)
	assert.ErrorIs(t, err, services.ErrPermissionDenied)

	_, err = f.tasks.AssignUser(as(f.owner), task.ID, "ghost")
	assert.ErrorIs(t, err, services.ErrNotFound)

	require.NoError(t, f.tasks.UnassignUser(as(f.owner), task.ID, f.assignee.ID))
	_, err = f.tasks.GetTask(as(f.assignee), task.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	require.NoError(t, f.tasks.UnassignUser(as(f.owner), task.ID, f.assignee.ID))
}

func TestTaskTags(t *testing.T) {
	f := newFixture(t)
	ctx := as(f.owner)
	task := testutil.CreateTask(t, f.store, f.owner.ID, "Tagged")

	tag, err := f.tags.CreateTag(ctx, model.CreateTagInput{Name: "urgent", Color: "#ff0000"})
	require.NoError(t, err)

	require.NoError(t, f.tasks.AddTagToTask(ctx, task.ID, tag.ID))

	err = f.tasks.AddTagToTask(ctx, task.ID, tag.ID)
	require.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "this tag is already added to the task")

	err = f.tasks.AddTagToTask(as(f.stranger), task.ID, tag.ID)
	assert.ErrorIs(t, err, services.ErrPermissionDenied)

	got, err := f.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "#ff0000", got.Tags[0].Color)

	require.NoError(t, f.tasks.RemoveTagFromTask(ctx, task.ID, tag.ID))
	require.NoError(t, f.tasks.RemoveTagFromTask(ctx, task.ID, tag.ID))

	got, err = f.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}
