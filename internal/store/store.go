package store

import (
	"context"
	"time"

	"github.com/mpmf/NexxtTask/internal/model"
)

// TaskAccess describes how a user relates to a task.
type TaskAccess struct {
	OwnerID  string `db:"owner_id"`
	Assigned bool   `db:"assigned"`
}

// CanEdit reports whether the user may read and update the task.
func (a TaskAccess) CanEdit(userID string) bool {
	return a.OwnerID == userID || a.Assigned
}

// IsOwner reports whether the user owns the task.
func (a TaskAccess) IsOwner(userID string) bool {
	return a.OwnerID == userID
}

// TaskTag is a tag row joined with the task it is attached to.
type TaskTag struct {
	TaskID string `db:"task_id"`
	model.Tag
}

// Store defines the persistence interface for tasks, their checklists,
// assignments and tags, and the users and sessions that own them.
//
// Methods taking a userID scope the statement to tasks that user may touch:
// owner or assignee, except DeleteTask and the assignment mutations which
// require the owner. A scoped mutation that matches no row returns ErrNotFound.
type Store interface {
	// WithTx runs fn against a transaction-bound Store. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	WithTx(ctx context.Context, fn func(Store) error) error

	// === Tasks ===

	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, id, userID string) (*model.Task, error)
	GetTasks(ctx context.Context, userID string) ([]model.Task, error)
	UpdateTask(ctx context.Context, id, userID string, in model.UpdateTaskInput) error
	DeleteTask(ctx context.Context, id, ownerID string) error
	GetTaskAccess(ctx context.Context, taskID, userID string) (*TaskAccess, error)

	// === Checklists ===

	CreateChecklist(ctx context.Context, checklist *model.Checklist) error
	NextChecklistPosition(ctx context.Context, taskID string) (int, error)
	GetChecklist(ctx context.Context, id string) (*model.Checklist, error)
	GetChecklists(ctx context.Context, taskIDs []string) ([]model.Checklist, error)
	UpdateChecklistTitle(ctx context.Context, id, userID, title string) error
	DeleteChecklist(ctx context.Context, id, userID string) error
	SetChecklistPosition(ctx context.Context, id, taskID, userID string, position int) error

	// === Checklist items ===

	CreateChecklistItems(ctx context.Context, items []model.ChecklistItem) error
	NextChecklistItemPosition(ctx context.Context, checklistID string) (int, error)
	GetChecklistItem(ctx context.Context, id string) (*model.ChecklistItem, error)
	GetChecklistItems(ctx context.Context, checklistIDs []string) ([]model.ChecklistItem, error)
	GetChecklistItemTaskID(ctx context.Context, itemID string) (string, error)
	UpdateChecklistItem(ctx context.Context, id, userID string, in model.UpdateChecklistItemInput) error
	ToggleChecklistItem(ctx context.Context, id, userID string) error
	DeleteChecklistItem(ctx context.Context, id, userID string) error
	SetChecklistItemPosition(ctx context.Context, id, checklistID, userID string, position int) error

	// === Assignments ===

	CreateAssignments(ctx context.Context, assignments []model.Assignment) error
	AssignUser(ctx context.Context, taskID, userID, ownerID string) (*model.Assignment, error)
	UnassignUser(ctx context.Context, taskID, userID, ownerID string) error
	GetAssignments(ctx context.Context, taskIDs []string) ([]model.Assignment, error)

	// === Tags ===

	CreateTag(ctx context.Context, tag *model.Tag) error
	GetTagByName(ctx context.Context, name string) (*model.Tag, error)
	GetTags(ctx context.Context) ([]model.Tag, error)
	GetTaskTags(ctx context.Context, taskIDs []string) ([]TaskTag, error)
	LinkTags(ctx context.Context, taskID string, tagIDs []string) error
	AddTagToTask(ctx context.Context, taskID, tagID, userID string) error
	RemoveTagFromTask(ctx context.Context, taskID, tagID, userID string) error

	// === Users ===

	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUsers(ctx context.Context) ([]model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error

	// === Sessions ===

	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	GetSessionByRefreshToken(ctx context.Context, refreshToken, fingerprint string) (*model.Session, error)
	RotateSession(ctx context.Context, id, refreshToken string, expiresAt time.Time) error
	DeleteSessions(ctx context.Context, userID string) (int64, error)
	DeleteSessionsByFingerprint(ctx context.Context, userID, fingerprint string) (int64, error)

	Close() error
}
