package services

import (
	"context"
	"errors"
	"time"

	"github.com/mpmf/NexxtTask/internal/model"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthenticated  = errors.New("user not authenticated")

	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
)

// TaskService reads and mutates tasks on behalf of the user carried in the
// context (see WithActor). Reads and updates require the task owner or an
// assignee; deleting a task and managing its assignments require the owner.
//
// Every mutation checks access first, returning ErrNotFound when the task
// is absent and ErrPermissionDenied when the actor may not touch it, before
// any write is attempted.
type TaskService interface {
	// CreateTask inserts a task owned by the actor together with its
	// checklists, items, assignments and tag links in one transaction, and
	// returns the assembled task.
	CreateTask(ctx context.Context, input model.CreateTaskInput) (*model.Task, error)

	// GetTask returns a task with its checklists, items, assignments, tags
	// and progress. Tasks the actor cannot see are reported as ErrNotFound.
	GetTask(ctx context.Context, id string) (*model.Task, error)

	// GetTasks returns every task visible to the actor, newest first.
	GetTasks(ctx context.Context) ([]model.Task, error)

	UpdateTask(ctx context.Context, id string, input model.UpdateTaskInput) (*model.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status model.TaskStatus) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error

	// TaskProgress returns the percentage of checked items across all
	// checklists of a task.
	TaskProgress(ctx context.Context, id string) (int, error)

	AddChecklist(ctx context.Context, taskID, title string, items []model.ChecklistItemInput) (*model.Checklist, error)
	UpdateChecklist(ctx context.Context, id, title string) (*model.Checklist, error)
	DeleteChecklist(ctx context.Context, id string) error

	// ReorderChecklists sets each checklist's position to its index in
	// checklistIDs. IDs of checklists on other tasks are ignored.
	ReorderChecklists(ctx context.Context, taskID string, checklistIDs []string) error

	AddChecklistItem(ctx context.Context, checklistID, content string) (*model.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, id string, input model.UpdateChecklistItemInput) (*model.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, id string) error
	ToggleChecklistItem(ctx context.Context, id string) (*model.ChecklistItem, error)
	ReorderChecklistItems(ctx context.Context, checklistID string, itemIDs []string) error

	AssignUser(ctx context.Context, taskID, userID string) (*model.Assignment, error)
	UnassignUser(ctx context.Context, taskID, userID string) error

	AddTagToTask(ctx context.Context, taskID, tagID string) error
	RemoveTagFromTask(ctx context.Context, taskID, tagID string) error
}

// TagService manages the global tag catalogue. Every call requires an
// actor in the context and returns ErrUnauthenticated without one.
type TagService interface {
	// CreateTag returns ErrConflict if a tag with the same name exists.
	CreateTag(ctx context.Context, input model.CreateTagInput) (*model.Tag, error)

	// GetTags returns all tags ordered by name.
	GetTags(ctx context.Context) ([]model.Tag, error)

	// GetOrCreateTag returns the tag named name, creating it on a miss.
	// A concurrent creation of the same name surfaces as ErrConflict.
	GetOrCreateTag(ctx context.Context, name, color string) (*model.Tag, error)

	// ResolveTags trims names, drops blanks and duplicates and resolves the
	// rest concurrently with GetOrCreateTag. Tags are returned in the order
	// their names first appear.
	ResolveTags(ctx context.Context, names []string) ([]model.Tag, error)
}

type AuthService interface {
	// SignUp registers a user with the given email and password.
	//
	// It hashes the password, creates a session with the given
	// fingerprint and returns a fresh JWT token pair.
	//
	// It returns ErrUserAlreadyExists if the email is taken.
	SignUp(ctx context.Context, params SignUpParams) (*AuthResult, error)

	// SignIn authenticates the user by email and password.
	//
	// It replaces the user's sessions on the same fingerprint with a new
	// one and generates a new JWT token pair.
	//
	// It returns ErrUserNotFound if the user with the given
	// email doesn't exist or ErrUserPasswordMismatch if the
	// given password doesn't match the user's password.
	SignIn(ctx context.Context, params SignInParams) (*AuthResult, error)

	// Refresh rotates the refresh token of the session holding it.
	//
	// It returns ErrSessionNotFound if no session holds the token on the
	// given fingerprint or ErrSessionExpired if the session is expired.
	Refresh(ctx context.Context, params RefreshParams) (*AuthResult, error)

	// SignOut invalidates all sessions of the user.
	SignOut(ctx context.Context, userID string) error

	// Authenticate validates an access token and returns the session it
	// belongs to. It returns ErrUnauthenticated for an invalid or expired
	// token and ErrSessionNotFound when the session was signed out.
	Authenticate(ctx context.Context, accessToken string) (*model.Session, error)

	CurrentUser(ctx context.Context, userID string) (*model.User, error)
	UpdatePassword(ctx context.Context, userID, newPassword string) error

	// Subscribe registers a listener for auth state changes and returns a
	// function that removes it.
	Subscribe(listener AuthListener) (unsubscribe func())
}

type UserService interface {
	// ListTeamMembers returns every registered user as a possible assignee.
	ListTeamMembers(ctx context.Context) ([]model.TeamMember, error)
}

type SignUpParams struct {
	Email       string
	Password    string
	FullName    string
	Fingerprint string
}

type SignInParams struct {
	Email       string
	Password    string
	Fingerprint string
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

type AuthResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}
