package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/store"
)

// NewTestStore creates an in-memory SQLStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// CreateUser inserts a user with the given e-mail and a placeholder
// password hash. The local part of the e-mail becomes the full name.
func CreateUser(t *testing.T, s store.Store, email string) model.User {
	t.Helper()

	name, _, _ := strings.Cut(email, "@")
	u := model.User{
		Email:        email,
		FullName:     name,
		PasswordHash: "not-a-real-hash",
	}
	if err := s.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("creating test user %s: %v", email, err)
	}
	return u
}

// CreateTask inserts a bare task owned by ownerID.
func CreateTask(t *testing.T, s store.Store, ownerID, title string) model.Task {
	t.Helper()

	task := model.Task{Title: title, OwnerID: ownerID}
	if err := s.CreateTask(context.Background(), &task); err != nil {
		t.Fatalf("creating test task %q: %v", title, err)
	}
	return task
}
