package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mpmf/NexxtTask/internal/model"
)

const (
	userColumns    = "id, email, full_name, password_hash, created_at, updated_at"
	sessionColumns = "id, user_id, fingerprint, refresh_token, expires_at, created_at, updated_at"
)

// CreateUser inserts a new user. A duplicate e-mail returns ErrConflict.
func (s *SQLStore) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating user id: %w", err)
		}
		user.ID = id.String()
	}
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt

	_, err := s.exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.FullName, user.PasswordHash,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := s.get(ctx, &u, "SELECT "+userColumns+" FROM users WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return &u, nil
}

// GetUserByEmail retrieves a user by e-mail address.
func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.get(ctx, &u, "SELECT "+userColumns+" FROM users WHERE email = ?", email); err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return &u, nil
}

// GetUsers retrieves every registered user ordered by e-mail.
func (s *SQLStore) GetUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := s.selectAll(ctx, &users, "SELECT "+userColumns+" FROM users ORDER BY email"); err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	return users, nil
}

// UpdateUserPassword replaces a user's password hash.
func (s *SQLStore) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	err := s.execAffecting(ctx, "user "+id,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		passwordHash, now(), id)
	if err != nil {
		return fmt.Errorf("updating password of user %s: %w", id, err)
	}
	return nil
}

// CreateSession inserts a new session.
func (s *SQLStore) CreateSession(ctx context.Context, session *model.Session) error {
	if session.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating session id: %w", err)
		}
		session.ID = id.String()
	}
	session.CreatedAt = now()
	session.UpdatedAt = session.CreatedAt
	session.ExpiresAt = session.ExpiresAt.UTC()

	_, err := s.exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.Fingerprint, session.RefreshToken,
		session.ExpiresAt, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var sess model.Session
	if err := s.get(ctx, &sess, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}
	return &sess, nil
}

// GetSessionByRefreshToken retrieves the session holding refreshToken for
// the client identified by fingerprint.
func (s *SQLStore) GetSessionByRefreshToken(
	ctx context.Context,
	refreshToken, fingerprint string,
) (*model.Session, error) {
	var sess model.Session
	err := s.get(ctx, &sess,
		"SELECT "+sessionColumns+" FROM sessions WHERE refresh_token = ? AND fingerprint = ?",
		refreshToken, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("getting session by refresh token: %w", err)
	}
	return &sess, nil
}

// RotateSession stores a new refresh token and expiry for a session.
func (s *SQLStore) RotateSession(
	ctx context.Context,
	id, refreshToken string,
	expiresAt time.Time,
) error {
	err := s.execAffecting(ctx, "session "+id, `
		UPDATE sessions
		SET refresh_token = ?, expires_at = ?, updated_at = ?
		WHERE id = ?`,
		refreshToken, expiresAt.UTC(), now(), id)
	if err != nil {
		return fmt.Errorf("rotating session %s: %w", id, err)
	}
	return nil
}

// DeleteSessions removes every session of a user.
func (s *SQLStore) DeleteSessions(ctx context.Context, userID string) (int64, error) {
	result, err := s.exec(ctx, "DELETE FROM sessions WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("deleting sessions of user %s: %w", userID, err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// DeleteSessionsByFingerprint removes the sessions a user holds on one client.
func (s *SQLStore) DeleteSessionsByFingerprint(
	ctx context.Context,
	userID, fingerprint string,
) (int64, error) {
	result, err := s.exec(ctx,
		"DELETE FROM sessions WHERE user_id = ? AND fingerprint = ?", userID, fingerprint)
	if err != nil {
		return 0, fmt.Errorf("deleting sessions of user %s: %w", userID, err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
