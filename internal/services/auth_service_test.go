package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/services"
	"github.com/mpmf/NexxtTask/internal/store"
	"github.com/mpmf/NexxtTask/tests/testutil"
)

const fingerprint = "test-client"

func newAuthService(t *testing.T, s store.Store, accessTTL time.Duration) services.AuthService {
	t.Helper()
	return services.NewAuthService(
		zerolog.Nop(),
		s,
		"nexxttask-test",
		[]byte("test-signing-key"),
		accessTTL,
		24*time.Hour,
	)
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	auth := newAuthService(t, s, time.Hour)

	var events []services.AuthEvent
	unsubscribe := auth.Subscribe(func(c services.AuthChange) {
		events = append(events, c.Event)
	})

	res, err := auth.SignUp(ctx, services.SignUpParams{
		Email:       " Alice@Example.com ",
		Password:    "correct horse",
		FullName:    "Alice",
		Fingerprint: fingerprint,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)

	user, err := auth.CurrentUser(ctx, res.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = auth.SignUp(ctx, services.SignUpParams{
		Email:       "alice@example.com",
		Password:    "another password",
		Fingerprint: fingerprint,
	})
	assert.ErrorIs(t, err, services.ErrUserAlreadyExists)

	_, err = auth.SignIn(ctx, services.SignInParams{Email: "alice@example.com", Password: "wrong password", Fingerprint: fingerprint})
	assert.ErrorIs(t, err, services.ErrUserPasswordMismatch)

	_, err = auth.SignIn(ctx, services.SignInParams{Email: "bob@example.com", Password: "whatever1", Fingerprint: fingerprint})
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	signedIn, err := auth.SignIn(ctx, services.SignInParams{Email: "ALICE@example.com", Password: "correct horse", Fingerprint: fingerprint})
	require.NoError(t, err)
	assert.Equal(t, res.UserID, signedIn.UserID)
	assert.NotEqual(t, res.SessionID, signedIn.SessionID)

	// The earlier session on the same client was replaced.
	_, err = auth.Authenticate(ctx, res.AccessToken)
	assert.ErrorIs(t, err, services.ErrSessionNotFound)

	session, err := auth.Authenticate(ctx, signedIn.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.UserID, session.UserID)

	unsubscribe()
	require.NoError(t, auth.SignOut(ctx, res.UserID))
	assert.Equal(t, []services.AuthEvent{services.AuthEventSignedIn, services.AuthEventSignedIn}, events)

	_, err = auth.Authenticate(ctx, signedIn.AccessToken)
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
}

func TestSignUp_Validation(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService(t, testutil.NewTestStore(t), time.Hour)

	_, err := auth.SignUp(ctx, services.SignUpParams{Email: "short@example.com", Password: "1234567"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = auth.SignUp(ctx, services.SignUpParams{Email: "not-an-email", Password: "12345678"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	auth := newAuthService(t, s, time.Hour)

	res, err := auth.SignUp(ctx, services.SignUpParams{Email: "r@example.com", Password: "password1", Fingerprint: fingerprint})
	require.NoError(t, err)

	var refreshed []services.AuthChange
	auth.Subscribe(func(c services.AuthChange) { refreshed = append(refreshed, c) })

	_, err = auth.Refresh(ctx, services.RefreshParams{RefreshToken: res.RefreshToken, Fingerprint: "other-client"})
	assert.ErrorIs(t, err, services.ErrSessionNotFound)

	next, err := auth.Refresh(ctx, services.RefreshParams{RefreshToken: res.RefreshToken, Fingerprint: fingerprint})
	require.NoError(t, err)
	assert.Equal(t, res.SessionID, next.SessionID)
	assert.NotEqual(t, res.RefreshToken, next.RefreshToken)
	require.Len(t, refreshed, 1)
	assert.Equal(t, services.AuthEventTokenRefreshed, refreshed[0].Event)
	assert.Equal(t, next.RefreshToken, refreshed[0].Tokens.RefreshToken)

	// The old refresh token was rotated out.
	_, err = auth.Refresh(ctx, services.RefreshParams{RefreshToken: res.RefreshToken, Fingerprint: fingerprint})
	assert.ErrorIs(t, err, services.ErrSessionNotFound)

	expired := model.Session{
		UserID:       res.UserID,
		Fingerprint:  "stale-client",
		RefreshToken: "stale-token",
		ExpiresAt:    time.Now().Add(-time.Hour),
	}
	require.NoError(t, s.CreateSession(ctx, &expired))
	_, err = auth.Refresh(ctx, services.RefreshParams{RefreshToken: "stale-token", Fingerprint: "stale-client"})
	assert.ErrorIs(t, err, services.ErrSessionExpired)
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	expiring := newAuthService(t, s, -time.Minute)
	res, err := expiring.SignUp(ctx, services.SignUpParams{Email: "e@example.com", Password: "password1", Fingerprint: fingerprint})
	require.NoError(t, err)

	_, err = expiring.Authenticate(ctx, res.AccessToken)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = expiring.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	otherKey := services.NewAuthService(zerolog.Nop(), s, "nexxttask-test", []byte("other-key"), time.Hour, time.Hour)
	fresh, err := otherKey.SignIn(ctx, services.SignInParams{Email: "e@example.com", Password: "password1", Fingerprint: "second"})
	require.NoError(t, err)

	auth := newAuthService(t, s, time.Hour)
	_, err = auth.Authenticate(ctx, fresh.AccessToken)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService(t, testutil.NewTestStore(t), time.Hour)

	res, err := auth.SignUp(ctx, services.SignUpParams{Email: "p@example.com", Password: "password1", Fingerprint: fingerprint})
	require.NoError(t, err)

	var events []services.AuthEvent
	auth.Subscribe(func(c services.AuthChange) { events = append(events, c.Event) })

	assert.ErrorIs(t, auth.UpdatePassword(ctx, res.UserID, "short"), services.ErrInvalidInput)
	require.NoError(t, auth.UpdatePassword(ctx, res.UserID, "password2"))
	assert.Equal(t, []services.AuthEvent{services.AuthEventUserUpdated}, events)

	_, err = auth.SignIn(ctx, services.SignInParams{Email: "p@example.com", Password: "password1", Fingerprint: fingerprint})
	assert.ErrorIs(t, err, services.ErrUserPasswordMismatch)
	_, err = auth.SignIn(ctx, services.SignInParams{Email: "p@example.com", Password: "password2", Fingerprint: fingerprint})
	require.NoError(t, err)

	assert.ErrorIs(t, auth.UpdatePassword(ctx, "ghost", "password3"), services.ErrUserNotFound)
}

func TestListTeamMembers(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	users := services.NewUserService(zerolog.Nop(), s)

	named := testutil.CreateUser(t, s, "b@example.com")
	unnamed := model.User{Email: "carol@example.com", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, &unnamed))

	members, err := users.ListTeamMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, named.ID, members[0].ID)
	assert.Equal(t, "b", members[0].FullName)
	assert.Equal(t, "carol", members[1].FullName)
}

func TestActor(t *testing.T) {
	_, err := services.ActorFrom(context.Background())
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	id, err := services.ActorFrom(services.WithActor(context.Background(), "u1"))
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}
