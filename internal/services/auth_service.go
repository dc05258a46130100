package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/store"
)

// MinPasswordLength is the shortest password accepted on sign up and
// password change.
const MinPasswordLength = 8

type authServiceImpl struct {
	*authEvents

	logger             zerolog.Logger
	store              store.Store
	jwtIssuer          string
	jwtSigningKey      []byte
	jwtAccessTokenTTL  time.Duration
	jwtRefreshTokenTTL time.Duration
}

func NewAuthService(
	logger zerolog.Logger,
	store store.Store,
	jwtIssuer string,
	jwtSigningKey []byte,
	jwtAccessTokenTTL time.Duration,
	jwtRefreshTokenTTL time.Duration,
) AuthService {
	return &authServiceImpl{
		authEvents:         newAuthEvents(),
		logger:             logger,
		store:              store,
		jwtIssuer:          jwtIssuer,
		jwtSigningKey:      jwtSigningKey,
		jwtAccessTokenTTL:  jwtAccessTokenTTL,
		jwtRefreshTokenTTL: jwtRefreshTokenTTL,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authServiceImpl) SignUp(ctx context.Context, params SignUpParams) (*AuthResult, error) {
	user := model.User{
		Email:    normalizeEmail(params.Email),
		FullName: strings.TrimSpace(params.FullName),
	}
	if !strings.Contains(user.Email, "@") {
		return nil, invalidInput("a valid email is required")
	}
	if len(params.Password) < MinPasswordLength {
		return nil, invalidInput(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	passwordHash, err := argon2id.CreateHash(params.Password, argon2id.DefaultParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}
	user.PasswordHash = passwordHash

	var result *AuthResult
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateUser(ctx, &user); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrUserAlreadyExists
			}
			return err
		}
		s.logger.Debug().
			Str("user_id", user.ID).
			Str("email", user.Email).
			Msg("inserted user")

		r, err := s.startSession(ctx, tx, user.ID, params.Fingerprint)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("email", user.Email).
			Msg("failed to sign up")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("session_id", result.SessionID).
		Msg("signed up")
	s.emit(AuthChange{Event: AuthEventSignedIn, UserID: user.ID, Tokens: result})
	return result, nil
}

func (s *authServiceImpl) SignIn(ctx context.Context, params SignInParams) (*AuthResult, error) {
	email := normalizeEmail(params.Email)

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Error().
				Str("email", email).
				Msg("user not found")
			return nil, ErrUserNotFound
		}
		s.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to select user by email")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("selected user")

	match, err := argon2id.ComparePasswordAndHash(params.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Error().Msg("passwords do not match")
		return nil, ErrUserPasswordMismatch
	}

	var result *AuthResult
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		affected, err := tx.DeleteSessionsByFingerprint(ctx, user.ID, params.Fingerprint)
		if err != nil {
			return err
		}
		s.logger.Debug().
			Str("user_id", user.ID).
			Int64("affected", affected).
			Msg("deleted sessions by fingerprint")

		result, err = s.startSession(ctx, tx, user.ID, params.Fingerprint)
		return err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to sign in")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("session_id", result.SessionID).
		Msg("signed in")
	s.emit(AuthChange{Event: AuthEventSignedIn, UserID: user.ID, Tokens: result})
	return result, nil
}

// startSession inserts a session for the user and issues its token pair.
func (s *authServiceImpl) startSession(
	ctx context.Context,
	st store.Store,
	userID, fingerprint string,
) (*AuthResult, error) {
	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, err
	}

	session := model.Session{
		UserID:       userID,
		Fingerprint:  fingerprint,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.jwtRefreshTokenTTL),
	}
	if err := st.CreateSession(ctx, &session); err != nil {
		return nil, err
	}
	s.logger.Debug().
		Str("session_id", session.ID).
		Msg("inserted session")

	accessToken, accessTokenExpiresAt, err := s.generateAccessToken(session.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		UserID:                userID,
		SessionID:             session.ID,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessTokenExpiresAt,
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *authServiceImpl) Refresh(ctx context.Context, params RefreshParams) (*AuthResult, error) {
	session, err := s.store.GetSessionByRefreshToken(ctx, params.RefreshToken, params.Fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Error().Msg("session not found")
			return nil, ErrSessionNotFound
		}
		s.logger.Error().
			Err(err).
			Msg("failed to select session by refresh token")
		return nil, err
	}

	if session.ExpiresAt.Before(time.Now()) {
		s.logger.Error().
			Str("session_id", session.ID).
			Time("expires_at", session.ExpiresAt).
			Msg("session expired")
		return nil, ErrSessionExpired
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate refresh token")
		return nil, err
	}
	expiresAt := time.Now().Add(s.jwtRefreshTokenTTL)

	if err := s.store.RotateSession(ctx, session.ID, refreshToken, expiresAt); err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to update session")
		return nil, err
	}
	s.logger.Debug().
		Str("session_id", session.ID).
		Time("expires_at", expiresAt).
		Msg("updated session")

	accessToken, accessTokenExpiresAt, err := s.generateAccessToken(session.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", session.UserID).
		Str("session_id", session.ID).
		Msg("refreshed session")
	result := &AuthResult{
		UserID:                session.UserID,
		SessionID:             session.ID,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessTokenExpiresAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
	}
	s.emit(AuthChange{Event: AuthEventTokenRefreshed, UserID: session.UserID, Tokens: result})
	return result, nil
}

func (s *authServiceImpl) SignOut(ctx context.Context, userID string) error {
	affected, err := s.store.DeleteSessions(ctx, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to delete sessions by user id")
		return err
	}
	s.logger.Debug().
		Str("user_id", userID).
		Int64("affected", affected).
		Msg("deleted sessions by user id")

	s.logger.Info().
		Str("user_id", userID).
		Msg("signed out")
	s.emit(AuthChange{Event: AuthEventSignedOut, UserID: userID})
	return nil
}

func (s *authServiceImpl) Authenticate(ctx context.Context, accessToken string) (*model.Session, error) {
	claims, err := s.parseJWTToken(accessToken)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Msg("rejected access token")
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	session, err := s.store.GetSession(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Error().
				Str("session_id", claims.Subject).
				Msg("session not found")
			return nil, ErrSessionNotFound
		}
		s.logger.Error().
			Err(err).
			Str("session_id", claims.Subject).
			Msg("failed to select session")
		return nil, err
	}
	return session, nil
}

func (s *authServiceImpl) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select user")
		return nil, err
	}
	return user, nil
}

func (s *authServiceImpl) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return invalidInput(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	passwordHash, err := argon2id.CreateHash(newPassword, argon2id.DefaultParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return err
	}

	if err := s.store.UpdateUserPassword(ctx, userID, passwordHash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to update password")
		return err
	}

	s.logger.Info().
		Str("user_id", userID).
		Msg("updated password")
	s.emit(AuthChange{Event: AuthEventUserUpdated, UserID: userID})
	return nil
}

func (s *authServiceImpl) parseJWTToken(token string) (*jwt.RegisteredClaims, error) {
	t, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.jwtSigningKey, nil
		},
		jwt.WithIssuer(s.jwtIssuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token is expired: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := t.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("failed to parse token: missing subject")
	}
	return claims, nil
}

func (s *authServiceImpl) generateRefreshToken() (string, error) {
	const length = 32
	bytes := make([]byte, length)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func (s *authServiceImpl) generateAccessToken(sessionID string) (string, time.Time, error) {
	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate id: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(s.jwtAccessTokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        tokenUUID.String(),
		Issuer:    s.jwtIssuer,
		Subject:   sessionID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := token.SignedString(s.jwtSigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}
