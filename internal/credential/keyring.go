package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog"

	"github.com/mpmf/NexxtTask/internal/services"
)

const (
	serviceName = "nexxttask"
	sessionKey  = "session"
)

// ErrNoSession is returned when nobody is signed in on this machine.
var ErrNoSession = errors.New("not signed in")

// Session is the token pair kept between CLI invocations.
type Session struct {
	UserID                string    `json:"user_id"`
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// AccessTokenExpired reports whether the access token is expired at now,
// with a small margin for clock skew.
func (s Session) AccessTokenExpired(now time.Time) bool {
	return !now.Add(30 * time.Second).Before(s.AccessTokenExpiresAt)
}

// SessionFromAuth converts a token pair issued by the auth service.
func SessionFromAuth(r *services.AuthResult) Session {
	return Session{
		UserID:                r.UserID,
		AccessToken:           r.AccessToken,
		AccessTokenExpiresAt:  r.AccessTokenExpiresAt,
		RefreshToken:          r.RefreshToken,
		RefreshTokenExpiresAt: r.RefreshTokenExpiresAt,
	}
}

// Keyring persists the session in the OS keyring.
type Keyring struct {
	ring keyring.Keyring

	mu       sync.Mutex
	trackErr error
}

// Open returns a Keyring backed by the first available system backend,
// falling back to an encrypted file under fileDir.
func Open(fileDir string) (*Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("nexxttask-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Keyring{ring: ring}, nil
}

// New wraps an already opened keyring.
func New(ring keyring.Keyring) *Keyring {
	return &Keyring{ring: ring}
}

// LoadSession returns the stored session or ErrNoSession.
func (k *Keyring) LoadSession() (*Session, error) {
	item, err := k.ring.Get(sessionKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("getting credential %q: %w", sessionKey, err)
	}

	var s Session
	if err := json.Unmarshal(item.Data, &s); err != nil {
		return nil, fmt.Errorf("decoding credential %q: %w", sessionKey, err)
	}
	return &s, nil
}

// SaveSession stores s, replacing any previous session.
func (k *Keyring) SaveSession(s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding credential %q: %w", sessionKey, err)
	}

	err = k.ring.Set(keyring.Item{
		Key:         sessionKey,
		Data:        data,
		Label:       "NexxtTask session",
		Description: "access and refresh token",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", sessionKey, err)
	}
	return nil
}

// ClearSession removes the stored session. Clearing an empty keyring is
// not an error.
func (k *Keyring) ClearSession() error {
	err := k.ring.Remove(sessionKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", sessionKey, err)
	}
	return nil
}

// Track keeps the keyring in step with auth changes: new token pairs are
// saved and signing out clears them.
func (k *Keyring) Track(logger zerolog.Logger, auth services.AuthService) (untrack func()) {
	return auth.Subscribe(func(change services.AuthChange) {
		var err error
		switch change.Event {
		case services.AuthEventSignedIn, services.AuthEventTokenRefreshed:
			if change.Tokens != nil {
				err = k.SaveSession(SessionFromAuth(change.Tokens))
			}
		case services.AuthEventSignedOut:
			err = k.ClearSession()
		}
		if err != nil {
			logger.Error().
				Err(err).
				Str("event", string(change.Event)).
				Msg("failed to update stored session")
			k.mu.Lock()
			k.trackErr = err
			k.mu.Unlock()
		}
	})
}

// TrackErr returns the last error Track hit while updating the keyring and
// resets it.
func (k *Keyring) TrackErr() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	err := k.trackErr
	k.trackErr = nil
	return err
}
