package services

import (
	"slices"
	"sync"
)

// AuthEvent names a change of authentication state.
type AuthEvent string

const (
	AuthEventSignedIn       AuthEvent = "SIGNED_IN"
	AuthEventSignedOut      AuthEvent = "SIGNED_OUT"
	AuthEventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
	AuthEventUserUpdated    AuthEvent = "USER_UPDATED"
)

// AuthChange is delivered to listeners on every auth state change.
// Tokens is set for SIGNED_IN and TOKEN_REFRESHED only.
type AuthChange struct {
	Event  AuthEvent
	UserID string
	Tokens *AuthResult
}

type AuthListener func(AuthChange)

type authEvents struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]AuthListener
}

func newAuthEvents() *authEvents {
	return &authEvents{listeners: make(map[int]AuthListener)}
}

func (e *authEvents) Subscribe(listener AuthListener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.listeners[id] = listener

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.listeners, id)
			e.mu.Unlock()
		})
	}
}

// emit calls every listener registered at the time of the call, in
// subscription order, on the calling goroutine.
func (e *authEvents) emit(change AuthChange) {
	e.mu.Lock()
	ids := make([]int, 0, len(e.listeners))
	for id := range e.listeners {
		ids = append(ids, id)
	}
	listeners := make([]AuthListener, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		listeners = append(listeners, e.listeners[id])
	}
	e.mu.Unlock()

	for _, l := range listeners {
		l(change)
	}
}
