package services

import "context"

type actorCtxKey struct{}

// WithActor returns a context carrying the id of the user on whose behalf
// service calls are made.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, userID)
}

// ActorFrom returns the acting user id, or ErrUnauthenticated if the
// context carries none.
func ActorFrom(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(actorCtxKey{}).(string)
	if userID == "" {
		return "", ErrUnauthenticated
	}
	return userID, nil
}
