package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mpmf/NexxtTask/internal/services"
)

type Handler interface {
	// Register mounts every route on router, which is expected to be
	// the /api/v1 group.
	Register(router gin.IRouter)

	HandleAuthMiddleware(c *gin.Context)
}

type handlerImpl struct {
	logger zerolog.Logger
	auth   services.AuthService
	tasks  services.TaskService
	tags   services.TagService
	users  services.UserService
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	tagService services.TagService,
	userService services.UserService,
) Handler {
	return &handlerImpl{
		logger: logger,
		auth:   authService,
		tasks:  taskService,
		tags:   tagService,
		users:  userService,
	}
}

// actor returns the request context carrying the authenticated user.
func actor(c *gin.Context) context.Context {
	userID, _ := getStringFromContext(c, userIDCtxKey)
	return services.WithActor(c.Request.Context(), userID)
}

func getStringFromContext(c *gin.Context, key string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}
