package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlerImpl) Register(router gin.IRouter) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authRouter := router.Group("/auth")
	authRouter.POST("/signup", h.HandleSignUp)
	authRouter.POST("/signin", h.HandleSignIn)
	authRouter.POST("/refresh", h.HandleRefresh)
	authRouter.POST("/signout", h.HandleAuthMiddleware, h.HandleSignOut)
	authRouter.GET("/user", h.HandleAuthMiddleware, h.HandleCurrentUser)
	authRouter.PUT("/password", h.HandleAuthMiddleware, h.HandleUpdatePassword)

	protected := router.Group("", h.HandleAuthMiddleware)

	tasks := protected.Group("/tasks")
	tasks.GET("", h.HandleGetTasks)
	tasks.POST("", h.HandleCreateTask)
	tasks.GET("/:id", h.HandleGetTask)
	tasks.PATCH("/:id", h.HandleUpdateTask)
	tasks.PUT("/:id/status", h.HandleSetTaskStatus)
	tasks.DELETE("/:id", h.HandleDeleteTask)
	tasks.GET("/:id/progress", h.HandleGetTaskProgress)
	tasks.POST("/:id/checklists", h.HandleAddChecklist)
	tasks.PUT("/:id/checklists/order", h.HandleReorderChecklists)
	tasks.POST("/:id/assignments", h.HandleAssignUser)
	tasks.DELETE("/:id/assignments/:userId", h.HandleUnassignUser)
	tasks.POST("/:id/tags", h.HandleAddTagToTask)
	tasks.DELETE("/:id/tags/:tagId", h.HandleRemoveTagFromTask)

	checklists := protected.Group("/checklists")
	checklists.PATCH("/:id", h.HandleRenameChecklist)
	checklists.DELETE("/:id", h.HandleDeleteChecklist)
	checklists.POST("/:id/items", h.HandleAddChecklistItem)
	checklists.PUT("/:id/items/order", h.HandleReorderChecklistItems)

	items := protected.Group("/items")
	items.PATCH("/:id", h.HandleUpdateChecklistItem)
	items.DELETE("/:id", h.HandleDeleteChecklistItem)
	items.POST("/:id/toggle", h.HandleToggleChecklistItem)

	tags := protected.Group("/tags")
	tags.GET("", h.HandleGetTags)
	tags.POST("", h.HandleCreateTag)
	tags.POST("/resolve", h.HandleResolveTags)

	protected.GET("/team-members", h.HandleGetTeamMembers)
}
