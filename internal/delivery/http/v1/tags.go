package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mpmf/NexxtTask/internal/model"
)

type createTagRequest struct {
	Name  string `json:"name" binding:"required,max=64"`
	Color string `json:"color" binding:"omitempty,max=32"`
}

type resolveTagsRequest struct {
	Names []string `json:"names" binding:"required"`
}

type addTagRequest struct {
	TagID string `json:"tag_id" binding:"required"`
}

type assignRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (h *handlerImpl) HandleGetTags(c *gin.Context) {
	tags, err := h.tags.GetTags(actor(c))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get tags")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *handlerImpl) HandleCreateTag(c *gin.Context) {
	var req createTagRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	tag, err := h.tags.CreateTag(actor(c), model.CreateTagInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create tag")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *handlerImpl) HandleResolveTags(c *gin.Context) {
	var req resolveTagsRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	tags, err := h.tags.ResolveTags(actor(c), req.Names)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to resolve tags")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *handlerImpl) HandleAddTagToTask(c *gin.Context) {
	var req addTagRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	err = h.tasks.AddTagToTask(actor(c), c.Param("id"), req.TagID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to add tag to task")
		abort(c, newServiceError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleRemoveTagFromTask(c *gin.Context) {
	err := h.tasks.RemoveTagFromTask(actor(c), c.Param("id"), c.Param("tagId"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to remove tag from task")
		abort(c, newServiceError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleAssignUser(c *gin.Context) {
	var req assignRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	assignment, err := h.tasks.AssignUser(actor(c), c.Param("id"), req.UserID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to assign user")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

func (h *handlerImpl) HandleUnassignUser(c *gin.Context) {
	err := h.tasks.UnassignUser(actor(c), c.Param("id"), c.Param("userId"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to unassign user")
		abort(c, newServiceError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleGetTeamMembers(c *gin.Context) {
	members, err := h.users.ListTeamMembers(c.Request.Context())
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list team members")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, members)
}
