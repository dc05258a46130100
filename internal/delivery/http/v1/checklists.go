package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mpmf/NexxtTask/internal/model"
)

type renameChecklistRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

type reorderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type addItemRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

type updateItemRequest struct {
	Content   *string `json:"content" binding:"omitempty,max=1000"`
	IsChecked *bool   `json:"is_checked"`
}

func (h *handlerImpl) HandleAddChecklist(c *gin.Context) {
	var req checklistRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	checklist, err := h.tasks.AddChecklist(actor(c), c.Param("id"), req.Title, req.itemInputs())
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to add checklist")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusCreated, checklist)
}

func (h *handlerImpl) HandleReorderChecklists(c *gin.Context) {
	var req reorderRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	err = h.tasks.ReorderChecklists(actor(c), c.Param("id"), req.IDs)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to reorder checklists")
		abort(c, newServiceError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleRenameChecklist(c *gin.Context) {
	var req renameChecklistRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	checklist, err := h.tasks.UpdateChecklist(actor(c), c.Param("id"), req.Title)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("checklist_id", c.Param("id")).
			Msg("failed to rename checklist")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, checklist)
}

func (h *handlerImpl) HandleDeleteChecklist(c *gin.Context) {
	err := h.tasks.DeleteChecklist(actor(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("checklist_id", c.Param("id")).
			Msg("failed to delete checklist")
		abort(c, newServiceError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleAddChecklistItem(c *gin.Context) {
	var req addItemRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	item, err := h.tasks.AddChecklistItem(actor(c), c.Param("id"), req.Content)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("checklist_id", c.Param("id")).
			Msg("failed to add checklist item")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *handlerImpl) HandleReorderChecklistItems(c *gin.Context) {
	var req reorderRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	err = h.tasks.ReorderChecklistItems(actor(c), c.Param("id"), req.IDs)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("checklist_id", c.Param("id")).
			Msg("failed to reorder checklist items")
		abort(c, newServiceError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleUpdateChecklistItem(c *gin.Context) {
	var req updateItemRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	item, err := h.tasks.UpdateChecklistItem(actor(c), c.Param("id"), model.UpdateChecklistItemInput{
		Content:   req.Content,
		IsChecked: req.IsChecked,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("item_id", c.Param("id")).
			Msg("failed to update checklist item")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handlerImpl) HandleToggleChecklistItem(c *gin.Context) {
	item, err := h.tasks.ToggleChecklistItem(actor(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("item_id", c.Param("id")).
			Msg("failed to toggle checklist item")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handlerImpl) HandleDeleteChecklistItem(c *gin.Context) {
	err := h.tasks.DeleteChecklistItem(actor(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("item_id", c.Param("id")).
			Msg("failed to delete checklist item")
		abort(c, newServiceError(err))
		return
	}
	c.Status(http.StatusNoContent)
}
