package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mpmf/NexxtTask/internal/model"
)

const (
	viewAll      = "all"
	viewActive   = "active"
	viewArchived = "archived"
)

type listTasksQuery struct {
	Tag     string `form:"tag"`
	View    string `form:"view" binding:"omitempty,oneof=all active archived"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

type listTasksResponse struct {
	Tasks      []model.Task `json:"tasks"`
	Page       int          `json:"page"`
	PerPage    int          `json:"per_page"`
	TotalPages int          `json:"total_pages"`
	Total      int          `json:"total"`
}

type checklistRequest struct {
	Title string   `json:"title" binding:"required,max=255"`
	Items []string `json:"items" binding:"dive,required,max=1000"`
}

func (r checklistRequest) itemInputs() []model.ChecklistItemInput {
	items := make([]model.ChecklistItemInput, len(r.Items))
	for i, content := range r.Items {
		items[i] = model.ChecklistItemInput{Content: content}
	}
	return items
}

type createTaskRequest struct {
	Title           string             `json:"title" binding:"required,max=255"`
	Description     string             `json:"description" binding:"max=10000"`
	Checklists      []checklistRequest `json:"checklists" binding:"dive"`
	AssignedUserIDs []string           `json:"assigned_user_ids"`
	TagIDs          []string           `json:"tag_ids"`
	TagNames        []string           `json:"tag_names"`
}

type updateTaskRequest struct {
	Title       *string           `json:"title" binding:"omitempty,max=255"`
	Description *string           `json:"description" binding:"omitempty,max=10000"`
	Status      *model.TaskStatus `json:"status"`
}

type updateTaskStatusRequest struct {
	Status model.TaskStatus `json:"status" binding:"required"`
}

type progressResponse struct {
	TaskID   string `json:"task_id"`
	Progress int    `json:"progress"`
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	var q listTasksQuery
	err := c.ShouldBindQuery(&q)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind query")
		abort(c, newBadRequestError("invalid query parameters"))
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = model.DefaultPerPage
	}

	tasks, err := h.tasks.GetTasks(actor(c))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get tasks")
		abort(c, newServiceError(err))
		return
	}

	tasks = model.FilterByTag(tasks, q.Tag)
	active, archived := model.SplitByArchive(tasks)
	switch q.View {
	case viewActive:
		tasks = active
	case viewArchived:
		tasks = archived
	}

	page, totalPages := model.Paginate(tasks, q.Page, q.PerPage)
	c.JSON(http.StatusOK, listTasksResponse{
		Tasks:      page,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: totalPages,
		Total:      len(tasks),
	})
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	ctx := actor(c)
	input := model.CreateTaskInput{
		Title:           req.Title,
		Description:     req.Description,
		AssignedUserIDs: req.AssignedUserIDs,
		TagIDs:          req.TagIDs,
	}
	for _, cl := range req.Checklists {
		input.Checklists = append(input.Checklists, model.ChecklistInput{
			Title: cl.Title,
			Items: cl.itemInputs(),
		})
	}

	if len(req.TagNames) > 0 {
		tags, err := h.tags.ResolveTags(ctx, req.TagNames)
		if err != nil {
			h.logger.Error().
				Err(err).
				Msg("failed to resolve tags")
			abort(c, newServiceError(err))
			return
		}
		for _, t := range tags {
			input.TagIDs = append(input.TagIDs, t.ID)
		}
	}

	task, err := h.tasks.CreateTask(ctx, input)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, newServiceError(err))
		return
	}

	h.logger.Info().
		Str("task_id", task.ID).
		Msg("created task")
	c.JSON(http.StatusCreated, task)
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	task, err := h.tasks.GetTask(actor(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to get task")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.UpdateTask(actor(c), c.Param("id"), model.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to update task")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleSetTaskStatus(c *gin.Context) {
	var req updateTaskStatusRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.UpdateTaskStatus(actor(c), c.Param("id"), req.Status)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to set task status")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	err := h.tasks.DeleteTask(actor(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to delete task")
		abort(c, newServiceError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleGetTaskProgress(c *gin.Context) {
	progress, err := h.tasks.TaskProgress(actor(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to get task progress")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, progressResponse{TaskID: c.Param("id"), Progress: progress})
}
