package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/taskforge/task-assignment-api/internal/dto"
	apierrors "github.com/taskforge/task-assignment-api/internal/errors"
	"github.com/taskforge/task-assignment-api/internal/middleware"
	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/policy"
	"github.com/taskforge/task-assignment-api/internal/services"
	"github.com/taskforge/task-assignment-api/internal/utils"
)

// APITaskHandler serves the token-authenticated task endpoints.
type APITaskHandler struct {
	taskService *services.TaskService
	log         *logrus.Logger
}

// NewAPITaskHandler creates a new APITaskHandler.
func NewAPITaskHandler(taskService *services.TaskService, log *logrus.Logger) *APITaskHandler {
	return &APITaskHandler{taskService: taskService, log: log}
}

// MyTasks lists the tasks assigned to the authenticated user, most recently
// updated first.
// GET /api/my-tasks
func (h *APITaskHandler) MyTasks(c *gin.Context) {
	const op = "handlers.APITask.MyTasks"

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(actor, services.ListTasksInput{
		OrderByUpdated: true,
		Page:           params.Page,
		PageSize:       params.Limit,
	})
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("failed to list tasks")
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks: dto.ToTaskDTOs(tasks),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

type updateTaskRequest struct {
	Status           *string  `json:"status"`
	CompletionReport *string  `json:"completion_report"`
	WorkedHours      *float64 `json:"worked_hours"`
}

// UpdateTask partially updates a task assigned to the authenticated user.
// PATCH /api/tasks/:id/update
func (h *APITaskHandler) UpdateTask(c *gin.Context) {
	const op = "handlers.APITask.UpdateTask"

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := parseIDParam(c)
	if err != nil {
		apierrors.NotFound(c, "Task not found")
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		CompletionReport: req.CompletionReport,
		WorkedHours:      req.WorkedHours,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}

	task, err := h.taskService.UpdateTask(actor, taskID, input)
	if err != nil {
		var completionErr *policy.CompletionError
		var fieldErr *services.FieldPermissionError
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			apierrors.NotFound(c, "Task not found")
		case errors.Is(err, services.ErrTaskForbidden):
			apierrors.Forbidden(c, "You can only update tasks assigned to you.")
		case errors.Is(err, policy.ErrTaskTerminal):
			apierrors.Conflict(c, "Only pending or in-progress tasks can be updated.")
		case errors.As(err, &completionErr):
			apierrors.BadRequestWithDetails(c, completionErr.Error(), gin.H{"missing": completionErr.Missing})
		case errors.As(err, &fieldErr):
			apierrors.Forbidden(c, fieldErr.Error())
		case errors.Is(err, services.ErrInvalidStatus):
			apierrors.BadRequest(c, "Invalid status value")
		default:
			h.log.WithField("operation", op).WithError(err).Error("failed to update task")
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CompletedTasks lists completed tasks visible to the authenticated admin,
// most recently updated first.
// GET /api/tasks/completed
func (h *APITaskHandler) CompletedTasks(c *gin.Context) {
	const op = "handlers.APITask.CompletedTasks"

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(actor, services.ListTasksInput{
		CompletedOnly: true,
		Page:          params.Page,
		PageSize:      params.Limit,
	})
	if err != nil {
		if errors.Is(err, services.ErrCompletedForbidden) {
			apierrors.Forbidden(c, "")
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("failed to list completed tasks")
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks: dto.ToTaskDTOs(tasks),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}
