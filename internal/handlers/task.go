package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/taskforge/task-assignment-api/internal/middleware"
	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/policy"
	"github.com/taskforge/task-assignment-api/internal/services"
	"github.com/taskforge/task-assignment-api/internal/utils"
)

// TaskHandler serves the session-authenticated task pages.
type TaskHandler struct {
	taskService *services.TaskService
	userService *services.UserService
	log         *logrus.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, userService *services.UserService, log *logrus.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		userService: userService,
		log:         log,
	}
}

// CreateTaskPage renders the task creation form with the assignable accounts.
func (h *TaskHandler) CreateTaskPage(c *gin.Context) {
	const op = "handlers.Task.CreateTaskPage"

	assignees, err := h.userService.ListAssignable()
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("failed to list assignable users")
		flashError(c, "Failed to load users.")
	}

	render(c, http.StatusOK, "create_task.html", gin.H{
		"Assignees": assignees,
		"Form":      gin.H{},
	})
}

// CreateTask creates a task from the submitted form.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	const op = "handlers.Task.CreateTask"

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	assignedTo, _ := strconv.ParseUint(c.PostForm("assigned_to"), 10, 64)
	dueDate := utils.ParseDate(c.PostForm("due_date"))

	input := services.CreateTaskInput{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		AssignedToID: assignedTo,
	}
	if dueDate != nil {
		input.DueDate = *dueDate
	}

	if _, err := h.taskService.CreateTask(actor, input); err != nil {
		switch {
		case errors.Is(err, services.ErrTaskCreateForbidden):
			c.HTML(http.StatusForbidden, "403.html", gin.H{"User": actor})
			return
		case errors.Is(err, services.ErrTitleRequired),
			errors.Is(err, services.ErrDueDateRequired),
			errors.Is(err, services.ErrAssigneeNotFound),
			errors.Is(err, services.ErrAssigneeNotAllowed):
			flashError(c, capitalize(err.Error()))
		default:
			h.log.WithField("operation", op).WithError(err).Error("failed to create task")
			flashError(c, "Failed to create task.")
		}

		assignees, _ := h.userService.ListAssignable()
		render(c, http.StatusOK, "create_task.html", gin.H{
			"Assignees": assignees,
			"Form": gin.H{
				"Title":       input.Title,
				"Description": input.Description,
				"AssignedTo":  assignedTo,
				"DueDate":     c.PostForm("due_date"),
			},
		})
		return
	}

	flashSuccess(c, "Task created successfully!")
	c.Redirect(http.StatusFound, "/dashboard")
}

// ListTasks renders the scoped, filterable task list.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	const op = "handlers.Task.ListTasks"

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	input := services.ListTasksInput{
		Title:      c.Query("title"),
		Status:     c.Query("status"),
		AssignedBy: c.Query("assigned_by"),
		AssignedTo: c.Query("assigned_to"),
		// Malformed date literals parse to nil and the bound is dropped
		DueFrom: utils.ParseDate(c.Query("due_start")),
		DueTo:   utils.ParseDate(c.Query("due_end")),
	}

	tasks, _, err := h.taskService.ListTasks(actor, input)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("failed to list tasks")
		flashError(c, "Failed to load tasks.")
	}

	render(c, http.StatusOK, "task_list.html", gin.H{
		"Tasks": tasks,
		"Filters": gin.H{
			"Title":      input.Title,
			"Status":     input.Status,
			"AssignedBy": input.AssignedBy,
			"AssignedTo": input.AssignedTo,
			"DueStart":   c.Query("due_start"),
			"DueEnd":     c.Query("due_end"),
		},
	})
}

// TaskDetail renders a single task.
func (h *TaskHandler) TaskDetail(c *gin.Context) {
	actor, task, ok := h.loadTask(c)
	if !ok {
		return
	}

	render(c, http.StatusOK, "task_detail.html", gin.H{
		"Task":      task,
		"CanEdit":   policy.CanEditTask(actor, task),
		"CanDelete": policy.CanDeleteTask(actor.Role),
	})
}

// EditTaskPage renders the edit form. Which fields are enabled follows the
// role's capability set, same table the save path checks.
func (h *TaskHandler) EditTaskPage(c *gin.Context) {
	actor, task, ok := h.loadTask(c)
	if !ok {
		return
	}

	assignees, _ := h.userService.ListAssignable()

	render(c, http.StatusOK, "task_edit.html", gin.H{
		"Task":      task,
		"Assignees": assignees,
		"Editable":  policy.MutableTaskFields(actor.Role),
	})
}

// EditTask applies a task edit submission. Only fields in the role's
// capability set are read from the form.
func (h *TaskHandler) EditTask(c *gin.Context) {
	const op = "handlers.Task.EditTask"

	actor, task, ok := h.loadTask(c)
	if !ok {
		return
	}

	input, err := h.buildUpdateInput(c, actor.Role)
	if err != nil {
		flashError(c, capitalize(err.Error()))
		h.renderEditForm(c, actor, task, input)
		return
	}

	if _, err := h.taskService.UpdateTask(actor, task.ID, input); err != nil {
		var completionErr *policy.CompletionError
		var fieldErr *services.FieldPermissionError
		switch {
		case errors.Is(err, services.ErrTaskForbidden):
			c.HTML(http.StatusForbidden, "403.html", gin.H{"User": actor})
			return
		case errors.Is(err, policy.ErrTaskTerminal):
			flashError(c, "Only pending or in-progress tasks can be updated.")
		case errors.As(err, &completionErr):
			flashError(c, "Please provide both Worked Hours and Completion Report before marking completed.")
		case errors.As(err, &fieldErr):
			flashError(c, capitalize(fieldErr.Error()))
		case errors.Is(err, services.ErrTitleRequired),
			errors.Is(err, services.ErrInvalidStatus),
			errors.Is(err, services.ErrAssigneeNotFound),
			errors.Is(err, services.ErrAssigneeNotAllowed),
			errors.Is(err, services.ErrAssignerNotFound):
			flashError(c, capitalize(err.Error()))
		default:
			h.log.WithField("operation", op).WithError(err).Error("failed to update task")
			flashError(c, "Failed to update task.")
		}
		h.renderEditForm(c, actor, task, input)
		return
	}

	flashSuccess(c, "Task updated successfully.")
	c.Redirect(http.StatusFound, fmt.Sprintf("/tasks/%d", task.ID))
}

// DeleteTaskPage renders the delete confirmation. Route is gated to super
// admins.
func (h *TaskHandler) DeleteTaskPage(c *gin.Context) {
	_, task, ok := h.loadTask(c)
	if !ok {
		return
	}

	render(c, http.StatusOK, "task_delete_confirm.html", gin.H{"Task": task})
}

// DeleteTask removes a task after confirmation.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	const op = "handlers.Task.DeleteTask"

	actor, task, ok := h.loadTask(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(actor, task.ID); err != nil {
		if errors.Is(err, services.ErrTaskDeleteForbidden) {
			c.HTML(http.StatusForbidden, "403.html", gin.H{"User": actor})
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("failed to delete task")
		flashError(c, "Failed to delete task.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/tasks/%d", task.ID))
		return
	}

	flashSuccess(c, "Task deleted successfully.")
	c.Redirect(http.StatusFound, "/tasks")
}

// CompletedTasks renders the completed-tasks view, newest update first.
func (h *TaskHandler) CompletedTasks(c *gin.Context) {
	const op = "handlers.Task.CompletedTasks"

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	tasks, _, err := h.taskService.ListTasks(actor, services.ListTasksInput{
		CompletedOnly: true,
	})
	if err != nil {
		if errors.Is(err, services.ErrCompletedForbidden) {
			c.HTML(http.StatusForbidden, "403.html", gin.H{"User": actor})
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("failed to list completed tasks")
		flashError(c, "Failed to load tasks.")
	}

	render(c, http.StatusOK, "completed_tasks.html", gin.H{"Tasks": tasks})
}

// renderEditForm re-renders the edit form with the submitted values overlaid
// on the stored task, so a rejected submission does not lose the input.
func (h *TaskHandler) renderEditForm(c *gin.Context, actor *models.User, task *models.Task, input services.UpdateTaskInput) {
	applyTaskInput(task, input)
	assignees, _ := h.userService.ListAssignable()
	render(c, http.StatusOK, "task_edit.html", gin.H{
		"Task":      task,
		"Assignees": assignees,
		"Editable":  policy.MutableTaskFields(actor.Role),
	})
}

func applyTaskInput(task *models.Task, input services.UpdateTaskInput) {
	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.AssignedToID != nil {
		task.AssignedToID = *input.AssignedToID
	}
	if input.AssignedByID != nil {
		task.AssignedByID = input.AssignedByID
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.CompletionReport != nil {
		task.CompletionReport = input.CompletionReport
	}
	if input.WorkedHours != nil {
		task.WorkedHours = input.WorkedHours
	}
}

// loadTask resolves the :id parameter through the task service, rendering the
// 404 or 403 page itself when the task is absent or out of scope.
func (h *TaskHandler) loadTask(c *gin.Context) (*models.User, *models.Task, bool) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return nil, nil, false
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusNotFound, "404.html", gin.H{"User": actor})
		return nil, nil, false
	}

	task, err := h.taskService.GetTask(actor, taskID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			c.HTML(http.StatusNotFound, "404.html", gin.H{"User": actor})
		case errors.Is(err, services.ErrTaskForbidden):
			c.HTML(http.StatusForbidden, "403.html", gin.H{"User": actor})
		default:
			h.log.WithField("operation", "handlers.Task.loadTask").WithError(err).Error("failed to load task")
			c.HTML(http.StatusNotFound, "404.html", gin.H{"User": actor})
		}
		return nil, nil, false
	}

	return actor, task, true
}

// buildUpdateInput reads only the fields the role may mutate from the form.
func (h *TaskHandler) buildUpdateInput(c *gin.Context, role models.Role) (services.UpdateTaskInput, error) {
	var input services.UpdateTaskInput
	fields := policy.MutableTaskFields(role)

	if fields[policy.FieldTitle] {
		v := c.PostForm("title")
		input.Title = &v
	}
	if fields[policy.FieldDescription] {
		v := c.PostForm("description")
		input.Description = &v
	}
	if fields[policy.FieldAssignedTo] {
		if raw := c.PostForm("assigned_to"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return input, services.ErrAssigneeNotFound
			}
			input.AssignedToID = &id
		}
	}
	if fields[policy.FieldAssignedBy] {
		if raw := c.PostForm("assigned_by"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return input, services.ErrAssignerNotFound
			}
			input.AssignedByID = &id
		}
	}
	if fields[policy.FieldDueDate] {
		if due := utils.ParseDate(c.PostForm("due_date")); due != nil {
			input.DueDate = due
		}
	}
	if fields[policy.FieldStatus] {
		if raw := c.PostForm("status"); raw != "" {
			status := models.TaskStatus(raw)
			input.Status = &status
		}
	}
	if fields[policy.FieldCompletionReport] {
		v := c.PostForm("completion_report")
		input.CompletionReport = &v
	}
	if fields[policy.FieldWorkedHours] {
		if raw := c.PostForm("worked_hours"); raw != "" {
			hours, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return input, errors.New("worked hours must be a number")
			}
			input.WorkedHours = &hours
		}
	}

	return input, nil
}
