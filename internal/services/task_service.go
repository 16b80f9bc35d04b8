package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/policy"
	"github.com/taskforge/task-assignment-api/internal/repository"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskForbidden       = errors.New("you do not have permission to access this task")
	ErrTaskCreateForbidden = errors.New("you do not have permission to create tasks")
	ErrTaskDeleteForbidden = errors.New("only super admins can delete tasks")
	ErrCompletedForbidden  = errors.New("you do not have permission to view completed tasks")
	ErrTitleRequired       = errors.New("title is required")
	ErrDueDateRequired     = errors.New("due date is required")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrAssigneeNotFound    = errors.New("assigned user does not exist")
	ErrAssigneeNotAllowed  = errors.New("tasks cannot be assigned to a super admin")
	ErrAssignerNotFound    = errors.New("assigning user does not exist")
)

// FieldPermissionError reports a write to a task field the actor's role may
// not mutate.
type FieldPermissionError struct {
	Field string
}

func (e *FieldPermissionError) Error() string {
	return fmt.Sprintf("field %q is not editable for your role", e.Field)
}

// TaskService handles task business logic. Every operation takes the acting
// user; visibility and mutability come from the policy engine, transitions
// from the task state machine.
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// ListTasksInput represents filters for listing tasks. Date bounds are
// pointers because each is independently optional; the presentation layer
// drops malformed date literals before they reach here.
type ListTasksInput struct {
	Title          string
	Status         string
	AssignedBy     string
	AssignedTo     string
	DueFrom        *time.Time
	DueTo          *time.Time
	CompletedOnly  bool
	OrderByUpdated bool
	Page           int
	PageSize       int
}

// ListTasks returns the tasks visible to the actor, filtered.
func (s *TaskService) ListTasks(actor *models.User, input ListTasksInput) ([]models.Task, int64, error) {
	if input.CompletedOnly && !policy.CanViewCompletedTasks(actor.Role) {
		return nil, 0, ErrCompletedForbidden
	}

	filter := repository.TaskFilter{
		Scope:          policy.TaskScope(actor),
		Title:          strings.TrimSpace(input.Title),
		AssignedBy:     strings.TrimSpace(input.AssignedBy),
		AssignedTo:     strings.TrimSpace(input.AssignedTo),
		DueFrom:        input.DueFrom,
		DueTo:          input.DueTo,
		OrderByUpdated: input.OrderByUpdated,
		Page:           input.Page,
		PageSize:       input.PageSize,
	}

	if input.CompletedOnly {
		completed := models.TaskStatusCompleted
		filter.Status = &completed
		filter.OrderByUpdated = true
	} else if input.Status != "" && input.Status != "all" {
		// "all" is a sentinel meaning no status filter
		status := models.TaskStatus(input.Status)
		filter.Status = &status
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns the task if the actor may see it. A missing id and an
// out-of-scope id are distinct results.
func (s *TaskService) GetTask(actor *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "AssignedTo", "AssignedBy")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanViewTask(actor, task) {
		return nil, ErrTaskForbidden
	}

	return task, nil
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  string
	AssignedToID uint64
	DueDate      time.Time
}

// CreateTask creates a task with the actor as assigner.
func (s *TaskService) CreateTask(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	if !policy.CanCreateTask(actor.Role) {
		return nil, ErrTaskCreateForbidden
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if input.DueDate.IsZero() {
		return nil, ErrDueDateRequired
	}

	if err := s.ensureAssignable(input.AssignedToID); err != nil {
		return nil, err
	}

	assignerID := actor.ID
	task := &models.Task{
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		AssignedToID: input.AssignedToID,
		AssignedByID: &assignerID,
		DueDate:      input.DueDate,
		Status:       models.TaskStatusPending,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "AssignedTo", "AssignedBy")
}

// UpdateTaskInput represents input for updating a task. Nil means the field
// was not submitted.
type UpdateTaskInput struct {
	Title            *string
	Description      *string
	AssignedToID     *uint64
	AssignedByID     *uint64
	DueDate          *time.Time
	Status           *models.TaskStatus
	CompletionReport *string
	WorkedHours      *float64
}

// UpdateTask mutates a task. The actor must be in the task's edit scope,
// every submitted field must be in the role's capability set, and the
// resulting status must pass the state machine.
func (s *TaskService) UpdateTask(actor *models.User, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanEditTask(actor, task) {
		return nil, ErrTaskForbidden
	}

	if err := checkFieldPermissions(actor.Role, input); err != nil {
		return nil, err
	}

	// Resulting values drive the transition check, whether or not the status
	// itself changes.
	next := task.Status
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		next = *input.Status
	}
	report := task.CompletionReport
	if input.CompletionReport != nil {
		report = input.CompletionReport
	}
	hours := task.WorkedHours
	if input.WorkedHours != nil {
		hours = input.WorkedHours
	}

	if err := policy.CheckTransition(task.Status, next, report, hours); err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleRequired
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	if input.AssignedToID != nil {
		if err := s.ensureAssignable(*input.AssignedToID); err != nil {
			return nil, err
		}
		task.AssignedToID = *input.AssignedToID
		// An admin reassigning a task becomes its assigner.
		if actor.Role == models.RoleAdmin {
			assignerID := actor.ID
			task.AssignedByID = &assignerID
		}
	}
	if input.AssignedByID != nil {
		if _, err := s.userRepo.FindByID(*input.AssignedByID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssignerNotFound
			}
			return nil, fmt.Errorf("failed to find assigner: %w", err)
		}
		task.AssignedByID = input.AssignedByID
	}

	task.Status = next
	task.CompletionReport = report
	task.WorkedHours = hours

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "AssignedTo", "AssignedBy")
}

// DeleteTask removes a task. Only super admins may delete tasks.
func (s *TaskService) DeleteTask(actor *models.User, taskID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanDeleteTask(actor.Role) {
		return ErrTaskDeleteForbidden
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (s *TaskService) ensureAssignable(userID uint64) error {
	assignee, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}
	if !policy.CanBeAssignee(assignee) {
		return ErrAssigneeNotAllowed
	}
	return nil
}

func checkFieldPermissions(role models.Role, input UpdateTaskInput) error {
	submitted := map[string]bool{
		policy.FieldTitle:            input.Title != nil,
		policy.FieldDescription:      input.Description != nil,
		policy.FieldAssignedTo:       input.AssignedToID != nil,
		policy.FieldAssignedBy:       input.AssignedByID != nil,
		policy.FieldDueDate:          input.DueDate != nil,
		policy.FieldStatus:           input.Status != nil,
		policy.FieldCompletionReport: input.CompletionReport != nil,
		policy.FieldWorkedHours:      input.WorkedHours != nil,
	}

	for field, set := range submitted {
		if set && !policy.CanMutateField(role, field) {
			return &FieldPermissionError{Field: field}
		}
	}

	return nil
}
