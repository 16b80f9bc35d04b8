package dto

import (
	"time"

	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID               uint64            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Status           models.TaskStatus `json:"status"`
	DueDate          string            `json:"due_date"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	AssignedTo       UserDTO           `json:"assigned_to"`
	AssignedBy       *UserDTO          `json:"assigned_by"`
	CompletionReport *string           `json:"completion_report"`
	WorkedHours      *float64          `json:"worked_hours"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}

// ToTaskDTO converts a Task model to TaskDTO. Relations must be preloaded.
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:               task.ID,
		Title:            task.Title,
		Description:      task.Description,
		Status:           task.Status,
		DueDate:          utils.FormatDate(task.DueDate),
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
		AssignedTo:       ToUserDTO(task.AssignedTo),
		CompletionReport: task.CompletionReport,
		WorkedHours:      task.WorkedHours,
	}

	if task.AssignedBy != nil {
		assigner := ToUserDTO(*task.AssignedBy)
		dto.AssignedBy = &assigner
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
