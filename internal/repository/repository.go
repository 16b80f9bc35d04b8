package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/taskforge/task-assignment-api/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks matching the filter
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task
	Delete(id uint64) error
}

// TaskFilter holds scoping, filtering and ordering options for listing tasks.
// Scope is the visibility scope of the acting user and must always be set.
type TaskFilter struct {
	Scope          func(db *gorm.DB) *gorm.DB
	Title          string
	Status         *models.TaskStatus
	AssignedBy     string
	AssignedTo     string
	DueFrom        *time.Time
	DueTo          *time.Time
	OrderByUpdated bool
	Page           int
	PageSize       int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// List retrieves users matching the filter
	List(filter UserFilter) ([]models.User, error)

	// ListAssignable retrieves the accounts tasks may be assigned to
	ListAssignable() ([]models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// Delete deletes a user, their assigned tasks, and nulls tasks they assigned
	Delete(id uint64) error
}

// UserFilter holds scoping and filtering options for listing users. Scope is
// the visibility scope of the acting user and must always be set.
type UserFilter struct {
	Scope    func(db *gorm.DB) *gorm.DB
	Username string
	Role     *models.Role
}
