package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/policy"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrDeleteTasks is returned when removing the user's assigned tasks fails inside the delete transaction.
	ErrDeleteTasks = errors.New("user repository: delete assigned tasks failed")
	// ErrDetachTasks is returned when nulling the assigner on the user's created tasks fails inside the delete transaction.
	ErrDetachTasks = errors.New("user repository: detach created tasks failed")
	// ErrDeleteUser is returned when deleting the user row fails inside the delete transaction.
	ErrDeleteUser = errors.New("user repository: delete user failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves users matching the filter, visibility scope first
func (r *GormUserRepository) List(filter UserFilter) ([]models.User, error) {
	var users []models.User

	query := r.db.Model(&models.User{})
	if filter.Scope != nil {
		query = filter.Scope(query)
	}

	if filter.Username != "" {
		query = query.Where("LOWER(users.username) LIKE ?", likePattern(filter.Username))
	}
	if filter.Role != nil {
		query = query.Where("users.role = ?", *filter.Role)
	}

	if err := query.Order("users.username ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// ListAssignable retrieves the accounts tasks may be assigned to
func (r *GormUserRepository) ListAssignable() ([]models.User, error) {
	var users []models.User
	if err := r.db.Model(&models.User{}).
		Scopes(policy.AssignablePool()).
		Order("users.username ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update updates a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete removes a user and applies the task cascades atomically: tasks
// assigned to the user are deleted, tasks assigned by the user keep their row
// with a nulled assigner.
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assigned_to_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDeleteTasks, err)
		}

		if err := tx.Model(&models.Task{}).
			Where("assigned_by_id = ?", id).
			Update("assigned_by_id", nil).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDetachTasks, err)
		}

		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDeleteUser, err)
		}

		return nil
	})
}
