package services

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/taskforge/task-assignment-api/internal/constants"
	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/policy"
	"github.com/taskforge/task-assignment-api/internal/repository"
)

var (
	ErrUsernameRequired     = errors.New("username is required")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrInvalidRole          = errors.New("invalid role")
	ErrUserForbidden        = errors.New("you do not have permission to manage users")
	ErrUserViewForbidden    = errors.New("you do not have permission to view users")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// UserService handles account management. Every operation takes the acting
// user and consults the policy engine before touching data.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// CreateUserInput represents a registration submission.
type CreateUserInput struct {
	Username        string
	Email           string
	Role            models.Role
	Password        string
	PasswordConfirm string
}

// CreateUser registers a new account. Only super admins may register users.
func (s *UserService) CreateUser(actor *models.User, input CreateUserInput) (*models.User, error) {
	if !policy.CanManageUsers(actor.Role) {
		return nil, ErrUserForbidden
	}

	user, err := s.buildUser(input)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// CreateSuperAdmin creates a super-admin account. Role and the staff and
// superuser flags are set on the same row so no partial state can exist.
// Used by the startup bootstrap; no actor check because no actor exists yet.
func (s *UserService) CreateSuperAdmin(username, email, password string) (*models.User, error) {
	user, err := s.buildUser(CreateUserInput{
		Username:        username,
		Email:           email,
		Role:            models.RoleSuperAdmin,
		Password:        password,
		PasswordConfirm: password,
	})
	if err != nil {
		return nil, err
	}

	user.IsStaff = true
	user.IsSuperuser = true

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create super admin: %w", err)
	}

	return user, nil
}

// ListUsersInput represents filters for listing users.
type ListUsersInput struct {
	Username string
	Role     string
}

// ListUsers returns the accounts visible to the actor, filtered.
func (s *UserService) ListUsers(actor *models.User, input ListUsersInput) ([]models.User, error) {
	if !policy.CanViewUsers(actor.Role) {
		return nil, ErrUserViewForbidden
	}

	filter := repository.UserFilter{
		Scope:    policy.UserScope(actor),
		Username: strings.TrimSpace(input.Username),
	}

	// "all" is a sentinel meaning no role filter
	if input.Role != "" && input.Role != "all" {
		role := models.Role(input.Role)
		filter.Role = &role
	}

	users, err := s.userRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// ListAssignable returns the accounts a task may be assigned to.
func (s *UserService) ListAssignable() ([]models.User, error) {
	users, err := s.userRepo.ListAssignable()
	if err != nil {
		return nil, fmt.Errorf("failed to list assignable users: %w", err)
	}
	return users, nil
}

// GetUser returns the target account if the actor may see it. A missing id and
// an out-of-scope id are distinct results.
func (s *UserService) GetUser(actor *models.User, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !policy.CanViewUser(actor, user) {
		return nil, ErrUserViewForbidden
	}

	return user, nil
}

// UpdateUserInput represents an account edit submission.
type UpdateUserInput struct {
	Username string
	Email    string
	Role     models.Role
}

// UpdateUser edits an account. Only super admins may edit users.
func (s *UserService) UpdateUser(actor *models.User, id uint64, input UpdateUserInput) (*models.User, error) {
	if !policy.CanManageUsers(actor.Role) {
		return nil, ErrUserForbidden
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if username != user.Username {
		if err := s.ensureUsernameFree(username); err != nil {
			return nil, err
		}
	}
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	user.Username = username
	user.Email = strings.TrimSpace(input.Email)
	user.Role = input.Role

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes an account and applies the task cascades. Only super
// admins may delete users.
func (s *UserService) DeleteUser(actor *models.User, id uint64) error {
	if !policy.CanManageUsers(actor.Role) {
		return ErrUserForbidden
	}

	if _, err := s.userRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.userRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

func (s *UserService) buildUser(input CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if input.Password != input.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	if err := s.ensureUsernameFree(username); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	return &models.User{
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
	}, nil
}

func (s *UserService) ensureUsernameFree(username string) error {
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}
	return nil
}
