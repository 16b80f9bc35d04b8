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
)

// UserHandler serves the session-authenticated account pages.
type UserHandler struct {
	userService *services.UserService
	log         *logrus.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, log *logrus.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

// ListUsers renders the scoped, filterable account list. Admins never see
// super admin accounts.
func (h *UserHandler) ListUsers(c *gin.Context) {
	const op = "handlers.User.ListUsers"

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	input := services.ListUsersInput{
		Username: c.Query("username"),
		Role:     c.Query("role"),
	}

	users, err := h.userService.ListUsers(actor, input)
	if err != nil {
		if errors.Is(err, services.ErrUserViewForbidden) {
			c.HTML(http.StatusForbidden, "403.html", gin.H{"User": actor})
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("failed to list users")
		flashError(c, "Failed to load users.")
	}

	render(c, http.StatusOK, "user_list.html", gin.H{
		"Users": users,
		"Filters": gin.H{
			"Username": input.Username,
			"Role":     input.Role,
		},
	})
}

// UserDetail renders a single account.
func (h *UserHandler) UserDetail(c *gin.Context) {
	actor, target, ok := h.loadUser(c)
	if !ok {
		return
	}

	render(c, http.StatusOK, "user_detail.html", gin.H{
		"TargetUser": target,
		"CanManage":  policy.CanManageUsers(actor.Role),
	})
}

// EditUserPage renders the account edit form.
func (h *UserHandler) EditUserPage(c *gin.Context) {
	_, target, ok := h.loadUser(c)
	if !ok {
		return
	}

	render(c, http.StatusOK, "user_edit.html", gin.H{"TargetUser": target})
}

// EditUser applies an account edit submission.
func (h *UserHandler) EditUser(c *gin.Context) {
	const op = "handlers.User.EditUser"

	actor, target, ok := h.loadUser(c)
	if !ok {
		return
	}

	input := services.UpdateUserInput{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		Role:     models.Role(c.PostForm("role")),
	}

	if _, err := h.userService.UpdateUser(actor, target.ID, input); err != nil {
		switch {
		case errors.Is(err, services.ErrUserForbidden):
			c.HTML(http.StatusForbidden, "403.html", gin.H{"User": actor})
			return
		case errors.Is(err, services.ErrUsernameRequired),
			errors.Is(err, services.ErrUsernameTaken),
			errors.Is(err, services.ErrInvalidRole):
			flashError(c, capitalize(err.Error()))
		default:
			h.log.WithField("operation", op).WithError(err).Error("failed to update user")
			flashError(c, "Failed to update user.")
		}
		c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d/edit", target.ID))
		return
	}

	flashSuccess(c, "User updated successfully.")
	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d", target.ID))
}

// DeleteUserPage renders the delete confirmation.
func (h *UserHandler) DeleteUserPage(c *gin.Context) {
	_, target, ok := h.loadUser(c)
	if !ok {
		return
	}

	render(c, http.StatusOK, "user_delete_confirm.html", gin.H{"TargetUser": target})
}

// DeleteUser removes an account and its assigned tasks after confirmation.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	const op = "handlers.User.DeleteUser"

	actor, target, ok := h.loadUser(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(actor, target.ID); err != nil {
		if errors.Is(err, services.ErrUserForbidden) {
			c.HTML(http.StatusForbidden, "403.html", gin.H{"User": actor})
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("failed to delete user")
		flashError(c, "Failed to delete user.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d", target.ID))
		return
	}

	flashSuccess(c, "User deleted successfully.")
	c.Redirect(http.StatusFound, "/users")
}

// loadUser resolves the :id parameter through the user service, rendering the
// 404 or 403 page itself when the account is absent or out of scope.
func (h *UserHandler) loadUser(c *gin.Context) (*models.User, *models.User, bool) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return nil, nil, false
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusNotFound, "404.html", gin.H{"User": actor})
		return nil, nil, false
	}

	target, err := h.userService.GetUser(actor, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.HTML(http.StatusNotFound, "404.html", gin.H{"User": actor})
		case errors.Is(err, services.ErrUserViewForbidden):
			c.HTML(http.StatusForbidden, "403.html", gin.H{"User": actor})
		default:
			h.log.WithField("operation", "handlers.User.loadUser").WithError(err).Error("failed to load user")
			c.HTML(http.StatusNotFound, "404.html", gin.H{"User": actor})
		}
		return nil, nil, false
	}

	return actor, target, true
}
