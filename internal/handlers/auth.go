package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/taskforge/task-assignment-api/internal/constants"
	"github.com/taskforge/task-assignment-api/internal/middleware"
	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/services"
)

// AuthHandler serves the session-authenticated pages: login, dashboard,
// logout and user registration.
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
	log         *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		log:         log,
	}
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get(constants.ContextKeyUserID) != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	render(c, http.StatusOK, "login.html", nil)
}

// Login authenticates the submitted credentials and starts a session.
func (h *AuthHandler) Login(c *gin.Context) {
	const op = "handlers.Auth.Login"

	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.authService.Login(services.LoginInput{
		Username: username,
		Password: password,
	})
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			h.log.WithField("operation", op).WithError(err).Error("login failed")
		}
		flashError(c, "Invalid username or password.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("failed to save session")
		flashError(c, "Failed to start session.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.Redirect(http.StatusFound, "/dashboard")
}

// Dashboard renders the dashboard.
func (h *AuthHandler) Dashboard(c *gin.Context) {
	render(c, http.StatusOK, "dashboard.html", nil)
}

// Logout removes the session and returns to the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/")
}

// RegisterPage renders the registration form. Route is gated to super admins.
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	render(c, http.StatusOK, "register.html", gin.H{
		"Form": gin.H{
			"Username": "",
			"Email":    "",
			"Role":     models.RoleUser,
		},
	})
}

// Register creates a new account from the submitted form.
func (h *AuthHandler) Register(c *gin.Context) {
	const op = "handlers.Auth.Register"

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	input := services.CreateUserInput{
		Username:        c.PostForm("username"),
		Email:           c.PostForm("email"),
		Role:            models.Role(c.DefaultPostForm("role", string(models.RoleUser))),
		Password:        c.PostForm("password1"),
		PasswordConfirm: c.PostForm("password2"),
	}

	if _, err := h.userService.CreateUser(actor, input); err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameRequired),
			errors.Is(err, services.ErrUsernameTaken),
			errors.Is(err, services.ErrPasswordMismatch),
			errors.Is(err, services.ErrPasswordTooShort),
			errors.Is(err, services.ErrInvalidRole):
			flashError(c, capitalize(err.Error()))
		case errors.Is(err, services.ErrUserForbidden):
			c.HTML(http.StatusForbidden, "403.html", gin.H{"User": actor})
			return
		default:
			h.log.WithField("operation", op).WithError(err).Error("failed to create user")
			flashError(c, "Failed to create user account.")
		}

		// Re-render with the prior input so the form is not lost
		render(c, http.StatusOK, "register.html", gin.H{
			"Form": gin.H{
				"Username": input.Username,
				"Email":    input.Email,
				"Role":     input.Role,
			},
		})
		return
	}

	flashSuccess(c, "User account created successfully.")
	c.Redirect(http.StatusFound, "/dashboard")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
