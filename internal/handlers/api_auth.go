package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apierrors "github.com/taskforge/task-assignment-api/internal/errors"
	"github.com/taskforge/task-assignment-api/internal/services"
)

// APIAuthHandler serves the token endpoints of the REST API.
type APIAuthHandler struct {
	authService  *services.AuthService
	tokenService *services.TokenService
	log          *logrus.Logger
}

// NewAPIAuthHandler creates a new APIAuthHandler.
func NewAPIAuthHandler(authService *services.AuthService, tokenService *services.TokenService, log *logrus.Logger) *APIAuthHandler {
	return &APIAuthHandler{
		authService:  authService,
		tokenService: tokenService,
		log:          log,
	}
}

type apiLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role"`
}

// Login exchanges credentials for a token pair.
// POST /api/login
func (h *APIAuthHandler) Login(c *gin.Context) {
	const op = "handlers.APIAuth.Login"

	var req apiLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Username and password are required")
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			apierrors.Unauthorized(c, "Invalid username or password")
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("login failed")
		apierrors.InternalError(c, "")
		return
	}

	pair, err := h.tokenService.IssuePair(c.Request.Context(), user)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("failed to issue tokens")
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Role:         string(user.Role),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh rotates a refresh token into a fresh pair.
// POST /api/token/refresh
func (h *APIAuthHandler) Refresh(c *gin.Context) {
	const op = "handlers.APIAuth.Refresh"

	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Refresh token is required")
		return
	}

	pair, claims, err := h.tokenService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRefreshToken) {
			apierrors.Unauthorized(c, "Invalid or expired refresh token")
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("failed to refresh tokens")
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Role:         string(claims.Role),
	})
}
