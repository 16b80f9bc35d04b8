package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/taskforge/task-assignment-api/internal/errors"
	"github.com/taskforge/task-assignment-api/internal/models"
)

// RequireRole gates a web route to the given roles. Must run after
// RequireWebAuth. Disallowed roles get the 403 page.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		if !roleAllowed(user.Role, roles) {
			c.HTML(http.StatusForbidden, "403.html", gin.H{"User": user})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAPIRole gates an API route to the given roles. Must run after
// RequireToken.
func RequireAPIRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !roleAllowed(user.Role, roles) {
			apierrors.Forbidden(c, "Your role does not permit this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

func roleAllowed(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
