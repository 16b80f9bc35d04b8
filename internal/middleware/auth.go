package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/taskforge/task-assignment-api/internal/constants"
	"github.com/taskforge/task-assignment-api/internal/database"
	"github.com/taskforge/task-assignment-api/internal/models"
)

// RequireWebAuth checks for an authenticated session and loads the acting
// user into the request context. Unauthenticated requests are sent to the
// login page.
func RequireWebAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(constants.ContextKeyUserID)
		if raw == nil {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		userID, ok := toUint64(raw)
		if !ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		var user models.User
		if err := database.GetDB().First(&user, userID).Error; err != nil {
			// Stale session for a deleted account
			session.Clear()
			_ = session.Save()
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, &user)
		c.Next()
	}
}

// CurrentUser retrieves the acting user from context
func CurrentUser(c *gin.Context) (*models.User, bool) {
	raw, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := raw.(*models.User)
	return user, ok
}

func toUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}
