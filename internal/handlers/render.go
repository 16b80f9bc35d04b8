package handlers

import (
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/taskforge/task-assignment-api/internal/constants"
	"github.com/taskforge/task-assignment-api/internal/middleware"
)

// parseIDParam parses the numeric :id route parameter.
func parseIDParam(c *gin.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// flashError queues a user-facing error message for the next rendered page.
func flashError(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, constants.FlashKeyError)
	_ = session.Save()
}

// flashSuccess queues a user-facing success message for the next rendered page.
func flashSuccess(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, constants.FlashKeySuccess)
	_ = session.Save()
}

// render renders an HTML template with queued flash messages and the acting
// user merged into the template data.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	session := sessions.Default(c)
	errs := session.Flashes(constants.FlashKeyError)
	msgs := session.Flashes(constants.FlashKeySuccess)
	if len(errs) > 0 || len(msgs) > 0 {
		_ = session.Save()
	}
	data["Errors"] = errs
	data["Messages"] = msgs

	if user, ok := middleware.CurrentUser(c); ok {
		data["User"] = user
	}

	c.HTML(status, name, data)
}
