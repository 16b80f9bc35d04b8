package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskforge/task-assignment-api/internal/models"
)

// ErrTaskTerminal is returned when mutating a task already in the completed
// state.
var ErrTaskTerminal = errors.New("only pending or in-progress tasks can be updated")

// CompletionError reports the fields missing from a transition into the
// completed state.
type CompletionError struct {
	Missing []string
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s required when marking task as completed", strings.Join(e.Missing, " and "))
}

// CheckTransition validates a status transition against the task state
// machine. current is the stored status; next, report and hours are the values
// the task will hold after the update.
func CheckTransition(current, next models.TaskStatus, report *string, hours *float64) error {
	if current == models.TaskStatusCompleted {
		return ErrTaskTerminal
	}

	if next == models.TaskStatusCompleted {
		var missing []string
		if report == nil || strings.TrimSpace(*report) == "" {
			missing = append(missing, FieldCompletionReport)
		}
		if hours == nil || *hours <= 0 {
			missing = append(missing, FieldWorkedHours)
		}
		if len(missing) > 0 {
			return &CompletionError{Missing: missing}
		}
	}

	return nil
}
