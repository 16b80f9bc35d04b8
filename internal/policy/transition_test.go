package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskforge/task-assignment-api/internal/models"
)

func ptrString(s string) *string  { return &s }
func ptrFloat(f float64) *float64 { return &f }

func TestCheckTransitionCompletedIsTerminal(t *testing.T) {
	for _, next := range []models.TaskStatus{
		models.TaskStatusPending,
		models.TaskStatusInProgress,
		models.TaskStatusCompleted,
	} {
		err := CheckTransition(models.TaskStatusCompleted, next, ptrString("done"), ptrFloat(2))
		assert.ErrorIs(t, err, ErrTaskTerminal, "completed -> %s must be rejected", next)
	}
}

func TestCheckTransitionIntoCompleted(t *testing.T) {
	tests := []struct {
		name    string
		report  *string
		hours   *float64
		missing []string
	}{
		{"both missing", nil, nil, []string{FieldCompletionReport, FieldWorkedHours}},
		{"blank report", ptrString("   "), ptrFloat(1.5), []string{FieldCompletionReport}},
		{"zero hours", ptrString("done"), ptrFloat(0), []string{FieldWorkedHours}},
		{"negative hours", ptrString("done"), ptrFloat(-1), []string{FieldWorkedHours}},
		{"complete submission", ptrString("done"), ptrFloat(1.5), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(models.TaskStatusInProgress, models.TaskStatusCompleted, tt.report, tt.hours)
			if tt.missing == nil {
				assert.NoError(t, err)
				return
			}

			var completionErr *CompletionError
			assert.ErrorAs(t, err, &completionErr)
			assert.Equal(t, tt.missing, completionErr.Missing)
		})
	}
}

func TestCheckTransitionBetweenOpenStates(t *testing.T) {
	// Report and hours are only required when the result is completed.
	assert.NoError(t, CheckTransition(models.TaskStatusPending, models.TaskStatusInProgress, nil, nil))
	assert.NoError(t, CheckTransition(models.TaskStatusInProgress, models.TaskStatusPending, nil, nil))
	assert.NoError(t, CheckTransition(models.TaskStatusPending, models.TaskStatusPending, nil, nil))
}
