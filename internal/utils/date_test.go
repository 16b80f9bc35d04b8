package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{"valid date", "2026-09-15", timePtr(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC))},
		{"empty string", "", nil},
		{"malformed literal", "15/09/2026", nil},
		{"nonsense", "soon", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2026-09-15", FormatDate(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)))
}

func timePtr(t time.Time) *time.Time { return &t }
