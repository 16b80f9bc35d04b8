package utils

import "time"

const dateLayout = "2006-01-02"

// ParseDate parses a date literal in YYYY-MM-DD form. Empty or malformed
// input yields nil so callers can drop the filter instead of erroring.
func ParseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// FormatDate renders a time as a YYYY-MM-DD literal.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
