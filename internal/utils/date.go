package utils

import "time"

// DateLayout is the wire format for calendar-day values in query parameters.
const DateLayout = "2006-01-02"

// ParseDateParam parses an optional YYYY-MM-DD parameter. Empty or malformed
// input yields nil; handlers treat the filter as absent.
func ParseDateParam(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// FormatDate renders a day value in the wire format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
