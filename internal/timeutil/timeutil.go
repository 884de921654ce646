// Package timeutil provides timestamp formatting helpers shared by
// the store and analytics packages. All stored timestamps are UTC
// RFC3339; calendar dates are YYYY-MM-DD strings.
package timeutil

import "time"

// DateLayout is the calendar-date format used throughout.
const DateLayout = "2006-01-02"

// Format returns t as an RFC3339Nano UTC string, or "" for the
// zero time.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// Ptr returns a pointer to the formatted timestamp, or nil for the
// zero time. Used for nullable timestamp columns.
func Ptr(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := Format(t)
	return &s
}

// Date returns the calendar date of t in UTC.
func Date(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
