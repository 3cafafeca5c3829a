package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used in bar tables and query params
const DateLayout = "2006-01-02"

const (
	// Recent bars are withheld by the data feed for this long
	barsDelay = 15 * time.Minute
	// Length of the default bars window
	barsHistory = 2 * 365 * 24 * time.Hour
)

// DefaultBarsWindow fills unset bounds of a bars request relative to now:
// start defaults to two years and fifteen minutes ago, end to fifteen
// minutes ago.
func DefaultBarsWindow(now, start, end time.Time) (time.Time, time.Time) {
	if start.IsZero() {
		start = now.Add(-barsHistory - barsDelay)
	}
	if end.IsZero() {
		end = now.Add(-barsDelay)
	}
	return start, end
}

// ParseTimeParam parses an RFC 3339 timestamp or a YYYY-MM-DD date (UTC
// midnight). An empty value yields the zero time.
func ParseTimeParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unable to parse time %q", value)
}

// FormatDate renders t as a UTC calendar date
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
