// Package calendar converts instants to the UTC calendar-date keys used by
// daily tasks, streaks and mood check-ins.
package calendar

import (
	"fmt"
	"time"
)

// Layout is the storage format of a calendar date.
const Layout = "2006-01-02"

// DateKey returns the UTC calendar date of t.
func DateKey(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse validates a YYYY-MM-DD key.
func Parse(key string) (time.Time, error) {
	d, err := time.Parse(Layout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar: invalid date %q: %w", key, err)
	}
	return d, nil
}

// DaysBetween returns the whole number of days from `from` to `to`.
// The result is negative when `to` is earlier.
func DaysBetween(from, to string) (int, error) {
	a, err := Parse(from)
	if err != nil {
		return 0, err
	}
	b, err := Parse(to)
	if err != nil {
		return 0, err
	}
	return int(b.Sub(a).Hours() / 24), nil
}
