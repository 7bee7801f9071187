// Package streak counts consecutive calendar days on which a user finished
// every task of the day.
package streak

import (
	"reset-recovery-backend/internal/calendar"
)

type Record struct {
	UserID           string  `json:"user_id"`
	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"`
	LastActivityDate *string `json:"last_activity_date"` // YYYY-MM-DD, nil until the first completed day
}

// Advance applies one fully completed day. It reports false when today was
// already counted.
func Advance(rec Record, today string) (Record, bool) {
	if rec.LastActivityDate != nil && *rec.LastActivityDate == today {
		return rec, false
	}

	next := 1
	if rec.LastActivityDate != nil {
		diff, err := calendar.DaysBetween(*rec.LastActivityDate, today)
		if err == nil && diff == 1 {
			next = rec.CurrentStreak + 1
		}
	}

	rec.CurrentStreak = next
	if next > rec.LongestStreak {
		rec.LongestStreak = next
	}
	day := today
	rec.LastActivityDate = &day
	return rec, true
}
