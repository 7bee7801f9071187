package tasks

import (
	"strings"

	"reset-recovery-backend/internal/recovery"
)

func RequiresJournal(title, description string, c recovery.Category) bool {
	t := strings.ToLower(title)
	return c == recovery.CategoryReflection ||
		strings.Contains(t, "journal") ||
		strings.Contains(t, "reflect") ||
		strings.Contains(strings.ToLower(description), "write")
}

func RequiresPhoto(title, description string, c recovery.Category) bool {
	t := strings.ToLower(title)
	return c == recovery.CategoryPhysical ||
		strings.Contains(t, "park") ||
		strings.Contains(t, "walk") ||
		strings.Contains(t, "exercise") ||
		strings.Contains(strings.ToLower(description), "photo")
}

func (t *DailyTask) annotate() {
	t.RequiresJournal = RequiresJournal(t.Title, t.Description, t.Category)
	t.RequiresPhoto = RequiresPhoto(t.Title, t.Description, t.Category)
}
