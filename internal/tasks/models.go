package tasks

import (
	"time"

	"github.com/google/uuid"

	"reset-recovery-backend/internal/recovery"
)

type DailyTask struct {
	ID           uuid.UUID         `json:"id"`
	UserID       string            `json:"user_id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Category     recovery.Category `json:"category"`
	Stage        recovery.Stage    `json:"stage"`
	AIGenerated  bool              `json:"ai_generated"`
	Date         string            `json:"date"`
	IsCompleted  bool              `json:"is_completed"`
	CompletedAt  *time.Time        `json:"completed_at"`
	JournalEntry *string           `json:"journal_entry,omitempty"`
	PhotoURL     *string           `json:"photo_url,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`

	RequiresJournal bool `json:"requires_journal"`
	RequiresPhoto   bool `json:"requires_photo"`
}

// Evidence is what the user attaches when completing a task. Empty fields
// leave the stored value untouched.
type Evidence struct {
	JournalEntry string
	PhotoURL     string
}
