// Package ai turns a user's recovery context into a generation prompt and the
// model's free-form reply into a fixed-size list of well-formed tasks.
package ai

import (
	"context"

	"reset-recovery-backend/internal/catalog"
	"reset-recovery-backend/internal/recovery"
)

// Generator is the only thing the task flow needs from a text-generation provider.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type TaskSuggestion struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    recovery.Category `json:"category"`
}

// TaskOutcome is a recent task as seen by the prompt: what it was and whether it got done.
type TaskOutcome struct {
	Title     string
	Completed bool
}

// Pool converts the catalog fallback tasks into suggestions.
func Pool(tasks []catalog.Task) []TaskSuggestion {
	out := make([]TaskSuggestion, len(tasks))
	for i, t := range tasks {
		out[i] = TaskSuggestion{Title: t.Title, Description: t.Description, Category: t.Category}
	}
	return out
}
