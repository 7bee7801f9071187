package tasks

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reset-recovery-backend/internal/ai"
	"reset-recovery-backend/internal/apperr"
	"reset-recovery-backend/internal/auth"
	"reset-recovery-backend/internal/httpx"
	"reset-recovery-backend/internal/recovery"
)

const (
	generateFailedDetails = "Failed to generate AI tasks"
	maxHistoryDays        = 30
)

// StageResolver picks the stage to generate for when the client does not say.
type StageResolver interface {
	CurrentStage(ctx context.Context, userID string) (recovery.Stage, error)
}

func GenerateHandler(sync *Synchronizer, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Stage  string `json:"stage" validate:"required,oneof=mild moderate severe"`
			UserID string `json:"userId"`
			Count  *int   `json:"count" validate:"omitempty,min=1,max=10"`
		}
		if err := httpx.Decode(r, &body); err != nil {
			httpx.WriteError(w, log, err, generateFailedDetails)
			return
		}
		if body.UserID != "" && body.UserID != uid {
			httpx.WriteError(w, log, apperr.Forbidden("userId does not match the authenticated user"), generateFailedDetails)
			return
		}

		count := ai.DefaultTaskCount
		if body.Count != nil {
			count = *body.Count
		}
		stage := recovery.Stage(body.Stage)

		log.Info("generating AI tasks", zap.String("user_id", uid), zap.String("stage", body.Stage), zap.Int("count", count))

		tasks, err := sync.Regenerate(r.Context(), uid, stage, count)
		if err != nil {
			httpx.WriteError(w, log, err, generateFailedDetails)
			return
		}

		out := make([]ai.TaskSuggestion, len(tasks))
		for i, t := range tasks {
			out[i] = ai.TaskSuggestion{Title: t.Title, Description: t.Description, Category: t.Category}
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"tasks":   out,
			"message": fmt.Sprintf("Generated %d personalized tasks for %s stage recovery", len(out), stage),
		})
	}
}

func TodayHandler(sync *Synchronizer, stages StageResolver, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		tasks, err := sync.FetchToday(r.Context(), uid)
		if err != nil {
			httpx.WriteError(w, log, err, "Failed to load tasks")
			return
		}

		if len(tasks) == 0 && truthy(r.URL.Query().Get("autogenerate")) {
			stage, err := stages.CurrentStage(r.Context(), uid)
			if err != nil {
				httpx.WriteError(w, log, err, generateFailedDetails)
				return
			}
			tasks, err = sync.Regenerate(r.Context(), uid, stage, ai.DefaultTaskCount)
			if err != nil {
				httpx.WriteError(w, log, err, generateFailedDetails)
				return
			}
		}

		if tasks == nil {
			tasks = []DailyTask{}
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"date":  sync.today(),
			"tasks": tasks,
		})
	}
}

func HistoryHandler(sync *Synchronizer, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		days := 7
		if v := r.URL.Query().Get("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxHistoryDays {
				httpx.WriteError(w, log, apperr.Validationf("days must be between 1 and %d", maxHistoryDays), "")
				return
			}
			days = n
		}

		tasks, err := sync.History(r.Context(), uid, days)
		if err != nil {
			httpx.WriteError(w, log, err, "Failed to load task history")
			return
		}
		if tasks == nil {
			tasks = []DailyTask{}
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"days":            days,
			"completion_rate": completionRate(tasks),
			"tasks":           tasks,
		})
	}
}

func CompleteHandler(sync *Synchronizer, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			TaskID       string `json:"task_id" validate:"required,uuid"`
			Completed    *bool  `json:"completed" validate:"required"`
			JournalEntry string `json:"journal_entry" validate:"max=5000"`
			PhotoURL     string `json:"photo_url" validate:"omitempty,url,max=2048"`
		}
		if err := httpx.Decode(r, &body); err != nil {
			httpx.WriteError(w, log, err, "Failed to update task")
			return
		}
		taskID, err := uuid.Parse(body.TaskID)
		if err != nil {
			httpx.WriteError(w, log, apperr.Validation("task_id must be a uuid"), "Failed to update task")
			return
		}

		res, err := sync.ToggleCompletion(r.Context(), uid, taskID, *body.Completed, Evidence{
			JournalEntry: strings.TrimSpace(body.JournalEntry),
			PhotoURL:     strings.TrimSpace(body.PhotoURL),
		})
		if err != nil {
			httpx.WriteError(w, log, err, "Failed to update task")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, res)
	}
}

func completionRate(tasks []DailyTask) int {
	outcomes := make([]ai.TaskOutcome, len(tasks))
	for i, t := range tasks {
		outcomes[i] = ai.TaskOutcome{Title: t.Title, Completed: t.IsCompleted}
	}
	return ai.CompletionRate(outcomes)
}

func truthy(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
