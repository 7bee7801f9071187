package assessment

import (
	"net/http"

	"go.uber.org/zap"

	"reset-recovery-backend/internal/analytics"
	"reset-recovery-backend/internal/auth"
	"reset-recovery-backend/internal/catalog"
	"reset-recovery-backend/internal/httpx"
)

func QuestionsHandler(questions []catalog.Question) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"questions": questions,
		})
	}
}

func SubmitHandler(svc *Service, events analytics.Sink, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Responses Responses `json:"responses" validate:"required"`
		}
		if err := httpx.Decode(r, &body); err != nil {
			httpx.WriteError(w, log, err, "Failed to submit assessment")
			return
		}

		a, err := svc.Submit(r.Context(), uid, body.Responses)
		if err != nil {
			httpx.WriteError(w, log, err, "Failed to submit assessment")
			return
		}

		// analytics: assessment_submitted (answers themselves are not logged)
		{
			env := analytics.FromRequest(r)
			env.UserID = uid
			props := map[string]any{
				"assessment_id": a.ID,
				"score":         a.Score,
				"stage":         a.Stage,
			}
			_ = events.Log(r.Context(), env, analytics.EventAssessmentSubmitted, props, analytics.SourceEventKeyFromRequest(r))
		}

		httpx.WriteJSON(w, http.StatusCreated, map[string]any{
			"id":               a.ID,
			"score":            a.Score,
			"normalized_score": a.Normalized,
			"stage":            a.Stage,
			"created_at":       a.CreatedAt,
			"message":          "Your recovery stage has been determined as " + string(a.Stage) + ". We'll customize your experience accordingly.",
		})
	}
}

func LatestHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.Latest(r.Context(), uid)
		if err != nil {
			httpx.WriteError(w, log, err, "")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, a)
	}
}
