package mood

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"reset-recovery-backend/internal/auth"
	"reset-recovery-backend/internal/httpx"
)

func CheckInHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Mood string `json:"mood" validate:"required,oneof=happy neutral sad stressed"`
			Note string `json:"note" validate:"max=1000"`
		}
		if err := httpx.Decode(r, &body); err != nil {
			httpx.WriteError(w, log, err, "Failed to save mood")
			return
		}

		c, err := svc.CheckIn(r.Context(), uid, body.Mood, strings.TrimSpace(body.Note))
		if err != nil {
			httpx.WriteError(w, log, err, "Failed to save mood")
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, c)
	}
}

func TodayHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := svc.Today(r.Context(), uid)
		if err != nil {
			httpx.WriteError(w, log, err, "")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, c)
	}
}
