package profile

import (
	"net/http"

	"go.uber.org/zap"

	"reset-recovery-backend/internal/analytics"
	"reset-recovery-backend/internal/auth"
	"reset-recovery-backend/internal/httpx"
	"reset-recovery-backend/internal/recovery"
)

func GetHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		preferred := ""
		if c, ok := auth.ClaimsFromContext(r.Context()); ok {
			preferred = c.UserMetadata.DisplayName
		}

		p, err := svc.Ensure(r.Context(), uid, preferred)
		if err != nil {
			httpx.WriteError(w, log, err, "Failed to load profile")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, p)
	}
}

func UpdateHandler(svc *Service, events analytics.Sink, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			DisplayName   string `json:"display_name" validate:"required,max=80"`
			RecoveryStage string `json:"recovery_stage" validate:"omitempty,oneof=mild moderate severe"`
		}
		if err := httpx.Decode(r, &body); err != nil {
			httpx.WriteError(w, log, err, "Failed to update profile")
			return
		}

		p, err := svc.Onboard(r.Context(), uid, body.DisplayName, recovery.Stage(body.RecoveryStage))
		if err != nil {
			httpx.WriteError(w, log, err, "Failed to update profile")
			return
		}

		// analytics: onboarding_completed (имя не логируем)
		{
			env := analytics.FromRequest(r)
			env.UserID = uid
			props := map[string]any{
				"stage_selected": body.RecoveryStage != "",
			}
			_ = events.Log(r.Context(), env, analytics.EventOnboardingCompleted, props, analytics.SourceEventKeyFromRequest(r))
		}

		httpx.WriteJSON(w, http.StatusOK, p)
	}
}
