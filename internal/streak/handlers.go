package streak

import (
	"net/http"

	"go.uber.org/zap"

	"reset-recovery-backend/internal/auth"
	"reset-recovery-backend/internal/httpx"
)

func GetHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rec, err := svc.Get(r.Context(), uid)
		if err != nil {
			httpx.WriteError(w, log, err, "Failed to load streak")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, rec)
	}
}
