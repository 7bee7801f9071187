package auth

import (
	"context"
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"reset-recovery-backend/internal/apperr"
	"reset-recovery-backend/internal/db"
	"reset-recovery-backend/internal/httpx"
)

// userTables are cleared on account deletion, children first.
var userTables = []string{
	"analytics_events",
	"mood_checkins",
	"daily_tasks",
	"user_streaks",
	"psychological_assessments",
	"profiles",
}

func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"user_id":      c.Subject,
			"email":        c.Email,
			"display_name": c.UserMetadata.DisplayName,
		})
	}
}

func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// JWT stateless => сервер ничего не “разлогинивает”.
		// Фронт просто удаляет токен.
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"ok": true,
		})
	}
}

// AccountDeleter removes every row a user owns.
type AccountDeleter interface {
	DeleteAccount(ctx context.Context, userID string) error
}

type PGAccounts struct {
	DB *sql.DB
}

func (a PGAccounts) DeleteAccount(ctx context.Context, userID string) error {
	return db.Tx(ctx, a.DB, func(tx *sql.Tx) error {
		for _, table := range userTables {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, userID); err != nil {
				return apperr.Store("delete "+table, err)
			}
		}
		return nil
	})
}

func DeleteAccountHandler(accounts AccountDeleter, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := accounts.DeleteAccount(r.Context(), uid); err != nil {
			httpx.WriteError(w, log, err, "Failed to delete account")
			return
		}

		log.Info("account deleted", zap.String("user_id", uid))
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"ok": true,
		})
	}
}
