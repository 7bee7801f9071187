package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type CtxKey string

const (
	ctxUserIDKey CtxKey = "analytics_user_id"
)

// Event names.
const (
	EventAppOpened           = "app_opened"
	EventAssessmentSubmitted = "assessment_submitted"
	EventTasksGenerated      = "tasks_generated"
	EventTaskCompleted       = "task_completed"
	EventTaskUncompleted     = "task_uncompleted"
	EventStreakAdvanced      = "streak_advanced"
	EventMoodCheckedIn       = "mood_checked_in"
	EventOnboardingCompleted = "onboarding_completed"
)

// Envelope is what we store with every event.
type Envelope struct {
	UserID       string
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
	IPCountry    string
}

// FromRequest extracts event envelope fields from request.
// Backend-trustable fields only.
func FromRequest(r *http.Request) Envelope {
	platform := strings.TrimSpace(r.Header.Get("X-Platform"))
	if platform == "" {
		platform = "unknown"
	} else {
		platform = strings.ToLower(platform)
		if platform != "ios" && platform != "android" && platform != "web" {
			platform = "unknown"
		}
	}

	appVer := strings.TrimSpace(r.Header.Get("X-App-Version"))
	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	sessionID := strings.TrimSpace(r.Header.Get("X-Session-Id"))

	env := Envelope{
		SessionID:    sessionID,
		Platform:     platform,
		AppVersion:   appVer,
		DeviceLocale: locale,
	}
	if uid, ok := UserIDFromContext(r.Context()); ok {
		env.UserID = uid
	}
	return env
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(ctxUserIDKey).(string)
	return uid, ok && uid != ""
}

// Client-provided idempotency key (optional)
// If present and duplicates, insert is ignored.
func SourceEventKeyFromRequest(r *http.Request) string {
	// preferred: Idempotency-Key header
	k := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if k != "" {
		return k
	}
	// fallback
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

// Sink records product analytics events. Implementations never fail the
// calling request.
type Sink interface {
	Log(ctx context.Context, env Envelope, eventName string, props any, sourceEventKey string) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Log(context.Context, Envelope, string, any, string) error { return nil }

// DBSink writes events to analytics_events.
type DBSink struct {
	DB     *sql.DB
	Logger *zap.Logger
}

// Log inserts one analytics event.
// Never logs sensitive raw text; caller passes sanitized props.
func (s *DBSink) Log(ctx context.Context, env Envelope, eventName string, props any, sourceEventKey string) error {
	if eventName == "" {
		return nil
	}

	userID := env.UserID
	if userID == "" {
		if uid, ok := UserIDFromContext(ctx); ok {
			userID = uid
		} else {
			// no user => skip
			return nil
		}
	}

	b, err := json.Marshal(props)
	if err != nil {
		// if props can't marshal, don't break core flow
		s.warn("analytics props not serializable", eventName, err)
		return nil
	}

	// If source_event_key duplicates -> do nothing
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO analytics_events (
			event_name, event_time,
			user_id, session_id,
			platform, app_version, device_locale, ip_country,
			source_event_key,
			properties
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb)
		ON CONFLICT (source_event_key) DO NOTHING
	`, eventName, time.Now().UTC(),
		userID, nullIfEmpty(env.SessionID),
		env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale), nullIfEmpty(env.IPCountry),
		nullIfEmpty(sourceEventKey),
		string(b),
	)
	if err != nil {
		s.warn("analytics insert failed", eventName, err)
	}
	return nil
}

func (s *DBSink) warn(msg, eventName string, err error) {
	if s.Logger != nil {
		s.Logger.Warn(msg, zap.String("event", eventName), zap.Error(err))
	}
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
