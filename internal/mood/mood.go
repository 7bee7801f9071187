// Package mood records daily mood check-ins and answers each with a short
// supportive message.
package mood

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reset-recovery-backend/internal/analytics"
	"reset-recovery-backend/internal/apperr"
	"reset-recovery-backend/internal/calendar"
)

type Checkin struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Mood      string    `json:"mood"`
	Note      *string   `json:"note,omitempty"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	Feedback  string    `json:"feedback"`
}

type Repository interface {
	Insert(ctx context.Context, c Checkin) (Checkin, error)
	// LatestForDate returns NotFound when the user has not checked in on date.
	LatestForDate(ctx context.Context, userID, date string) (Checkin, error)
}

type PGStore struct {
	DB *sql.DB
}

func (s PGStore) Insert(ctx context.Context, c Checkin) (Checkin, error) {
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO mood_checkins (id, user_id, mood, note, date)
		VALUES ($1, $2, $3, $4, $5::date)
		RETURNING created_at
	`, c.ID, c.UserID, c.Mood, c.Note, c.Date).Scan(&c.CreatedAt)
	if err != nil {
		return Checkin{}, apperr.Store("insert mood checkin", err)
	}
	return c, nil
}

func (s PGStore) LatestForDate(ctx context.Context, userID, date string) (Checkin, error) {
	var (
		c    = Checkin{UserID: userID}
		note sql.NullString
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, mood, note, to_char(date, 'YYYY-MM-DD'), created_at
		FROM mood_checkins
		WHERE user_id = $1 AND date = $2::date
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, date).Scan(&c.ID, &c.Mood, &note, &c.Date, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Checkin{}, apperr.NotFound("no mood check-in today")
	}
	if err != nil {
		return Checkin{}, apperr.Store("select mood checkin", err)
	}
	if note.Valid {
		c.Note = &note.String
	}
	return c, nil
}

type Service struct {
	repo     Repository
	feedback map[string]string
	events   analytics.Sink
	log      *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, feedback map[string]string, events analytics.Sink, log *zap.Logger) *Service {
	if events == nil {
		events = analytics.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, feedback: feedback, events: events, log: log, now: time.Now}
}

func (s *Service) CheckIn(ctx context.Context, userID, mood, note string) (Checkin, error) {
	fb, ok := s.feedback[mood]
	if !ok {
		return Checkin{}, apperr.Validationf("unknown mood %q", mood)
	}

	c := Checkin{
		ID:     uuid.New(),
		UserID: userID,
		Mood:   mood,
		Date:   calendar.DateKey(s.now()),
	}
	if note != "" {
		c.Note = &note
	}

	c, err := s.repo.Insert(ctx, c)
	if err != nil {
		return Checkin{}, err
	}
	c.Feedback = fb

	// note text stays out of analytics
	_ = s.events.Log(ctx, analytics.Envelope{UserID: userID}, analytics.EventMoodCheckedIn, map[string]any{
		"mood":     mood,
		"has_note": c.Note != nil,
	}, "")
	return c, nil
}

func (s *Service) Today(ctx context.Context, userID string) (Checkin, error) {
	c, err := s.repo.LatestForDate(ctx, userID, calendar.DateKey(s.now()))
	if err != nil {
		return Checkin{}, err
	}
	c.Feedback = s.feedback[c.Mood]
	return c, nil
}
