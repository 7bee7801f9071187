package streak

import (
	"context"

	"go.uber.org/zap"

	"reset-recovery-backend/internal/analytics"
)

type Service struct {
	repo   Repository
	events analytics.Sink
	log    *zap.Logger
}

func NewService(repo Repository, events analytics.Sink, log *zap.Logger) *Service {
	if events == nil {
		events = analytics.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, events: events, log: log}
}

func (s *Service) Get(ctx context.Context, userID string) (Record, error) {
	return s.repo.Get(ctx, userID)
}

// RecordDayCompleted counts today for the user. Calling it again on the same
// date returns the stored record unchanged.
func (s *Service) RecordDayCompleted(ctx context.Context, userID string, today string) (Record, error) {
	rec, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Record{}, err
	}

	next, changed := Advance(rec, today)
	if !changed {
		return rec, nil
	}

	saved, err := s.repo.Save(ctx, next)
	if err != nil {
		return Record{}, err
	}
	if !saved {
		// another request counted today first
		return s.repo.Get(ctx, userID)
	}

	s.log.Info("streak advanced",
		zap.String("user_id", userID),
		zap.Int("current", next.CurrentStreak),
		zap.Int("longest", next.LongestStreak))

	_ = s.events.Log(ctx, analytics.Envelope{UserID: userID}, analytics.EventStreakAdvanced, map[string]any{
		"current_streak": next.CurrentStreak,
		"longest_streak": next.LongestStreak,
		"date":           today,
	}, "streak:"+userID+":"+today)

	return next, nil
}
