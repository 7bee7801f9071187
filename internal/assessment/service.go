// Package assessment scores the six-question recovery self-assessment and
// keeps the immutable history of submissions.
package assessment

import (
	"context"

	"go.uber.org/zap"

	"reset-recovery-backend/internal/recovery"
)

// StageCache receives the newest stage so the profile can show it without a join.
type StageCache interface {
	SetStage(ctx context.Context, userID string, stage recovery.Stage) error
}

type Service struct {
	repo   Repository
	stages StageCache
	log    *zap.Logger
}

func NewService(repo Repository, stages StageCache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, stages: stages, log: log}
}

// Submit scores the answers and stores one new assessment.
func (s *Service) Submit(ctx context.Context, userID string, responses Responses) (Assessment, error) {
	res, err := Score(responses)
	if err != nil {
		return Assessment{}, err
	}

	a, err := s.repo.Insert(ctx, Assessment{
		UserID:     userID,
		Responses:  responses,
		Score:      res.Total,
		Normalized: res.Normalized,
		Stage:      res.Stage,
	})
	if err != nil {
		return Assessment{}, err
	}
	a.Normalized = res.Normalized

	// the cache is denormalized; a failed update here is repaired by the next submission
	if s.stages != nil {
		if err := s.stages.SetStage(ctx, userID, res.Stage); err != nil {
			s.log.Warn("profile stage update failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	s.log.Info("assessment submitted",
		zap.String("user_id", userID),
		zap.Int("score", res.Total),
		zap.String("stage", string(res.Stage)))
	return a, nil
}

func (s *Service) Latest(ctx context.Context, userID string) (Assessment, error) {
	return s.repo.Latest(ctx, userID)
}

func (s *Service) RecentScores(ctx context.Context, userID string, limit int) ([]int, error) {
	return s.repo.RecentScores(ctx, userID, limit)
}
