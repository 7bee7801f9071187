// Package profile keeps the per-user display name and cached recovery stage.
package profile

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"reset-recovery-backend/internal/apperr"
	"reset-recovery-backend/internal/recovery"
)

// DefaultDisplayName is used when the identity provider has no preferred name.
const DefaultDisplayName = "Friend"

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

// Ensure returns the user's profile, creating it on first access and
// reconciling the display name with the identity provider's preferred name.
func (s *Service) Ensure(ctx context.Context, userID, preferredName string) (Profile, error) {
	preferred := strings.TrimSpace(preferredName)

	p, err := s.repo.Get(ctx, userID)
	switch {
	case err == nil:
		// rows created by a stage update before the first profile read have no name
		if preferred == "" && p.DisplayName == "" {
			preferred = DefaultDisplayName
		}
		if preferred != "" && preferred != p.DisplayName {
			s.log.Info("profile display name reconciled", zap.String("user_id", userID))
			return s.repo.UpdateDisplayName(ctx, userID, preferred)
		}
		return p, nil
	case !apperr.Is(err, apperr.KindNotFound):
		return Profile{}, err
	}

	name := preferred
	if name == "" {
		name = DefaultDisplayName
	}
	p, err = s.repo.Create(ctx, userID, name)
	if errors.Is(err, ErrExists) {
		return s.repo.Get(ctx, userID)
	}
	if err != nil {
		return Profile{}, err
	}
	s.log.Info("profile created", zap.String("user_id", userID))
	return p, nil
}

// Onboard stores the name and self-selected stage from the onboarding form.
func (s *Service) Onboard(ctx context.Context, userID, displayName string, stage recovery.Stage) (Profile, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return Profile{}, apperr.Validation("display_name is required")
	}
	if stage != "" && !stage.Valid() {
		return Profile{}, apperr.Validationf("unknown recovery stage %q", stage)
	}

	if _, err := s.Ensure(ctx, userID, ""); err != nil {
		return Profile{}, err
	}
	if stage != "" {
		if err := s.repo.SetStage(ctx, userID, stage); err != nil {
			return Profile{}, err
		}
	}
	return s.repo.UpdateDisplayName(ctx, userID, name)
}

func (s *Service) SetStage(ctx context.Context, userID string, stage recovery.Stage) error {
	return s.repo.SetStage(ctx, userID, stage)
}

// CurrentStage is the cached stage, or mild before the first assessment.
func (s *Service) CurrentStage(ctx context.Context, userID string) (recovery.Stage, error) {
	p, err := s.repo.Get(ctx, userID)
	if apperr.Is(err, apperr.KindNotFound) {
		return recovery.StageMild, nil
	}
	if err != nil {
		return "", err
	}
	if p.RecoveryStage == nil || !p.RecoveryStage.Valid() {
		return recovery.StageMild, nil
	}
	return *p.RecoveryStage, nil
}
