package profile

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"reset-recovery-backend/internal/apperr"
	"reset-recovery-backend/internal/db"
	"reset-recovery-backend/internal/recovery"
)

// ErrExists is returned by Create when another request inserted the profile first.
var ErrExists = errors.New("profile already exists")

type Profile struct {
	UserID        string          `json:"user_id"`
	DisplayName   string          `json:"display_name"`
	RecoveryStage *recovery.Stage `json:"recovery_stage"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Repository interface {
	Get(ctx context.Context, userID string) (Profile, error)
	Create(ctx context.Context, userID, displayName string) (Profile, error)
	UpdateDisplayName(ctx context.Context, userID, displayName string) (Profile, error)
	// SetStage upserts the cached recovery stage.
	SetStage(ctx context.Context, userID string, stage recovery.Stage) error
}

type PGStore struct {
	DB *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

const profileColumns = `user_id, display_name, recovery_stage, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (Profile, error) {
	var (
		p     Profile
		stage sql.NullString
	)
	if err := row.Scan(&p.UserID, &p.DisplayName, &stage, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Profile{}, err
	}
	if stage.Valid {
		s := recovery.Stage(stage.String)
		p.RecoveryStage = &s
	}
	return p, nil
}

func (s *PGStore) Get(ctx context.Context, userID string) (Profile, error) {
	p, err := scanProfile(s.DB.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE user_id = $1
	`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, apperr.NotFound("profile not found")
	}
	if err != nil {
		return Profile{}, apperr.Store("select profile", err)
	}
	return p, nil
}

func (s *PGStore) Create(ctx context.Context, userID, displayName string) (Profile, error) {
	p, err := scanProfile(s.DB.QueryRowContext(ctx, `
		INSERT INTO profiles (user_id, display_name)
		VALUES ($1, $2)
		RETURNING `+profileColumns, userID, displayName))
	if db.IsUniqueViolation(err) {
		return Profile{}, ErrExists
	}
	if err != nil {
		return Profile{}, apperr.Store("insert profile", err)
	}
	return p, nil
}

func (s *PGStore) UpdateDisplayName(ctx context.Context, userID, displayName string) (Profile, error) {
	p, err := scanProfile(s.DB.QueryRowContext(ctx, `
		UPDATE profiles
		SET display_name = $2, updated_at = now()
		WHERE user_id = $1
		RETURNING `+profileColumns, userID, displayName))
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, apperr.NotFound("profile not found")
	}
	if err != nil {
		return Profile{}, apperr.Store("update profile", err)
	}
	return p, nil
}

func (s *PGStore) SetStage(ctx context.Context, userID string, stage recovery.Stage) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO profiles (user_id, recovery_stage)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			recovery_stage = EXCLUDED.recovery_stage,
			updated_at = now()
	`, userID, string(stage))
	if err != nil {
		return apperr.Store("update profile stage", err)
	}
	return nil
}
