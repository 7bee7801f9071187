package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"reset-recovery-backend/internal/apperr"
	"reset-recovery-backend/internal/recovery"
)

type Assessment struct {
	ID         int64          `json:"id"`
	UserID     string         `json:"user_id"`
	Responses  Responses      `json:"responses"`
	Score      int            `json:"score"`
	Normalized float64        `json:"normalized_score"`
	Stage      recovery.Stage `json:"stage"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Repository persists assessments. Rows are never updated.
type Repository interface {
	Insert(ctx context.Context, a Assessment) (Assessment, error)
	Latest(ctx context.Context, userID string) (Assessment, error)
	RecentScores(ctx context.Context, userID string, limit int) ([]int, error)
}

type PGStore struct {
	DB *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) Insert(ctx context.Context, a Assessment) (Assessment, error) {
	raw, err := json.Marshal(a.Responses)
	if err != nil {
		return Assessment{}, apperr.Store("encode responses", err)
	}

	err = s.DB.QueryRowContext(ctx, `
		INSERT INTO psychological_assessments (user_id, responses, score, stage)
		VALUES ($1, $2::jsonb, $3, $4)
		RETURNING id, created_at
	`, a.UserID, string(raw), a.Score, string(a.Stage)).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return Assessment{}, apperr.Store("insert assessment", err)
	}
	return a, nil
}

func (s *PGStore) Latest(ctx context.Context, userID string) (Assessment, error) {
	var (
		a     Assessment
		raw   []byte
		stage string
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, user_id, responses, score, stage, created_at
		FROM psychological_assessments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID).Scan(&a.ID, &a.UserID, &raw, &a.Score, &stage, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Assessment{}, apperr.NotFound("no assessment yet")
	}
	if err != nil {
		return Assessment{}, apperr.Store("select latest assessment", err)
	}
	if err := json.Unmarshal(raw, &a.Responses); err != nil {
		return Assessment{}, apperr.Store("decode responses", err)
	}
	a.Stage = recovery.Stage(stage)
	a.Normalized = Normalize(a.Score)
	return a, nil
}

// RecentScores returns up to limit raw scores, newest first.
func (s *PGStore) RecentScores(ctx context.Context, userID string, limit int) ([]int, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT score
		FROM psychological_assessments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, apperr.Store("select recent scores", err)
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, apperr.Store("scan score", err)
		}
		scores = append(scores, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("iterate scores", err)
	}
	return scores, nil
}
