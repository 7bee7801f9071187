package streak

import (
	"context"
	"database/sql"

	"reset-recovery-backend/internal/apperr"
)

type Repository interface {
	// Get returns the user's record, creating a zero one when absent.
	Get(ctx context.Context, userID string) (Record, error)
	// Save persists rec unless its day was already stored. It reports whether a row changed.
	Save(ctx context.Context, rec Record) (bool, error)
}

type PGStore struct {
	DB *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) Get(ctx context.Context, userID string) (Record, error) {
	if _, err := s.DB.ExecContext(ctx, `
		INSERT INTO user_streaks (user_id, current_streak, longest_streak)
		VALUES ($1, 0, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return Record{}, apperr.Store("create streak", err)
	}

	var (
		rec  = Record{UserID: userID}
		last sql.NullString
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT current_streak, longest_streak, to_char(last_activity_date, 'YYYY-MM-DD')
		FROM user_streaks
		WHERE user_id = $1
	`, userID).Scan(&rec.CurrentStreak, &rec.LongestStreak, &last)
	if err != nil {
		return Record{}, apperr.Store("select streak", err)
	}
	if last.Valid {
		rec.LastActivityDate = &last.String
	}
	return rec, nil
}

func (s *PGStore) Save(ctx context.Context, rec Record) (bool, error) {
	// the date guard keeps two concurrent completions from both counting the same day
	res, err := s.DB.ExecContext(ctx, `
		UPDATE user_streaks
		SET current_streak = $2,
		    longest_streak = $3,
		    last_activity_date = $4::date,
		    updated_at = now()
		WHERE user_id = $1
		  AND last_activity_date IS DISTINCT FROM $4::date
	`, rec.UserID, rec.CurrentStreak, rec.LongestStreak, rec.LastActivityDate)
	if err != nil {
		return false, apperr.Store("update streak", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Store("update streak", err)
	}
	return n > 0, nil
}
