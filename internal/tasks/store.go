package tasks

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"reset-recovery-backend/internal/apperr"
	"reset-recovery-backend/internal/db"
	"reset-recovery-backend/internal/recovery"
)

// BuildFunc produces the replacement set. It runs after the old set is gone
// and before anything new is written; an error aborts the replacement.
type BuildFunc func(ctx context.Context) ([]DailyTask, error)

type Repository interface {
	ListForDate(ctx context.Context, userID, date string) ([]DailyTask, error)
	// ListSince returns tasks created at or after since, newest first,
	// skipping excludeDate when it is not empty.
	ListSince(ctx context.Context, userID string, since time.Time, excludeDate string) ([]DailyTask, error)
	// ReplaceForDate atomically swaps the user's tasks on date for the output of build.
	// A failed delete returns before build is called.
	ReplaceForDate(ctx context.Context, userID, date string, build BuildFunc) ([]DailyTask, error)
	SetCompletion(ctx context.Context, userID string, taskID uuid.UUID, completed bool, at *time.Time, ev Evidence) (DailyTask, error)
	CountForDate(ctx context.Context, userID, date string) (total, completed int, err error)
}

type PGStore struct {
	DB *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

const taskColumns = `
	id, user_id, title, description, category, stage, ai_generated,
	to_char(date, 'YYYY-MM-DD'), is_completed, completed_at,
	journal_entry, photo_url, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (DailyTask, error) {
	var (
		t               DailyTask
		category, stage string
		completedAt     sql.NullTime
		journal, photo  sql.NullString
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &category, &stage, &t.AIGenerated,
		&t.Date, &t.IsCompleted, &completedAt,
		&journal, &photo, &t.CreatedAt,
	)
	if err != nil {
		return DailyTask{}, err
	}
	t.Category = recovery.Category(category)
	t.Stage = recovery.Stage(stage)
	if completedAt.Valid {
		at := completedAt.Time
		t.CompletedAt = &at
	}
	if journal.Valid {
		t.JournalEntry = &journal.String
	}
	if photo.Valid {
		t.PhotoURL = &photo.String
	}
	t.annotate()
	return t, nil
}

func collect(rows *sql.Rows) ([]DailyTask, error) {
	defer rows.Close()
	var out []DailyTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PGStore) ListForDate(ctx context.Context, userID, date string) ([]DailyTask, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM daily_tasks
		WHERE user_id = $1 AND date = $2::date
		ORDER BY created_at ASC, id ASC
	`, userID, date)
	if err != nil {
		return nil, apperr.Store("select tasks for date", err)
	}
	out, err := collect(rows)
	if err != nil {
		return nil, apperr.Store("scan tasks", err)
	}
	return out, nil
}

func (s *PGStore) ListSince(ctx context.Context, userID string, since time.Time, excludeDate string) ([]DailyTask, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM daily_tasks
		WHERE user_id = $1
		  AND created_at >= $2
		  AND date IS DISTINCT FROM NULLIF($3, '')::date
		ORDER BY created_at DESC
	`, userID, since, excludeDate)
	if err != nil {
		return nil, apperr.Store("select recent tasks", err)
	}
	out, err := collect(rows)
	if err != nil {
		return nil, apperr.Store("scan tasks", err)
	}
	return out, nil
}

func (s *PGStore) ReplaceForDate(ctx context.Context, userID, date string, build BuildFunc) ([]DailyTask, error) {
	var out []DailyTask
	err := db.Tx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM daily_tasks
			WHERE user_id = $1 AND date = $2::date
		`, userID, date); err != nil {
			return apperr.Store("delete tasks for date", err)
		}

		tasks, err := build(ctx)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}

		ids := make([]string, len(tasks))
		titles := make([]string, len(tasks))
		descs := make([]string, len(tasks))
		cats := make([]string, len(tasks))
		stages := make([]string, len(tasks))
		generated := make([]bool, len(tasks))
		for i, t := range tasks {
			ids[i] = t.ID.String()
			titles[i] = t.Title
			descs[i] = t.Description
			cats[i] = string(t.Category)
			stages[i] = string(t.Stage)
			generated[i] = t.AIGenerated
		}

		// ordinality keeps the generated order stable under ORDER BY created_at
		rows, err := tx.QueryContext(ctx, `
			INSERT INTO daily_tasks (id, user_id, title, description, category, stage, ai_generated, date, created_at)
			SELECT u.id, $1, u.title, u.description, u.category, u.stage, u.ai_generated, $2::date,
			       now() + u.ord * interval '1 microsecond'
			FROM unnest($3::uuid[], $4::text[], $5::text[], $6::text[], $7::text[], $8::boolean[])
			     WITH ORDINALITY AS u(id, title, description, category, stage, ai_generated, ord)
			RETURNING `+taskColumns,
			userID, date,
			pq.Array(ids), pq.Array(titles), pq.Array(descs), pq.Array(cats), pq.Array(stages), pq.Array(generated),
		)
		if err != nil {
			return apperr.Store("insert tasks", err)
		}
		inserted, err := collect(rows)
		if err != nil {
			return apperr.Store("insert tasks", err)
		}
		out = sortByCreated(inserted)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PGStore) SetCompletion(ctx context.Context, userID string, taskID uuid.UUID, completed bool, at *time.Time, ev Evidence) (DailyTask, error) {
	t, err := scanTask(s.DB.QueryRowContext(ctx, `
		UPDATE daily_tasks
		SET is_completed = $3,
		    completed_at = $4,
		    journal_entry = COALESCE(NULLIF($5, ''), journal_entry),
		    photo_url = COALESCE(NULLIF($6, ''), photo_url)
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns,
		taskID, userID, completed, at, ev.JournalEntry, ev.PhotoURL,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return DailyTask{}, apperr.NotFound("task not found")
	}
	if err != nil {
		return DailyTask{}, apperr.Store("update task completion", err)
	}
	return t, nil
}

func (s *PGStore) CountForDate(ctx context.Context, userID, date string) (int, int, error) {
	var total, completed int
	err := s.DB.QueryRowContext(ctx, `
		SELECT count(*), count(*) FILTER (WHERE is_completed)
		FROM daily_tasks
		WHERE user_id = $1 AND date = $2::date
	`, userID, date).Scan(&total, &completed)
	if err != nil {
		return 0, 0, apperr.Store("count tasks for date", err)
	}
	return total, completed, nil
}

func sortByCreated(ts []DailyTask) []DailyTask {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].CreatedAt.Before(ts[j].CreatedAt) })
	return ts
}
