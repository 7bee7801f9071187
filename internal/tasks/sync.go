// Package tasks owns the daily task set: idempotent AI regeneration, reads,
// and completion toggles that feed the streak.
package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"reset-recovery-backend/internal/ai"
	"reset-recovery-backend/internal/analytics"
	"reset-recovery-backend/internal/apperr"
	"reset-recovery-backend/internal/calendar"
	"reset-recovery-backend/internal/recovery"
	"reset-recovery-backend/internal/streak"
)

const (
	historyScores = 3
	historyWindow = 7 * 24 * time.Hour
)

type ScoreSource interface {
	RecentScores(ctx context.Context, userID string, limit int) ([]int, error)
}

type StreakRecorder interface {
	RecordDayCompleted(ctx context.Context, userID, today string) (streak.Record, error)
}

type Deps struct {
	Repo       Repository
	Scores     ScoreSource
	Generator  ai.Generator
	Streaks    StreakRecorder
	Guidelines map[recovery.Stage]string
	Pool       []ai.TaskSuggestion
	Events     analytics.Sink
	Logger     *zap.Logger
	Now        func() time.Time
}

type Synchronizer struct {
	repo       Repository
	scores     ScoreSource
	gen        ai.Generator
	streaks    StreakRecorder
	guidelines map[recovery.Stage]string
	pool       []ai.TaskSuggestion
	events     analytics.Sink
	log        *zap.Logger
	now        func() time.Time
}

func NewSynchronizer(d Deps) *Synchronizer {
	s := &Synchronizer{
		repo:       d.Repo,
		scores:     d.Scores,
		gen:        d.Generator,
		streaks:    d.Streaks,
		guidelines: d.Guidelines,
		pool:       d.Pool,
		events:     d.Events,
		log:        d.Logger,
		now:        d.Now,
	}
	if s.events == nil {
		s.events = analytics.Nop{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Synchronizer) today() string {
	return calendar.DateKey(s.now())
}

// Regenerate replaces today's tasks with a freshly generated set. The old set
// survives any failure of the generator or the insert.
func (s *Synchronizer) Regenerate(ctx context.Context, userID string, stage recovery.Stage, count int) ([]DailyTask, error) {
	if !stage.Valid() {
		return nil, apperr.Validationf("unknown recovery stage %q", stage)
	}
	if count <= 0 {
		count = ai.DefaultTaskCount
	}
	if count > ai.MaxRequestCount {
		count = ai.MaxRequestCount
	}
	today := s.today()

	var (
		scores []int
		recent []DailyTask
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		scores, err = s.scores.RecentScores(gctx, userID, historyScores)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.repo.ListSince(gctx, userID, s.now().Add(-historyWindow), today)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	outcomes := make([]ai.TaskOutcome, len(recent))
	for i, t := range recent {
		outcomes[i] = ai.TaskOutcome{Title: t.Title, Completed: t.IsCompleted}
	}
	prompt := ai.BuildTaskPrompt(ai.PromptInput{
		Stage:        stage,
		RecentScores: scores,
		RecentTasks:  outcomes,
		Count:        count,
	}, s.guidelines)

	build := func(ctx context.Context) ([]DailyTask, error) {
		raw, err := s.gen.Generate(ctx, prompt)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindInternal {
				err = apperr.Upstream("generate tasks", err)
			}
			return nil, err
		}

		suggestions, err := ai.NormalizeTasks(raw, count, s.pool)
		if err != nil {
			s.log.Warn("unparseable AI response", zap.String("user_id", userID), zap.Int("len", len(raw)))
			return nil, err
		}

		out := make([]DailyTask, len(suggestions))
		for i, sg := range suggestions {
			out[i] = DailyTask{
				ID:          uuid.New(),
				UserID:      userID,
				Title:       sg.Title,
				Description: sg.Description,
				Category:    sg.Category,
				Stage:       stage,
				AIGenerated: true,
				Date:        today,
			}
		}
		return out, nil
	}

	tasks, err := s.repo.ReplaceForDate(ctx, userID, today, build)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].annotate()
	}

	s.log.Info("tasks generated",
		zap.String("user_id", userID),
		zap.String("stage", string(stage)),
		zap.Int("count", len(tasks)))

	_ = s.events.Log(ctx, analytics.Envelope{UserID: userID}, analytics.EventTasksGenerated, map[string]any{
		"stage":     stage,
		"requested": count,
		"count":     len(tasks),
		"date":      today,
	}, "")

	return tasks, nil
}

// FetchToday returns today's tasks in creation order. An empty result means
// the set was never generated or was cleared.
func (s *Synchronizer) FetchToday(ctx context.Context, userID string) ([]DailyTask, error) {
	return s.repo.ListForDate(ctx, userID, s.today())
}

// History returns tasks created in the last days days, newest first.
func (s *Synchronizer) History(ctx context.Context, userID string, days int) ([]DailyTask, error) {
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	return s.repo.ListSince(ctx, userID, since, "")
}

type ToggleResult struct {
	Task DailyTask `json:"task"`
	// set when this toggle completed the whole of today's set
	Streak *streak.Record `json:"streak,omitempty"`
}

// ToggleCompletion marks a task done or not done. Undoing a completion never
// takes back a streak day already counted.
func (s *Synchronizer) ToggleCompletion(ctx context.Context, userID string, taskID uuid.UUID, completed bool, ev Evidence) (ToggleResult, error) {
	var at *time.Time
	if completed {
		now := s.now().UTC()
		at = &now
	}

	t, err := s.repo.SetCompletion(ctx, userID, taskID, completed, at, ev)
	if err != nil {
		return ToggleResult{}, err
	}
	res := ToggleResult{Task: t}

	event := analytics.EventTaskUncompleted
	if completed {
		event = analytics.EventTaskCompleted
	}
	_ = s.events.Log(ctx, analytics.Envelope{UserID: userID}, event, map[string]any{
		"task_id":      t.ID,
		"category":     t.Category,
		"has_journal":  t.JournalEntry != nil,
		"has_photo":    t.PhotoURL != nil,
		"ai_generated": t.AIGenerated,
	}, "")

	today := s.today()
	if !completed || t.Date != today {
		return res, nil
	}

	total, done, err := s.repo.CountForDate(ctx, userID, today)
	if err != nil {
		return ToggleResult{}, err
	}
	if total == 0 || done < total {
		return res, nil
	}

	rec, err := s.streaks.RecordDayCompleted(ctx, userID, today)
	if err != nil {
		return ToggleResult{}, err
	}
	res.Streak = &rec
	return res, nil
}
