package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"reset-recovery-backend/internal/ai"
	"reset-recovery-backend/internal/analytics"
	"reset-recovery-backend/internal/assessment"
	"reset-recovery-backend/internal/auth"
	"reset-recovery-backend/internal/catalog"
	"reset-recovery-backend/internal/config"
	"reset-recovery-backend/internal/db"
	"reset-recovery-backend/internal/mood"
	"reset-recovery-backend/internal/profile"
	"reset-recovery-backend/internal/streak"
	"reset-recovery-backend/internal/tasks"
)

type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *sql.DB

	catalog     *catalog.Catalog
	events      analytics.Sink
	accounts    auth.AccountDeleter
	profiles    *profile.Service
	assessments *assessment.Service
	streaks     *streak.Service
	tasks       *tasks.Synchronizer
	moods       *mood.Service
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	database, err := db.Connect(ctx, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	log.Info("connected to PostgreSQL", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	if err := db.Migrate(ctx, database); err != nil {
		database.Close()
		return nil, err
	}

	gen, err := ai.NewGenerator(ctx, cfg, log.Named("ai"))
	if err != nil {
		database.Close()
		return nil, err
	}

	events := &analytics.DBSink{DB: database, Logger: log.Named("analytics")}
	profiles := profile.NewService(profile.NewPGStore(database), log.Named("profile"))
	assessments := assessment.NewService(assessment.NewPGStore(database), profiles, log.Named("assessment"))
	streaks := streak.NewService(streak.NewPGStore(database), events, log.Named("streak"))

	return &app{
		cfg:         cfg,
		log:         log,
		db:          database,
		catalog:     cat,
		events:      events,
		accounts:    auth.PGAccounts{DB: database},
		profiles:    profiles,
		assessments: assessments,
		streaks:     streaks,
		tasks: tasks.NewSynchronizer(tasks.Deps{
			Repo:       tasks.NewPGStore(database),
			Scores:     assessments,
			Generator:  gen,
			Streaks:    streaks,
			Guidelines: cat.StageGuidelines,
			Pool:       ai.Pool(cat.FallbackTasks),
			Events:     events,
			Logger:     log.Named("tasks"),
		}),
		moods: mood.NewService(mood.PGStore{DB: database}, cat.MoodFeedback, events, log.Named("mood")),
	}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
}

func (a *app) Handler() http.Handler {
	mux := newMux(a)

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins: a.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{
			"Content-Type", "Authorization", "Idempotency-Key", "X-Source-Event-Key",
			"X-Platform", "X-App-Version", "X-Device-Locale", "X-Session-Id", "X-Client-Info", "Apikey",
		},
		AllowCredentials: !allowsAny(a.cfg.CORSOrigins),
	})
	return c.Handler(mux)
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
