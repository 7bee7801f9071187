package main

import (
	"net/http"

	"reset-recovery-backend/internal/analytics"
	"reset-recovery-backend/internal/assessment"
	"reset-recovery-backend/internal/auth"
	"reset-recovery-backend/internal/mood"
	"reset-recovery-backend/internal/profile"
	"reset-recovery-backend/internal/streak"
	"reset-recovery-backend/internal/tasks"
)

func newMux(a *app) *http.ServeMux {
	mw := auth.New([]byte(a.cfg.AuthJWTSecret), a.cfg.AuthAudience)
	log := a.log

	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := a.db.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("OK"))
	})

	// ----- AUTH -----
	mux.HandleFunc("GET /auth/me", mw.Wrap(auth.MeHandler()))
	mux.HandleFunc("POST /auth/logout", mw.Wrap(auth.LogoutHandler()))
	mux.HandleFunc("DELETE /auth/account", mw.Wrap(auth.DeleteAccountHandler(a.accounts, log)))

	// ----- PROFILE -----
	mux.HandleFunc("GET /profile", mw.Wrap(profile.GetHandler(a.profiles, log)))
	mux.HandleFunc("PUT /profile", mw.Wrap(profile.UpdateHandler(a.profiles, a.events, log)))

	// ----- ASSESSMENT -----
	mux.HandleFunc("GET /assessment/questions", assessment.QuestionsHandler(a.catalog.Questions))
	mux.HandleFunc("POST /assessment", mw.Wrap(assessment.SubmitHandler(a.assessments, a.events, log)))
	mux.HandleFunc("GET /assessment/latest", mw.Wrap(assessment.LatestHandler(a.assessments, log)))

	// ----- TASKS -----
	mux.HandleFunc("POST /generate-ai-tasks", mw.Wrap(tasks.GenerateHandler(a.tasks, log)))
	mux.HandleFunc("GET /tasks/today", mw.Wrap(tasks.TodayHandler(a.tasks, a.profiles, log)))
	mux.HandleFunc("GET /tasks/history", mw.Wrap(tasks.HistoryHandler(a.tasks, log)))
	mux.HandleFunc("POST /tasks/complete", mw.Wrap(tasks.CompleteHandler(a.tasks, log)))

	// ----- STREAK / MOOD -----
	mux.HandleFunc("GET /streak", mw.Wrap(streak.GetHandler(a.streaks, log)))
	mux.HandleFunc("POST /mood", mw.Wrap(mood.CheckInHandler(a.moods, log)))
	mux.HandleFunc("GET /mood/today", mw.Wrap(mood.TodayHandler(a.moods, log)))

	// ----- ANALYTICS -----
	mux.HandleFunc("POST /analytics/app-opened", mw.Wrap(analytics.AppOpenedHandler(a.events)))

	return mux
}
