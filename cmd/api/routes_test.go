package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reset-recovery-backend/internal/auth"
	"reset-recovery-backend/internal/catalog"
	"reset-recovery-backend/internal/config"
)

func testApp(t *testing.T) *app {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return &app{
		cfg:     &config.Config{AuthJWTSecret: "s3cret", CORSOrigins: []string{"https://app.example"}},
		log:     zap.NewNop(),
		catalog: cat,
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := testApp(t).Handler()
	routes := []struct{ method, path string }{
		{http.MethodGet, "/auth/me"},
		{http.MethodPost, "/auth/logout"},
		{http.MethodDelete, "/auth/account"},
		{http.MethodGet, "/profile"},
		{http.MethodPut, "/profile"},
		{http.MethodPost, "/assessment"},
		{http.MethodGet, "/assessment/latest"},
		{http.MethodPost, "/generate-ai-tasks"},
		{http.MethodGet, "/tasks/today"},
		{http.MethodGet, "/tasks/history"},
		{http.MethodPost, "/tasks/complete"},
		{http.MethodGet, "/streak"},
		{http.MethodPost, "/mood"},
		{http.MethodGet, "/mood/today"},
		{http.MethodPost, "/analytics/app-opened"},
	}
	for _, rt := range routes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", rt.method, rt.path)
	}
}

func TestPublicAndUnknownRoutes(t *testing.T) {
	a := testApp(t)
	h := a.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assessment/questions", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate-ai-tasks", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/goal", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	tok, err := auth.GenerateToken([]byte(a.cfg.AuthJWTSecret), "7b0c3e5e-2f43-4a39-9f0e-1f4f6d1f2a10", "", "Sam", "", time.Hour)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"display_name":"Sam"`)
}

func TestCORSPreflight(t *testing.T) {
	h := testApp(t).Handler()
	r := httptest.NewRequest(http.MethodOptions, "/generate-ai-tasks", nil)
	r.Header.Set("Origin", "https://app.example")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
