package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []string
	envs   []Envelope
	keys   []string
}

func (s *recordingSink) Log(_ context.Context, env Envelope, name string, _ any, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, name)
	s.envs = append(s.envs, env)
	s.keys = append(s.keys, key)
	return nil
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Platform", "IOS")
	r.Header.Set("X-App-Version", " 1.4.0 ")
	r.Header.Set("X-Device-Locale", "en-GB")
	r.Header.Set("X-Session-Id", "s-1")

	env := FromRequest(r)
	assert.Equal(t, "ios", env.Platform)
	assert.Equal(t, "1.4.0", env.AppVersion)
	assert.Equal(t, "en-GB", env.DeviceLocale)
	assert.Equal(t, "s-1", env.SessionID)
	assert.Empty(t, env.UserID)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Platform", "smart-fridge")
	r = r.WithContext(WithUserID(r.Context(), "u-1"))
	env = FromRequest(r)
	assert.Equal(t, "unknown", env.Platform)
	assert.Equal(t, "u-1", env.UserID)
}

func TestSourceEventKeyFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Source-Event-Key", "fallback")
	assert.Equal(t, "fallback", SourceEventKeyFromRequest(r))

	r.Header.Set("Idempotency-Key", "preferred")
	assert.Equal(t, "preferred", SourceEventKeyFromRequest(r))
}

func TestAppOpenedHandler(t *testing.T) {
	sink := &recordingSink{}
	h := AppOpenedHandler(sink)

	t.Run("requires user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/analytics/app-opened", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("logs event", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/analytics/app-opened", strings.NewReader(`{"cold_start":true,"from":"icon"}`))
		r.Header.Set("Idempotency-Key", "open-1")
		r = r.WithContext(WithUserID(r.Context(), "u-7"))
		rec := httptest.NewRecorder()
		h(rec, r)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, sink.events, 1)
		assert.Equal(t, EventAppOpened, sink.events[0])
		assert.Equal(t, "u-7", sink.envs[0].UserID)
		assert.Equal(t, "open-1", sink.keys[0])
	})
}
