package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reset-recovery-backend/internal/apperr"
)

type sample struct {
	Stage string `json:"stage" validate:"required,oneof=mild moderate severe"`
	Count *int   `json:"count" validate:"omitempty,min=1,max=10"`
}

func TestDecode(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"stage":"mild","count":3}`))
		var s sample
		require.NoError(t, Decode(r, &s))
		assert.Equal(t, "mild", s.Stage)
		assert.Equal(t, 3, *s.Count)
	})

	t.Run("invalid json", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"stage":`))
		var s sample
		err := Decode(r, &s)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var s sample
		err := Decode(r, &s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("uses json names in messages", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"stage":"critical","count":11}`))
		var s sample
		err := Decode(r, &s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stage must satisfy oneof")
		assert.Contains(t, err.Error(), "count must satisfy max=10")
	})
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, zap.NewNop(), apperr.Store("insert", errors.New("pq: boom")), "Failed to generate AI tasks")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "store operation failed", body["error"])
	assert.Equal(t, "Failed to generate AI tasks", body["details"])
	assert.NotContains(t, rec.Body.String(), "boom")
}
