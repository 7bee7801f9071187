package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reset-recovery-backend/internal/analytics"
	"reset-recovery-backend/internal/apperr"
)

var secret = []byte("test-secret")

const uid = "7b0c3e5e-2f43-4a39-9f0e-1f4f6d1f2a10"

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken(secret, uid, "a@b.c", "Sam", "authenticated", time.Hour)
	require.NoError(t, err)

	c, err := ParseToken(secret, "authenticated", tok)
	require.NoError(t, err)
	assert.Equal(t, uid, c.Subject)
	assert.Equal(t, "a@b.c", c.Email)
	assert.Equal(t, "Sam", c.UserMetadata.DisplayName)
}

func TestParseTokenRejects(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		tok, _ := GenerateToken([]byte("other"), uid, "", "", "", time.Hour)
		_, err := ParseToken(secret, "", tok)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		tok, _ := GenerateToken(secret, uid, "", "", "", -time.Minute)
		_, err := ParseToken(secret, "", tok)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("no expiry", func(t *testing.T) {
		tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: uid}).SignedString(secret)
		_, err := ParseToken(secret, "", tok)
		assert.Error(t, err)
	})

	t.Run("audience mismatch", func(t *testing.T) {
		tok, _ := GenerateToken(secret, uid, "", "", "anon", time.Hour)
		_, err := ParseToken(secret, "authenticated", tok)
		assert.Error(t, err)
	})

	t.Run("subject not a uuid", func(t *testing.T) {
		tok, _ := GenerateToken(secret, "42", "", "", "", time.Hour)
		_, err := ParseToken(secret, "", tok)
		assert.ErrorIs(t, err, ErrInvalidSubject)
	})

	t.Run("alg none", func(t *testing.T) {
		tok, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		_, err := ParseToken(secret, "", tok)
		assert.Error(t, err)
	})
}

func TestMiddleware(t *testing.T) {
	m := New(secret, "")
	var gotUID, gotAnalyticsUID string
	h := m.Wrap(func(w http.ResponseWriter, r *http.Request) {
		gotUID, _ = UserIDFromContext(r.Context())
		gotAnalyticsUID, _ = analytics.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, _ := GenerateToken(secret, uid, "", "", "", time.Hour)
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h(rec, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, uid, gotUID)
	assert.Equal(t, uid, gotAnalyticsUID)
}

func TestMeHandler(t *testing.T) {
	c := &Claims{Email: "a@b.c", UserMetadata: UserMetadata{DisplayName: "Sam"}}
	c.Subject = uid
	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r = r.WithContext(WithClaims(r.Context(), c))
	rec := httptest.NewRecorder()
	MeHandler()(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":"`+uid+`","email":"a@b.c","display_name":"Sam"}`, rec.Body.String())
}

type fakeAccounts struct {
	deleted []string
	err     error
}

func (f *fakeAccounts) DeleteAccount(_ context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, userID)
	return nil
}

func TestDeleteAccountHandler(t *testing.T) {
	accounts := &fakeAccounts{}
	h := DeleteAccountHandler(accounts, zap.NewNop())

	r := httptest.NewRequest(http.MethodDelete, "/auth/account", nil)
	r = r.WithContext(WithUserID(r.Context(), uid))
	rec := httptest.NewRecorder()
	h(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{uid}, accounts.deleted)

	accounts.err = apperr.Store("delete profiles", errors.New("boom"))
	rec = httptest.NewRecorder()
	h(rec, r)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}
