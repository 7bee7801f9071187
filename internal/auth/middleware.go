package auth

import (
	"context"
	"net/http"
	"strings"

	"reset-recovery-backend/internal/analytics"
)

type ctxKey string

const (
	userIDKey ctxKey = "user_id"
	claimsKey ctxKey = "claims"
)

type Middleware struct {
	secret   []byte
	audience string
}

func New(secret []byte, audience string) Middleware {
	return Middleware{secret: secret, audience: audience}
}

func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(h, "Bearer ")
		claims, err := ParseToken(m.secret, m.audience, tokenString)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(WithClaims(r.Context(), claims)))
	}
}

// WithClaims stores the authenticated identity on ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	ctx = context.WithValue(ctx, userIDKey, c.Subject)
	ctx = context.WithValue(ctx, claimsKey, c)

	// прокидываем user_id в analytics context
	return analytics.WithUserID(ctx, c.Subject)
}

// WithUserID is WithClaims for callers that only know the subject.
func WithUserID(ctx context.Context, userID string) context.Context {
	c := &Claims{}
	c.Subject = userID
	return WithClaims(ctx, c)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok && uid != ""
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok
}
