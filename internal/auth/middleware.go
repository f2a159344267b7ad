package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/httpjson"
)

type contextKey struct{}

var claimsKey contextKey

// ClaimsFromContext returns the verified claims RequireAuth stored.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

type Middleware struct {
	issuer *TokenIssuer
	logger *zap.Logger
}

func NewMiddleware(issuer *TokenIssuer, logger *zap.Logger) *Middleware {
	return &Middleware{issuer: issuer, logger: logger}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// claims on the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httpjson.Error(w, m.logger, apperrors.NewPermissionError("missing bearer token"))
			return
		}

		claims, err := m.issuer.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			httpjson.Error(w, m.logger, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must sit inside RequireAuth.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || claims.Role != domain.RoleAdmin {
			httpjson.Error(w, m.logger, apperrors.NewPermissionError("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
