package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/icgdb/icgdb-server/internal/auth"
	"github.com/icgdb/icgdb-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// claimsKey is the context key for the verified session claims.
const claimsKey ctxKey = "claims"

// withClaims stores verified claims in ctx.
func withClaims(ctx context.Context, claims *auth.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// claimsFrom returns the session claims, or nil for anonymous requests.
func claimsFrom(ctx context.Context) *auth.AccessClaims {
	claims, _ := ctx.Value(claimsKey).(*auth.AccessClaims)
	return claims
}

// actingEmail returns the signed-in user's email, or "" when anonymous.
// Services reject "" on every mutating operation.
func actingEmail(ctx context.Context) string {
	if claims := claimsFrom(ctx); claims != nil {
		return claims.Email
	}
	return ""
}

// authMiddleware returns a middleware that validates Bearer tokens and stores
// the claims in context. If no token is present or it is invalid, the request
// continues anonymously and handlers reject it where a login is required.
func authMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok || authService == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authService.Authenticate(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
