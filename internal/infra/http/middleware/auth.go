package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/folioworks/api/pkg/apierror"
	"github.com/folioworks/api/pkg/jwt"
	"github.com/folioworks/api/pkg/logger"
)

type contextKey string

// ClaimsKey is the context key holding the validated session claims.
const ClaimsKey contextKey = "auth_claims"

// RequireAuth validates the session token from the Authorization header or
// the session cookie and rejects unauthenticated requests.
func RequireAuth(gen *jwt.Generator, cookieName string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r, cookieName)
			if token == "" {
				apierror.Unauthorized("Authentication required").WriteJSON(w)
				return
			}

			claims, err := gen.Validate(token)
			if err != nil {
				log.Warn("invalid session token",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				apierror.Unauthorized("Invalid or expired token").WriteJSON(w)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims extracts the validated claims from context.
func GetClaims(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*jwt.Claims)
	return claims, ok
}

// extractToken reads the token from the Authorization header, falling back
// to the session cookie.
func extractToken(r *http.Request, cookieName string) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookieName != "" {
		if cookie, err := r.Cookie(cookieName); err == nil {
			return cookie.Value
		}
	}

	return ""
}
