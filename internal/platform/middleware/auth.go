package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
)

// SessionCookieName is the cookie carrying the authenticated session token.
const SessionCookieName = "jwt"

// SessionClaims is what the middleware expects back from the token validator.
type SessionClaims struct {
	UserID string
	Email  string
	Role   string
	OrgID  string
}

// SessionValidator validates a session token string and returns its claims.
// Structural failures (bad signature, expired) surface as errors; the
// middleware turns them into a generic 401.
type SessionValidator interface {
	ValidateSessionToken(tokenString string) (*SessionClaims, error)
}

type contextKeySession struct{}

// GetSession retrieves the authenticated session claims from the context.
// Returns nil when the request did not pass through RequireAuth.
func GetSession(ctx context.Context) *SessionClaims {
	claims, _ := ctx.Value(contextKeySession{}).(*SessionClaims)
	return claims
}

// RequireAuth validates the session cookie and stores claims in the request
// context. Missing, expired, or tampered tokens all yield the same 401 body.
func RequireAuth(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				logger.WarnContext(r.Context(), "unauthorized access - missing session cookie",
					"request_id", GetRequestID(r.Context()),
					"path", r.URL.Path,
				)
				writeUnauthorized(w)
				return
			}

			claims, err := validator.ValidateSessionToken(cookie.Value)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid session token",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeySession{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles denies requests whose session role is not in the allow-list.
// Role denial is a 403 decision, not an error; the response never reveals
// which roles would have been accepted.
func RequireRoles(logger *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetSession(r.Context())
			if claims == nil {
				writeUnauthorized(w)
				return
			}
			if !slices.Contains(roles, claims.Role) {
				logger.WarnContext(r.Context(), "forbidden - role not allowed",
					"role", claims.Role,
					"request_id", GetRequestID(r.Context()),
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"forbidden"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}
