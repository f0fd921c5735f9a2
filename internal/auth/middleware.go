// ABOUTME: HTTP middleware gating protected routes behind a bearer token
// ABOUTME: Accepts the Authorization header or, when allowed, a token query parameter

package auth

import (
	"net/http"
	"strings"
)

// SessionValidator resolves bearer tokens to identities.
type SessionValidator interface {
	Validate(token string) (identity string, ok bool)
}

// extractToken pulls the bearer token from the Authorization header or, when
// allowQuery is set, from the token query parameter. The query fallback
// exists for inline resource fetches (image previews, download links) where
// the client cannot set headers. Returns the token and an error message
// (empty if successful).
func extractToken(r *http.Request, allowQuery bool) (string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", "invalid authorization header format"
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return "", "empty token"
		}
		return token, ""
	}

	if allowQuery {
		if token := r.URL.Query().Get("token"); token != "" {
			return token, ""
		}
	}

	return "", "authentication required"
}

// Middleware creates an HTTP middleware that validates bearer tokens against
// the session registry and attaches the resolved Session to the request
// context. It is a pure gate: no business logic, and it must wrap every
// handler that touches files, notes, or the vault.
//
// allowQuery additionally accepts a token query parameter; enable it only
// for the inline preview and download routes.
func Middleware(sessions SessionValidator, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractToken(r, allowQuery)
			if errMsg != "" {
				http.Error(w, `{"error":"`+errMsg+`"}`, http.StatusUnauthorized)
				return
			}

			identity, ok := sessions.Validate(token)
			if !ok {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusForbidden)
				return
			}

			sess := &Session{Identity: identity, Token: token}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}
