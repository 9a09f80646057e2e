/**
 * @description
 * This file contains custom middleware for the HTTP router. Authentication
 * accepts the session cookie set by the OAuth callback or an Authorization
 * bearer token, verifies it, and injects the user id into the request
 * context for the handlers.
 */
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/jleboube/ai-agent-manager/internal/auth"
)

// sessionCookieName is the cookie the OAuth callback stores the session
// token in.
const sessionCookieName = "token"

// userIDContextKey is a custom type for the context key to avoid collisions.
type userIDContextKey struct{}

// AuthMiddleware creates a middleware that validates session tokens.
func AuthMiddleware(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				respondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			userID, err := tokens.Verify(tokenString)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenFromRequest extracts the session token from the cookie or the
// Authorization header, in that order.
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if token := strings.TrimPrefix(authHeader, "Bearer "); token != authHeader {
		return token
	}
	return ""
}

// UserFromContext returns the authenticated user id injected by
// AuthMiddleware.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey{}).(string)
	return userID, ok
}
