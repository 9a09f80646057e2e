/**
 * @description
 * This file contains the HTTP handlers for the Google sign-in flow and the
 * session endpoints. The callback finds-or-creates the user, mints a session
 * token, and hands control back to the frontend with an httpOnly cookie set.
 */
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jleboube/ai-agent-manager/internal/app"
	"github.com/jleboube/ai-agent-manager/internal/auth"
)

const stateCookieName = "oauth_state"

// AuthHandler holds the dependencies of the auth endpoints.
type AuthHandler struct {
	google      *auth.GoogleAuthenticator
	tokens      *auth.TokenManager
	users       *app.UserService
	frontendURL string
	logger      *slog.Logger
}

func NewAuthHandler(google *auth.GoogleAuthenticator, tokens *auth.TokenManager, users *app.UserService, frontendURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		google:      google,
		tokens:      tokens,
		users:       users,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// handleGoogleURL returns the Google consent page URL and binds the OAuth
// state to a short-lived cookie.
func (h *AuthHandler) handleGoogleURL(w http.ResponseWriter, r *http.Request) {
	state, err := auth.NewState()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to start sign-in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondWithJSON(w, http.StatusOK, map[string]string{"url": h.google.AuthCodeURL(state)})
}

// handleGoogleCallback completes the OAuth flow. On any failure the browser
// is sent back to the frontend with ?auth=error rather than a JSON body,
// since this endpoint is hit by a redirect, not an XHR.
func (h *AuthHandler) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	fail := func(reason string, err error) {
		h.logger.Warn("google callback failed", "reason", reason, "error", err)
		http.Redirect(w, r, h.frontendURL+"?auth=error", http.StatusTemporaryRedirect)
	}

	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || state == "" || state != stateCookie.Value {
		fail("state mismatch", err)
		return
	}
	clearCookie(w, stateCookieName)

	code := r.URL.Query().Get("code")
	if code == "" {
		fail("missing code", nil)
		return
	}

	identity, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		fail("code exchange", err)
		return
	}

	user, err := h.users.LoginOrRegister(r.Context(), identity)
	if err != nil {
		fail("login", err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		fail("token issue", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.frontendURL+"?auth=success", http.StatusTemporaryRedirect)
}

// handleMe returns the current user with subscription and recent activity.
func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	me, err := h.users.Me(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, me)
}

// handleLogout clears the session cookie.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, sessionCookieName)
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
