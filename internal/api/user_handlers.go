/**
 * @description
 * This file contains the HTTP handlers for the user profile and generation
 * history endpoints.
 */
package api

import (
	"net/http"
	"strconv"

	"github.com/jleboube/ai-agent-manager/internal/app"
)

// UserHandler holds the user service the account endpoints call into.
type UserHandler struct {
	users *app.UserService
}

func NewUserHandler(users *app.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// handleProfile handles GET /user/profile.
func (h *UserHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	profile, err := h.users.Profile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

// handleGenerations handles GET /user/generations?page&limit.
func (h *UserHandler) handleGenerations(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.users.Generations(r.Context(), userID, page, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
