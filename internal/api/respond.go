/**
 * @description
 * JSON response helpers shared by all handlers, plus the mapping from
 * application errors to HTTP status codes and machine-readable reason flags.
 */
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jleboube/ai-agent-manager/internal/app"
	"github.com/jleboube/ai-agent-manager/internal/store"
)

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError writes a JSON error body with the given status.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithReason writes an error body carrying a machine-readable reason
// flag, used for entitlement denials.
func respondWithReason(w http.ResponseWriter, code int, message, reason string) {
	respondWithJSON(w, code, map[string]string{"error": message, "reason": reason})
}

// respondServiceError maps application-layer errors onto the HTTP taxonomy:
// validation 400, entitlement 403 with reason, missing resources 404, and
// everything else 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrDescriptionTooShort):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrPromptRequired):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidPlan):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrAlreadySubscribed):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrFreeTierExhausted):
		respondWithReason(w, http.StatusForbidden,
			"free tier exhausted, subscription required", app.DenyReasonFreeTierExhausted)
	case errors.Is(err, app.ErrAnnualPlanRequired):
		respondWithReason(w, http.StatusForbidden,
			"this feature requires an annual plan", app.DenyReasonAnnualPlanRequired)
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrSubscriptionNotFound),
		errors.Is(err, store.ErrGenerationNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
