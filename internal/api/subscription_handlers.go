/**
 * @description
 * This file contains the HTTP handlers for subscription management and the
 * Stripe webhook. The webhook reads the raw body, verifies the signature,
 * and hands the normalized event to the billing sync; it must stay outside
 * the authenticated route group since Stripe is the caller.
 */
package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/jleboube/ai-agent-manager/internal/app"
	"github.com/jleboube/ai-agent-manager/internal/billing"
	"github.com/jleboube/ai-agent-manager/internal/store"
)

// webhookBodyLimit bounds the webhook payload size.
const webhookBodyLimit = 1 << 20 // 1MiB

// SubscriptionHandler holds the dependencies of the subscription endpoints.
type SubscriptionHandler struct {
	subscriptions *app.SubscriptionService
	sync          *app.BillingSync
	webhooks      *billing.WebhookParser
	repo          store.Repository
	logger        *slog.Logger
}

func NewSubscriptionHandler(subscriptions *app.SubscriptionService, sync *app.BillingSync, webhooks *billing.WebhookParser, repo store.Repository, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		sync:          sync,
		webhooks:      webhooks,
		repo:          repo,
		logger:        logger,
	}
}

// handleCreateCheckout handles POST /subscription/create-checkout.
func (h *SubscriptionHandler) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Plan string `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.repo.FindUserByID(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	session, err := h.subscriptions.CreateCheckout(r.Context(), user, req.Plan)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"sessionId": session.ID,
		"url":       session.URL,
	})
}

// handleStatus handles GET /subscription/status.
func (h *SubscriptionHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	status, err := h.subscriptions.Status(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, status)
}

// handleCancel handles POST /subscription/cancel.
func (h *SubscriptionHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	summary, err := h.subscriptions.Cancel(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"subscription": summary})
}

// handleReactivate handles POST /subscription/reactivate.
func (h *SubscriptionHandler) handleReactivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	summary, err := h.subscriptions.Reactivate(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"subscription": summary})
}

// handleWebhook handles POST /subscription/webhook. Signature verification
// failures return 400; processing failures after verification return 500 so
// Stripe retries delivery.
func (h *SubscriptionHandler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, webhookBodyLimit)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	event, err := h.webhooks.Parse(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid webhook signature")
		return
	}

	if err := h.sync.Apply(r.Context(), event); err != nil {
		h.logger.Error("webhook processing failed", "event_id", event.ID, "type", event.Type, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to process webhook")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
}
