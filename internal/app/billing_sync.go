/**
 * @description
 * This file implements the webhook-driven subscription state machine.
 * Subscription rows are created and mutated only here: checkout confirmation
 * upserts the row, lifecycle events update it by the external subscription
 * id. Every transition is idempotent under event replay.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jleboube/ai-agent-manager/internal/billing"
	"github.com/jleboube/ai-agent-manager/internal/domain"
	"github.com/jleboube/ai-agent-manager/internal/metrics"
	"github.com/jleboube/ai-agent-manager/internal/store"
)

// BillingSync reconciles verified Stripe webhook events into persisted
// subscription state.
type BillingSync struct {
	repo    store.Repository
	gateway billing.Gateway
	logger  *slog.Logger
}

func NewBillingSync(repo store.Repository, gateway billing.Gateway, logger *slog.Logger) *BillingSync {
	return &BillingSync{repo: repo, gateway: gateway, logger: logger}
}

// Apply dispatches one verified event to its transition. Unknown event types
// are ignored without error so Stripe does not retry them.
func (s *BillingSync) Apply(ctx context.Context, event *billing.WebhookEvent) error {
	var err error
	outcome := "processed"

	switch event.Type {
	case billing.EventCheckoutCompleted:
		err = s.applyCheckoutCompleted(ctx, event.Checkout)
	case billing.EventSubscriptionUpdated:
		err = s.applySubscriptionUpdated(ctx, event.Subscription)
	case billing.EventSubscriptionDeleted:
		err = s.applyStatus(ctx, event.Subscription.SubscriptionID, domain.SubscriptionStatusCanceled)
	case billing.EventInvoiceFailed:
		err = s.applyStatus(ctx, event.Invoice.SubscriptionID, domain.SubscriptionStatusPastDue)
	default:
		outcome = "ignored"
		s.logger.Info("ignoring unhandled webhook event", "type", event.Type, "event_id", event.ID)
	}

	if err != nil {
		outcome = "failed"
	}
	metrics.StripeWebhookEventsTotal.WithLabelValues(event.Type, outcome).Inc()
	return err
}

// applyCheckoutCompleted resolves the full subscription from Stripe and
// upserts the row for the user carried in the session metadata.
func (s *BillingSync) applyCheckoutCompleted(ctx context.Context, checkout *billing.CheckoutCompleted) error {
	if checkout.SubscriptionID == "" {
		s.logger.Warn("checkout session carries no subscription, skipping", "session_id", checkout.SessionID)
		return nil
	}

	details, err := s.gateway.GetSubscription(ctx, checkout.SubscriptionID)
	if err != nil {
		return fmt.Errorf("resolve subscription for checkout %s: %w", checkout.SessionID, err)
	}

	userID := checkout.Metadata["userId"]
	plan := checkout.Metadata["plan"]
	if userID == "" {
		userID = details.Metadata["userId"]
	}
	if plan == "" {
		plan = details.Metadata["plan"]
	}
	if userID == "" {
		s.logger.Warn("checkout session missing userId metadata, refusing to link",
			"session_id", checkout.SessionID, "subscription_id", checkout.SubscriptionID)
		return nil
	}

	customerID := checkout.CustomerID
	if customerID == "" {
		customerID = details.CustomerID
	}

	_, err = s.repo.UpsertSubscription(ctx, &domain.Subscription{
		UserID:                 userID,
		Plan:                   plan,
		Status:                 details.Status,
		StripeCustomerID:       customerID,
		StripeSubscriptionID:   details.ID,
		StripePriceID:          details.PriceID,
		StripeCurrentPeriodEnd: details.CurrentPeriodEnd,
		CancelAtPeriodEnd:      details.CancelAtPeriodEnd,
	})
	if err != nil {
		return fmt.Errorf("upsert subscription for user %s: %w", userID, err)
	}

	s.logger.Info("subscription activated",
		"user_id", userID, "plan", plan, "subscription_id", details.ID)
	return nil
}

func (s *BillingSync) applySubscriptionUpdated(ctx context.Context, sub *billing.SubscriptionChanged) error {
	err := s.repo.UpdateSubscriptionBilling(ctx, sub.SubscriptionID, sub.Status, sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd)
	if errors.Is(err, store.ErrSubscriptionNotFound) {
		s.logger.Warn("subscription update for unknown subscription", "subscription_id", sub.SubscriptionID)
		return nil
	}
	return err
}

func (s *BillingSync) applyStatus(ctx context.Context, stripeSubscriptionID, status string) error {
	if stripeSubscriptionID == "" {
		s.logger.Warn("event carries no subscription id, skipping", "status", status)
		return nil
	}
	sub, err := s.repo.GetSubscriptionByStripeID(ctx, stripeSubscriptionID)
	if errors.Is(err, store.ErrSubscriptionNotFound) {
		s.logger.Warn("status update for unknown subscription", "subscription_id", stripeSubscriptionID)
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.UpdateSubscriptionStatus(ctx, stripeSubscriptionID, status); err != nil {
		return err
	}
	s.logger.Info("subscription status changed",
		"user_id", sub.UserID, "subscription_id", stripeSubscriptionID, "status", status)
	return nil
}
