/**
 * @description
 * This file contains the business logic for user-facing subscription
 * management: checkout creation, status reporting, and the cancel/reactivate
 * toggle. Checkout never writes the subscriptions table directly; only the
 * webhook sync does, once Stripe confirms payment.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jleboube/ai-agent-manager/internal/billing"
	"github.com/jleboube/ai-agent-manager/internal/domain"
	"github.com/jleboube/ai-agent-manager/internal/store"
)

var (
	// ErrInvalidPlan is returned when the requested plan is not offered.
	ErrInvalidPlan = errors.New("plan must be monthly or yearly")

	// ErrAlreadySubscribed is returned when checkout is requested by a user
	// with an active subscription.
	ErrAlreadySubscribed = errors.New("user already has an active subscription")
)

// SubscriptionService provides the business logic for subscription management.
type SubscriptionService struct {
	repo           store.Repository
	gateway        billing.Gateway
	monthlyPriceID string
	yearlyPriceID  string
	frontendURL    string
	logger         *slog.Logger
}

func NewSubscriptionService(repo store.Repository, gateway billing.Gateway, monthlyPriceID, yearlyPriceID, frontendURL string, logger *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:           repo,
		gateway:        gateway,
		monthlyPriceID: monthlyPriceID,
		yearlyPriceID:  yearlyPriceID,
		frontendURL:    frontendURL,
		logger:         logger,
	}
}

// CreateCheckout starts a Stripe checkout session for the given plan. An
// existing Stripe customer is reused when the user has ever had a
// subscription row.
func (s *SubscriptionService) CreateCheckout(ctx context.Context, user *domain.User, plan string) (*billing.CheckoutSession, error) {
	var priceID string
	switch plan {
	case domain.PlanMonthly:
		priceID = s.monthlyPriceID
	case domain.PlanYearly:
		priceID = s.yearlyPriceID
	default:
		return nil, ErrInvalidPlan
	}

	existing, err := s.repo.GetSubscriptionByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, store.ErrSubscriptionNotFound) {
		return nil, err
	}
	if existing.IsActive() {
		return nil, ErrAlreadySubscribed
	}

	params := billing.CheckoutParams{
		UserID:     user.ID,
		Email:      user.Email,
		Plan:       plan,
		PriceID:    priceID,
		SuccessURL: s.frontendURL + "/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.frontendURL + "/subscription/canceled",
	}
	if existing != nil {
		params.CustomerID = existing.StripeCustomerID
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create checkout for user %s: %w", user.ID, err)
	}

	s.logger.Info("checkout session created", "user_id", user.ID, "plan", plan, "session_id", session.ID)
	return session, nil
}

// Status returns the subscription and usage summary backing the billing page.
func (s *SubscriptionService) Status(ctx context.Context, userID string) (*domain.SubscriptionStatus, error) {
	sub, err := s.repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrSubscriptionNotFound) {
		return nil, err
	}

	total, err := s.repo.CountGenerationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	weekly, err := s.repo.CountGenerationsByUserSince(ctx, userID, time.Now().Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}

	return &domain.SubscriptionStatus{
		HasSubscription:   sub.IsActive(),
		Subscription:      sub.Summary(),
		TotalGenerations:  total,
		WeeklyGenerations: weekly,
		CanGenerate:       CanGenerate(total, sub),
	}, nil
}

// Cancel marks the subscription to end at the current period boundary.
func (s *SubscriptionService) Cancel(ctx context.Context, userID string) (*domain.SubscriptionSummary, error) {
	return s.setCancelAtPeriodEnd(ctx, userID, true)
}

// Reactivate clears a pending cancellation before the period ends.
func (s *SubscriptionService) Reactivate(ctx context.Context, userID string) (*domain.SubscriptionSummary, error) {
	return s.setCancelAtPeriodEnd(ctx, userID, false)
}

func (s *SubscriptionService) setCancelAtPeriodEnd(ctx context.Context, userID string, cancel bool) (*domain.SubscriptionSummary, error) {
	sub, err := s.repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Stripe first; the local flag follows only after Stripe accepted it.
	if _, err := s.gateway.SetCancelAtPeriodEnd(ctx, sub.StripeSubscriptionID, cancel); err != nil {
		return nil, fmt.Errorf("update subscription at stripe: %w", err)
	}
	if err := s.repo.SetCancelAtPeriodEnd(ctx, userID, cancel); err != nil {
		return nil, err
	}

	sub.CancelAtPeriodEnd = cancel
	s.logger.Info("subscription cancellation flag updated", "user_id", userID, "cancel_at_period_end", cancel)
	return sub.Summary(), nil
}
