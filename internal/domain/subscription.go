/**
 * @description
 * This file defines the subscription model. A user owns at most one
 * subscription row; it is created and mutated exclusively by the billing
 * webhook sync (checkout confirmation, updates, deletion, payment failure).
 * User-initiated checkout never writes this table directly.
 */
package domain

import "time"

// Subscription plans offered at checkout.
const (
	PlanMonthly = "monthly"
	PlanYearly  = "yearly"
)

// Subscription statuses mirrored from the billing provider.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription represents a user's billing subscription in the database.
type Subscription struct {
	ID                     string    `json:"id"`
	UserID                 string    `json:"user_id"`
	Plan                   string    `json:"plan"`   // 'monthly' or 'yearly'
	Status                 string    `json:"status"` // 'active', 'past_due', 'canceled', ...
	StripeCustomerID       string    `json:"stripe_customer_id"`
	StripeSubscriptionID   string    `json:"stripe_subscription_id"`
	StripePriceID          string    `json:"stripe_price_id"`
	StripeCurrentPeriodEnd time.Time `json:"stripe_current_period_end"`
	CancelAtPeriodEnd      bool      `json:"cancel_at_period_end"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// IsActive reports whether the subscription currently grants paid access.
func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == SubscriptionStatusActive
}

// SubscriptionSummary is the DTO embedded in auth/user/subscription responses.
type SubscriptionSummary struct {
	Plan              string    `json:"plan"`
	Status            string    `json:"status"`
	CurrentPeriodEnd  time.Time `json:"currentPeriodEnd"`
	CancelAtPeriodEnd bool      `json:"cancelAtPeriodEnd"`
}

// Summary converts a subscription row to its API representation.
func (s *Subscription) Summary() *SubscriptionSummary {
	if s == nil {
		return nil
	}
	return &SubscriptionSummary{
		Plan:              s.Plan,
		Status:            s.Status,
		CurrentPeriodEnd:  s.StripeCurrentPeriodEnd,
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
	}
}

// SubscriptionStatus is the DTO returned by GET /subscription/status.
type SubscriptionStatus struct {
	HasSubscription   bool                 `json:"hasSubscription"`
	Subscription      *SubscriptionSummary `json:"subscription"`
	TotalGenerations  int                  `json:"totalGenerations"`
	WeeklyGenerations int                  `json:"weeklyGenerations"`
	CanGenerate       bool                 `json:"canGenerate"`
}
