/**
 * @description
 * This file implements the Stripe gateway used for subscription checkout and
 * lifecycle management. It wraps the stripe-go SDK behind a small interface so
 * the application layer can be tested against a fake gateway.
 *
 * Key features:
 * - Checkout session creation in subscription mode, carrying the user id and
 *   plan in session metadata so the webhook can link the subscription back.
 * - Subscription retrieval that normalizes the period end, which lives on the
 *   subscription item in current Stripe API versions.
 * - Cancel/reactivate via the cancel_at_period_end flag.
 */
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	stripesub "github.com/stripe/stripe-go/v82/subscription"

	"github.com/jleboube/ai-agent-manager/internal/domain"
)

// CheckoutParams describes a subscription checkout to be created. When
// CustomerID is set the session reuses that Stripe customer; otherwise Stripe
// creates one from the email at checkout.
type CheckoutParams struct {
	UserID     string
	Email      string
	CustomerID string
	Plan       string // domain.PlanMonthly or domain.PlanYearly
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the result of a created checkout session.
type CheckoutSession struct {
	ID  string
	URL string
}

// SubscriptionDetails is the normalized view of a Stripe subscription used by
// the sync layer. CurrentPeriodEnd is lifted off the first subscription item.
type SubscriptionDetails struct {
	ID                string
	CustomerID        string
	PriceID           string
	Status            string // normalized to domain statuses
	CancelAtPeriodEnd bool
	CurrentPeriodEnd  time.Time
	Metadata          map[string]string
}

// Gateway is the outbound Stripe surface consumed by the application layer.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionDetails, error)
	SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*SubscriptionDetails, error)
}

// StripeGateway implements Gateway against the live Stripe API.
type StripeGateway struct{}

// NewStripeGateway configures the stripe-go SDK with the given secret key.
func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

var _ Gateway = (*StripeGateway)(nil)

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	p := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(params.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
		Metadata: map[string]string{
			"userId": params.UserID,
			"plan":   params.Plan,
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"userId": params.UserID,
				"plan":   params.Plan,
			},
		},
	}
	if params.CustomerID != "" {
		p.Customer = stripe.String(params.CustomerID)
	} else if params.Email != "" {
		p.CustomerEmail = stripe.String(params.Email)
	}
	p.Context = ctx

	sess, err := checkoutsession.New(p)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (g *StripeGateway) GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionDetails, error) {
	p := &stripe.SubscriptionParams{}
	p.Context = ctx

	sub, err := stripesub.Get(subscriptionID, p)
	if err != nil {
		return nil, fmt.Errorf("retrieve subscription %s: %w", subscriptionID, err)
	}
	return normalizeSubscription(sub), nil
}

func (g *StripeGateway) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*SubscriptionDetails, error) {
	p := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(cancel),
	}
	p.Context = ctx

	sub, err := stripesub.Update(subscriptionID, p)
	if err != nil {
		return nil, fmt.Errorf("update subscription %s: %w", subscriptionID, err)
	}
	return normalizeSubscription(sub), nil
}

func normalizeSubscription(sub *stripe.Subscription) *SubscriptionDetails {
	details := &SubscriptionDetails{
		ID:                sub.ID,
		Status:            NormalizeStatus(string(sub.Status)),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		Metadata:          sub.Metadata,
	}
	if sub.Customer != nil {
		details.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil {
			details.PriceID = item.Price.ID
		}
		if item.CurrentPeriodEnd > 0 {
			details.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
		}
	}
	return details
}

// NormalizeStatus maps a raw Stripe subscription status onto the statuses the
// application persists. Unknown statuses fail closed to canceled so they never
// grant paid access.
func NormalizeStatus(status string) string {
	switch status {
	case "active", "trialing":
		return domain.SubscriptionStatusActive
	case "past_due", "unpaid":
		return domain.SubscriptionStatusPastDue
	default:
		return domain.SubscriptionStatusCanceled
	}
}
