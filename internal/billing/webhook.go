/**
 * @description
 * This file parses and verifies incoming Stripe webhook payloads. Signature
 * verification via the stripe-go webhook package is the authentication
 * mechanism for the endpoint; an unverified payload is never interpreted.
 *
 * Event payloads are decoded from event.Data.Raw into local structs rather
 * than the SDK's full types, so the fields we depend on stay stable across
 * Stripe API version changes (period end in particular has moved between the
 * subscription and its items).
 */
package billing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"
)

// Webhook event types the sync layer reacts to.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventInvoiceFailed       = "invoice.payment_failed"
)

// CheckoutCompleted is the decoded checkout.session.completed payload.
type CheckoutCompleted struct {
	SessionID      string
	CustomerID     string
	SubscriptionID string
	Metadata       map[string]string
}

// SubscriptionChanged is the decoded payload of subscription lifecycle events.
type SubscriptionChanged struct {
	SubscriptionID    string
	CustomerID        string
	Status            string // normalized to domain statuses
	CancelAtPeriodEnd bool
	CurrentPeriodEnd  time.Time
	PriceID           string
	Metadata          map[string]string
}

// InvoiceFailed is the decoded invoice.payment_failed payload.
type InvoiceFailed struct {
	InvoiceID      string
	CustomerID     string
	SubscriptionID string
}

// WebhookEvent is a verified, normalized Stripe event. Exactly one of the
// payload pointers matching Type is non-nil; unhandled types carry none.
type WebhookEvent struct {
	ID   string
	Type string

	Checkout     *CheckoutCompleted
	Subscription *SubscriptionChanged
	Invoice      *InvoiceFailed
}

// WebhookParser verifies signatures and decodes the event types we handle.
type WebhookParser struct {
	secret string
}

func NewWebhookParser(secret string) *WebhookParser {
	return &WebhookParser{secret: secret}
}

// Parse verifies the Stripe-Signature header against the payload and decodes
// the event. A signature failure returns an error; an event type we do not
// handle returns a WebhookEvent with only ID and Type set.
func (p *WebhookParser) Parse(payload []byte, sigHeader string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, p.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}

	switch out.Type {
	case EventCheckoutCompleted:
		var sess rawCheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Checkout = &CheckoutCompleted{
			SessionID:      sess.ID,
			CustomerID:     sess.Customer,
			SubscriptionID: sess.Subscription,
			Metadata:       sess.Metadata,
		}
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub rawSubscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		out.Subscription = normalizeRawSubscription(sub)
	case EventInvoiceFailed:
		var inv rawInvoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("decode invoice: %w", err)
		}
		out.Invoice = &InvoiceFailed{
			InvoiceID:      inv.ID,
			CustomerID:     inv.Customer,
			SubscriptionID: inv.subscriptionID(),
		}
	}

	return out, nil
}

type rawCheckoutSession struct {
	ID           string            `json:"id"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

type rawSubscription struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
	Items             struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
			Price            struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
	Metadata map[string]string `json:"metadata"`
}

type rawInvoice struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	Parent       struct {
		SubscriptionDetails struct {
			Subscription string `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

// subscriptionID handles both invoice shapes: older API versions carry a
// top-level subscription field, newer ones nest it under parent.
func (inv rawInvoice) subscriptionID() string {
	if inv.Subscription != "" {
		return inv.Subscription
	}
	return inv.Parent.SubscriptionDetails.Subscription
}

func normalizeRawSubscription(sub rawSubscription) *SubscriptionChanged {
	changed := &SubscriptionChanged{
		SubscriptionID:    sub.ID,
		CustomerID:        sub.Customer,
		Status:            NormalizeStatus(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		Metadata:          sub.Metadata,
	}
	periodEnd := sub.CurrentPeriodEnd
	if len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if periodEnd == 0 {
			periodEnd = item.CurrentPeriodEnd
		}
		changed.PriceID = item.Price.ID
	}
	if periodEnd > 0 {
		changed.CurrentPeriodEnd = time.Unix(periodEnd, 0).UTC()
	}
	return changed
}
