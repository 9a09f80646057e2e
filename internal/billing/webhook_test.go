package billing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/jleboube/ai-agent-manager/internal/domain"
)

const testSecret = "whsec_test_secret"

func signedHeader(t *testing.T, payload []byte) string {
	t.Helper()
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testSecret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	}).Header
}

func eventPayload(t *testing.T, eventType string, object map[string]any) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":   "evt_test_1",
		"type": eventType,
		"data": map[string]any{"object": object},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return payload
}

func TestParseRejectsBadSignature(t *testing.T) {
	parser := NewWebhookParser(testSecret)
	payload := eventPayload(t, EventSubscriptionDeleted, map[string]any{"id": "sub_1"})

	if _, err := parser.Parse(payload, "t=123,v1=deadbeef"); err == nil {
		t.Fatal("expected signature error")
	}
	if _, err := parser.Parse(payload, ""); err == nil {
		t.Fatal("expected error for missing signature header")
	}
}

func TestParseCheckoutCompleted(t *testing.T) {
	parser := NewWebhookParser(testSecret)
	payload := eventPayload(t, EventCheckoutCompleted, map[string]any{
		"id":           "cs_1",
		"customer":     "cus_1",
		"subscription": "sub_1",
		"metadata":     map[string]string{"userId": "user-1", "plan": "monthly"},
	})

	event, err := parser.Parse(payload, signedHeader(t, payload))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if event.Type != EventCheckoutCompleted || event.Checkout == nil {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.Checkout.SubscriptionID != "sub_1" || event.Checkout.Metadata["userId"] != "user-1" {
		t.Errorf("unexpected checkout payload %+v", event.Checkout)
	}
}

func TestParseSubscriptionUpdatedReadsPeriodEndFromItems(t *testing.T) {
	parser := NewWebhookParser(testSecret)
	periodEnd := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	payload := eventPayload(t, EventSubscriptionUpdated, map[string]any{
		"id":                   "sub_1",
		"customer":             "cus_1",
		"status":               "past_due",
		"cancel_at_period_end": true,
		"items": map[string]any{
			"data": []map[string]any{
				{
					"current_period_end": periodEnd.Unix(),
					"price":              map[string]any{"id": "price_1"},
				},
			},
		},
	})

	event, err := parser.Parse(payload, signedHeader(t, payload))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	sub := event.Subscription
	if sub == nil {
		t.Fatal("expected subscription payload")
	}
	if sub.Status != domain.SubscriptionStatusPastDue {
		t.Errorf("status = %q, want past_due", sub.Status)
	}
	if !sub.CurrentPeriodEnd.Equal(periodEnd) {
		t.Errorf("period end = %v, want %v", sub.CurrentPeriodEnd, periodEnd)
	}
	if sub.PriceID != "price_1" || !sub.CancelAtPeriodEnd {
		t.Errorf("unexpected payload %+v", sub)
	}
}

func TestParseInvoiceFailedHandlesBothShapes(t *testing.T) {
	parser := NewWebhookParser(testSecret)

	// Older API shape: top-level subscription field.
	payload := eventPayload(t, EventInvoiceFailed, map[string]any{
		"id":           "in_1",
		"customer":     "cus_1",
		"subscription": "sub_old",
	})
	event, err := parser.Parse(payload, signedHeader(t, payload))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if event.Invoice.SubscriptionID != "sub_old" {
		t.Errorf("subscription id = %q, want sub_old", event.Invoice.SubscriptionID)
	}

	// Newer API shape: nested under parent.subscription_details.
	payload = eventPayload(t, EventInvoiceFailed, map[string]any{
		"id":       "in_2",
		"customer": "cus_1",
		"parent": map[string]any{
			"subscription_details": map[string]any{"subscription": "sub_new"},
		},
	})
	event, err = parser.Parse(payload, signedHeader(t, payload))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if event.Invoice.SubscriptionID != "sub_new" {
		t.Errorf("subscription id = %q, want sub_new", event.Invoice.SubscriptionID)
	}
}

func TestParseUnhandledTypeCarriesNoPayload(t *testing.T) {
	parser := NewWebhookParser(testSecret)
	payload := eventPayload(t, "customer.created", map[string]any{"id": "cus_1"})

	event, err := parser.Parse(payload, signedHeader(t, payload))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if event.Checkout != nil || event.Subscription != nil || event.Invoice != nil {
		t.Errorf("expected bare event, got %+v", event)
	}
}

func TestNormalizeStatusFailsClosed(t *testing.T) {
	cases := map[string]string{
		"active":             domain.SubscriptionStatusActive,
		"trialing":           domain.SubscriptionStatusActive,
		"past_due":           domain.SubscriptionStatusPastDue,
		"unpaid":             domain.SubscriptionStatusPastDue,
		"canceled":           domain.SubscriptionStatusCanceled,
		"incomplete_expired": domain.SubscriptionStatusCanceled,
		"paused":             domain.SubscriptionStatusCanceled,
		"":                   domain.SubscriptionStatusCanceled,
	}
	for raw, want := range cases {
		if got := NormalizeStatus(raw); got != want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", raw, got, want)
		}
	}
}
