/**
 * @description
 * Prometheus instrumentation. Counters are registered on the default registry
 * via promauto and exposed on /metrics by the router.
 */
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Generation pipeline metrics
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_generations_total",
			Help: "Total agent config generations by vendor and agent type",
		},
		[]string{"vendor", "agent_type"},
	)

	GenerationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_generation_failures_total",
			Help: "Total failed agent config generations by vendor",
		},
		[]string{"vendor"},
	)

	VendorFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_vendor_fallbacks_total",
			Help: "Total generations that fell back to the default vendor, by the vendor that failed",
		},
		[]string{"from"},
	)

	GenerationsDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_generations_denied_total",
			Help: "Total generation requests denied by the usage gate, by reason",
		},
		[]string{"reason"},
	)

	// Billing metrics
	StripeWebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stripe_webhook_events_total",
			Help: "Total Stripe webhook events received by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	// Usage alert metrics
	UsageAlertsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_alert_emails_sent_total",
			Help: "Total usage alert emails sent",
		},
	)

	UsageAlertFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_alert_email_failures_total",
			Help: "Total usage alert emails that failed to send",
		},
	)
)
