/**
 * @description
 * The generation orchestrator routes a request to the vendor chosen by the
 * static selector and retries exactly once against the default vendor when
 * the chosen one fails. Persistence of the result is the caller's concern;
 * the orchestrator only talks to vendors.
 */
package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jleboube/ai-agent-manager/internal/domain"
	"github.com/jleboube/ai-agent-manager/internal/metrics"
)

// Orchestrator dispatches generation requests across the registered vendors.
type Orchestrator struct {
	providers map[ProviderID]Provider
	advisor   Advisor
	logger    *slog.Logger
}

// NewOrchestrator creates an orchestrator over the given vendor adapters.
// The advisor serves the free-text advice flow and must be the adapter of
// the research-grounded vendor.
func NewOrchestrator(providers []Provider, advisor Advisor, logger *slog.Logger) *Orchestrator {
	byID := make(map[ProviderID]Provider, len(providers))
	for _, p := range providers {
		byID[p.Name()] = p
	}
	return &Orchestrator{providers: byID, advisor: advisor, logger: logger}
}

// Generate produces a normalized agent configuration for the description,
// routed by agent type. It returns the vendor that actually produced the
// result, which may be the default vendor after a fallback.
func (o *Orchestrator) Generate(ctx context.Context, description, agentType string) (*domain.AgentConfig, ProviderID, error) {
	selected := SelectProvider(agentType)
	provider, ok := o.providers[selected]
	if !ok {
		return nil, selected, fmt.Errorf("provider %s is not configured", selected)
	}

	cfg, err := provider.GenerateAgentConfig(ctx, description)
	if err == nil {
		return cfg, selected, nil
	}
	metrics.GenerationFailuresTotal.WithLabelValues(string(selected)).Inc()
	if selected == DefaultProvider {
		return nil, selected, err
	}

	// One-shot fallback to the default vendor; any further failure surfaces.
	o.logger.Warn("provider failed, falling back to default",
		"provider", string(selected), "fallback", string(DefaultProvider), "error", err)
	metrics.VendorFallbacksTotal.WithLabelValues(string(selected)).Inc()

	fallback, ok := o.providers[DefaultProvider]
	if !ok {
		return nil, selected, err
	}
	cfg, fbErr := fallback.GenerateAgentConfig(ctx, description)
	if fbErr != nil {
		metrics.GenerationFailuresTotal.WithLabelValues(string(DefaultProvider)).Inc()
		return nil, DefaultProvider, fbErr
	}
	return cfg, DefaultProvider, nil
}

// Advice returns free-text grounded advice from the research vendor.
func (o *Orchestrator) Advice(ctx context.Context, prompt string) (string, error) {
	return o.advisor.Advice(ctx, prompt)
}
