/**
 * @description
 * This package contains the AI vendor integration for ai-agent-manager:
 * one adapter per external generative-AI service, a static selector that
 * routes agent types to vendors, and an orchestrator that applies the
 * one-shot default fallback. Every adapter normalizes its vendor's response
 * into domain.AgentConfig; callers never see vendor-specific shapes.
 */
package ai

import (
	"context"
	"errors"

	"github.com/jleboube/ai-agent-manager/internal/domain"
)

// ProviderID identifies one of the supported generative-AI vendors.
type ProviderID string

const (
	ProviderGemini ProviderID = "gemini"
	ProviderClaude ProviderID = "claude"
	ProviderOpenAI ProviderID = "openai"
)

// DefaultProvider is the vendor used for custom/unknown agent types and as
// the fallback target when another vendor fails.
const DefaultProvider = ProviderGemini

// ErrInvalidResponse is returned when a vendor replies with JSON that cannot
// be parsed or validated into an agent configuration.
var ErrInvalidResponse = errors.New("ai: invalid agent configuration from model")

// Provider is the adapter contract every vendor client implements.
type Provider interface {
	// GenerateAgentConfig asks the vendor to produce a normalized agent
	// configuration for the given free-text description.
	GenerateAgentConfig(ctx context.Context, description string) (*domain.AgentConfig, error)

	// Name returns the provider identifier.
	Name() ProviderID
}

// Advisor is implemented by the vendor designated for research/grounded
// free-text advice (the architect flow).
type Advisor interface {
	Advice(ctx context.Context, prompt string) (string, error)
}
