package ai

import (
	"testing"

	"github.com/jleboube/ai-agent-manager/internal/domain"
)

func TestSelectProviderRouting(t *testing.T) {
	cases := map[string]ProviderID{
		domain.AgentTypePlanning:      ProviderClaude,
		domain.AgentTypeOrchestration: ProviderClaude,
		domain.AgentTypeTesting:       ProviderClaude,
		domain.AgentTypeDeployment:    ProviderClaude,
		domain.AgentTypeFrontend:      ProviderOpenAI,
		domain.AgentTypeBackend:       ProviderOpenAI,
		domain.AgentTypeArchitect:     ProviderGemini,
		domain.AgentTypeCustom:        ProviderGemini,
	}

	for agentType, want := range cases {
		if got := SelectProvider(agentType); got != want {
			t.Errorf("SelectProvider(%q) = %q, want %q", agentType, got, want)
		}
	}
}

func TestSelectProviderUnknownFallsThroughToDefault(t *testing.T) {
	for _, agentType := range []string{"", "devops", "something-new"} {
		if got := SelectProvider(agentType); got != DefaultProvider {
			t.Errorf("SelectProvider(%q) = %q, want default %q", agentType, got, DefaultProvider)
		}
	}
}
