/**
 * @description
 * Static routing table from agent type to AI vendor. Claude handles
 * planning-heavy and systematic tasks, OpenAI handles code generation,
 * Gemini handles research-grounded work and everything unrecognized.
 */
package ai

import "github.com/jleboube/ai-agent-manager/internal/domain"

var providerByAgentType = map[string]ProviderID{
	domain.AgentTypePlanning:      ProviderClaude,
	domain.AgentTypeOrchestration: ProviderClaude,
	domain.AgentTypeTesting:       ProviderClaude,
	domain.AgentTypeDeployment:    ProviderClaude,
	domain.AgentTypeFrontend:      ProviderOpenAI,
	domain.AgentTypeBackend:       ProviderOpenAI,
	domain.AgentTypeArchitect:     ProviderGemini,
	domain.AgentTypeCustom:        DefaultProvider,
}

// SelectProvider maps an agent type tag to the vendor that should serve it.
// It is total: unknown tags fall through to the default vendor.
func SelectProvider(agentType string) ProviderID {
	if id, ok := providerByAgentType[agentType]; ok {
		return id
	}
	return DefaultProvider
}
