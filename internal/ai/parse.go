/**
 * @description
 * Normalization of vendor model output into domain.AgentConfig. Models are
 * asked for bare JSON but some still wrap it in markdown code fences, so the
 * decoder strips those before unmarshaling and validating.
 */
package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jleboube/ai-agent-manager/internal/domain"
)

// decodeAgentConfig parses raw model text into a validated AgentConfig.
func decodeAgentConfig(raw string) (*domain.AgentConfig, error) {
	cleaned := stripCodeFence(raw)

	var cfg domain.AgentConfig
	if err := json.Unmarshal([]byte(cleaned), &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &cfg, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block if present.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
