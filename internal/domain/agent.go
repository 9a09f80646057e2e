/**
 * @description
 * This file defines the normalized agent configuration produced by the AI
 * vendors. Every vendor adapter converts its own response shape into
 * AgentConfig; callers never see vendor-specific fields.
 */
package domain

import "fmt"

// Agent type tags. The set is closed; anything outside it is treated as
// a custom agent by the provider selector.
const (
	AgentTypePlanning      = "planning"
	AgentTypeArchitect     = "architect"
	AgentTypeFrontend      = "frontend"
	AgentTypeBackend       = "backend"
	AgentTypeTesting       = "testing"
	AgentTypeDeployment    = "deployment"
	AgentTypeOrchestration = "orchestration"
	AgentTypeCustom        = "custom"
)

// Variable input types the configurator UI can render.
const (
	VariableTypeText     = "text"
	VariableTypeTextarea = "textarea"
	VariableTypeSelect   = "select"
	VariableTypeRadio    = "radio"
)

// AgentConfig is the normalized generation result.
type AgentConfig struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Variables   []AgentVariable `json:"variables"`
}

// AgentVariable is one user-fillable field of an agent template.
type AgentVariable struct {
	Name         string   `json:"name"`
	Label        string   `json:"label"`
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	DefaultValue string   `json:"defaultValue,omitempty"`
	Options      []string `json:"options,omitempty"`
}

// Validate checks the invariants of a normalized agent configuration.
func (c *AgentConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("agent config: name is required")
	}
	for i, v := range c.Variables {
		if v.Name == "" || v.Label == "" {
			return fmt.Errorf("agent config: variable %d is missing name or label", i)
		}
		switch v.Type {
		case VariableTypeText, VariableTypeTextarea:
		case VariableTypeSelect, VariableTypeRadio:
			if len(v.Options) == 0 {
				return fmt.Errorf("agent config: variable %q of type %q has no options", v.Name, v.Type)
			}
		default:
			return fmt.Errorf("agent config: variable %q has invalid type %q", v.Name, v.Type)
		}
	}
	return nil
}
