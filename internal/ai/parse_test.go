package ai

import (
	"errors"
	"testing"
)

const validConfigJSON = `{
	"name": "API Scaffolder",
	"description": "Generates REST API boilerplate",
	"variables": [
		{"name": "framework", "label": "Framework", "type": "select", "description": "", "options": ["chi", "echo"]},
		{"name": "notes", "label": "Notes", "type": "textarea", "description": ""}
	]
}`

func TestDecodeAgentConfigPlainJSON(t *testing.T) {
	cfg, err := decodeAgentConfig(validConfigJSON)
	if err != nil {
		t.Fatalf("decodeAgentConfig returned error: %v", err)
	}
	if cfg.Name != "API Scaffolder" {
		t.Errorf("unexpected name %q", cfg.Name)
	}
	if len(cfg.Variables) != 2 {
		t.Errorf("expected 2 variables, got %d", len(cfg.Variables))
	}
}

func TestDecodeAgentConfigStripsCodeFence(t *testing.T) {
	for _, wrapped := range []string{
		"```json\n" + validConfigJSON + "\n```",
		"```\n" + validConfigJSON + "\n```",
		"  ```JSON\n" + validConfigJSON + "\n```  ",
	} {
		cfg, err := decodeAgentConfig(wrapped)
		if err != nil {
			t.Fatalf("decodeAgentConfig(%q...) returned error: %v", wrapped[:12], err)
		}
		if cfg.Name != "API Scaffolder" {
			t.Errorf("unexpected name %q", cfg.Name)
		}
	}
}

func TestDecodeAgentConfigRejectsMalformedJSON(t *testing.T) {
	_, err := decodeAgentConfig("this is not json")
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestDecodeAgentConfigRejectsInvalidVariableType(t *testing.T) {
	_, err := decodeAgentConfig(`{"name":"x","variables":[{"name":"a","label":"A","type":"checkbox"}]}`)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestDecodeAgentConfigRejectsSelectWithoutOptions(t *testing.T) {
	_, err := decodeAgentConfig(`{"name":"x","variables":[{"name":"a","label":"A","type":"select"}]}`)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}
