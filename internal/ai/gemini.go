/**
 * @description
 * Gemini adapter built on the official google.golang.org/genai client.
 * Gemini serves the architect (research-grounded) flow and is the default
 * vendor for custom agent types and fallback generation.
 */
package ai

import (
	"context"
	"fmt"

	genai "google.golang.org/genai"

	"github.com/jleboube/ai-agent-manager/internal/domain"
)

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient creates a Gemini adapter for the given model.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

// Name returns the provider identifier.
func (g *GeminiClient) Name() ProviderID { return ProviderGemini }

// GenerateAgentConfig asks Gemini for a JSON agent configuration.
func (g *GeminiClient) GenerateAgentConfig(ctx context.Context, description string) (*domain.AgentConfig, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: agentConfigPrompt(description)}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}
	text, err := firstCandidateText(resp)
	if err != nil {
		return nil, err
	}
	return decodeAgentConfig(text)
}

// Advice asks Gemini for free-text grounded advice.
func (g *GeminiClient) Advice(ctx context.Context, prompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("gemini advice failed: %w", err)
	}
	return firstCandidateText(resp)
}

func firstCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 ||
		resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrInvalidResponse
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
