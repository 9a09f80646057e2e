package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jleboube/ai-agent-manager/internal/domain"
)

type providerStub struct {
	id    ProviderID
	calls int
	err   error
}

func (p *providerStub) Name() ProviderID { return p.id }

func (p *providerStub) GenerateAgentConfig(ctx context.Context, description string) (*domain.AgentConfig, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &domain.AgentConfig{Name: "from-" + string(p.id)}, nil
}

func newTestOrchestrator(providers ...Provider) *Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOrchestrator(providers, nil, logger)
}

func TestGenerateUsesSelectedProvider(t *testing.T) {
	gemini := &providerStub{id: ProviderGemini}
	claude := &providerStub{id: ProviderClaude}
	o := newTestOrchestrator(gemini, claude)

	cfg, used, err := o.Generate(context.Background(), "a long enough description", domain.AgentTypePlanning)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if used != ProviderClaude {
		t.Errorf("used vendor = %q, want %q", used, ProviderClaude)
	}
	if cfg.Name != "from-claude" {
		t.Errorf("unexpected config %q", cfg.Name)
	}
	if gemini.calls != 0 {
		t.Errorf("default vendor called %d times, want 0", gemini.calls)
	}
}

func TestGenerateFallsBackExactlyOnce(t *testing.T) {
	gemini := &providerStub{id: ProviderGemini}
	claude := &providerStub{id: ProviderClaude, err: errors.New("upstream down")}
	o := newTestOrchestrator(gemini, claude)

	cfg, used, err := o.Generate(context.Background(), "a long enough description", domain.AgentTypePlanning)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if used != ProviderGemini {
		t.Errorf("used vendor = %q, want default %q", used, ProviderGemini)
	}
	if cfg.Name != "from-gemini" {
		t.Errorf("unexpected config %q", cfg.Name)
	}
	if claude.calls != 1 || gemini.calls != 1 {
		t.Errorf("calls: claude=%d gemini=%d, want exactly one each", claude.calls, gemini.calls)
	}
}

func TestGenerateDefaultFailurePropagatesWithoutRetry(t *testing.T) {
	upstreamErr := errors.New("gemini down")
	gemini := &providerStub{id: ProviderGemini, err: upstreamErr}
	claude := &providerStub{id: ProviderClaude}
	o := newTestOrchestrator(gemini, claude)

	_, _, err := o.Generate(context.Background(), "a long enough description", domain.AgentTypeArchitect)
	if !errors.Is(err, upstreamErr) {
		t.Fatalf("expected upstream error to propagate, got %v", err)
	}
	if gemini.calls != 1 {
		t.Errorf("default vendor called %d times, want 1", gemini.calls)
	}
	if claude.calls != 0 {
		t.Errorf("non-default vendor called %d times, want 0", claude.calls)
	}
}

func TestGenerateBothFailuresSurfaceFallbackError(t *testing.T) {
	fallbackErr := errors.New("gemini down too")
	gemini := &providerStub{id: ProviderGemini, err: fallbackErr}
	openai := &providerStub{id: ProviderOpenAI, err: errors.New("openai down")}
	o := newTestOrchestrator(gemini, openai)

	_, _, err := o.Generate(context.Background(), "a long enough description", domain.AgentTypeBackend)
	if !errors.Is(err, fallbackErr) {
		t.Fatalf("expected fallback error to surface, got %v", err)
	}
	if openai.calls != 1 || gemini.calls != 1 {
		t.Errorf("calls: openai=%d gemini=%d, want exactly one each", openai.calls, gemini.calls)
	}
}
