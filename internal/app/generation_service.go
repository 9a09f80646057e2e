/**
 * @description
 * This file contains the business logic for agent generation: usage gating,
 * vendor orchestration, persistence of generation records, the save/list/get
 * flows for exported agent files, and the post-generation hooks (usage alert
 * check and event publishing).
 */
package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jleboube/ai-agent-manager/internal/ai"
	"github.com/jleboube/ai-agent-manager/internal/domain"
	"github.com/jleboube/ai-agent-manager/internal/metrics"
	"github.com/jleboube/ai-agent-manager/internal/store"
	"github.com/jleboube/ai-agent-manager/pkg/rabbitmq"
)

// MinDescriptionLength is the minimum length of a generation description.
const MinDescriptionLength = 10

// DenyReasonAnnualPlanRequired is the reason code returned when a saved-agent
// endpoint is accessed without a yearly plan.
const DenyReasonAnnualPlanRequired = "annual-plan-required"

// advice requests are recorded as generations under this agent type tag.
const adviceAgentType = "advice"

var (
	// ErrDescriptionTooShort is returned before any vendor call when the
	// description fails validation.
	ErrDescriptionTooShort = errors.New("description must be at least 10 characters")

	// ErrPromptRequired is returned when an advice request carries no prompt.
	ErrPromptRequired = errors.New("prompt is required")

	// ErrAnnualPlanRequired is returned when saved-agent access is attempted
	// without an active yearly subscription.
	ErrAnnualPlanRequired = errors.New("annual plan required")
)

// Generator is the vendor orchestration surface the service depends on.
type Generator interface {
	Generate(ctx context.Context, description, agentType string) (*domain.AgentConfig, ai.ProviderID, error)
	Advice(ctx context.Context, prompt string) (string, error)
}

// SaveAgentInput is the payload of POST /ai/save-agent.
type SaveAgentInput struct {
	AgentName   string
	AgentType   string
	AIProvider  string
	FileContent string
	Description string
}

// GenerationService provides the business logic for AI agent generation.
type GenerationService struct {
	repo      store.Repository
	generator Generator
	monitor   *UsageMonitor
	publisher rabbitmq.Publisher
	logger    *slog.Logger
}

func NewGenerationService(repo store.Repository, generator Generator, monitor *UsageMonitor, publisher rabbitmq.Publisher, logger *slog.Logger) *GenerationService {
	return &GenerationService{
		repo:      repo,
		generator: generator,
		monitor:   monitor,
		publisher: publisher,
		logger:    logger,
	}
}

// Generate runs the full generation pipeline for a user: usage gate, vendor
// call with fallback, persistence, and the post-generation hooks.
func (s *GenerationService) Generate(ctx context.Context, userID, description, agentType string) (*domain.AgentConfig, string, error) {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) < MinDescriptionLength {
		return nil, "", ErrDescriptionTooShort
	}

	if err := s.checkGate(ctx, userID); err != nil {
		return nil, "", err
	}

	config, provider, err := s.generator.Generate(ctx, description, agentType)
	if err != nil {
		return nil, "", err
	}

	if err := s.recordGeneration(ctx, userID, agentType, string(provider), description); err != nil {
		return nil, "", err
	}
	metrics.GenerationsTotal.WithLabelValues(string(provider), agentType).Inc()

	return config, string(provider), nil
}

// Advice answers a free-text prompt. Advice requests pass the same usage gate
// and count toward usage like generations.
func (s *GenerationService) Advice(ctx context.Context, userID, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrPromptRequired
	}

	if err := s.checkGate(ctx, userID); err != nil {
		return "", err
	}

	advice, err := s.generator.Advice(ctx, prompt)
	if err != nil {
		return "", err
	}

	if err := s.recordGeneration(ctx, userID, adviceAgentType, string(ai.DefaultProvider), prompt); err != nil {
		return "", err
	}
	metrics.GenerationsTotal.WithLabelValues(string(ai.DefaultProvider), adviceAgentType).Inc()

	return advice, nil
}

func (s *GenerationService) checkGate(ctx context.Context, userID string) error {
	count, err := s.repo.CountGenerationsByUser(ctx, userID)
	if err != nil {
		return err
	}
	sub, err := s.repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrSubscriptionNotFound) {
		return err
	}
	if !CanGenerate(count, sub) {
		metrics.GenerationsDeniedTotal.WithLabelValues(DenyReasonFreeTierExhausted).Inc()
		return ErrFreeTierExhausted
	}
	return nil
}

// recordGeneration persists the usage row and fires the post-generation
// hooks. The write must succeed: the usage row is what the free-tier gate
// counts, so a failure fails the request. The publish and alert-check hooks
// stay best-effort.
func (s *GenerationService) recordGeneration(ctx context.Context, userID, agentType, provider, description string) error {
	rec, err := s.repo.CreateGeneration(ctx, &domain.GenerationRecord{
		UserID:      userID,
		AgentType:   agentType,
		AIProvider:  provider,
		Description: description,
	})
	if err != nil {
		s.logger.Error("failed to record generation", "user_id", userID, "error", err)
		return err
	}

	if pubErr := s.publisher.Publish(ctx, rabbitmq.RoutingKeyGenerationCreated, domain.GenerationCreatedEvent{
		UserID:     userID,
		AgentType:  agentType,
		AIProvider: provider,
		CreatedAt:  rec.CreatedAt,
	}); pubErr != nil {
		s.logger.Warn("failed to publish generation event", "user_id", userID, "error", pubErr)
	}

	go s.monitor.CheckAndAlert(context.WithoutCancel(ctx), userID)
	return nil
}

// SaveAgent attaches exported file content to the user's newest record of the
// given agent type that has no content yet, or creates a fresh record when
// none qualifies.
func (s *GenerationService) SaveAgent(ctx context.Context, userID string, in SaveAgentInput) error {
	if in.AgentName == "" || in.FileContent == "" {
		return errors.New("agentName and fileContent are required")
	}

	size := len(in.FileContent)

	candidate, err := s.repo.FindLatestExportCandidate(ctx, userID, in.AgentType)
	if err == nil {
		return s.repo.AttachFileContent(ctx, candidate.ID, in.AgentName, in.FileContent, size)
	}
	if !errors.Is(err, store.ErrGenerationNotFound) {
		return err
	}

	_, err = s.repo.CreateGeneration(ctx, &domain.GenerationRecord{
		UserID:      userID,
		AgentType:   in.AgentType,
		AIProvider:  in.AIProvider,
		AgentName:   &in.AgentName,
		Description: in.Description,
		FileContent: &in.FileContent,
		FileSize:    &size,
	})
	return err
}

// ListSavedAgents returns the caller's saved agents. Requires an active
// yearly plan.
func (s *GenerationService) ListSavedAgents(ctx context.Context, userID string) ([]domain.SavedAgent, error) {
	if err := s.checkAnnualEntitlement(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListSavedAgents(ctx, userID)
}

// GetAgent returns one of the caller's generation records with its full file
// content. Requires an active yearly plan.
func (s *GenerationService) GetAgent(ctx context.Context, userID, generationID string) (*domain.GenerationRecord, error) {
	if err := s.checkAnnualEntitlement(ctx, userID); err != nil {
		return nil, err
	}
	// A malformed id would otherwise surface as a Postgres uuid cast error.
	if _, err := uuid.Parse(generationID); err != nil {
		return nil, store.ErrGenerationNotFound
	}
	return s.repo.FindGenerationByID(ctx, userID, generationID)
}

func (s *GenerationService) checkAnnualEntitlement(ctx context.Context, userID string) error {
	sub, err := s.repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			return ErrAnnualPlanRequired
		}
		return err
	}
	if !sub.IsActive() || sub.Plan != domain.PlanYearly {
		return ErrAnnualPlanRequired
	}
	return nil
}
