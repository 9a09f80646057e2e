package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jleboube/ai-agent-manager/internal/domain"
	"github.com/jleboube/ai-agent-manager/internal/store"
)

// fakeRepo is an in-memory stand-in for the parts of store.Repository the
// app tests touch. Unimplemented methods panic via the embedded interface.
type fakeRepo struct {
	store.Repository
	mu sync.Mutex

	user *domain.User
	sub  *domain.Subscription

	totalCount  int
	recentCount int

	created      []domain.GenerationRecord
	createErr    error
	candidate    *domain.GenerationRecord
	attachedTo   []string
	savedAgents  []domain.SavedAgent
	generation   *domain.GenerationRecord
	exceedingIDs []string

	alerts       []domain.UsageAlert
	hasSentAlert bool
	markedSent   []string

	upserts       []domain.Subscription
	subsByStripe  map[string]*domain.Subscription
	statusUpdates []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		user:         &domain.User{ID: "user-1", Email: "dev@example.com"},
		subsByStripe: map[string]*domain.Subscription{},
	}
}

func (f *fakeRepo) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil || f.user.ID != userID {
		return nil, store.ErrUserNotFound
	}
	return f.user, nil
}

func (f *fakeRepo) GetSubscriptionByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sub == nil {
		return nil, store.ErrSubscriptionNotFound
	}
	return f.sub, nil
}

func (f *fakeRepo) CountGenerationsByUser(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalCount, nil
}

func (f *fakeRepo) CountGenerationsByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recentCount, nil
}

func (f *fakeRepo) CreateGeneration(ctx context.Context, rec *domain.GenerationRecord) (*domain.GenerationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	stored := *rec
	stored.ID = fmt.Sprintf("gen-%d", len(f.created)+1)
	stored.CreatedAt = time.Now()
	f.created = append(f.created, stored)
	return &stored, nil
}

func (f *fakeRepo) ListGenerationsByUser(ctx context.Context, userID string, limit, offset int) ([]domain.GenerationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created, nil
}

func (f *fakeRepo) FindLatestExportCandidate(ctx context.Context, userID, agentType string) (*domain.GenerationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.candidate == nil {
		return nil, store.ErrGenerationNotFound
	}
	return f.candidate, nil
}

func (f *fakeRepo) AttachFileContent(ctx context.Context, generationID string, agentName, fileContent string, fileSize int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attachedTo = append(f.attachedTo, generationID)
	return nil
}

func (f *fakeRepo) ListSavedAgents(ctx context.Context, userID string) ([]domain.SavedAgent, error) {
	return f.savedAgents, nil
}

func (f *fakeRepo) FindGenerationByID(ctx context.Context, userID, generationID string) (*domain.GenerationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generation == nil || f.generation.ID != generationID {
		return nil, store.ErrGenerationNotFound
	}
	return f.generation, nil
}

func (f *fakeRepo) ListUsersExceedingUsage(ctx context.Context, since time.Time, threshold int) ([]string, error) {
	return f.exceedingIDs, nil
}

func (f *fakeRepo) HasSentAlertInWindow(ctx context.Context, userID string, windowStart time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasSentAlert, nil
}

func (f *fakeRepo) CreateUsageAlert(ctx context.Context, alert *domain.UsageAlert) (*domain.UsageAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *alert
	stored.ID = fmt.Sprintf("alert-%d", len(f.alerts)+1)
	f.alerts = append(f.alerts, stored)
	return &stored, nil
}

func (f *fakeRepo) MarkAlertEmailSent(ctx context.Context, alertID string, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedSent = append(f.markedSent, alertID)
	return nil
}

func (f *fakeRepo) UpsertSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *sub
	if stored.ID == "" {
		stored.ID = "sub-row-1"
	}
	f.upserts = append(f.upserts, stored)
	f.sub = &stored
	f.subsByStripe[stored.StripeSubscriptionID] = &stored
	return &stored, nil
}

func (f *fakeRepo) GetSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subsByStripe[stripeSubscriptionID]
	if !ok {
		return nil, store.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (f *fakeRepo) UpdateSubscriptionBilling(ctx context.Context, stripeSubscriptionID, status string, periodEnd time.Time, cancelAtPeriodEnd bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subsByStripe[stripeSubscriptionID]
	if !ok {
		return store.ErrSubscriptionNotFound
	}
	sub.Status = status
	sub.StripeCurrentPeriodEnd = periodEnd
	sub.CancelAtPeriodEnd = cancelAtPeriodEnd
	return nil
}

func (f *fakeRepo) UpdateSubscriptionStatus(ctx context.Context, stripeSubscriptionID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subsByStripe[stripeSubscriptionID]
	if !ok {
		return store.ErrSubscriptionNotFound
	}
	sub.Status = status
	f.statusUpdates = append(f.statusUpdates, stripeSubscriptionID+":"+status)
	return nil
}

func (f *fakeRepo) SetCancelAtPeriodEnd(ctx context.Context, userID string, cancel bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sub == nil {
		return store.ErrSubscriptionNotFound
	}
	f.sub.CancelAtPeriodEnd = cancel
	return nil
}

// fakeMailer records sent mail and can be forced to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeMailer) Send(to []string, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, subject)
	return nil
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakePublisher records routing keys of published events.
type fakePublisher struct {
	mu        sync.Mutex
	published []string
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, body interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, routingKey)
	return nil
}

func (f *fakePublisher) Close() {}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
