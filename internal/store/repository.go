/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract
 * for all data access operations required by ai-agent-manager. By defining an
 * interface, we decouple the application's business logic from the specific
 * database implementation, making the code more modular and easier to test.
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jleboube/ai-agent-manager/internal/domain"
)

// Sentinel errors returned by repository implementations.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrGenerationNotFound   = errors.New("generation not found")
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// User methods
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateUserGoogleIdentity(ctx context.Context, userID, googleID string, name, picture *string) (*domain.User, error)

	// Subscription methods
	GetSubscriptionByUserID(ctx context.Context, userID string) (*domain.Subscription, error)
	GetSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*domain.Subscription, error)
	UpsertSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error)
	UpdateSubscriptionBilling(ctx context.Context, stripeSubscriptionID, status string, periodEnd time.Time, cancelAtPeriodEnd bool) error
	UpdateSubscriptionStatus(ctx context.Context, stripeSubscriptionID, status string) error
	SetCancelAtPeriodEnd(ctx context.Context, userID string, cancel bool) error

	// Generation methods
	CreateGeneration(ctx context.Context, rec *domain.GenerationRecord) (*domain.GenerationRecord, error)
	CountGenerationsByUser(ctx context.Context, userID string) (int, error)
	CountGenerationsByUserSince(ctx context.Context, userID string, since time.Time) (int, error)
	ListGenerationsByUser(ctx context.Context, userID string, limit, offset int) ([]domain.GenerationRecord, error)
	FindGenerationByID(ctx context.Context, userID, generationID string) (*domain.GenerationRecord, error)
	FindLatestExportCandidate(ctx context.Context, userID, agentType string) (*domain.GenerationRecord, error)
	AttachFileContent(ctx context.Context, generationID string, agentName, fileContent string, fileSize int) error
	ListSavedAgents(ctx context.Context, userID string) ([]domain.SavedAgent, error)
	GetUsageStats(ctx context.Context, userID string, now time.Time) (domain.UsageStats, error)
	ListUsersExceedingUsage(ctx context.Context, since time.Time, threshold int) ([]string, error)

	// Usage alert methods
	HasSentAlertInWindow(ctx context.Context, userID string, windowStart time.Time) (bool, error)
	CreateUsageAlert(ctx context.Context, alert *domain.UsageAlert) (*domain.UsageAlert, error)
	MarkAlertEmailSent(ctx context.Context, alertID string, sentAt time.Time) error
}
