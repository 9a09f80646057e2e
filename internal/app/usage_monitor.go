/**
 * @description
 * This file implements the usage alert monitor. After each generation the
 * monitor counts the user's generations over the trailing seven days; past
 * the threshold it records a UsageAlert, emails the admin, and marks the
 * alert sent so at most one email goes out per week window.
 *
 * The whole path is best-effort: every failure is logged and swallowed so
 * the generation request that triggered the check never fails because of it.
 * The check-then-create window is not locked; concurrent requests from the
 * same user can race, which is accepted.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jleboube/ai-agent-manager/internal/domain"
	"github.com/jleboube/ai-agent-manager/internal/mailer"
	"github.com/jleboube/ai-agent-manager/internal/metrics"
	"github.com/jleboube/ai-agent-manager/internal/store"
	"github.com/jleboube/ai-agent-manager/pkg/rabbitmq"
)

// UsageAlertThreshold is the trailing 7-day generation count above which an
// alert email is sent.
const UsageAlertThreshold = 100

// usageAlertWindow is the trailing window the threshold applies to.
const usageAlertWindow = 7 * 24 * time.Hour

// UsageMonitor watches per-user generation volume and raises alert emails.
type UsageMonitor struct {
	repo       store.Repository
	mail       mailer.Mailer
	publisher  rabbitmq.Publisher
	adminEmail string
	logger     *slog.Logger
	now        func() time.Time
}

func NewUsageMonitor(repo store.Repository, mail mailer.Mailer, publisher rabbitmq.Publisher, adminEmail string, logger *slog.Logger) *UsageMonitor {
	return &UsageMonitor{
		repo:       repo,
		mail:       mail,
		publisher:  publisher,
		adminEmail: adminEmail,
		logger:     logger,
		now:        time.Now,
	}
}

// CheckAndAlert runs the high-usage check for one user. It never returns an
// error; failures are logged so the triggering request is unaffected.
func (m *UsageMonitor) CheckAndAlert(ctx context.Context, userID string) {
	if err := m.check(ctx, userID); err != nil {
		m.logger.Error("usage alert check failed", "user_id", userID, "error", err)
	}
}

func (m *UsageMonitor) check(ctx context.Context, userID string) error {
	now := m.now()
	windowStart := now.Add(-usageAlertWindow)

	count, err := m.repo.CountGenerationsByUserSince(ctx, userID, windowStart)
	if err != nil {
		return fmt.Errorf("count recent generations: %w", err)
	}
	if count <= UsageAlertThreshold {
		return nil
	}

	alreadySent, err := m.repo.HasSentAlertInWindow(ctx, userID, windowStart)
	if err != nil {
		return fmt.Errorf("check existing alerts: %w", err)
	}
	if alreadySent {
		return nil
	}

	user, err := m.repo.FindUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	alert, err := m.repo.CreateUsageAlert(ctx, &domain.UsageAlert{
		UserID:          userID,
		GenerationCount: count,
		WeekStart:       windowStart,
		WeekEnd:         now,
	})
	if err != nil {
		return fmt.Errorf("create usage alert: %w", err)
	}

	m.logger.Warn("high usage detected",
		"user_id", userID,
		"email", user.Email,
		"count", count,
	)

	if err := m.sendAlertEmail(user, count, windowStart, now); err != nil {
		metrics.UsageAlertFailuresTotal.Inc()
		return fmt.Errorf("send alert email: %w", err)
	}
	metrics.UsageAlertsSentTotal.Inc()

	if err := m.repo.MarkAlertEmailSent(ctx, alert.ID, m.now()); err != nil {
		return fmt.Errorf("mark alert sent: %w", err)
	}

	if pubErr := m.publisher.Publish(ctx, rabbitmq.RoutingKeyUsageAlert, domain.UsageAlertEvent{
		UserID:          userID,
		Email:           user.Email,
		GenerationCount: count,
		WeekStart:       windowStart,
		WeekEnd:         now,
	}); pubErr != nil {
		m.logger.Warn("failed to publish usage alert event", "user_id", userID, "error", pubErr)
	}

	return nil
}

func (m *UsageMonitor) sendAlertEmail(user *domain.User, count int, weekStart, weekEnd time.Time) error {
	if m.adminEmail == "" {
		return errors.New("admin email is not configured")
	}
	subject := fmt.Sprintf("High usage alert: %s", user.Email)
	body := fmt.Sprintf(
		"User %s generated %d agent configurations between %s and %s, exceeding the weekly threshold of %d.\n",
		user.Email,
		count,
		weekStart.Format(time.RFC1123),
		weekEnd.Format(time.RFC1123),
		UsageAlertThreshold,
	)
	return m.mail.Send([]string{m.adminEmail}, subject, body)
}

// CheckAllUsers runs the high-usage check for every user with generations in
// the trailing window. It backs the weekly cron sweep.
func (m *UsageMonitor) CheckAllUsers(ctx context.Context) {
	windowStart := m.now().Add(-usageAlertWindow)
	userIDs, err := m.repo.ListUsersExceedingUsage(ctx, windowStart, UsageAlertThreshold)
	if err != nil {
		m.logger.Error("usage sweep failed to list users", "error", err)
		return
	}
	for _, userID := range userIDs {
		m.CheckAndAlert(ctx, userID)
	}
	if len(userIDs) > 0 {
		m.logger.Info("usage sweep completed", "flagged_users", len(userIDs))
	}
}
