/**
 * @description
 * This file implements the data access layer for ai-agent-manager against
 * PostgreSQL. It contains all the SQL queries and logic for interacting with
 * the database via a pgx connection pool.
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jleboube/ai-agent-manager/internal/domain"
)

// PostgresRepository handles database operations for the application.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new repository backed by the given pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

const userColumns = `id, email, google_id, name, picture, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.GoogleID, &u.Name, &u.Picture, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindUserByID retrieves a user by primary key.
func (r *PostgresRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, userID))
}

// FindUserByEmail retrieves a user by email address.
func (r *PostgresRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// CreateUser inserts a new user and returns the stored row.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
        INSERT INTO users (email, google_id, name, picture)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, user.Email, user.GoogleID, user.Name, user.Picture))
}

// UpdateUserGoogleIdentity attaches the Google subject id (and refreshed
// profile fields) to an existing user that signed up before linking.
func (r *PostgresRepository) UpdateUserGoogleIdentity(ctx context.Context, userID, googleID string, name, picture *string) (*domain.User, error) {
	query := `
        UPDATE users SET
            google_id = $2,
            name = COALESCE($3, name),
            picture = COALESCE($4, picture),
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, userID, googleID, name, picture))
}

const subscriptionColumns = `id, user_id, plan, status, stripe_customer_id, stripe_subscription_id,
        stripe_price_id, stripe_current_period_end, cancel_at_period_end, created_at, updated_at`

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	err := row.Scan(
		&s.ID, &s.UserID, &s.Plan, &s.Status,
		&s.StripeCustomerID, &s.StripeSubscriptionID, &s.StripePriceID,
		&s.StripeCurrentPeriodEnd, &s.CancelAtPeriodEnd, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetSubscriptionByUserID retrieves a subscription for a given user ID.
func (r *PostgresRepository) GetSubscriptionByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1`
	return scanSubscription(r.db.QueryRow(ctx, query, userID))
}

// GetSubscriptionByStripeID retrieves a subscription by its external id.
func (r *PostgresRepository) GetSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE stripe_subscription_id = $1`
	return scanSubscription(r.db.QueryRow(ctx, query, stripeSubscriptionID))
}

// UpsertSubscription creates a new subscription or replaces the user's
// existing one. A user has at most one subscription row.
func (r *PostgresRepository) UpsertSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	query := `
        INSERT INTO subscriptions (user_id, plan, status, stripe_customer_id,
            stripe_subscription_id, stripe_price_id, stripe_current_period_end, cancel_at_period_end)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (user_id) DO UPDATE SET
            plan = EXCLUDED.plan,
            status = EXCLUDED.status,
            stripe_customer_id = EXCLUDED.stripe_customer_id,
            stripe_subscription_id = EXCLUDED.stripe_subscription_id,
            stripe_price_id = EXCLUDED.stripe_price_id,
            stripe_current_period_end = EXCLUDED.stripe_current_period_end,
            cancel_at_period_end = EXCLUDED.cancel_at_period_end,
            updated_at = NOW()
        RETURNING ` + subscriptionColumns
	return scanSubscription(r.db.QueryRow(ctx, query,
		sub.UserID, sub.Plan, sub.Status, sub.StripeCustomerID,
		sub.StripeSubscriptionID, sub.StripePriceID, sub.StripeCurrentPeriodEnd, sub.CancelAtPeriodEnd,
	))
}

// UpdateSubscriptionBilling updates the billing fields of a subscription
// identified by its external id.
func (r *PostgresRepository) UpdateSubscriptionBilling(ctx context.Context, stripeSubscriptionID, status string, periodEnd time.Time, cancelAtPeriodEnd bool) error {
	query := `
        UPDATE subscriptions SET
            status = $2,
            stripe_current_period_end = $3,
            cancel_at_period_end = $4,
            updated_at = NOW()
        WHERE stripe_subscription_id = $1`
	tag, err := r.db.Exec(ctx, query, stripeSubscriptionID, status, periodEnd, cancelAtPeriodEnd)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// UpdateSubscriptionStatus sets only the status of a subscription identified
// by its external id.
func (r *PostgresRepository) UpdateSubscriptionStatus(ctx context.Context, stripeSubscriptionID, status string) error {
	query := `UPDATE subscriptions SET status = $2, updated_at = NOW() WHERE stripe_subscription_id = $1`
	tag, err := r.db.Exec(ctx, query, stripeSubscriptionID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// SetCancelAtPeriodEnd flips the cancel-at-period-end flag for a user's
// subscription.
func (r *PostgresRepository) SetCancelAtPeriodEnd(ctx context.Context, userID string, cancel bool) error {
	query := `UPDATE subscriptions SET cancel_at_period_end = $2, updated_at = NOW() WHERE user_id = $1`
	tag, err := r.db.Exec(ctx, query, userID, cancel)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

const generationColumns = `id, user_id, agent_type, ai_provider, agent_name, description,
        file_content, file_size, created_at`

func scanGeneration(row pgx.Row) (*domain.GenerationRecord, error) {
	var g domain.GenerationRecord
	err := row.Scan(
		&g.ID, &g.UserID, &g.AgentType, &g.AIProvider, &g.AgentName,
		&g.Description, &g.FileContent, &g.FileSize, &g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGenerationNotFound
		}
		return nil, err
	}
	return &g, nil
}

// CreateGeneration inserts a new generation record.
func (r *PostgresRepository) CreateGeneration(ctx context.Context, rec *domain.GenerationRecord) (*domain.GenerationRecord, error) {
	query := `
        INSERT INTO agent_generations (user_id, agent_type, ai_provider, agent_name, description, file_content, file_size)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + generationColumns
	return scanGeneration(r.db.QueryRow(ctx, query,
		rec.UserID, rec.AgentType, rec.AIProvider, rec.AgentName,
		rec.Description, rec.FileContent, rec.FileSize,
	))
}

// CountGenerationsByUser returns the total number of generations for a user.
func (r *PostgresRepository) CountGenerationsByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM agent_generations WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// CountGenerationsByUserSince returns generations created at or after `since`.
func (r *PostgresRepository) CountGenerationsByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM agent_generations WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&count)
	return count, err
}

// ListGenerationsByUser returns a page of generation records, newest first.
func (r *PostgresRepository) ListGenerationsByUser(ctx context.Context, userID string, limit, offset int) ([]domain.GenerationRecord, error) {
	query := `
        SELECT ` + generationColumns + `
        FROM agent_generations
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.GenerationRecord
	for rows.Next() {
		rec, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// FindGenerationByID retrieves a single generation record owned by the user.
func (r *PostgresRepository) FindGenerationByID(ctx context.Context, userID, generationID string) (*domain.GenerationRecord, error) {
	query := `SELECT ` + generationColumns + ` FROM agent_generations WHERE id = $1 AND user_id = $2`
	return scanGeneration(r.db.QueryRow(ctx, query, generationID, userID))
}

// FindLatestExportCandidate returns the newest generation of the given type
// that has not yet received exported file content.
func (r *PostgresRepository) FindLatestExportCandidate(ctx context.Context, userID, agentType string) (*domain.GenerationRecord, error) {
	query := `
        SELECT ` + generationColumns + `
        FROM agent_generations
        WHERE user_id = $1 AND agent_type = $2 AND file_content IS NULL
        ORDER BY created_at DESC
        LIMIT 1`
	return scanGeneration(r.db.QueryRow(ctx, query, userID, agentType))
}

// AttachFileContent stores the exported agent file on an existing record.
func (r *PostgresRepository) AttachFileContent(ctx context.Context, generationID string, agentName, fileContent string, fileSize int) error {
	query := `
        UPDATE agent_generations SET
            agent_name = $2,
            file_content = $3,
            file_size = $4
        WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, generationID, agentName, fileContent, fileSize)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGenerationNotFound
	}
	return nil
}

// ListSavedAgents returns the user's generations with exported content,
// newest first, without the content body.
func (r *PostgresRepository) ListSavedAgents(ctx context.Context, userID string) ([]domain.SavedAgent, error) {
	query := `
        SELECT id, agent_name, agent_type, ai_provider, file_size, created_at
        FROM agent_generations
        WHERE user_id = $1 AND file_content IS NOT NULL
        ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []domain.SavedAgent
	for rows.Next() {
		var a domain.SavedAgent
		if err := rows.Scan(&a.ID, &a.AgentName, &a.AgentType, &a.AIProvider, &a.FileSize, &a.CreatedAt); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// GetUsageStats aggregates a user's generation history for the profile view.
func (r *PostgresRepository) GetUsageStats(ctx context.Context, userID string, now time.Time) (domain.UsageStats, error) {
	stats := domain.UsageStats{
		ByProvider:  make(map[string]int),
		ByAgentType: make(map[string]int),
	}

	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)
	query := `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE created_at >= $2),
               COUNT(*) FILTER (WHERE created_at >= $3)
        FROM agent_generations
        WHERE user_id = $1`
	if err := r.db.QueryRow(ctx, query, userID, weekAgo, monthAgo).Scan(&stats.Total, &stats.Weekly, &stats.Monthly); err != nil {
		return stats, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT ai_provider, agent_type, COUNT(*) FROM agent_generations WHERE user_id = $1 GROUP BY ai_provider, agent_type`,
		userID,
	)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var provider, agentType string
		var count int
		if err := rows.Scan(&provider, &agentType, &count); err != nil {
			return stats, err
		}
		stats.ByProvider[provider] += count
		stats.ByAgentType[agentType] += count
	}
	return stats, rows.Err()
}

// ListUsersExceedingUsage returns the ids of users with more than `threshold`
// generations since the given time. Used by the weekly sweep job.
func (r *PostgresRepository) ListUsersExceedingUsage(ctx context.Context, since time.Time, threshold int) ([]string, error) {
	query := `
        SELECT user_id
        FROM agent_generations
        WHERE created_at >= $1
        GROUP BY user_id
        HAVING COUNT(*) > $2`
	rows, err := r.db.Query(ctx, query, since, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

// HasSentAlertInWindow reports whether a sent alert already exists for the
// user with a week start at or after windowStart.
func (r *PostgresRepository) HasSentAlertInWindow(ctx context.Context, userID string, windowStart time.Time) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS (
            SELECT 1 FROM usage_alerts
            WHERE user_id = $1 AND week_start >= $2 AND email_sent = TRUE
        )`
	err := r.db.QueryRow(ctx, query, userID, windowStart).Scan(&exists)
	return exists, err
}

// CreateUsageAlert inserts a new usage alert record.
func (r *PostgresRepository) CreateUsageAlert(ctx context.Context, alert *domain.UsageAlert) (*domain.UsageAlert, error) {
	var created domain.UsageAlert
	query := `
        INSERT INTO usage_alerts (user_id, generation_count, week_start, week_end)
        VALUES ($1, $2, $3, $4)
        RETURNING id, user_id, generation_count, week_start, week_end, email_sent, email_sent_at, created_at`
	err := r.db.QueryRow(ctx, query, alert.UserID, alert.GenerationCount, alert.WeekStart, alert.WeekEnd).Scan(
		&created.ID, &created.UserID, &created.GenerationCount,
		&created.WeekStart, &created.WeekEnd, &created.EmailSent, &created.EmailSentAt, &created.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// MarkAlertEmailSent records a successful notification delivery.
func (r *PostgresRepository) MarkAlertEmailSent(ctx context.Context, alertID string, sentAt time.Time) error {
	query := `UPDATE usage_alerts SET email_sent = TRUE, email_sent_at = $2 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, alertID, sentAt)
	return err
}
