/**
 * @description
 * Event payloads published to the message broker for downstream consumers
 * (analytics, notification fan-out). Publishing is best-effort: a failed
 * publish is logged and never fails the request that triggered it.
 */
package domain

import "time"

// GenerationCreatedEvent is published after a generation record is stored.
type GenerationCreatedEvent struct {
	UserID     string    `json:"user_id"`
	AgentType  string    `json:"agent_type"`
	AIProvider string    `json:"ai_provider"`
	CreatedAt  time.Time `json:"created_at"`
}

// UsageAlertEvent is published when a user trips the weekly usage threshold.
type UsageAlertEvent struct {
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	GenerationCount int       `json:"generation_count"`
	WeekStart       time.Time `json:"week_start"`
	WeekEnd         time.Time `json:"week_end"`
}
