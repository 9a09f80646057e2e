/**
 * @description
 * This file defines the generation record model. One row is written per
 * generation or advice request; the count of these rows per user is the
 * usage metric the free tier is gated on. A record may later receive the
 * exported agent file content via the save-agent endpoint.
 */
package domain

import "time"

// GenerationRecord represents one AI generation performed for a user.
type GenerationRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	AgentType   string    `json:"agentType"`
	AIProvider  string    `json:"aiProvider"`
	AgentName   *string   `json:"agentName,omitempty"`
	Description string    `json:"description"`
	FileContent *string   `json:"fileContent,omitempty"`
	FileSize    *int      `json:"fileSize,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SavedAgent is the listing DTO for GET /ai/my-agents. It deliberately
// omits the file content, which is only returned by GET /ai/agent/{id}.
type SavedAgent struct {
	ID         string    `json:"id"`
	AgentName  *string   `json:"agentName"`
	AgentType  string    `json:"agentType"`
	AIProvider string    `json:"aiProvider"`
	FileSize   *int      `json:"fileSize"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UsageAlert records that a user exceeded the weekly generation threshold
// and whether the notification email went out. At most one alert is sent
// per user per trailing week window.
type UsageAlert struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	GenerationCount int        `json:"generation_count"`
	WeekStart       time.Time  `json:"week_start"`
	WeekEnd         time.Time  `json:"week_end"`
	EmailSent       bool       `json:"email_sent"`
	EmailSentAt     *time.Time `json:"email_sent_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
