/**
 * @description
 * This file defines the core user model for ai-agent-manager.
 * Users are created on first successful Google OAuth login and are never
 * hard-deleted; identity is tied to the email returned by Google.
 */
package domain

import "time"

// User represents an account in the database.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	GoogleID  *string   `json:"google_id,omitempty"`
	Name      *string   `json:"name,omitempty"`
	Picture   *string   `json:"picture,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserProfile is the DTO returned by GET /user/profile.
type UserProfile struct {
	User         ProfileUser          `json:"user"`
	Subscription *SubscriptionSummary `json:"subscription"`
	Usage        UsageStats           `json:"usage"`
	CanGenerate  bool                 `json:"canGenerate"`
}

// ProfileUser is the public subset of User exposed over the API.
type ProfileUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	Picture   *string   `json:"picture"`
	CreatedAt time.Time `json:"createdAt"`
}

// UsageStats aggregates a user's generation history for the profile view.
type UsageStats struct {
	Total       int            `json:"total"`
	Weekly      int            `json:"weekly"`
	Monthly     int            `json:"monthly"`
	ByProvider  map[string]int `json:"byProvider"`
	ByAgentType map[string]int `json:"byAgentType"`
}
