/**
 * @description
 * This file contains the account-facing business logic: login/registration
 * from a verified Google identity, the current-user payload, the profile
 * view with usage statistics, and the paginated generation history.
 */
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jleboube/ai-agent-manager/internal/auth"
	"github.com/jleboube/ai-agent-manager/internal/domain"
	"github.com/jleboube/ai-agent-manager/internal/store"
)

const (
	recentGenerationsLimit = 10

	defaultPageSize = 20
	maxPageSize     = 100
)

// MePayload is the response of GET /auth/me.
type MePayload struct {
	User              domain.ProfileUser          `json:"user"`
	Subscription      *domain.SubscriptionSummary `json:"subscription"`
	GenerationsUsed   int                         `json:"generationsUsed"`
	RecentGenerations []domain.GenerationRecord   `json:"recentGenerations"`
}

// Pagination describes one page of a listing response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// GenerationsPage is the response of GET /user/generations.
type GenerationsPage struct {
	Generations []domain.GenerationRecord `json:"generations"`
	Pagination  Pagination                `json:"pagination"`
}

// UserService provides account and profile business logic.
type UserService struct {
	repo   store.Repository
	logger *slog.Logger
}

func NewUserService(repo store.Repository, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// LoginOrRegister resolves a verified Google identity to a local user,
// creating the account on first login and backfilling the Google profile
// fields on accounts that predate it.
func (s *UserService) LoginOrRegister(ctx context.Context, identity *auth.GoogleIdentity) (*domain.User, error) {
	user, err := s.repo.FindUserByEmail(ctx, identity.Email)
	if errors.Is(err, store.ErrUserNotFound) {
		created, createErr := s.repo.CreateUser(ctx, &domain.User{
			Email:    identity.Email,
			GoogleID: &identity.Subject,
			Name:     optional(identity.Name),
			Picture:  optional(identity.Picture),
		})
		if createErr != nil {
			return nil, createErr
		}
		s.logger.Info("user registered", "user_id", created.ID, "email", created.Email)
		return created, nil
	}
	if err != nil {
		return nil, err
	}

	if user.GoogleID == nil || *user.GoogleID == "" {
		return s.repo.UpdateUserGoogleIdentity(ctx, user.ID, identity.Subject,
			optional(identity.Name), optional(identity.Picture))
	}
	return user, nil
}

// Me assembles the current-user payload: profile, subscription summary,
// lifetime usage, and the most recent generations.
func (s *UserService) Me(ctx context.Context, userID string) (*MePayload, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sub, err := s.repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrSubscriptionNotFound) {
		return nil, err
	}
	total, err := s.repo.CountGenerationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.ListGenerationsByUser(ctx, userID, recentGenerationsLimit, 0)
	if err != nil {
		return nil, err
	}

	return &MePayload{
		User:              profileUser(user),
		Subscription:      sub.Summary(),
		GenerationsUsed:   total,
		RecentGenerations: recent,
	}, nil
}

// Profile assembles the profile view with aggregated usage statistics.
func (s *UserService) Profile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sub, err := s.repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrSubscriptionNotFound) {
		return nil, err
	}
	usage, err := s.repo.GetUsageStats(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}

	return &domain.UserProfile{
		User:         profileUser(user),
		Subscription: sub.Summary(),
		Usage:        usage,
		CanGenerate:  CanGenerate(usage.Total, sub),
	}, nil
}

// Generations returns one page of the user's generation history, newest
// first.
func (s *UserService) Generations(ctx context.Context, userID string, page, limit int) (*GenerationsPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	total, err := s.repo.CountGenerationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListGenerationsByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit
	return &GenerationsPage{
		Generations: records,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func profileUser(u *domain.User) domain.ProfileUser {
	return domain.ProfileUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Picture:   u.Picture,
		CreatedAt: u.CreatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
