package app

import (
	"context"
	"testing"

	"github.com/jleboube/ai-agent-manager/internal/auth"
	"github.com/jleboube/ai-agent-manager/internal/domain"
	"github.com/jleboube/ai-agent-manager/internal/store"
)

type userRepoStub struct {
	store.Repository

	byEmail map[string]*domain.User
	created *domain.User
	updated bool
}

func (s *userRepoStub) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

func (s *userRepoStub) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	stored := *user
	stored.ID = "user-new"
	s.created = &stored
	return &stored, nil
}

func (s *userRepoStub) UpdateUserGoogleIdentity(ctx context.Context, userID, googleID string, name, picture *string) (*domain.User, error) {
	s.updated = true
	u := *s.byEmail["existing@example.com"]
	u.GoogleID = &googleID
	return &u, nil
}

func TestLoginOrRegisterCreatesNewUser(t *testing.T) {
	repo := &userRepoStub{byEmail: map[string]*domain.User{}}
	svc := NewUserService(repo, discardLogger())

	user, err := svc.LoginOrRegister(context.Background(), &auth.GoogleIdentity{
		Subject: "google-sub-1",
		Email:   "new@example.com",
		Name:    "New User",
	})
	if err != nil {
		t.Fatalf("LoginOrRegister returned error: %v", err)
	}
	if user.ID != "user-new" || repo.created == nil {
		t.Fatalf("expected user creation, got %+v", user)
	}
	if repo.created.GoogleID == nil || *repo.created.GoogleID != "google-sub-1" {
		t.Error("expected google id stored on creation")
	}
}

func TestLoginOrRegisterBackfillsGoogleIdentity(t *testing.T) {
	repo := &userRepoStub{byEmail: map[string]*domain.User{
		"existing@example.com": {ID: "user-1", Email: "existing@example.com"},
	}}
	svc := NewUserService(repo, discardLogger())

	user, err := svc.LoginOrRegister(context.Background(), &auth.GoogleIdentity{
		Subject: "google-sub-2",
		Email:   "existing@example.com",
	})
	if err != nil {
		t.Fatalf("LoginOrRegister returned error: %v", err)
	}
	if !repo.updated {
		t.Error("expected google identity backfill")
	}
	if user.GoogleID == nil || *user.GoogleID != "google-sub-2" {
		t.Errorf("unexpected user %+v", user)
	}
}

func TestLoginOrRegisterLeavesLinkedUserAlone(t *testing.T) {
	googleID := "google-sub-3"
	repo := &userRepoStub{byEmail: map[string]*domain.User{
		"linked@example.com": {ID: "user-2", Email: "linked@example.com", GoogleID: &googleID},
	}}
	svc := NewUserService(repo, discardLogger())

	user, err := svc.LoginOrRegister(context.Background(), &auth.GoogleIdentity{
		Subject: googleID,
		Email:   "linked@example.com",
	})
	if err != nil {
		t.Fatalf("LoginOrRegister returned error: %v", err)
	}
	if repo.updated || user.ID != "user-2" {
		t.Errorf("expected no update for linked user, updated=%v user=%+v", repo.updated, user)
	}
}

func TestGenerationsNormalizesPagination(t *testing.T) {
	repo := newFakeRepo()
	repo.totalCount = 45
	svc := NewUserService(repo, discardLogger())

	page, err := svc.Generations(context.Background(), "user-1", 0, 0)
	if err != nil {
		t.Fatalf("Generations returned error: %v", err)
	}
	if page.Pagination.Page != 1 || page.Pagination.Limit != defaultPageSize {
		t.Errorf("pagination defaults = %+v", page.Pagination)
	}
	if page.Pagination.TotalPages != 3 {
		t.Errorf("totalPages = %d, want 3", page.Pagination.TotalPages)
	}

	page, err = svc.Generations(context.Background(), "user-1", 2, 1000)
	if err != nil {
		t.Fatalf("Generations returned error: %v", err)
	}
	if page.Pagination.Limit != maxPageSize {
		t.Errorf("limit = %d, want capped at %d", page.Pagination.Limit, maxPageSize)
	}
}
