package app

import (
	"context"
	"errors"
	"testing"
)

func newTestMonitor(repo *fakeRepo, mail *fakeMailer) (*UsageMonitor, *fakePublisher) {
	publisher := &fakePublisher{}
	return NewUsageMonitor(repo, mail, publisher, "admin@example.com", discardLogger()), publisher
}

func TestCheckAndAlertOverThresholdSendsOneEmail(t *testing.T) {
	repo := newFakeRepo()
	repo.recentCount = 101
	mail := &fakeMailer{}
	monitor, publisher := newTestMonitor(repo, mail)

	monitor.CheckAndAlert(context.Background(), "user-1")

	if len(repo.alerts) != 1 {
		t.Fatalf("expected 1 alert created, got %d", len(repo.alerts))
	}
	if repo.alerts[0].GenerationCount != 101 {
		t.Errorf("alert count = %d, want 101", repo.alerts[0].GenerationCount)
	}
	if mail.sentCount() != 1 {
		t.Errorf("expected 1 email sent, got %d", mail.sentCount())
	}
	if len(repo.markedSent) != 1 {
		t.Errorf("expected alert marked sent, got %v", repo.markedSent)
	}
	if len(publisher.published) != 1 {
		t.Errorf("expected 1 event published, got %d", len(publisher.published))
	}
}

func TestCheckAndAlertAtThresholdDoesNothing(t *testing.T) {
	repo := newFakeRepo()
	repo.recentCount = 100
	mail := &fakeMailer{}
	monitor, _ := newTestMonitor(repo, mail)

	monitor.CheckAndAlert(context.Background(), "user-1")

	if len(repo.alerts) != 0 || mail.sentCount() != 0 {
		t.Fatalf("expected no alert at threshold, got %d alerts %d emails", len(repo.alerts), mail.sentCount())
	}
}

func TestCheckAndAlertExistingSentAlertSuppressesResend(t *testing.T) {
	repo := newFakeRepo()
	repo.recentCount = 101
	repo.hasSentAlert = true
	mail := &fakeMailer{}
	monitor, _ := newTestMonitor(repo, mail)

	monitor.CheckAndAlert(context.Background(), "user-1")

	if len(repo.alerts) != 0 {
		t.Errorf("expected no new alert, got %d", len(repo.alerts))
	}
	if mail.sentCount() != 0 {
		t.Errorf("expected no email, got %d", mail.sentCount())
	}
}

func TestCheckAndAlertEmailFailureIsSwallowed(t *testing.T) {
	repo := newFakeRepo()
	repo.recentCount = 150
	mail := &fakeMailer{err: errors.New("smtp down")}
	monitor, _ := newTestMonitor(repo, mail)

	// Must not panic or propagate; the alert stays unmarked so the next
	// check can retry the email.
	monitor.CheckAndAlert(context.Background(), "user-1")

	if len(repo.alerts) != 1 {
		t.Fatalf("expected alert row despite email failure, got %d", len(repo.alerts))
	}
	if len(repo.markedSent) != 0 {
		t.Errorf("alert must not be marked sent after a failed email, got %v", repo.markedSent)
	}
}

func TestCheckAllUsersSweepsFlaggedUsers(t *testing.T) {
	repo := newFakeRepo()
	repo.recentCount = 101
	repo.exceedingIDs = []string{"user-1"}
	mail := &fakeMailer{}
	monitor, _ := newTestMonitor(repo, mail)

	monitor.CheckAllUsers(context.Background())

	if len(repo.alerts) != 1 {
		t.Fatalf("expected sweep to create 1 alert, got %d", len(repo.alerts))
	}
}
