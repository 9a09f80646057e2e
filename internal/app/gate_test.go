package app

import (
	"testing"

	"github.com/jleboube/ai-agent-manager/internal/domain"
)

func TestCanGenerate(t *testing.T) {
	active := &domain.Subscription{Status: domain.SubscriptionStatusActive}
	pastDue := &domain.Subscription{Status: domain.SubscriptionStatusPastDue}
	canceled := &domain.Subscription{Status: domain.SubscriptionStatusCanceled}

	cases := []struct {
		name  string
		count int
		sub   *domain.Subscription
		want  bool
	}{
		{"no generations, no subscription", 0, nil, true},
		{"no generations, canceled subscription", 0, canceled, true},
		{"one generation, no subscription", 1, nil, false},
		{"one generation, active subscription", 1, active, true},
		{"many generations, active subscription", 500, active, true},
		{"one generation, past due subscription", 1, pastDue, false},
		{"one generation, canceled subscription", 1, canceled, false},
	}

	for _, tc := range cases {
		if got := CanGenerate(tc.count, tc.sub); got != tc.want {
			t.Errorf("%s: CanGenerate(%d, %+v) = %v, want %v", tc.name, tc.count, tc.sub, got, tc.want)
		}
	}
}
