package badge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MiguelL1304/aquascape/internal/category"
	"github.com/MiguelL1304/aquascape/internal/profile"
	"github.com/MiguelL1304/aquascape/internal/shared/clock"
	"github.com/MiguelL1304/aquascape/internal/stats"
)

type fakeStats struct {
	lifetimeFn func(context.Context, string) (stats.Counters, error)
}

func (f *fakeStats) Lifetime(ctx context.Context, userID string) (stats.Counters, error) {
	if f.lifetimeFn != nil {
		return f.lifetimeFn(ctx, userID)
	}
	return stats.Counters{}, nil
}

func TestCatalogIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, b := range Catalog() {
		if seen[b.ID] {
			t.Fatalf("duplicate badge id %s", b.ID)
		}
		seen[b.ID] = true
		if b.Threshold <= 0 {
			t.Fatalf("badge %s has no threshold", b.ID)
		}
		if b.Rule == RuleCategoryCount && b.Category == "" {
			t.Fatalf("category badge %s has no category", b.ID)
		}
	}
}

func TestEvaluateSkipsEarnedAndUnreached(t *testing.T) {
	totals := stats.Counters{
		TaskCount:  12,
		TimeLogged: 59,
		Categories: map[string]int{string(category.Work): 25},
	}
	p := profile.Profile{Badges: []profile.EarnedBadge{{ID: "first_splash"}}}

	got := Evaluate(Catalog(), totals, p)
	ids := make([]string, len(got))
	for i, b := range got {
		ids[i] = b.ID
	}
	want := []string{"tide_turner", "busy_beaver"}
	if len(ids) != len(want) {
		t.Fatalf("got %v want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got %v want %v", ids, want)
		}
	}
}

func TestProgressKeepsEarnedBadgesAfterCountersDrop(t *testing.T) {
	earnedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := profile.Profile{Badges: []profile.EarnedBadge{{ID: "tide_turner", EarnedAt: earnedAt}}}

	progress := ProgressFor(Catalog(), stats.Counters{TaskCount: 4}, p)
	for _, item := range progress {
		switch item.Badge.ID {
		case "tide_turner":
			if !item.Earned || item.Percent != 100 || item.EarnedAt == nil || !item.EarnedAt.Equal(earnedAt) {
				t.Fatalf("earned badge must stay earned: %+v", item)
			}
		case "first_splash":
			if item.Earned || item.Percent != 100 {
				t.Fatalf("reached but unearned badge: %+v", item)
			}
		case "school_of_fish":
			if item.Percent != 8 {
				t.Fatalf("expected 8%% progress, got %d", item.Percent)
			}
		}
	}
}

func TestServiceCheckAwardsOnce(t *testing.T) {
	ctx := context.Background()
	profiles := profile.NewMemoryRepository()
	if err := profiles.Create(ctx, profile.Profile{UserID: "u1"}); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	st := &fakeStats{lifetimeFn: func(context.Context, string) (stats.Counters, error) {
		return stats.Counters{TaskCount: 1, TimeLogged: 75}, nil
	}}
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	svc, err := NewService(st, profiles, clock.Fixed(now))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	awarded, err := svc.Check(ctx, "u1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(awarded) != 2 || awarded[0].ID != "first_splash" || awarded[1].ID != "deep_breath" {
		t.Fatalf("unexpected awards %+v", awarded)
	}

	again, err := svc.Check(ctx, "u1")
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("badges must not be awarded twice, got %+v", again)
	}

	p, _ := profiles.Get(ctx, "u1")
	if len(p.Badges) != 2 || !p.Badges[0].EarnedAt.Equal(now) {
		t.Fatalf("unexpected stored badges %+v", p.Badges)
	}
}

func TestServiceCheckPropagatesErrors(t *testing.T) {
	wantErr := errors.New("boom")
	st := &fakeStats{lifetimeFn: func(context.Context, string) (stats.Counters, error) {
		return stats.Counters{}, wantErr
	}}
	profiles := profile.NewMemoryRepository()
	_ = profiles.Create(context.Background(), profile.Profile{UserID: "u1"})
	svc, _ := NewService(st, profiles, clock.NewSystemClock())
	if _, err := svc.Check(context.Background(), "u1"); !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}
