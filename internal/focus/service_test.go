package focus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MiguelL1304/aquascape/internal/calendar"
	"github.com/MiguelL1304/aquascape/internal/profile"
	"github.com/MiguelL1304/aquascape/internal/shared/clock"
	"github.com/MiguelL1304/aquascape/internal/shared/idgen"
)

type fakeTasks struct {
	existsFn func(context.Context, string, string) (bool, error)
}

func (f *fakeTasks) Exists(ctx context.Context, userID, taskID string) (bool, error) {
	if f.existsFn != nil {
		return f.existsFn(ctx, userID, taskID)
	}
	return true, nil
}

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T, rate int, tasks TaskLookup) (*Service, *profile.MemoryRepository) {
	t.Helper()
	return newServiceIn(t, calendar.DefaultSettings(), rate, tasks)
}

func newServiceIn(t *testing.T, cal calendar.Settings, rate int, tasks TaskLookup) (*Service, *profile.MemoryRepository) {
	t.Helper()
	profiles := profile.NewMemoryRepository()
	if err := profiles.Create(context.Background(), profile.Profile{UserID: "u1"}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	repo, err := NewMemoryRepository(profiles)
	if err != nil {
		t.Fatalf("repo: %v", err)
	}
	svc, err := NewService(repo, tasks, clock.Fixed(now), &idgen.Sequence{Prefix: "focus"}, cal, rate)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc, profiles
}

func TestReward(t *testing.T) {
	cases := []struct {
		minutes, rate, want int
	}{
		{minutes: 25, rate: 1, want: 25},
		{minutes: 25, rate: 2, want: 50},
		{minutes: 1, rate: 1, want: 1},
		{minutes: 0, rate: 1, want: 0},
		{minutes: -5, rate: 1, want: 0},
	}
	for _, tc := range cases {
		if got := Reward(tc.minutes, tc.rate); got != tc.want {
			t.Fatalf("Reward(%d, %d) = %d, want %d", tc.minutes, tc.rate, got, tc.want)
		}
	}
}

func TestCompleteCreditsSeashells(t *testing.T) {
	svc, profiles := newService(t, 2, nil)
	ctx := context.Background()

	res, err := svc.Complete(ctx, CompleteInput{UserID: "u1", Minutes: 25})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.Session.Seashells != 50 || res.Balance != 50 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !res.Session.StartedAt.Equal(now.Add(-25*time.Minute)) || !res.Session.EndedAt.Equal(now) {
		t.Fatalf("unexpected session window %+v", res.Session)
	}

	res, _ = svc.Complete(ctx, CompleteInput{UserID: "u1", Minutes: 5})
	if res.Balance != 60 {
		t.Fatalf("expected balance 60, got %d", res.Balance)
	}
	p, _ := profiles.Get(ctx, "u1")
	if p.Seashells != 60 {
		t.Fatalf("profile balance %d", p.Seashells)
	}
}

func TestCompleteValidation(t *testing.T) {
	svc, _ := newService(t, 1, &fakeTasks{existsFn: func(context.Context, string, string) (bool, error) {
		return false, nil
	}})
	ctx := context.Background()
	future := now.Add(time.Hour)

	cases := map[string]CompleteInput{
		"zero minutes":    {UserID: "u1", Minutes: 0},
		"too long":        {UserID: "u1", Minutes: 1441},
		"future start":    {UserID: "u1", Minutes: 10, StartedAt: &future},
		"unknown task":    {UserID: "u1", Minutes: 10, TaskID: "nope"},
		"missing user id": {Minutes: 10},
	}
	for name, input := range cases {
		if _, err := svc.Complete(ctx, input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestCompleteWithoutProfileStoresNothing(t *testing.T) {
	svc, _ := newService(t, 1, nil)
	ctx := context.Background()
	if _, err := svc.Complete(ctx, CompleteInput{UserID: "ghost", Minutes: 10}); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("expected profile.ErrNotFound, got %v", err)
	}
	sessions, _ := svc.List(ctx, "ghost", "2024-03")
	if len(sessions) != 0 {
		t.Fatalf("session stored without reward")
	}
}

func TestListByMonth(t *testing.T) {
	svc, _ := newService(t, 1, &fakeTasks{})
	ctx := context.Background()
	feb := time.Date(2024, 2, 29, 23, 30, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	_, _ = svc.Complete(ctx, CompleteInput{UserID: "u1", Minutes: 20, StartedAt: &mar})
	_, _ = svc.Complete(ctx, CompleteInput{UserID: "u1", Minutes: 20, StartedAt: &feb, TaskID: "t1"})

	febSessions, err := svc.List(ctx, "u1", "2024-02")
	if err != nil || len(febSessions) != 1 || febSessions[0].TaskID != "t1" {
		t.Fatalf("february: %+v %v", febSessions, err)
	}
	marSessions, _ := svc.List(ctx, "u1", "2024-03")
	if len(marSessions) != 1 {
		t.Fatalf("march: %+v", marSessions)
	}
	if _, err := svc.List(ctx, "u1", "2024-13"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestListByMonthUsesConfiguredTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	svc, _ := newServiceIn(t, calendar.Settings{Location: tokyo, WeekStart: time.Sunday}, 1, nil)
	ctx := context.Background()
	// 08:30 on March 1st in Tokyo.
	late := time.Date(2024, 2, 29, 23, 30, 0, 0, time.UTC)
	if _, err := svc.Complete(ctx, CompleteInput{UserID: "u1", Minutes: 20, StartedAt: &late}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	feb, _ := svc.List(ctx, "u1", "2024-02")
	mar, _ := svc.List(ctx, "u1", "2024-03")
	if len(feb) != 0 || len(mar) != 1 {
		t.Fatalf("expected the session in march, got feb=%d mar=%d", len(feb), len(mar))
	}
}
