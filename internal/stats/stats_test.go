package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MiguelL1304/aquascape/internal/calendar"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := calendar.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}

func TestMutationsCoverFourBuckets(t *testing.T) {
	muts := Mutations(date(t, "2024-06-05"), time.Sunday, CompletionDelta(30, "Work"))
	if len(muts) != 4 {
		t.Fatalf("expected 4 mutations, got %d", len(muts))
	}
	want := map[Bucket]string{
		Daily:   "2024-06-05",
		Weekly:  "2024-06-02",
		Monthly: "2024-06",
		Yearly:  "2024",
	}
	for _, m := range muts {
		if want[m.Bucket] != m.Key {
			t.Fatalf("bucket %s: got key %s want %s", m.Bucket, m.Key, want[m.Bucket])
		}
	}

	if got := Mutations(date(t, "2024-06-05"), time.Sunday, Delta{Category: "Work"}); got != nil {
		t.Fatalf("zero delta should produce no mutations, got %v", got)
	}
}

func TestCoalesceMergesSamePeriod(t *testing.T) {
	d := date(t, "2024-06-05")
	muts := append(Mutations(d, time.Sunday, CompletionDelta(30, "Work")),
		Mutations(d.AddDate(0, 0, 1), time.Sunday, CompletionDelta(15, "Study"))...)

	inc := Coalesce(muts)
	if len(inc[Daily]) != 2 {
		t.Fatalf("expected two daily keys, got %d", len(inc[Daily]))
	}
	week := inc[Weekly]["2024-06-02"]
	if week.TaskCount != 2 || week.TimeLogged != 45 || week.Category("Work") != 1 || week.Category("Study") != 1 {
		t.Fatalf("unexpected weekly increment %+v", week)
	}
}

func TestApplyThenNegateRestoresTotals(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	svc, err := NewService(repo, calendar.DefaultSettings())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	base := date(t, "2024-12-30")
	if err := svc.Record(ctx, "u1", base, CompletionDelta(45, "Fitness")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	before := snapshot(t, repo, "u1")

	deltas := []Delta{
		CompletionDelta(25, "Work"),
		CompletionDelta(0, "Chores"),
		CompletionDelta(90, "Fitness"),
	}
	for i, d := range deltas {
		day := base.AddDate(0, 0, i*3) // crosses into 2025
		if err := svc.Record(ctx, "u1", day, d); err != nil {
			t.Fatalf("apply: %v", err)
		}
		if err := svc.Record(ctx, "u1", day, d.Negate()); err != nil {
			t.Fatalf("negate: %v", err)
		}
	}

	after := snapshot(t, repo, "u1")
	for _, b := range Buckets {
		for key, c := range before[b] {
			if !c.Equal(after[b][key]) {
				t.Fatalf("%s/%s changed: before %+v after %+v", b, key, c, after[b][key])
			}
		}
		for key, c := range after[b] {
			if !c.Equal(before[b][key]) {
				t.Fatalf("%s/%s appeared with non-zero counters %+v", b, key, c)
			}
		}
	}
}

func snapshot(t *testing.T, repo Repository, userID string) map[Bucket]map[string]Counters {
	t.Helper()
	out := make(map[Bucket]map[string]Counters)
	for _, b := range Buckets {
		periods, err := repo.Bucket(context.Background(), userID, b)
		if err != nil {
			t.Fatalf("bucket %s: %v", b, err)
		}
		out[b] = periods
	}
	return out
}

func TestSummaryAndLifetime(t *testing.T) {
	ctx := context.Background()
	svc, _ := NewService(NewMemoryRepository(), calendar.Settings{Location: time.UTC, WeekStart: time.Monday})

	_ = svc.Record(ctx, "u1", date(t, "2023-05-01"), CompletionDelta(10, "Work"))
	_ = svc.Record(ctx, "u1", date(t, "2024-05-06"), CompletionDelta(20, "Work"))
	_ = svc.Record(ctx, "u1", date(t, "2024-05-07"), CompletionDelta(30, "Study"))

	summary, err := svc.Summary(ctx, "u1", date(t, "2024-05-07"))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Day.TaskCount != 1 || summary.Day.TimeLogged != 30 {
		t.Fatalf("unexpected day %+v", summary.Day)
	}
	if summary.Week.Key != "2024-05-06" || summary.Week.TaskCount != 2 || summary.Week.TimeLogged != 50 {
		t.Fatalf("unexpected week %+v", summary.Week)
	}
	if summary.Year.Key != "2024" || summary.Year.TaskCount != 2 {
		t.Fatalf("unexpected year %+v", summary.Year)
	}

	total, err := svc.Lifetime(ctx, "u1")
	if err != nil {
		t.Fatalf("lifetime: %v", err)
	}
	if total.TaskCount != 3 || total.TimeLogged != 60 || total.Category("Work") != 2 {
		t.Fatalf("unexpected lifetime %+v", total)
	}
}

func TestServiceRequiresUser(t *testing.T) {
	svc, _ := NewService(NewMemoryRepository(), calendar.DefaultSettings())
	if err := svc.Record(context.Background(), "", time.Now(), CompletionDelta(1, "Work")); !errors.Is(err, ErrMissingUserID) {
		t.Fatalf("expected ErrMissingUserID, got %v", err)
	}
	if _, err := ParseBucket("hourly"); !errors.Is(err, ErrInvalidBucket) {
		t.Fatalf("expected ErrInvalidBucket, got %v", err)
	}
	if b, err := ParseBucket(" Weekly "); err != nil || b != Weekly {
		t.Fatalf("expected weekly, got %s %v", b, err)
	}
}
