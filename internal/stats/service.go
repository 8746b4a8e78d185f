package stats

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MiguelL1304/aquascape/internal/calendar"
)

// Service reads and writes the rolling statistics buckets.
type Service struct {
	repo Repository
	cal  calendar.Settings
}

// NewService constructs a Service.
func NewService(repo Repository, cal calendar.Settings) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Service{repo: repo, cal: cal}, nil
}

// Mutations derives the bucket mutations for delta on date using the configured week start.
func (s *Service) Mutations(date time.Time, delta Delta) []Mutation {
	return Mutations(date, s.cal.WeekStart, delta)
}

// Record applies delta to the four buckets containing date.
func (s *Service) Record(ctx context.Context, userID string, date time.Time, delta Delta) error {
	if userID == "" {
		return ErrMissingUserID
	}
	muts := s.Mutations(date, delta)
	if len(muts) == 0 {
		return nil
	}
	return s.repo.Apply(ctx, userID, muts)
}

// Summary loads the four periods containing date concurrently.
func (s *Service) Summary(ctx context.Context, userID string, date time.Time) (Summary, error) {
	if userID == "" {
		return Summary{}, ErrMissingUserID
	}

	keys := Keys(date, s.cal.WeekStart)
	periods := make(map[Bucket]Counters, len(Buckets))
	results := make([]Counters, len(Buckets))

	g, ctx := errgroup.WithContext(ctx)
	for i, b := range Buckets {
		g.Go(func() error {
			c, err := s.repo.Period(ctx, userID, b, keys[b])
			if err != nil {
				return err
			}
			results[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	for i, b := range Buckets {
		periods[b] = results[i]
	}

	return Summary{
		Date:  calendar.DayKey(date),
		Day:   Period{Key: keys[Daily], Counters: periods[Daily]},
		Week:  Period{Key: keys[Weekly], Counters: periods[Weekly]},
		Month: Period{Key: keys[Monthly], Counters: periods[Monthly]},
		Year:  Period{Key: keys[Yearly], Counters: periods[Yearly]},
	}, nil
}

// Bucket returns every period recorded in bucket.
func (s *Service) Bucket(ctx context.Context, userID string, bucket Bucket) (map[string]Counters, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.repo.Bucket(ctx, userID, bucket)
}

// Lifetime sums the yearly bucket into all-time totals.
func (s *Service) Lifetime(ctx context.Context, userID string) (Counters, error) {
	years, err := s.Bucket(ctx, userID, Yearly)
	if err != nil {
		return Counters{}, err
	}
	var total Counters
	for _, c := range years {
		total = total.Add(c)
	}
	return total, nil
}
