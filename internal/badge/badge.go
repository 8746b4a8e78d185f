package badge

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MiguelL1304/aquascape/internal/category"
	"github.com/MiguelL1304/aquascape/internal/profile"
	"github.com/MiguelL1304/aquascape/internal/shared/clock"
	"github.com/MiguelL1304/aquascape/internal/stats"
)

// RuleType identifies which accumulated counter a badge compares against.
type RuleType string

const (
	RuleTaskCount     RuleType = "task_count"
	RuleMinutesLogged RuleType = "minutes_logged"
	RuleCategoryCount RuleType = "category_count"
)

// Badge is a static achievement definition.
type Badge struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Rule        RuleType          `json:"rule"`
	Category    category.Category `json:"category,omitempty"`
	Threshold   int               `json:"threshold"`
}

// Current reads the counter this badge tracks from totals.
func (b Badge) Current(totals stats.Counters) int {
	switch b.Rule {
	case RuleTaskCount:
		return totals.TaskCount
	case RuleMinutesLogged:
		return totals.TimeLogged
	case RuleCategoryCount:
		return totals.Category(string(b.Category))
	default:
		return 0
	}
}

// Reached reports whether totals meet the threshold.
func (b Badge) Reached(totals stats.Counters) bool {
	return b.Threshold > 0 && b.Current(totals) >= b.Threshold
}

// Evaluate returns the catalog badges reached by totals that are not yet earned, in catalog order.
func Evaluate(catalog []Badge, totals stats.Counters, p profile.Profile) []Badge {
	var out []Badge
	for _, b := range catalog {
		if p.HasBadge(b.ID) {
			continue
		}
		if b.Reached(totals) {
			out = append(out, b)
		}
	}
	return out
}

// Progress is the per-badge view shown to users.
type Progress struct {
	Badge    Badge      `json:"badge"`
	Current  int        `json:"current"`
	Percent  int        `json:"progress_percent"`
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

// ProgressFor computes progress for every catalog badge. Earned badges stay earned
// even if the counters have since dropped.
func ProgressFor(catalog []Badge, totals stats.Counters, p profile.Profile) []Progress {
	earned := make(map[string]time.Time, len(p.Badges))
	for _, b := range p.Badges {
		earned[b.ID] = b.EarnedAt
	}

	out := make([]Progress, 0, len(catalog))
	for _, b := range catalog {
		current := b.Current(totals)
		percent := 0
		if b.Threshold > 0 {
			percent = (current * 100) / b.Threshold
		}
		if percent > 100 {
			percent = 100
		}
		if percent < 0 {
			percent = 0
		}

		item := Progress{Badge: b, Current: current, Percent: percent}
		if at, ok := earned[b.ID]; ok {
			item.Earned = true
			item.EarnedAt = &at
			item.Percent = 100
		}
		out = append(out, item)
	}
	return out
}

// StatsReader provides all-time totals.
type StatsReader interface {
	Lifetime(ctx context.Context, userID string) (stats.Counters, error)
}

// ProfileStore reads profiles and records earned badges.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (profile.Profile, error)
	AwardBadges(ctx context.Context, userID string, badges []profile.EarnedBadge) ([]profile.EarnedBadge, error)
}

// Service runs the award pipeline: totals -> thresholds -> earned list.
type Service struct {
	stats    StatsReader
	profiles ProfileStore
	clock    clock.Clock
	catalog  []Badge
}

// NewService constructs a Service over the static catalog.
func NewService(statsReader StatsReader, profiles ProfileStore, clk clock.Clock) (*Service, error) {
	if statsReader == nil {
		return nil, errors.New("stats reader is required")
	}
	if profiles == nil {
		return nil, errors.New("profile store is required")
	}
	if clk == nil {
		return nil, errors.New("clock is required")
	}
	return &Service{stats: statsReader, profiles: profiles, clock: clk, catalog: Catalog()}, nil
}

func (s *Service) load(ctx context.Context, userID string) (stats.Counters, profile.Profile, error) {
	var (
		totals stats.Counters
		p      profile.Profile
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.stats.Lifetime(ctx, userID)
		if err != nil {
			return err
		}
		totals = t
		return nil
	})
	g.Go(func() error {
		loaded, err := s.profiles.Get(ctx, userID)
		if err != nil {
			return err
		}
		p = loaded
		return nil
	})
	if err := g.Wait(); err != nil {
		return stats.Counters{}, profile.Profile{}, err
	}
	return totals, p, nil
}

// Check awards every newly reached badge and returns those actually stored.
func (s *Service) Check(ctx context.Context, userID string) ([]Badge, error) {
	totals, p, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates := Evaluate(s.catalog, totals, p)
	if len(candidates) == 0 {
		return nil, nil
	}

	now := s.clock.Now().UTC()
	earned := make([]profile.EarnedBadge, len(candidates))
	for i, b := range candidates {
		earned[i] = profile.EarnedBadge{ID: b.ID, EarnedAt: now}
	}

	stored, err := s.profiles.AwardBadges(ctx, userID, earned)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Badge, len(candidates))
	for _, b := range candidates {
		byID[b.ID] = b
	}
	out := make([]Badge, 0, len(stored))
	for _, e := range stored {
		out = append(out, byID[e.ID])
	}
	return out, nil
}

// Progress reports every badge's progress for userID.
func (s *Service) Progress(ctx context.Context, userID string) ([]Progress, error) {
	totals, p, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ProgressFor(s.catalog, totals, p), nil
}
