package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MiguelL1304/aquascape/internal/badge"
	"github.com/MiguelL1304/aquascape/internal/calendar"
	"github.com/MiguelL1304/aquascape/internal/category"
	"github.com/MiguelL1304/aquascape/internal/shared/clock"
	"github.com/MiguelL1304/aquascape/internal/shared/envconfig"
	"github.com/MiguelL1304/aquascape/internal/shared/idgen"
	"github.com/MiguelL1304/aquascape/internal/stats"
)

// StatsPlanner turns a delta on a date into bucket mutations.
type StatsPlanner interface {
	Mutations(date time.Time, delta stats.Delta) []stats.Mutation
}

// BadgeChecker runs the badge award pipeline for a user.
type BadgeChecker interface {
	Check(ctx context.Context, userID string) ([]badge.Badge, error)
}

// Result is a task change plus any badges it unlocked.
type Result struct {
	Task      Task          `json:"task"`
	NewBadges []badge.Badge `json:"new_badges"`
}

// Service orchestrates the domain operations for tasks.
type Service struct {
	repo    Repository
	planner StatsPlanner
	badges  BadgeChecker
	clock   clock.Clock
	ids     idgen.Generator
	logger  *slog.Logger
}

// NewService constructs a Service instance with the provided collaborators.
func NewService(repo Repository, planner StatsPlanner, badges BadgeChecker, clk clock.Clock, ids idgen.Generator, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	if planner == nil {
		return nil, errors.New("stats planner is required")
	}
	if clk == nil {
		return nil, errors.New("clock is required")
	}
	if ids == nil {
		return nil, errors.New("id generator is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, planner: planner, badges: badges, clock: clk, ids: ids, logger: logger}, nil
}

// Create registers a new one-off task. A task created already completed counts toward stats.
func (s *Service) Create(ctx context.Context, input CreateInput) (Result, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := envconfig.Validate(input); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	cat, err := category.Parse(input.Category)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	day, err := calendar.ParseDate(input.Date)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	now := s.clock.Now().UTC()
	t := Task{
		ID:              s.ids.NewID(),
		UserID:          input.UserID,
		Title:           input.Title,
		Category:        cat,
		Completed:       input.Completed,
		Recurrence:      []string{calendar.NoneRecurrence},
		Date:            calendar.DayKey(day),
		DurationMinutes: input.DurationMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if t.Completed {
		t.CompletedAt = &now
	}

	muts := s.planner.Mutations(day, t.Contribution())
	if err := s.repo.Create(ctx, t, muts); err != nil {
		return Result{}, err
	}
	return s.withBadges(ctx, t, muts), nil
}

// Get retrieves a single task.
func (s *Service) Get(ctx context.Context, userID, taskID string) (Task, error) {
	if userID == "" || taskID == "" {
		return Task{}, ErrNotFound
	}
	return s.repo.Get(ctx, userID, taskID)
}

// Exists reports whether taskID belongs to userID.
func (s *Service) Exists(ctx context.Context, userID, taskID string) (bool, error) {
	_, err := s.Get(ctx, userID, taskID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ListByDate returns the tasks scheduled on date (YYYY-MM-DD).
func (s *Service) ListByDate(ctx context.Context, userID, date string) ([]Task, error) {
	day, err := calendar.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	key := calendar.DayKey(day)
	return s.repo.ListByDateRange(ctx, userID, key, key)
}

// ListByMonth returns every task in month (YYYY-MM).
func (s *Service) ListByMonth(ctx context.Context, userID, month string) ([]Task, error) {
	first, err := calendar.ParseMonth(month)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	from, to := calendar.MonthRange(first)
	return s.repo.ListByDateRange(ctx, userID, calendar.DayKey(from), calendar.DayKey(to))
}

// Update edits a task. Editing a completed task moves its stats contribution.
func (s *Service) Update(ctx context.Context, userID, taskID string, patch PatchInput) (Result, error) {
	if userID == "" || taskID == "" {
		return Result{}, ErrNotFound
	}
	if patch.IsEmpty() {
		return Result{}, fmt.Errorf("%w: at least one field must be provided", ErrInvalidInput)
	}
	if err := envconfig.Validate(patch); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	var next Task
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
		if next.Title == "" {
			return Result{}, fmt.Errorf("%w: title must not be blank", ErrInvalidInput)
		}
	}
	if patch.Category != nil {
		cat, err := category.Parse(*patch.Category)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
		}
		next.Category = cat
	}
	if patch.Date != nil {
		day, err := calendar.ParseDate(*patch.Date)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
		}
		next.Date = calendar.DayKey(day)
	}

	now := s.clock.Now().UTC()
	var muts []stats.Mutation
	updated, err := s.repo.Update(ctx, userID, taskID, func(current Task) (Task, []stats.Mutation, error) {
		changed := current
		if patch.Title != nil {
			changed.Title = next.Title
		}
		if patch.Category != nil {
			changed.Category = next.Category
		}
		if patch.Date != nil {
			changed.Date = next.Date
		}
		if patch.DurationMinutes != nil {
			changed.DurationMinutes = *patch.DurationMinutes
		}
		changed.UpdatedAt = now

		m, err := s.transition(current, changed)
		muts = m
		return changed, m, err
	})
	if err != nil {
		return Result{}, err
	}
	return s.withBadges(ctx, updated, muts), nil
}

// SetCompleted marks a task complete or incomplete. Repeating the current state is a no-op.
func (s *Service) SetCompleted(ctx context.Context, userID, taskID string, completed bool) (Result, error) {
	if userID == "" || taskID == "" {
		return Result{}, ErrNotFound
	}

	now := s.clock.Now().UTC()
	var muts []stats.Mutation
	updated, err := s.repo.Update(ctx, userID, taskID, func(current Task) (Task, []stats.Mutation, error) {
		if current.Completed == completed {
			muts = nil
			return current, nil, nil
		}
		changed := current
		changed.Completed = completed
		changed.CompletedAt = nil
		if completed {
			changed.CompletedAt = &now
		}
		changed.UpdatedAt = now

		m, err := s.transition(current, changed)
		muts = m
		return changed, m, err
	})
	if err != nil {
		return Result{}, err
	}
	return s.withBadges(ctx, updated, muts), nil
}

// Delete removes a task; a completed task takes its stats contribution with it.
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	if userID == "" || taskID == "" {
		return ErrNotFound
	}
	_, err := s.repo.Delete(ctx, userID, taskID, s.RevertContribution)
	return err
}

// RevertContribution returns the mutations undoing current's stats contribution.
// Tasks with unparseable dates contribute nothing.
func (s *Service) RevertContribution(current Task) []stats.Mutation {
	day, err := current.Day()
	if err != nil {
		return nil
	}
	return s.planner.Mutations(day, current.Contribution().Negate())
}

func (s *Service) transition(before, after Task) ([]stats.Mutation, error) {
	if before.Contribution() == after.Contribution() && before.Date == after.Date {
		return nil, nil
	}
	oldDay, err := before.Day()
	if err != nil {
		return nil, fmt.Errorf("%w: stored date %q", ErrInvalidInput, before.Date)
	}
	newDay, err := after.Day()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	muts := s.planner.Mutations(oldDay, before.Contribution().Negate())
	return append(muts, s.planner.Mutations(newDay, after.Contribution())...), nil
}

// withBadges runs the award pipeline after changes that raised counters. Award failures
// are logged: the task write already committed and badges are re-evaluated on the next change.
func (s *Service) withBadges(ctx context.Context, t Task, muts []stats.Mutation) Result {
	res := Result{Task: t, NewBadges: []badge.Badge{}}
	if s.badges == nil || !raisesCounters(muts) {
		return res
	}
	awarded, err := s.badges.Check(ctx, t.UserID)
	if err != nil {
		s.logger.Warn("badge check failed", "userId", t.UserID, "taskId", t.ID, "error", err)
		return res
	}
	if len(awarded) > 0 {
		res.NewBadges = awarded
	}
	return res
}

func raisesCounters(muts []stats.Mutation) bool {
	for _, m := range muts {
		if m.Delta.TaskCount > 0 || m.Delta.Minutes > 0 {
			return true
		}
	}
	return false
}
