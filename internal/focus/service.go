package focus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MiguelL1304/aquascape/internal/calendar"
	"github.com/MiguelL1304/aquascape/internal/shared/clock"
	"github.com/MiguelL1304/aquascape/internal/shared/envconfig"
	"github.com/MiguelL1304/aquascape/internal/shared/idgen"
)

// Service records focus sessions and pays out seashells.
type Service struct {
	repo  Repository
	tasks TaskLookup
	clock clock.Clock
	ids   idgen.Generator
	cal   calendar.Settings
	rate  int
}

// NewService constructs a Service. tasks may be nil to skip task link checks.
func NewService(repo Repository, tasks TaskLookup, clk clock.Clock, ids idgen.Generator, cal calendar.Settings, seashellsPerMinute int) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	if clk == nil {
		return nil, errors.New("clock is required")
	}
	if ids == nil {
		return nil, errors.New("id generator is required")
	}
	if seashellsPerMinute <= 0 {
		return nil, errors.New("seashells per minute must be positive")
	}
	return &Service{repo: repo, tasks: tasks, clock: clk, ids: ids, cal: cal, rate: seashellsPerMinute}, nil
}

// Complete stores a finished session and credits its reward.
func (s *Service) Complete(ctx context.Context, input CompleteInput) (Result, error) {
	if err := envconfig.Validate(input); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	now := s.clock.Now().UTC()
	started := now.Add(-time.Duration(input.Minutes) * time.Minute)
	if input.StartedAt != nil {
		started = input.StartedAt.UTC()
		if started.After(now) {
			return Result{}, fmt.Errorf("%w: started_at is in the future", ErrInvalidInput)
		}
	}

	if input.TaskID != "" && s.tasks != nil {
		ok, err := s.tasks.Exists(ctx, input.UserID, input.TaskID)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return Result{}, fmt.Errorf("%w: task %s does not exist", ErrInvalidInput, input.TaskID)
		}
	}

	session := Session{
		ID:        s.ids.NewID(),
		UserID:    input.UserID,
		TaskID:    input.TaskID,
		Minutes:   input.Minutes,
		Seashells: Reward(input.Minutes, s.rate),
		StartedAt: started,
		EndedAt:   started.Add(time.Duration(input.Minutes) * time.Minute),
		CreatedAt: now,
	}
	balance, err := s.repo.Record(ctx, session)
	if err != nil {
		return Result{}, err
	}
	return Result{Session: session, Balance: balance}, nil
}

// List returns the sessions started in month (YYYY-MM) in the configured timezone.
func (s *Service) List(ctx context.Context, userID, month string) ([]Session, error) {
	first, err := calendar.ParseMonth(month)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	from, to := s.cal.MonthInstants(first)
	return s.repo.ListByRange(ctx, userID, from, to)
}
