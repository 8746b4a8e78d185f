package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MiguelL1304/aquascape/internal/calendar"
	"github.com/MiguelL1304/aquascape/internal/recurrence"
	"github.com/MiguelL1304/aquascape/internal/shared/clock"
)

// Scheduler wraps cron-based jobs. Specs carry a leading seconds field.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a Scheduler evaluating specs in loc.
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// Schedule registers job under spec.
func (s *Scheduler) Schedule(spec string, job func()) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, job)
}

// Next reports when the entry fires next; zero before Start.
func (s *Scheduler) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Materializer expands every user's recurrences up to a date.
type Materializer interface {
	MaterializeAll(ctx context.Context, through time.Time) (recurrence.RolloverReport, error)
}

// Rollover extends every recurrence through the end of the month after today.
type Rollover struct {
	materializer Materializer
	clock        clock.Clock
	cal          calendar.Settings
	logger       *slog.Logger
	timeout      time.Duration
}

// NewRollover constructs the monthly rollover job.
func NewRollover(materializer Materializer, clk clock.Clock, cal calendar.Settings, logger *slog.Logger, timeout time.Duration) (*Rollover, error) {
	if materializer == nil {
		return nil, errors.New("materializer is required")
	}
	if clk == nil {
		return nil, errors.New("clock is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Rollover{materializer: materializer, clock: clk, cal: cal, logger: logger, timeout: timeout}, nil
}

// Run performs one rollover pass.
func (r *Rollover) Run(ctx context.Context) (recurrence.RolloverReport, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	through := calendar.EndOfNextMonth(r.cal.Today(r.clock.Now()))
	started := time.Now()
	report, err := r.materializer.MaterializeAll(ctx, through)
	attrs := []any{
		"through", calendar.DayKey(through),
		"templates", report.Templates,
		"created", report.Created,
		"failed", report.Failed,
		"duration", time.Since(started).String(),
	}
	if err != nil {
		r.logger.Error("recurrence rollover aborted", append(attrs, "error", err)...)
		return report, err
	}
	r.logger.Info("recurrence rollover finished", attrs...)
	return report, nil
}

// Job adapts Run to a cron callback.
func (r *Rollover) Job(ctx context.Context) func() {
	return func() {
		_, _ = r.Run(ctx)
	}
}
