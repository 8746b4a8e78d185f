package recurrence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MiguelL1304/aquascape/internal/calendar"
	"github.com/MiguelL1304/aquascape/internal/category"
	"github.com/MiguelL1304/aquascape/internal/shared/clock"
	"github.com/MiguelL1304/aquascape/internal/shared/envconfig"
	"github.com/MiguelL1304/aquascape/internal/shared/idgen"
	"github.com/MiguelL1304/aquascape/internal/stats"
	"github.com/MiguelL1304/aquascape/internal/task"
)

// Reverter computes the stats mutations undoing a removed task's contribution.
type Reverter interface {
	RevertContribution(t task.Task) []stats.Mutation
}

// Service manages templates and keeps their task instances in step.
type Service struct {
	repo   Repository
	tasks  task.Repository
	revert Reverter
	clock  clock.Clock
	ids    idgen.Generator
	cal    calendar.Settings
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, tasks task.Repository, revert Reverter, clk clock.Clock, ids idgen.Generator, cal calendar.Settings, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	if tasks == nil {
		return nil, errors.New("task repo is required")
	}
	if revert == nil {
		return nil, errors.New("reverter is required")
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
	return &Service{repo: repo, tasks: tasks, revert: revert, clock: clk, ids: ids, cal: cal, logger: logger}, nil
}

// Create stores a template and expands it through the end of next month.
func (s *Service) Create(ctx context.Context, input CreateInput) (Change, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := envconfig.Validate(input); err != nil {
		return Change{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	cat, err := category.Parse(input.Category)
	if err != nil {
		return Change{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	weekdays, err := parseWeekdays(input.Weekdays)
	if err != nil {
		return Change{}, err
	}

	now := s.clock.Now().UTC()
	today := s.cal.Today(now)
	start := today
	if input.StartDate != "" {
		start, err = calendar.ParseDate(input.StartDate)
		if err != nil {
			return Change{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
		}
		if earliest := calendar.FirstOfMonth(today); start.Before(earliest) {
			return Change{}, fmt.Errorf("%w: start_date must be on or after %s", ErrInvalidInput, calendar.DayKey(earliest))
		}
	}

	tpl := Template{
		ID:              s.ids.NewID(),
		UserID:          input.UserID,
		Title:           input.Title,
		Category:        cat,
		Weekdays:        weekdays,
		DurationMinutes: input.DurationMinutes,
		StartDate:       calendar.DayKey(start),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, tpl); err != nil {
		return Change{}, err
	}

	tpl, created, err := s.extend(ctx, tpl, start, calendar.EndOfNextMonth(today))
	if err != nil {
		return Change{}, err
	}
	return Change{Template: tpl, Created: created}, nil
}

// Get loads a single template.
func (s *Service) Get(ctx context.Context, userID, templateID string) (Template, error) {
	if userID == "" || templateID == "" {
		return Template{}, ErrNotFound
	}
	return s.repo.Get(ctx, userID, templateID)
}

// List returns the user's templates.
func (s *Service) List(ctx context.Context, userID string) ([]Template, error) {
	return s.repo.List(ctx, userID)
}

// Update rewrites a template. Uncompleted instances from today on are rebuilt with the new
// shape; completed instances and past days are left as they are.
func (s *Service) Update(ctx context.Context, userID, templateID string, patch PatchInput) (Change, error) {
	if userID == "" || templateID == "" {
		return Change{}, ErrNotFound
	}
	if patch.IsEmpty() {
		return Change{}, fmt.Errorf("%w: at least one field must be provided", ErrInvalidInput)
	}
	if err := envconfig.Validate(patch); err != nil {
		return Change{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	tpl, err := s.repo.Get(ctx, userID, templateID)
	if err != nil {
		return Change{}, err
	}
	if patch.Title != nil {
		tpl.Title = strings.TrimSpace(*patch.Title)
		if tpl.Title == "" {
			return Change{}, fmt.Errorf("%w: title must not be blank", ErrInvalidInput)
		}
	}
	if patch.Category != nil {
		cat, err := category.Parse(*patch.Category)
		if err != nil {
			return Change{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
		}
		tpl.Category = cat
	}
	if patch.Weekdays != nil {
		weekdays, err := parseWeekdays(*patch.Weekdays)
		if err != nil {
			return Change{}, err
		}
		tpl.Weekdays = weekdays
	}
	if patch.DurationMinutes != nil {
		tpl.DurationMinutes = *patch.DurationMinutes
	}

	now := s.clock.Now().UTC()
	today := s.cal.Today(now)
	todayKey := calendar.DayKey(today)

	instances, err := s.tasks.ListByRecurrence(ctx, userID, templateID)
	if err != nil {
		return Change{}, fmt.Errorf("list instances: %w", err)
	}
	var stale []string
	for _, inst := range instances {
		if !inst.Completed && inst.Date >= todayKey {
			stale = append(stale, inst.ID)
		}
	}
	removed, err := s.tasks.DeleteMany(ctx, userID, stale, s.revert.RevertContribution)
	if err != nil {
		return Change{}, fmt.Errorf("remove stale instances: %w", err)
	}

	through := calendar.EndOfNextMonth(today)
	if prev, err := calendar.ParseDate(tpl.MaterializedThrough); err == nil && prev.After(through) {
		through = prev
	}
	tpl.UpdatedAt = now
	tpl, created, err := s.extend(ctx, tpl, today, through)
	if err != nil {
		return Change{}, err
	}
	return Change{Template: tpl, Created: created, Removed: removed}, nil
}

// Delete removes a template and every instance; completed instances take their stats
// contribution with them.
func (s *Service) Delete(ctx context.Context, userID, templateID string) (Change, error) {
	if userID == "" || templateID == "" {
		return Change{}, ErrNotFound
	}
	tpl, err := s.repo.Get(ctx, userID, templateID)
	if err != nil {
		return Change{}, err
	}

	instances, err := s.tasks.ListByRecurrence(ctx, userID, templateID)
	if err != nil {
		return Change{}, fmt.Errorf("list instances: %w", err)
	}
	ids := make([]string, len(instances))
	for i, inst := range instances {
		ids[i] = inst.ID
	}
	removed, err := s.tasks.DeleteMany(ctx, userID, ids, s.revert.RevertContribution)
	if err != nil {
		return Change{}, fmt.Errorf("remove instances: %w", err)
	}
	if err := s.repo.Delete(ctx, userID, templateID); err != nil {
		return Change{}, err
	}
	return Change{Template: tpl, Removed: removed}, nil
}

// Materialize expands every template of userID up to through, which may not pass the end
// of next month. Dates already expanded are skipped, so a task the user deleted is not
// brought back.
func (s *Service) Materialize(ctx context.Context, userID string, through time.Time) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := s.checkHorizon(through); err != nil {
		return 0, err
	}
	templates, err := s.repo.List(ctx, userID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, tpl := range templates {
		_, created, err := s.materializeTemplate(ctx, tpl, through)
		if err != nil {
			return total, fmt.Errorf("materialize %s: %w", tpl.ID, err)
		}
		total += created
	}
	return total, nil
}

// MaterializeAll runs the monthly rollover for every user. A failing template is logged
// and skipped.
func (s *Service) MaterializeAll(ctx context.Context, through time.Time) (RolloverReport, error) {
	var report RolloverReport
	if err := s.checkHorizon(through); err != nil {
		return report, err
	}
	err := s.repo.Each(ctx, func(tpl Template) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Templates++
		_, created, err := s.materializeTemplate(ctx, tpl, through)
		if err != nil {
			report.Failed++
			s.logger.Error("recurrence rollover failed",
				"userId", tpl.UserID,
				"recurrenceId", tpl.ID,
				"error", err,
			)
			return nil
		}
		report.Created += created
		return nil
	})
	return report, err
}

func (s *Service) checkHorizon(through time.Time) error {
	horizon := calendar.EndOfNextMonth(s.cal.Today(s.clock.Now()))
	if calendar.Date(through).After(horizon) {
		return fmt.Errorf("%w: through must be on or before %s", ErrInvalidInput, calendar.DayKey(horizon))
	}
	return nil
}

func (s *Service) materializeTemplate(ctx context.Context, tpl Template, through time.Time) (Template, int, error) {
	from := time.Time{}
	if prev, err := calendar.ParseDate(tpl.MaterializedThrough); err == nil {
		if !prev.Before(calendar.Date(through)) {
			return tpl, 0, nil
		}
		from = prev.AddDate(0, 0, 1)
	}
	return s.extend(ctx, tpl, from, through)
}

// extend writes the instances in [from, through] and records the new horizon.
func (s *Service) extend(ctx context.Context, tpl Template, from, through time.Time) (Template, int, error) {
	now := s.clock.Now().UTC()
	instances, err := tpl.Expand(from, through, now)
	if err != nil {
		return tpl, 0, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	created, err := s.tasks.CreateMany(ctx, tpl.UserID, instances)
	if err != nil {
		return tpl, created, fmt.Errorf("write instances: %w", err)
	}

	tpl.MaterializedThrough = calendar.DayKey(through)
	if err := s.repo.Update(ctx, tpl); err != nil {
		return tpl, created, err
	}
	return tpl, created, nil
}

func parseWeekdays(names []string) ([]string, error) {
	weekdays, err := calendar.ParseWeekdays(names)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	if len(weekdays) == 0 {
		return nil, fmt.Errorf("%w: a recurrence needs at least one weekday", ErrInvalidInput)
	}
	return calendar.WeekdayNames(weekdays), nil
}
