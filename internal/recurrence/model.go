package recurrence

import (
	"context"
	"errors"
	"time"

	"github.com/MiguelL1304/aquascape/internal/calendar"
	"github.com/MiguelL1304/aquascape/internal/category"
	"github.com/MiguelL1304/aquascape/internal/task"
)

// Template is a task shape repeated on a set of weekdays from StartDate onward.
type Template struct {
	ID              string            `json:"id" firestore:"-"`
	UserID          string            `json:"user_id" firestore:"user_id"`
	Title           string            `json:"title" firestore:"title"`
	Category        category.Category `json:"category" firestore:"category"`
	Weekdays        []string          `json:"weekdays" firestore:"weekdays"`
	DurationMinutes int               `json:"duration_minutes" firestore:"duration_minutes"`
	StartDate       string            `json:"start_date" firestore:"start_date"`
	// MaterializedThrough is the last date already expanded into tasks ("" when none).
	MaterializedThrough string    `json:"materialized_through" firestore:"materialized_through"`
	CreatedAt           time.Time `json:"created_at" firestore:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" firestore:"updated_at"`
}

// Expand builds the task instances falling on the template's weekdays within [from, through],
// never before StartDate. Instance ids are derived from the template id and date.
func (t Template) Expand(from, through time.Time, now time.Time) ([]task.Task, error) {
	start, err := calendar.ParseDate(t.StartDate)
	if err != nil {
		return nil, err
	}
	weekdays, err := calendar.ParseWeekdays(t.Weekdays)
	if err != nil {
		return nil, err
	}
	if from.Before(start) {
		from = start
	}

	dates := calendar.DatesOnWeekdays(from, through, weekdays)
	out := make([]task.Task, 0, len(dates))
	for _, d := range dates {
		out = append(out, task.Task{
			ID:              task.InstanceID(t.ID, d),
			UserID:          t.UserID,
			Title:           t.Title,
			Category:        t.Category,
			Recurrence:      calendar.WeekdayNames(weekdays),
			Date:            calendar.DayKey(d),
			DurationMinutes: t.DurationMinutes,
			RecurrenceID:    t.ID,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	return out, nil
}

// CreateInput captures the data required to create a template.
type CreateInput struct {
	UserID          string   `validate:"required"`
	Title           string   `validate:"required,max=120"`
	Category        string   `validate:"required"`
	Weekdays        []string `validate:"required,min=1,max=7"`
	DurationMinutes int      `validate:"min=0,max=1440"`
	// StartDate defaults to today.
	StartDate string
}

// PatchInput describes the mutable fields of a template; nil means unchanged.
type PatchInput struct {
	Title           *string `validate:"omitempty,min=1,max=120"`
	Category        *string
	Weekdays        *[]string `validate:"omitempty,min=1,max=7"`
	DurationMinutes *int      `validate:"omitempty,min=0,max=1440"`
}

// IsEmpty reports whether the patch changes nothing.
func (p PatchInput) IsEmpty() bool {
	return p.Title == nil && p.Category == nil && p.Weekdays == nil && p.DurationMinutes == nil
}

// Change reports what a template write did to its task instances.
type Change struct {
	Template Template `json:"template"`
	Created  int      `json:"created"`
	Removed  int      `json:"removed"`
}

// RolloverReport summarises a materialization pass over every user.
type RolloverReport struct {
	Templates int `json:"templates"`
	Created   int `json:"created"`
	Failed    int `json:"failed"`
}

// Repository persists recurrence templates.
type Repository interface {
	Create(ctx context.Context, t Template) error
	Get(ctx context.Context, userID, templateID string) (Template, error)
	List(ctx context.Context, userID string) ([]Template, error)
	// Each visits every template of every user.
	Each(ctx context.Context, fn func(Template) error) error
	Update(ctx context.Context, t Template) error
	Delete(ctx context.Context, userID, templateID string) error
}

var (
	// ErrNotFound indicates the requested template does not exist for the user.
	ErrNotFound = errors.New("recurrence not found")
	// ErrConflict indicates a duplicate identifier collision.
	ErrConflict = errors.New("recurrence already exists")
	// ErrInvalidInput indicates the provided data failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
