package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MiguelL1304/aquascape/internal/calendar"
	"github.com/MiguelL1304/aquascape/internal/category"
	"github.com/MiguelL1304/aquascape/internal/stats"
)

// Task is a single dated to-do item.
type Task struct {
	ID              string            `json:"id" firestore:"-"`
	UserID          string            `json:"user_id" firestore:"user_id"`
	Title           string            `json:"title" firestore:"title"`
	Category        category.Category `json:"category" firestore:"category"`
	Completed       bool              `json:"completed" firestore:"completed"`
	Recurrence      []string          `json:"recurrence" firestore:"recurrence"`
	Date            string            `json:"date" firestore:"date"`
	DurationMinutes int               `json:"duration_minutes" firestore:"duration_minutes"`
	RecurrenceID    string            `json:"recurrence_id,omitempty" firestore:"recurrence_id"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty" firestore:"completed_at"`
	CreatedAt       time.Time         `json:"created_at" firestore:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" firestore:"updated_at"`
}

// Day parses the task's calendar date.
func (t Task) Day() (time.Time, error) {
	return calendar.ParseDate(t.Date)
}

// Contribution is what the task currently adds to its date's stats buckets.
func (t Task) Contribution() stats.Delta {
	if !t.Completed {
		return stats.Delta{}
	}
	return stats.CompletionDelta(t.DurationMinutes, string(t.Category))
}

// InstanceID derives the deterministic id of a recurrence instance on date.
func InstanceID(recurrenceID string, date time.Time) string {
	return recurrenceID + "_" + strings.ReplaceAll(calendar.DayKey(date), "-", "")
}

// CreateInput captures the data required to create a one-off task.
type CreateInput struct {
	UserID          string `validate:"required"`
	Title           string `validate:"required,max=120"`
	Category        string `validate:"required"`
	Date            string `validate:"required"`
	DurationMinutes int    `validate:"min=0,max=1440"`
	Completed       bool
}

// PatchInput describes the mutable fields of a task; nil means unchanged.
type PatchInput struct {
	Title           *string `validate:"omitempty,min=1,max=120"`
	Category        *string
	Date            *string
	DurationMinutes *int `validate:"omitempty,min=0,max=1440"`
}

// IsEmpty reports whether the patch changes nothing.
func (p PatchInput) IsEmpty() bool {
	return p.Title == nil && p.Category == nil && p.Date == nil && p.DurationMinutes == nil
}

// Mutator receives the stored task and returns its replacement together with the stats
// mutations the change implies. Repositories run it atomically with the write.
type Mutator func(current Task) (Task, []stats.Mutation, error)

// Revert computes the stats mutations that undo a task being removed.
type Revert func(current Task) []stats.Mutation

// Repository encapsulates persistence for tasks.
type Repository interface {
	Create(ctx context.Context, t Task, muts []stats.Mutation) error
	// CreateMany inserts tasks whose ids are not yet taken and reports how many were written.
	CreateMany(ctx context.Context, userID string, tasks []Task) (int, error)
	Get(ctx context.Context, userID, taskID string) (Task, error)
	// ListByDateRange returns tasks dated within [from, to] (YYYY-MM-DD, inclusive), ordered by date.
	ListByDateRange(ctx context.Context, userID, from, to string) ([]Task, error)
	ListByRecurrence(ctx context.Context, userID, recurrenceID string) ([]Task, error)
	Update(ctx context.Context, userID, taskID string, fn Mutator) (Task, error)
	Delete(ctx context.Context, userID, taskID string, fn Revert) (Task, error)
	// DeleteMany removes the listed tasks, ignoring ids that no longer exist.
	DeleteMany(ctx context.Context, userID string, taskIDs []string, fn Revert) (int, error)
}

var (
	// ErrNotFound indicates the requested task does not exist for the user.
	ErrNotFound = errors.New("task not found")
	// ErrConflict indicates a duplicate identifier collision.
	ErrConflict = errors.New("task already exists")
	// ErrInvalidInput indicates the provided data failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
