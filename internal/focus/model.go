package focus

import (
	"context"
	"errors"
	"time"
)

// Session is a finished focus-timer run.
type Session struct {
	ID        string    `json:"id" firestore:"-"`
	UserID    string    `json:"user_id" firestore:"user_id"`
	TaskID    string    `json:"task_id,omitempty" firestore:"task_id"`
	Minutes   int       `json:"minutes" firestore:"minutes"`
	Seashells int       `json:"seashells" firestore:"seashells"`
	StartedAt time.Time `json:"started_at" firestore:"started_at"`
	EndedAt   time.Time `json:"ended_at" firestore:"ended_at"`
	CreatedAt time.Time `json:"created_at" firestore:"created_at"`
}

// CompleteInput captures a finished session reported by the timer.
type CompleteInput struct {
	UserID  string `validate:"required"`
	TaskID  string
	Minutes int `validate:"min=1,max=1440"`
	// StartedAt defaults to Minutes before now.
	StartedAt *time.Time
}

// Result is a stored session and the balance after its reward.
type Result struct {
	Session Session `json:"session"`
	Balance int     `json:"balance"`
}

// Reward converts focused minutes into seashells: minutes times rate, at least one for
// any positive session.
func Reward(minutes, rate int) int {
	if minutes <= 0 || rate <= 0 {
		return 0
	}
	return max(minutes*rate, 1)
}

// Repository persists sessions together with the seashell credit they earn.
type Repository interface {
	// Record stores the session and adds its seashells to the owner's profile in one
	// atomic step, returning the new balance.
	Record(ctx context.Context, s Session) (int, error)
	// ListByRange returns sessions with StartedAt in [from, to), oldest first.
	ListByRange(ctx context.Context, userID string, from, to time.Time) ([]Session, error)
}

// TaskLookup confirms a linked task exists.
type TaskLookup interface {
	Exists(ctx context.Context, userID, taskID string) (bool, error)
}

var (
	// ErrInvalidInput indicates the provided data failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict indicates a duplicate identifier collision.
	ErrConflict = errors.New("session already exists")
)
