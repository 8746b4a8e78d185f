package task

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/MiguelL1304/aquascape/internal/stats"
)

// MemoryRepository keeps tasks in process memory and applies their stats changes to the
// in-memory stats store while holding its own lock.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]map[string]Task // userID -> taskID -> Task
	stats *stats.MemoryRepository
}

// NewMemoryRepository returns an in-memory repository intended for local development and tests.
func NewMemoryRepository(statsRepo *stats.MemoryRepository) (*MemoryRepository, error) {
	if statsRepo == nil {
		return nil, errors.New("stats repository is required")
	}
	return &MemoryRepository{
		store: make(map[string]map[string]Task),
		stats: statsRepo,
	}, nil
}

func (r *MemoryRepository) userStore(userID string) map[string]Task {
	userStore, ok := r.store[userID]
	if !ok {
		userStore = make(map[string]Task)
		r.store[userID] = userStore
	}
	return userStore
}

func (r *MemoryRepository) Create(ctx context.Context, t Task, muts []stats.Mutation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userStore := r.userStore(t.UserID)
	if _, exists := userStore[t.ID]; exists {
		return ErrConflict
	}
	if err := r.applyStats(ctx, t.UserID, muts); err != nil {
		return err
	}
	userStore[t.ID] = clone(t)
	return nil
}

func (r *MemoryRepository) CreateMany(_ context.Context, userID string, tasks []Task) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userStore := r.userStore(userID)
	created := 0
	for _, t := range tasks {
		if _, exists := userStore[t.ID]; exists {
			continue
		}
		userStore[t.ID] = clone(t)
		created++
	}
	return created, nil
}

func (r *MemoryRepository) Get(_ context.Context, userID, taskID string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.store[userID][taskID]
	if !ok {
		return Task{}, ErrNotFound
	}
	return clone(t), nil
}

func (r *MemoryRepository) ListByDateRange(_ context.Context, userID, from, to string) ([]Task, error) {
	r.mu.RLock()
	out := make([]Task, 0)
	for _, t := range r.store[userID] {
		if t.Date >= from && t.Date <= to {
			out = append(out, clone(t))
		}
	}
	r.mu.RUnlock()

	sortTasks(out)
	return out, nil
}

func (r *MemoryRepository) ListByRecurrence(_ context.Context, userID, recurrenceID string) ([]Task, error) {
	r.mu.RLock()
	out := make([]Task, 0)
	for _, t := range r.store[userID] {
		if recurrenceID != "" && t.RecurrenceID == recurrenceID {
			out = append(out, clone(t))
		}
	}
	r.mu.RUnlock()

	sortTasks(out)
	return out, nil
}

func (r *MemoryRepository) Update(ctx context.Context, userID, taskID string, fn Mutator) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.store[userID][taskID]
	if !ok {
		return Task{}, ErrNotFound
	}
	next, muts, err := fn(clone(current))
	if err != nil {
		return Task{}, err
	}
	if err := r.applyStats(ctx, userID, muts); err != nil {
		return Task{}, err
	}
	next.ID = current.ID
	next.UserID = current.UserID
	r.store[userID][taskID] = clone(next)
	return clone(next), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, userID, taskID string, fn Revert) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.store[userID][taskID]
	if !ok {
		return Task{}, ErrNotFound
	}
	if fn != nil {
		if err := r.applyStats(ctx, userID, fn(clone(current))); err != nil {
			return Task{}, err
		}
	}
	delete(r.store[userID], taskID)
	return current, nil
}

func (r *MemoryRepository) DeleteMany(ctx context.Context, userID string, taskIDs []string, fn Revert) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userStore := r.store[userID]
	var muts []stats.Mutation
	var found []string
	for _, id := range taskIDs {
		t, ok := userStore[id]
		if !ok {
			continue
		}
		found = append(found, id)
		if fn != nil {
			muts = append(muts, fn(clone(t))...)
		}
	}
	if err := r.applyStats(ctx, userID, muts); err != nil {
		return 0, err
	}
	for _, id := range found {
		delete(userStore, id)
	}
	return len(found), nil
}

func (r *MemoryRepository) applyStats(ctx context.Context, userID string, muts []stats.Mutation) error {
	if len(muts) == 0 {
		return nil
	}
	return r.stats.Apply(ctx, userID, muts)
}

func sortTasks(tasks []Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Date != tasks[j].Date {
			return tasks[i].Date < tasks[j].Date
		}
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}

func clone(t Task) Task {
	out := t
	out.Recurrence = append([]string(nil), t.Recurrence...)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		out.CompletedAt = &at
	}
	return out
}
