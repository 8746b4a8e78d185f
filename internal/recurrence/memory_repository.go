package recurrence

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	store map[string]map[string]Template // userID -> templateID -> Template
}

// NewMemoryRepository returns an in-memory repository intended for local development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{store: make(map[string]map[string]Template)}
}

func (r *memoryRepository) Create(_ context.Context, t Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userStore, ok := r.store[t.UserID]
	if !ok {
		userStore = make(map[string]Template)
		r.store[t.UserID] = userStore
	}
	if _, exists := userStore[t.ID]; exists {
		return ErrConflict
	}
	userStore[t.ID] = clone(t)
	return nil
}

func (r *memoryRepository) Get(_ context.Context, userID, templateID string) (Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.store[userID][templateID]
	if !ok {
		return Template{}, ErrNotFound
	}
	return clone(t), nil
}

func (r *memoryRepository) List(_ context.Context, userID string) ([]Template, error) {
	r.mu.RLock()
	out := make([]Template, 0, len(r.store[userID]))
	for _, t := range r.store[userID] {
		out = append(out, clone(t))
	}
	r.mu.RUnlock()

	sortTemplates(out)
	return out, nil
}

func (r *memoryRepository) Each(_ context.Context, fn func(Template) error) error {
	r.mu.RLock()
	var all []Template
	for _, userStore := range r.store {
		for _, t := range userStore {
			all = append(all, clone(t))
		}
	}
	r.mu.RUnlock()

	sortTemplates(all)
	for _, t := range all {
		if err := fn(t); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryRepository) Update(_ context.Context, t Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[t.UserID][t.ID]; !ok {
		return ErrNotFound
	}
	r.store[t.UserID][t.ID] = clone(t)
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, userID, templateID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[userID][templateID]; !ok {
		return ErrNotFound
	}
	delete(r.store[userID], templateID)
	return nil
}

func sortTemplates(templates []Template) {
	sort.Slice(templates, func(i, j int) bool {
		if !templates[i].CreatedAt.Equal(templates[j].CreatedAt) {
			return templates[i].CreatedAt.Before(templates[j].CreatedAt)
		}
		return templates[i].ID < templates[j].ID
	})
}

func clone(t Template) Template {
	out := t
	out.Weekdays = append([]string(nil), t.Weekdays...)
	return out
}
