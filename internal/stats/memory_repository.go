package stats

import (
	"context"
	"sync"
)

// MemoryRepository is the in-memory Repository. Sibling in-memory stores call Apply
// directly so their own write and the stats change land together.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]map[Bucket]map[string]Counters // userID -> bucket -> period key -> counters
}

// NewMemoryRepository returns an in-memory repository intended for local development and tests.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]map[Bucket]map[string]Counters)}
}

func (r *MemoryRepository) Apply(_ context.Context, userID string, muts []Mutation) error {
	if userID == "" {
		return ErrMissingUserID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	buckets, ok := r.store[userID]
	if !ok {
		buckets = make(map[Bucket]map[string]Counters)
		r.store[userID] = buckets
	}

	for bucket, periods := range Coalesce(muts) {
		stored, ok := buckets[bucket]
		if !ok {
			stored = make(map[string]Counters)
			buckets[bucket] = stored
		}
		for key, inc := range periods {
			stored[key] = stored[key].Add(inc)
		}
	}
	return nil
}

func (r *MemoryRepository) Period(_ context.Context, userID string, bucket Bucket, key string) (Counters, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store[userID][bucket][key].Clone(), nil
}

func (r *MemoryRepository) Bucket(_ context.Context, userID string, bucket Bucket) (map[string]Counters, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	periods := r.store[userID][bucket]
	out := make(map[string]Counters, len(periods))
	for key, c := range periods {
		out[key] = c.Clone()
	}
	return out, nil
}
