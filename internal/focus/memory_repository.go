package focus

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/MiguelL1304/aquascape/internal/profile"
)

// MemoryRepository keeps sessions in process memory and credits the in-memory profile store
// while holding its own lock.
type MemoryRepository struct {
	mu       sync.RWMutex
	store    map[string]map[string]Session // userID -> sessionID -> Session
	profiles *profile.MemoryRepository
}

// NewMemoryRepository returns an in-memory repository intended for local development and tests.
func NewMemoryRepository(profiles *profile.MemoryRepository) (*MemoryRepository, error) {
	if profiles == nil {
		return nil, errors.New("profile repository is required")
	}
	return &MemoryRepository{store: make(map[string]map[string]Session), profiles: profiles}, nil
}

func (r *MemoryRepository) Record(ctx context.Context, s Session) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userStore, ok := r.store[s.UserID]
	if !ok {
		userStore = make(map[string]Session)
		r.store[s.UserID] = userStore
	}
	if _, exists := userStore[s.ID]; exists {
		return 0, ErrConflict
	}

	p, err := r.profiles.AddSeashells(ctx, s.UserID, s.Seashells, s.CreatedAt)
	if err != nil {
		return 0, err
	}
	userStore[s.ID] = s
	return p.Seashells, nil
}

func (r *MemoryRepository) ListByRange(_ context.Context, userID string, from, to time.Time) ([]Session, error) {
	r.mu.RLock()
	out := make([]Session, 0)
	for _, s := range r.store[userID] {
		if !s.StartedAt.Before(from) && s.StartedAt.Before(to) {
			out = append(out, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}
