package profile

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps profiles in process memory for local development and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]Profile
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]Profile)}
}

func (r *MemoryRepository) Create(_ context.Context, p Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[p.UserID]; exists {
		return ErrConflict
	}
	r.store[p.UserID] = clone(p)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, userID string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.store[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return clone(p), nil
}

func (r *MemoryRepository) SetAvatar(_ context.Context, userID, avatar string, now time.Time) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.store[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	p.Avatar = avatar
	p.UpdatedAt = now
	r.store[userID] = p
	return clone(p), nil
}

func (r *MemoryRepository) AwardBadges(_ context.Context, userID string, badges []EarnedBadge) ([]EarnedBadge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.store[userID]
	if !ok {
		return nil, ErrNotFound
	}

	var awarded []EarnedBadge
	for _, b := range badges {
		if p.HasBadge(b.ID) {
			continue
		}
		p.Badges = append(p.Badges, b)
		awarded = append(awarded, b)
	}
	r.store[userID] = p
	return awarded, nil
}

func (r *MemoryRepository) Purchase(_ context.Context, userID string, item Purchase, now time.Time) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.store[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	if err := applyPurchase(&p, item, now); err != nil {
		return Profile{}, err
	}
	r.store[userID] = p
	return clone(p), nil
}

// AddSeashells adds amount to the balance. The in-memory focus store calls it while holding
// its own lock so a session and its reward are stored together.
func (r *MemoryRepository) AddSeashells(_ context.Context, userID string, amount int, now time.Time) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.store[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	p.Seashells += amount
	p.UpdatedAt = now
	r.store[userID] = p
	return clone(p), nil
}

func clone(p Profile) Profile {
	out := p
	out.Inventory.Fish = append([]string(nil), p.Inventory.Fish...)
	out.Inventory.Decorations = append([]string(nil), p.Inventory.Decorations...)
	out.Badges = append([]EarnedBadge(nil), p.Badges...)
	return out
}
