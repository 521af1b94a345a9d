package memory

import (
	"context"
	"sync"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/repo"
)

// RefreshRegistry keeps refresh-token entries in process memory. It does not
// survive restarts and is not shared between instances; use the redis
// registry for that.
type RefreshRegistry struct {
	mu         sync.Mutex
	entries    map[string]time.Time
	now        func() time.Time
	lastSweep  time.Time
	sweepEvery time.Duration
}

func NewRefreshRegistry() *RefreshRegistry {
	return &RefreshRegistry{
		entries:    make(map[string]time.Time),
		now:        time.Now,
		lastSweep:  time.Now(),
		sweepEvery: 10 * time.Minute,
	}
}

// WithClock replaces the time source; used by tests.
func (r *RefreshRegistry) WithClock(now func() time.Time) *RefreshRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
	r.lastSweep = now()
	return r
}

func (r *RefreshRegistry) Insert(_ context.Context, userID, tokenID string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)
	if !expiresAt.After(now) {
		return nil
	}
	r.entries[repo.RegistryKey(userID, tokenID)] = expiresAt
	return nil
}

func (r *RefreshRegistry) Validate(_ context.Context, userID, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.liveLocked(repo.RegistryKey(userID, tokenID)) {
		return customErrors.ErrInvalidToken
	}
	return nil
}

func (r *RefreshRegistry) Invalidate(_ context.Context, userID, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, repo.RegistryKey(userID, tokenID))
	return nil
}

func (r *RefreshRegistry) Consume(_ context.Context, userID, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := repo.RegistryKey(userID, tokenID)
	if !r.liveLocked(key) {
		return customErrors.ErrInvalidToken
	}
	delete(r.entries, key)
	return nil
}

// Len returns the number of stored entries, expired ones included until swept.
func (r *RefreshRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *RefreshRegistry) liveLocked(key string) bool {
	exp, ok := r.entries[key]
	if !ok {
		return false
	}
	if !exp.After(r.now()) {
		delete(r.entries, key)
		return false
	}
	return true
}

func (r *RefreshRegistry) sweepLocked(now time.Time) {
	if now.Sub(r.lastSweep) < r.sweepEvery {
		return
	}
	for k, exp := range r.entries {
		if !exp.After(now) {
			delete(r.entries, k)
		}
	}
	r.lastSweep = now
}
