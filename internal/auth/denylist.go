package auth

import (
	"context"
	"sync"
	"time"
)

// Denylist remembers revoked session token ids until the tokens would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// Prune drops entries whose tokens have expired and returns how many were removed
	Prune(ctx context.Context) (int, error)
}

// MemoryDenylist is a process-local Denylist
type MemoryDenylist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryDenylist creates an empty in-memory denylist
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke adds a token id to the denylist
func (d *MemoryDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	if tokenID == "" || !until.After(d.now()) {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.entries[tokenID] = until
	return nil
}

// IsRevoked reports whether a token id is on the denylist and not yet expired
func (d *MemoryDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	until, ok := d.entries[tokenID]
	return ok && until.After(d.now()), nil
}

// Prune removes expired entries
func (d *MemoryDenylist) Prune(_ context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	removed := 0
	for id, until := range d.entries {
		if !until.After(now) {
			delete(d.entries, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of tracked entries
func (d *MemoryDenylist) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}
