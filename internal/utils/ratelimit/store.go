package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCategory is used when a category has no rate of its own.
const DefaultCategory = "default"

// Store manages rate limiters for multiple clients.
type Store struct {
	// limiters maps category and client identifier to their rate limiters
	limiters map[string]*Limiter

	// rates defines different rate limits for different request categories
	rates map[string]Rate

	// idleTTL is how long an unused limiter is kept
	idleTTL time.Duration

	now func() time.Time

	mu sync.RWMutex
}

// NewStore creates a new store for managing rate limiters.
// Limiters idle for longer than idleTTL are dropped by Cleanup.
func NewStore(defaultRate Rate, idleTTL time.Duration) *Store {
	return &Store{
		limiters: make(map[string]*Limiter),
		rates:    map[string]Rate{DefaultCategory: defaultRate},
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// GetLimiter returns the rate limiter for a client in a category,
// creating it on first use.
func (s *Store) GetLimiter(clientID string, category string) *Limiter {
	key := category + "|" + clientID

	s.mu.RLock()
	limiter, exists := s.limiters[key]
	s.mu.RUnlock()

	if exists {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have created it while we waited for the write lock
	if limiter, exists = s.limiters[key]; exists {
		return limiter
	}

	rate, exists := s.rates[category]
	if !exists {
		rate = s.rates[DefaultCategory]
	}

	limiter = newLimiterWithClock(rate.RequestsPerSecond, rate.Burst, s.now)
	s.limiters[key] = limiter

	return limiter
}

// SetRate sets a rate limit for a specific category.
func (s *Store) SetRate(category string, rate Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[category] = rate
}

// Len returns the number of tracked limiters.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.limiters)
}

// Cleanup removes limiters that have been idle longer than the store's idle TTL.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for key, limiter := range s.limiters {
		if limiter.LastSeen().Before(cutoff) {
			delete(s.limiters, key)
			removed++
		}
	}

	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("Rate limiter store cleaned up")
	}
	return removed
}

// Run calls Cleanup every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}
