// Package ratelimit provides rate limiting functionality for protecting API endpoints.
// It implements the token bucket algorithm with configurable rates and capacities.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Limiter represents a rate limiter for a specific client identity.
// Tokens are added at a fixed rate and each request consumes one.
type Limiter struct {
	// tokens is the current number of tokens in the bucket
	tokens float64

	// lastTime is the last time tokens were added to the bucket
	lastTime time.Time

	// rate is the token refill rate (tokens per second)
	rate float64

	// capacity is the maximum number of tokens the bucket can hold
	capacity float64

	// now returns the current time
	now func() time.Time

	mu sync.Mutex
}

// Rate controls how many requests per second are allowed
type Rate struct {
	// RequestsPerSecond defines how many tokens are added per second
	RequestsPerSecond float64

	// Burst defines the maximum size of the token bucket
	Burst int
}

// PerWindow builds a Rate that allows max requests in every window,
// refilling evenly across it.
func PerWindow(max int, window time.Duration) Rate {
	if max <= 0 || window <= 0 {
		return Rate{}
	}
	return Rate{
		RequestsPerSecond: float64(max) / window.Seconds(),
		Burst:             max,
	}
}

// NewLimiter creates a new rate limiter with the specified rate and burst capacity.
func NewLimiter(rate float64, burst int) *Limiter {
	return newLimiterWithClock(rate, burst, time.Now)
}

func newLimiterWithClock(rate float64, burst int, now func() time.Time) *Limiter {
	return &Limiter{
		tokens:   float64(burst),
		lastTime: now(),
		rate:     rate,
		capacity: float64(burst),
		now:      now,
	}
}

// Allow checks if a request should be allowed based on the rate limit.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()

	if l.tokens < 1 {
		return false
	}

	l.tokens--
	return true
}

// RetryAfter returns how long a rejected client should wait for the next token.
func (l *Limiter) RetryAfter() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()

	if l.tokens >= 1 {
		return 0
	}
	if l.rate <= 0 {
		return time.Duration(math.MaxInt64)
	}

	missing := 1 - l.tokens
	return time.Duration(missing / l.rate * float64(time.Second))
}

// LastSeen reports when the limiter was last consulted.
func (l *Limiter) LastSeen() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastTime
}

// ResetTokens refills the bucket.
func (l *Limiter) ResetTokens() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens = l.capacity
	l.lastTime = l.now()
}

// refill must be called with mu held.
func (l *Limiter) refill() {
	now := l.now()
	elapsed := now.Sub(l.lastTime).Seconds()
	l.lastTime = now

	if elapsed > 0 {
		l.tokens += elapsed * l.rate
	}
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
}
