// Package service provides business logic implementations.
package service

import (
	"context"
	"time"

	"github.com/ecotrack/auth-service/internal/config"
	"github.com/ecotrack/auth-service/internal/constants"
	"github.com/ecotrack/auth-service/internal/utils/ratelimit"
)

// RateCategoryAPI is the limiter category shared by every route under /api.
const RateCategoryAPI = "api"

// SecurityService handles per-client request throttling.
type SecurityService struct {
	rateLimiterStore *ratelimit.Store
	cleanupInterval  time.Duration
}

// NewSecurityService creates a new SecurityService.
//
// Parameters:
//   - cfg: The request budget per client and the window it applies to
//
// Returns:
//   - A configured SecurityService
func NewSecurityService(cfg config.RateLimitSettings) *SecurityService {
	window := cfg.Window
	if window <= 0 {
		window = constants.DefaultRateLimitWindow
	}
	maxRequests := cfg.MaxRequests
	if maxRequests <= 0 {
		maxRequests = constants.DefaultRateLimitMaxRequests
	}

	rate := ratelimit.PerWindow(maxRequests, window)

	// A limiter idle for a full window has refilled completely and can be dropped
	limiterStore := ratelimit.NewStore(rate, window)
	limiterStore.SetRate(RateCategoryAPI, rate)

	return &SecurityService{
		rateLimiterStore: limiterStore,
		cleanupInterval:  window,
	}
}

// IsRateLimited checks if a client has exceeded its budget.
//
// Parameters:
//   - clientID: Identifier for the client (typically IP address)
//   - category: The endpoint category
//
// Returns:
//   - whether the request must be rejected and, if so, how long the client should wait
func (s *SecurityService) IsRateLimited(clientID, category string) (bool, time.Duration) {
	limiter := s.rateLimiterStore.GetLimiter(clientID, category)
	if limiter.Allow() {
		return false, 0
	}
	return true, limiter.RetryAfter()
}

// Start drops idle limiters until ctx is cancelled.
func (s *SecurityService) Start(ctx context.Context) {
	s.rateLimiterStore.Run(ctx, s.cleanupInterval)
}
