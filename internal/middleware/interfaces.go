package middleware

import (
	"context"
	"time"

	"github.com/ecotrack/auth-service/internal/models"
)

// UserLookup fetches the principal named by a verified token
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// RateLimiter decides whether a client has exhausted its request budget
type RateLimiter interface {
	IsRateLimited(clientID, category string) (bool, time.Duration)
}

// HTTPObserver records finished requests
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, duration time.Duration)
}
