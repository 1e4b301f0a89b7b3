// Package middleware provides HTTP middleware components.
package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ecotrack/auth-service/internal/constants"
	"github.com/ecotrack/auth-service/internal/utils"
)

// RateLimit is middleware that limits the rate of requests from clients.
//
// Parameters:
//   - limiter: The service that tracks per-client budgets
//   - category: The endpoint category to apply limits for
//
// Returns:
//   - A middleware function that can be used with an HTTP handler
func RateLimit(limiter RateLimiter, category string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip rate limiting for health checks and metrics
			if isExemptedPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := getClientIP(r)

			limited, retryAfter := limiter.IsRateLimited(clientIP, category)
			if limited {
				log.Warn().
					Str("client_ip", clientIP).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Str("category", category).
					Msg("Rate limit exceeded")

				w.Header().Set(constants.HeaderRetryAfter, retryAfterSeconds(retryAfter))
				utils.TooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(d time.Duration) string {
	seconds := math.Ceil(d.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	if seconds > constants.DefaultRateLimitWindow.Seconds() {
		seconds = constants.DefaultRateLimitWindow.Seconds()
	}
	return strconv.Itoa(int(seconds))
}

// getClientIP extracts the client IP address from the request.
// chi's RealIP middleware has already folded proxy headers into RemoteAddr.
func getClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If there's no port in the address, use it as is
		return r.RemoteAddr
	}
	return ip
}

// isExemptedPath returns true if the path should be exempted from rate limiting.
func isExemptedPath(path string) bool {
	exemptPrefixes := []string{
		constants.HealthPath,
		constants.DefaultMetricsPath,
	}

	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}
