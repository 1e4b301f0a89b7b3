// Package auth provides authentication and authorization functionality for the EcoTrack API.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/ecotrack/auth-service/internal/constants"
	"github.com/ecotrack/auth-service/internal/models"
)

// ContextKey is a custom type for context keys to prevent collisions.
type ContextKey string

// Context keys for storing the authenticated principal.
const (
	// UserContextKey holds the sanitized *models.User loaded for the request.
	UserContextKey ContextKey = constants.UserContextKey

	// ClaimsContextKey holds the verified *CustomClaims.
	ClaimsContextKey ContextKey = constants.ClaimsContextKey
)

// TokenFromRequest extracts the session token from the Authorization header,
// falling back to the session cookie.
//
// Parameters:
//   - r: The HTTP request
//   - cookieName: Name of the cookie that mirrors the token
//
// Returns:
//   - The raw token, or an empty string when none is present
func TokenFromRequest(r *http.Request, cookieName string) string {
	authHeader := r.Header.Get(constants.HeaderAuthorization)
	if strings.HasPrefix(authHeader, constants.BearerTokenPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, constants.BearerTokenPrefix))
	}

	if cookieName == "" {
		cookieName = constants.AuthTokenCookie
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// WithPrincipal returns a context carrying the authenticated user and claims.
func WithPrincipal(ctx context.Context, user *models.User, claims *CustomClaims) context.Context {
	ctx = context.WithValue(ctx, UserContextKey, user)
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// GetUser extracts the authenticated user from the request context.
func GetUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}

// GetClaims extracts the verified claims from the request context.
func GetClaims(r *http.Request) (*CustomClaims, bool) {
	claims, ok := r.Context().Value(ClaimsContextKey).(*CustomClaims)
	return claims, ok && claims != nil
}

// GetUserID extracts the user ID from the request context.
func GetUserID(r *http.Request) (int64, bool) {
	user, ok := GetUser(r)
	if !ok {
		return 0, false
	}
	return user.ID, true
}

// IsAuthenticated checks if the request is from an authenticated user.
func IsAuthenticated(r *http.Request) bool {
	_, ok := GetUser(r)
	return ok
}
