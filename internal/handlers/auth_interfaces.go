// Package handlers provides HTTP request handlers for the EcoTrack auth API.
package handlers

import (
	"context"

	"github.com/ecotrack/auth-service/internal/auth"
	"github.com/ecotrack/auth-service/internal/models"
)

// AuthServiceInterface defines the methods required from the authentication service.
// This interface is used by the auth handlers to interact with the authentication business logic
// without being tightly coupled to the implementation.
type AuthServiceInterface interface {
	// Register creates an account and signs it in.
	//
	// Returns:
	//   - The session token and the created user
	//   - A validation error, or a duplicate error when the email is taken
	Register(ctx context.Context, reg *models.UserRegistration) (*models.AuthResult, error)

	// Login verifies credentials and issues a session token.
	//
	// Returns:
	//   - The session token and the user
	//   - An invalid credentials error for an unknown email or a wrong password alike
	Login(ctx context.Context, creds *models.UserCredentials) (*models.AuthResult, error)

	// Logout revokes the presented session token.
	Logout(ctx context.Context, claims *auth.CustomClaims) error

	// Refresh issues a new session token and revokes the presented one.
	Refresh(ctx context.Context, user *models.User, claims *auth.CustomClaims) (*models.AuthResult, error)

	// ForgotPassword issues a reset token for the account registered under email.
	//
	// Returns:
	//   - The issued token, or an empty issue when nothing was sent
	//   - A not found error only when unknown emails are revealed
	ForgotPassword(ctx context.Context, email string) (*models.PasswordResetIssue, error)

	// ResetPassword consumes a reset token and sets a new password.
	ResetPassword(ctx context.Context, rawToken, newPassword string) (*models.AuthResult, error)

	// ChangePassword replaces the password after checking the current one.
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) (*models.AuthResult, error)
}
