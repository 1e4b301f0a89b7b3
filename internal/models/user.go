package models

import (
	"time"

	"github.com/ecotrack/auth-service/internal/constants"
)

// User represents a registered account of the EcoTrack application.
// It holds the credential, the role and the derived sustainability metrics.
type User struct {
	ID                  int64      `json:"id" db:"user_id"`
	Name                string     `json:"name" db:"name"`
	Email               string     `json:"email" db:"email"`
	PasswordHash        string     `json:"-" db:"password_hash"`
	Role                string     `json:"role" db:"role"`
	CarbonFootprint     float64    `json:"carbonFootprint" db:"carbon_footprint"`
	SustainabilityScore float64    `json:"sustainabilityScore" db:"sustainability_score"`
	ResetTokenHash      *string    `json:"-" db:"reset_token_hash"`
	ResetExpiresAt      *time.Time `json:"-" db:"reset_expires_at"`
	CreatedAt           time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time  `json:"updatedAt" db:"updated_at"`
}

// NewUser creates a new User with the default role.
// The password hash is populated later during registration.
func NewUser(name, email string) *User {
	now := time.Now().UTC()
	return &User{
		Name:      name,
		Email:     email,
		Role:      constants.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TableName returns the database table name for the User model.
func (u *User) TableName() string {
	return constants.TableUsers
}

// HasRole reports whether the user holds one of the given roles.
func (u *User) HasRole(roles ...string) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// Sanitize removes the credential and any pending reset state.
func (u *User) Sanitize() *User {
	sanitized := *u
	sanitized.PasswordHash = ""
	sanitized.ResetTokenHash = nil
	sanitized.ResetExpiresAt = nil
	return &sanitized
}

// Public returns the projection of the user that is safe to send to clients.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:                  u.ID,
		Name:                u.Name,
		Email:               u.Email,
		Role:                u.Role,
		CarbonFootprint:     u.CarbonFootprint,
		SustainabilityScore: u.SustainabilityScore,
		CreatedAt:           u.CreatedAt,
	}
}

// PublicUser is the client-facing view of a User.
type PublicUser struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Role                string    `json:"role"`
	CarbonFootprint     float64   `json:"carbonFootprint"`
	SustainabilityScore float64   `json:"sustainabilityScore"`
	CreatedAt           time.Time `json:"createdAt"`
}

// UserCredentials represents the login credentials provided by a user.
// Only presence is checked here; a wrong password must surface as invalid credentials.
type UserCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserRegistration represents the data required for user registration.
type UserRegistration struct {
	Name     string `json:"name" validate:"required,notblank,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,password_policy"`
}

// ChangePasswordRequest is the body of the update-password endpoint.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,password_policy"`
}

// AuthResult is returned by every operation that establishes a session.
type AuthResult struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	User      *User
}
