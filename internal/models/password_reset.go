package models

import (
	"time"
)

// ForgotPasswordRequest is the body of the forgot-password endpoint.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest carries the new password; the token travels in the path.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,password_policy"`
}

// PasswordResetIssue describes a reset token that has just been stored.
// Token is the raw value and is only ever handed to the mailer,
// or to the response when exposure is explicitly enabled.
type PasswordResetIssue struct {
	UserID    int64
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Issued reports whether a token was actually generated.
// It is false when the email was unknown and the flow answered generically.
func (p *PasswordResetIssue) Issued() bool {
	return p != nil && p.Token != ""
}

// PasswordResetMessage is what the mailer needs to deliver a reset token out of band.
type PasswordResetMessage struct {
	To        string
	Name      string
	Token     string
	ResetURL  string
	ExpiresAt time.Time
}
