package utils

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/ecotrack/auth-service/internal/constants"
)

// Custom error types for the application
var (
	ErrNotFound           = errors.New(constants.ErrorNotFound)
	ErrUnauthorized       = errors.New(constants.ErrorUnauthorized)
	ErrForbidden          = errors.New(constants.ErrorForbidden)
	ErrBadRequest         = errors.New(constants.ErrorBadRequest)
	ErrInternalServer     = errors.New(constants.ErrorInternalServer)
	ErrValidation         = errors.New(constants.ErrorValidation)
	ErrDuplicate          = errors.New(constants.ErrorDuplicate)
	ErrInvalidCredentials = errors.New(constants.ErrorInvalidCredentials)
	ErrInvalidResetToken  = errors.New(constants.ErrorInvalidResetToken)
)

// AppError represents an application error with additional context
type AppError struct {
	Err        error  // The underlying error
	StatusCode int    // HTTP status code
	Code       string // Machine-readable code sent to clients
	Message    string // User-friendly error message
	DevInfo    string // Additional information for developers, never sent to clients
	Field      string // Field related to the error (for validation errors)
	Details    map[string]string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error for a specific field
func NewValidationError(field, message string) *AppError {
	appErr := &AppError{
		Err:        ErrValidation,
		StatusCode: http.StatusBadRequest,
		Code:       constants.CodeValidationError,
		Message:    constants.MsgValidationFailed,
		Field:      field,
	}
	if field != "" {
		appErr.Details = map[string]string{field: message}
	} else {
		appErr.Message = message
	}
	return appErr
}

// NewValidationErrors creates a validation error carrying one message per field.
func NewValidationErrors(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		StatusCode: http.StatusBadRequest,
		Code:       constants.CodeValidationError,
		Message:    constants.MsgValidationFailed,
		Details:    details,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		StatusCode: http.StatusBadRequest,
		Code:       constants.CodeBadRequest,
		Message:    message,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	if message == "" {
		message = constants.MsgResourceNotFound
	}
	return &AppError{
		Err:        ErrNotFound,
		StatusCode: http.StatusNotFound,
		Code:       constants.CodeNotFound,
		Message:    message,
	}
}

// NewUnauthorizedError creates a new unauthenticated error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = constants.MsgAuthRequired
	}
	return &AppError{
		Err:        ErrUnauthorized,
		StatusCode: http.StatusUnauthorized,
		Code:       constants.CodeUnauthorized,
		Message:    message,
	}
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = constants.MsgAccessDenied
	}
	return &AppError{
		Err:        ErrForbidden,
		StatusCode: http.StatusForbidden,
		Code:       constants.CodeForbidden,
		Message:    message,
	}
}

// NewInternalServerError creates a new internal server error
func NewInternalServerError(err error) *AppError {
	devInfo := ""
	if err != nil {
		devInfo = err.Error()
	}
	return &AppError{
		Err:        ErrInternalServer,
		StatusCode: http.StatusInternalServerError,
		Code:       constants.CodeInternalError,
		Message:    constants.MsgInternalServerError,
		DevInfo:    devInfo,
	}
}

// NewDuplicateError creates a new duplicate identity error
func NewDuplicateError(field string) *AppError {
	return &AppError{
		Err:        ErrDuplicate,
		StatusCode: http.StatusConflict,
		Code:       constants.CodeDuplicateResource,
		Message:    constants.MsgUserExists,
		Field:      field,
	}
}

// NewInvalidCredentialsError creates a new invalid credentials error.
// The message is the same whether the identity or the secret was wrong.
func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Err:        ErrInvalidCredentials,
		StatusCode: http.StatusUnauthorized,
		Code:       constants.CodeInvalidCredentials,
		Message:    constants.MsgInvalidCredentials,
	}
}

// NewIncorrectPasswordError is the InvalidCredentials variant used by change-password.
func NewIncorrectPasswordError() *AppError {
	appErr := NewInvalidCredentialsError()
	appErr.Message = constants.MsgPasswordIncorrect
	return appErr
}

// NewInvalidResetTokenError creates the error for an unknown, consumed or expired reset token
func NewInvalidResetTokenError() *AppError {
	return &AppError{
		Err:        ErrInvalidResetToken,
		StatusCode: http.StatusBadRequest,
		Code:       constants.CodeInvalidResetToken,
		Message:    constants.MsgInvalidResetToken,
	}
}

// ParseError attempts to parse various types of errors into an AppError
func ParseError(err error) *AppError {
	// If it's already an AppError, return it
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, ErrNotFound):
		return NewNotFoundError("")
	case errors.Is(err, ErrUnauthorized):
		return NewUnauthorizedError("")
	case errors.Is(err, ErrForbidden):
		return NewForbiddenError("")
	case errors.Is(err, ErrBadRequest):
		return NewBadRequestError(err.Error())
	case errors.Is(err, ErrValidation):
		return NewValidationError("", err.Error())
	case errors.Is(err, ErrDuplicate):
		return NewDuplicateError("")
	case errors.Is(err, ErrInvalidCredentials):
		return NewInvalidCredentialsError()
	case errors.Is(err, ErrInvalidResetToken):
		return NewInvalidResetTokenError()
	}

	if code, constraint, ok := postgresErrorCode(err); ok {
		switch code {
		case pgerrcode.UniqueViolation:
			dup := NewDuplicateError(constraintField(constraint))
			dup.DevInfo = err.Error()
			return dup
		case pgerrcode.NotNullViolation, pgerrcode.CheckViolation:
			return &AppError{
				Err:        ErrValidation,
				StatusCode: http.StatusBadRequest,
				Code:       constants.CodeValidationError,
				Message:    constants.MsgValidationFailed,
				DevInfo:    err.Error(),
			}
		}
	}

	// Default to internal server error
	return NewInternalServerError(err)
}

// IsUniqueViolation reports whether err is a Postgres unique_violation from either driver.
func IsUniqueViolation(err error) bool {
	code, _, ok := postgresErrorCode(err)
	return ok && code == pgerrcode.UniqueViolation
}

// postgresErrorCode extracts the SQLSTATE from lib/pq and pgx errors.
func postgresErrorCode(err error) (code, constraint string, ok bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	return "", "", false
}

func constraintField(constraint string) string {
	if constraint == constants.ConstraintUsersEmail {
		return constants.ColumnEmail
	}
	return ""
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode == http.StatusNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorizedError checks if an error is an unauthenticated error
func IsUnauthorizedError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsDuplicateError checks if an error is a duplicate identity error
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// StatusCode returns the HTTP status code for an error
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
