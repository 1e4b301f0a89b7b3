// Package constants provides shared constant values used throughout the application.
//
// The errorcodes.go file defines constants related to error handling and
// messaging. User-facing messages are phrased so they never reveal whether an
// email is registered during login, nor any secret material.
package constants

// Error Types define the categories of errors that can occur in the application.
const (
	// ErrorNotFound indicates that a requested resource could not be found.
	ErrorNotFound = "resource not found"

	// ErrorUnauthorized indicates that a valid session claim was not provided.
	ErrorUnauthorized = "unauthorized access"

	// ErrorForbidden indicates that the principal's role is not permitted.
	ErrorForbidden = "forbidden access"

	// ErrorBadRequest indicates that the request was malformed.
	ErrorBadRequest = "invalid request"

	// ErrorInternalServer indicates an unexpected internal error.
	ErrorInternalServer = "internal server error"

	// ErrorValidation indicates that input validation failed.
	ErrorValidation = "validation error"

	// ErrorDuplicate indicates an attempt to register an identity that already exists.
	ErrorDuplicate = "duplicate resource"

	// ErrorInvalidCredentials indicates that login credentials are incorrect.
	ErrorInvalidCredentials = "invalid credentials"

	// ErrorInvalidResetToken indicates an unknown, consumed or expired reset token.
	ErrorInvalidResetToken = "invalid or expired reset token"
)

// User-Facing Messages define standardized messages that can be safely presented to users.
const (
	// MsgAuthRequired is returned when no usable session claim accompanies the request.
	MsgAuthRequired = "Not authorized to access this route"

	// MsgInvalidCredentials is returned for an unknown email and a wrong password alike.
	MsgInvalidCredentials = "Invalid credentials"

	// MsgPasswordIncorrect is returned when the current password given to change-password is wrong.
	MsgPasswordIncorrect = "Password is incorrect"

	// MsgAccessDenied is returned when the principal's role is not permitted.
	MsgAccessDenied = "User role is not authorized to access this route"

	// MsgUserExists is returned when registering an email that is already taken.
	MsgUserExists = "User already exists"

	// MsgNoUserWithEmail is returned by forgot-password when unknown emails are revealed.
	MsgNoUserWithEmail = "There is no user with that email"

	// MsgInvalidResetToken is returned when a reset token is unknown, used or expired.
	MsgInvalidResetToken = "Invalid token"

	// MsgValidationFailed heads the per-field validation errors.
	MsgValidationFailed = "Validation failed"

	// MsgInternalServerError provides a generic server error message.
	MsgInternalServerError = "Server Error"

	// MsgRequestBodyTooLarge indicates that the request payload exceeds size limits.
	MsgRequestBodyTooLarge = "Request body too large"

	// MsgEmptyRequestBody indicates that a request body was expected but not provided.
	MsgEmptyRequestBody = "Request body must not be empty"

	// MsgMalformedJSON indicates that the request body contains invalid JSON.
	MsgMalformedJSON = "Request body contains malformed JSON"

	// MsgResourceNotFound indicates that the requested resource does not exist.
	MsgResourceNotFound = "The requested resource could not be found"

	// MsgTooManyRequests is returned by the /api rate limiter.
	MsgTooManyRequests = "Too many requests from this IP, please try again later."
)

// Success Messages
const (
	// MsgLogoutSuccess confirms logout.
	MsgLogoutSuccess = "User logged out successfully"

	// MsgResetEmailSent is returned by forgot-password regardless of delivery details.
	MsgResetEmailSent = "Email sent"

	// MsgUserDeleted confirms removal of a credential record by an administrator.
	MsgUserDeleted = "User deleted"

	// MsgHealthy is reported by the health endpoint.
	MsgHealthy = "Server is running"
)

// Logging Constants
const (
	LogCategoryAuth = "auth"

	LogEventRegister       = "register"
	LogEventLogin          = "login"
	LogEventLogout         = "logout"
	LogEventRefresh        = "refresh"
	LogEventPasswordChange = "password_change"
	LogEventResetRequested = "reset_requested"
	LogEventResetCompleted = "reset_completed"
	LogEventUserDeleted    = "user_deleted"

	LogRedactedValue = "[REDACTED]"
)
