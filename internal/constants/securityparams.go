package constants

// Context Key Names
const (
	UserContextKey      = "user"
	ClaimsContextKey    = "claims"
	RequestIDContextKey = "request_id"
)

// Roles
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// Field Limits
const (
	MaxNameLength  = 50
	MaxEmailLength = 255
)

// Cookie Names
const (
	AuthTokenCookie = "token"
)
