// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits used when the
// configuration leaves a setting empty. Changes to these values affect how long
// sessions live, how expensive password hashing is and how aggressively clients
// are throttled.
package constants

import "time"

// Default Configuration Values define fallback settings when not specified in configuration.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 5000

	// DefaultDBDriver is the database/sql driver used when none is configured.
	DefaultDBDriver = DriverPostgres

	// DefaultDBMaxConnections is the default maximum number of open database connections.
	DefaultDBMaxConnections = 20

	// DefaultDBMinConnections is the default number of idle database connections kept open.
	DefaultDBMinConnections = 5

	// DefaultDBSSLMode is the sslmode used when building a connection string from parts.
	DefaultDBSSLMode = "disable"

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"

	// DefaultClientURL is the origin allowed by CORS when none is configured.
	DefaultClientURL = "http://localhost:3000"

	// DefaultAppName is reported by the health endpoint and in logs.
	DefaultAppName = "ecotrack-auth"

	// DefaultMetricsPath is where the Prometheus handler is mounted.
	DefaultMetricsPath = "/metrics"

	// DefaultSeedAdminName names the seeded administrator when no name is configured.
	DefaultSeedAdminName = "Administrator"
)

// Supported database drivers. Both speak Postgres and share the same SQL.
const (
	// DriverPostgres selects github.com/lib/pq.
	DriverPostgres = "postgres"

	// DriverPGX selects the database/sql adapter of github.com/jackc/pgx/v5.
	DriverPGX = "pgx"
)

// Environment Types define the recognized application running environments.
const (
	// EnvDevelopment identifies a development environment with debugging features enabled.
	EnvDevelopment = "development"

	// EnvTesting identifies a testing environment for automated tests.
	EnvTesting = "testing"

	// EnvProduction identifies a production environment. Cookies are marked Secure.
	EnvProduction = "production"
)

// Request Limits protect the service from oversized payloads.
const (
	// MaxRequestBodySize is the maximum size in bytes for HTTP request bodies.
	MaxRequestBodySize = 1048576 // 1MB in bytes
)

// Session Defaults control the lifetime of issued session claims and the cookie that mirrors them.
// Token TTL and cookie TTL are independent settings.
const (
	// DefaultJWTExpiry is the lifetime of a session claim.
	DefaultJWTExpiry = 7 * 24 * time.Hour

	// DefaultJWTIssuer is the issuer claim value for JWT tokens.
	DefaultJWTIssuer = "ecotrack-auth"

	// DefaultCookieExpireDays is the lifetime of the token cookie in days.
	DefaultCookieExpireDays = 30

	// BearerTokenPrefix is the prefix for Authorization header bearer tokens.
	BearerTokenPrefix = "Bearer "
)

// Password Defaults define the hashing cost and the minimum acceptable password.
const (
	// DefaultBcryptCost is the bcrypt work factor used for new hashes.
	DefaultBcryptCost = 10

	// MinPasswordLength is the shortest password accepted on registration, reset or change.
	MinPasswordLength = 6

	// MaxPasswordBytes is the longest password bcrypt accepts.
	MaxPasswordBytes = 72
)

// Password Reset Defaults define the lifetime and size of reset tokens.
const (
	// DefaultResetTokenTTL is how long a reset token stays valid after it is issued.
	DefaultResetTokenTTL = 10 * time.Minute

	// ResetTokenBytes is the number of random bytes in a raw reset token before hex encoding.
	ResetTokenBytes = 20
)

// Rate Limit Defaults apply to every route under /api.
const (
	// DefaultRateLimitWindow is the window in which DefaultRateLimitMaxRequests may be made.
	DefaultRateLimitWindow = 15 * time.Minute

	// DefaultRateLimitMaxRequests is the number of requests a client may make per window.
	DefaultRateLimitMaxRequests = 100
)

// Revocation Defaults configure the session denylist.
const (
	// RevocationBackendMemory keeps revoked token IDs in process memory.
	RevocationBackendMemory = "memory"

	// RevocationBackendRedis keeps revoked token IDs in Redis.
	RevocationBackendRedis = "redis"

	// DefaultRevocationKeyPrefix namespaces denylist keys in Redis.
	DefaultRevocationKeyPrefix = "auth:revoked:"
)

// Mail Providers select the delivery channel for password reset tokens.
const (
	// MailProviderLog writes a delivery notice to the log without the token.
	MailProviderLog = "log"

	// MailProviderSendGrid delivers mail through the SendGrid v3 API.
	MailProviderSendGrid = "sendgrid"

	// DefaultSendGridHost is the SendGrid API base URL.
	DefaultSendGridHost = "https://api.sendgrid.com"

	// SendGridMailEndpoint is the SendGrid v3 mail send path.
	SendGridMailEndpoint = "/v3/mail/send"

	// DefaultMailFromAddress is the sender address for reset mails.
	DefaultMailFromAddress = "no-reply@ecotrack.local"

	// DefaultMailFromName is the sender display name for reset mails.
	DefaultMailFromName = "EcoTrack"
)
