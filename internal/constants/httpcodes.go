// Package constants provides shared constant values used throughout the application.
//
// The httpcodes.go file defines response codes, headers and header values used
// when writing HTTP responses.
package constants

// Response Codes are machine-readable identifiers included in error responses.
const (
	CodeBadRequest         = "bad_request"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeInternalError      = "internal_error"
	CodeValidationError    = "validation_error"
	CodeInvalidCredentials = "invalid_credentials"
	CodeDuplicateResource  = "duplicate_resource"
	CodeInvalidResetToken  = "invalid_reset_token"
	CodeRateLimited        = "rate_limited"
)

// HTTP Headers
const (
	HeaderContentType           = "Content-Type"
	HeaderCacheControl          = "Cache-Control"
	HeaderPragma                = "Pragma"
	HeaderExpires               = "Expires"
	HeaderAuthorization         = "Authorization"
	HeaderXRequestID            = "X-Request-ID"
	HeaderRetryAfter            = "Retry-After"
	HeaderXContentTypeOptions   = "X-Content-Type-Options"
	HeaderXFrameOptions         = "X-Frame-Options"
	HeaderXXSSProtection        = "X-XSS-Protection"
	HeaderReferrerPolicy        = "Referrer-Policy"
	HeaderContentSecurityPolicy = "Content-Security-Policy"
	HeaderStrictTransport       = "Strict-Transport-Security"
)

// Content Types
const (
	ContentTypeJSON = "application/json"
)

// Security Header Values
const (
	FrameOptionsDeny           = "DENY"
	XSSProtectionModeBlock     = "1; mode=block"
	ContentTypeOptionsNoSniff  = "nosniff"
	ReferrerPolicyStrictOrigin = "strict-origin-when-cross-origin"
	CSPDefaultSrc              = "default-src 'self'"
	CacheControlNoStore        = "no-cache, no-store, must-revalidate"
	PragmaNoCache              = "no-cache"
	ExpiresZero                = "0"
	StrictTransportMaxAge      = "max-age=31536000; includeSubDomains"
)
