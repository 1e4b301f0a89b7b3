package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ecotrack/auth-service/internal/auth"
	"github.com/ecotrack/auth-service/internal/constants"
	"github.com/ecotrack/auth-service/internal/utils"
)

// JWTAuth is a middleware that requires a valid, unrevoked session token
// whose subject still exists. The token is read from the Authorization header,
// falling back to the session cookie.
func JWTAuth(validator auth.TokenValidator, denylist auth.Denylist, users UserLookup, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := auth.TokenFromRequest(r, cookieName)
			if tokenString == "" {
				utils.Unauthorized(w, constants.MsgAuthRequired)
				return
			}

			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected session token")
				utils.Unauthorized(w, constants.MsgAuthRequired)
				return
			}

			revoked, err := denylist.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				utils.InternalServerError(w, fmt.Errorf("denylist lookup failed: %w", err))
				return
			}
			if revoked {
				log.Debug().Str("jti", claims.ID).Msg("Rejected revoked session token")
				utils.Unauthorized(w, constants.MsgAuthRequired)
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if utils.IsNotFoundError(err) {
					utils.Unauthorized(w, constants.MsgAuthRequired)
					return
				}
				utils.InternalServerError(w, err)
				return
			}

			ctx := auth.WithPrincipal(r.Context(), user.Sanitize(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole is a middleware that requires the authenticated user to hold one of the given roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.GetUser(r)
			if !ok {
				utils.Unauthorized(w, constants.MsgAuthRequired)
				return
			}

			if !user.HasRole(roles...) {
				log.Warn().
					Int64("user_id", user.ID).
					Str("role", user.Role).
					Strs("required", roles).
					Msg("Role not permitted")
				utils.Forbidden(w, fmt.Sprintf("User role %s is not authorized to access this route", user.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adds security-related HTTP headers to responses.
// Strict-Transport-Security is only sent when hsts is true.
func SecurityHeaders(hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(constants.HeaderXContentTypeOptions, constants.ContentTypeOptionsNoSniff)
			w.Header().Set(constants.HeaderXFrameOptions, constants.FrameOptionsDeny)
			w.Header().Set(constants.HeaderXXSSProtection, constants.XSSProtectionModeBlock)
			w.Header().Set(constants.HeaderReferrerPolicy, constants.ReferrerPolicyStrictOrigin)
			w.Header().Set(constants.HeaderContentSecurityPolicy, constants.CSPDefaultSrc)
			if hsts {
				w.Header().Set(constants.HeaderStrictTransport, constants.StrictTransportMaxAge)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NoStore marks responses as uncacheable
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.HeaderCacheControl, constants.CacheControlNoStore)
		w.Header().Set(constants.HeaderPragma, constants.PragmaNoCache)
		w.Header().Set(constants.HeaderExpires, constants.ExpiresZero)
		next.ServeHTTP(w, r)
	})
}
