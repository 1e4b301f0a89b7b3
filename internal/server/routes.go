package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/ecotrack/auth-service/internal/constants"
	"github.com/ecotrack/auth-service/internal/middleware"
	"github.com/ecotrack/auth-service/internal/service"
	"github.com/ecotrack/auth-service/internal/utils"
)

const (
	healthStatusOK       = "OK"
	healthStatusDegraded = "DEGRADED"
	databaseUp           = "up"
	databaseDown         = "down"
)

// healthResponse is the body of the health endpoint
type healthResponse struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
	Database    string    `json:"database"`
}

// SetupRoutes configures the routes for the application.
//
// The configured routes include:
// - Health check and metrics endpoints (unprotected, not rate limited)
// - Authentication endpoints (register, login, password recovery)
// - Session endpoints (me, logout, refresh, update password) behind JWTAuth
// - User administration behind JWTAuth and a role gate
func (s *Server) SetupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.CORS(allowedOrigins(s.Config.CORS.ClientURL)))
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery())
	r.Use(middleware.SecurityHeaders(s.Config.App.IsProduction()))
	if s.Config.Logging.RequestLog {
		r.Use(middleware.RequestLogger())
	}
	if !s.Config.Metrics.Disabled {
		r.Use(middleware.Metrics(s.metrics))
	}

	r.Get(constants.HealthPath, s.healthCheck)
	if !s.Config.Metrics.Disabled {
		r.Method(http.MethodGet, s.Config.Metrics.Path, s.metrics.Handler())
	}

	requireAuth := middleware.JWTAuth(
		s.authProviders.JWTService,
		s.authProviders.Denylist,
		s.userRepo,
		s.Config.Cookie.Name,
	)

	r.Route(constants.APIBasePath, func(r chi.Router) {
		r.Use(middleware.RateLimit(s.services.Security, service.RateCategoryAPI))

		r.Route(strings.TrimPrefix(constants.AuthBasePath, constants.APIBasePath), func(r chi.Router) {
			r.Use(middleware.NoStore)

			// Public auth endpoints
			r.Group(func(r chi.Router) {
				r.Post(constants.AuthRegisterPath, s.Handlers.AuthHandler.Register)
				r.Post(constants.AuthLoginPath, s.Handlers.AuthHandler.Login)
				r.Post(constants.AuthForgotPath, s.Handlers.AuthHandler.ForgotPassword)
				r.Put(constants.AuthResetPath, s.Handlers.AuthHandler.ResetPassword)
			})

			// Protected auth endpoints
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get(constants.AuthMePath, s.Handlers.AuthHandler.GetMe)
				r.Post(constants.AuthLogoutPath, s.Handlers.AuthHandler.Logout)
				r.Post(constants.AuthRefreshPath, s.Handlers.AuthHandler.Refresh)
				r.Put(constants.AuthUpdatePasswordPath, s.Handlers.AuthHandler.UpdatePassword)
			})
		})

		r.Route(strings.TrimPrefix(constants.UsersBasePath, constants.APIBasePath), func(r chi.Router) {
			r.Use(requireAuth)
			r.With(middleware.RequireRole(constants.RoleAdmin, constants.RoleModerator)).
				Get("/", s.Handlers.UserHandler.ListUsers)
			r.With(middleware.RequireRole(constants.RoleAdmin)).
				Delete(constants.UserDetailPath, s.Handlers.UserHandler.DeleteUser)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.NotFound(w, "")
	})

	s.router = r
}

// GetRouter returns the configured router.
func (s *Server) GetRouter() chi.Router {
	return s.router
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:      healthStatusOK,
		Message:     constants.MsgHealthy,
		Timestamp:   time.Now().UTC(),
		Environment: s.Config.App.Environment,
		Database:    databaseUp,
	}
	status := http.StatusOK

	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), constants.DBHealthCheckTimeout)
		defer cancel()

		if err := s.health.HealthCheck(ctx); err != nil {
			log.Error().Err(err).Msg("Health check failed")
			resp.Status = healthStatusDegraded
			resp.Database = databaseDown
			status = http.StatusServiceUnavailable
		}
	}

	utils.SendJSON(w, status, resp)
}

// allowedOrigins splits a comma separated list of client origins
func allowedOrigins(clientURL string) []string {
	var origins []string
	for _, origin := range strings.Split(clientURL, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, strings.TrimRight(origin, "/"))
		}
	}
	return origins
}
