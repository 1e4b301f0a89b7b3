// Package server provides the HTTP server for the EcoTrack auth API.
// It wires configuration, persistence, token handling and handlers together
// and manages the server lifecycle.
//
// Initialization is ordered: database, auth providers, services, handlers, routes.
// The configuration is read once and passed down; nothing below this package
// reads the environment.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ecotrack/auth-service/internal/auth"
	"github.com/ecotrack/auth-service/internal/config"
	"github.com/ecotrack/auth-service/internal/constants"
	"github.com/ecotrack/auth-service/internal/database"
	"github.com/ecotrack/auth-service/internal/handlers"
	"github.com/ecotrack/auth-service/internal/metrics"
	"github.com/ecotrack/auth-service/internal/repository"
	"github.com/ecotrack/auth-service/internal/service"
	"github.com/ecotrack/auth-service/migrations"
	"github.com/ecotrack/auth-service/scripts"
)

// Handlers contains all HTTP handlers for the application.
type Handlers struct {
	// AuthHandler manages registration, sessions and password flows
	AuthHandler *handlers.AuthHandler

	// UserHandler manages user administration endpoints
	UserHandler *handlers.UserHandler
}

// AuthProviders contains the token and credential primitives shared by services and middleware.
type AuthProviders struct {
	// JWTService signs and verifies session claims
	JWTService *auth.JWTService

	// Denylist remembers revoked session claims until they expire
	Denylist auth.Denylist

	// Hasher hashes and verifies passwords
	Hasher *auth.PasswordHasher
}

// Services contains the business services used by handlers and background tasks.
type Services struct {
	Auth        *service.AuthService
	Users       *service.UserService
	Security    *service.SecurityService
	Maintenance *service.MaintenanceService
}

// Server represents the API server.
type Server struct {
	// Config contains application configuration
	Config *config.AppConfig

	// Db provides database access
	Db *database.Pool

	// router handles HTTP routing
	router chi.Router

	// Handlers contains all HTTP request handlers
	Handlers *Handlers

	authProviders *AuthProviders
	services      *Services
	userRepo      repository.UserRepository
	health        database.HealthChecker
	metrics       *metrics.Metrics
	redis         *redis.Client

	// httpServer is the underlying HTTP server
	httpServer *http.Server

	// stopBackground cancels the maintenance and rate limiter loops
	stopBackground context.CancelFunc
}

// NewServer creates a new server instance with all required components.
//
// Parameters:
//   - cfg: Application configuration including database, server, and auth settings
//
// Returns:
//   - A fully initialized Server instance ready to start
//   - An error if initialization of any component fails, including a missing JWT secret
func NewServer(cfg *config.AppConfig) (*Server, error) {
	s := &Server{
		Config: cfg,
	}

	if err := s.setupDatabase(); err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	if err := s.assemble(context.Background(), repository.NewUserRepository(s.Db), s.Db); err != nil {
		s.Db.Close()
		return nil, err
	}

	return s, nil
}

// assemble builds everything above the persistence layer.
func (s *Server) assemble(ctx context.Context, userRepo repository.UserRepository, health database.HealthChecker) error {
	s.userRepo = userRepo
	s.health = health
	s.metrics = metrics.New()

	if err := s.setupAuthProviders(ctx); err != nil {
		return fmt.Errorf("failed to set up auth providers: %w", err)
	}

	if err := s.setupServices(); err != nil {
		return fmt.Errorf("failed to set up services: %w", err)
	}

	if err := s.setupHandlers(); err != nil {
		return fmt.Errorf("failed to set up handlers: %w", err)
	}

	s.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.Config.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  s.Config.Server.ReadTimeout,
		WriteTimeout: s.Config.Server.WriteTimeout,
		IdleTimeout:  s.Config.Server.IdleTimeout,
	}
	if s.httpServer.IdleTimeout == 0 {
		s.httpServer.IdleTimeout = constants.DefaultIdleTimeout
	}

	return nil
}

// setupDatabase connects to the database, runs migrations and seeds the administrator.
func (s *Server) setupDatabase() error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DBConnectionTimeout)
	defer cancel()

	db, err := database.Connect(ctx, &s.Config.Database)
	if err != nil {
		return err
	}

	s.Db = db

	migrator := migrations.NewMigrator(db)
	if err := migrator.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	seeder := scripts.NewSeeder(db, auth.NewPasswordHasher(s.Config.Password.BcryptCost), s.Config.Seed)
	if err := seeder.SeedDatabase(ctx); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	return nil
}

// setupAuthProviders creates the JWT service, the revocation denylist and the password hasher.
// A missing JWT secret is fatal.
func (s *Server) setupAuthProviders(ctx context.Context) error {
	jwtService, err := auth.NewJWTService(&s.Config.JWT)
	if err != nil {
		return err
	}

	var denylist auth.Denylist
	switch s.Config.Revocation.Backend {
	case constants.RevocationBackendRedis:
		rdb, err := auth.NewRedisClient(ctx, s.Config.Revocation.RedisURL)
		if err != nil {
			return err
		}
		s.redis = rdb
		denylist = auth.NewRedisDenylist(rdb, s.Config.Revocation.KeyPrefix)
		log.Info().Msg("Token revocation backed by redis")
	case constants.RevocationBackendMemory, "":
		denylist = auth.NewMemoryDenylist()
	default:
		return fmt.Errorf("unknown revocation backend %q", s.Config.Revocation.Backend)
	}

	s.authProviders = &AuthProviders{
		JWTService: jwtService,
		Denylist:   denylist,
		Hasher:     auth.NewPasswordHasher(s.Config.Password.BcryptCost),
	}

	return nil
}

// setupServices initializes all business services.
func (s *Server) setupServices() error {
	if s.authProviders == nil || s.authProviders.JWTService == nil {
		return errors.New("JWT service not initialized")
	}

	mailer, err := service.NewMailer(&s.Config.Mail)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(
		s.userRepo,
		s.authProviders.JWTService,
		s.authProviders.Denylist,
		s.authProviders.Hasher,
		mailer,
		s.Config.PasswordReset,
		s.metrics,
	)

	s.services = &Services{
		Auth:        authService,
		Users:       service.NewUserService(s.userRepo, s.metrics),
		Security:    service.NewSecurityService(s.Config.RateLimit),
		Maintenance: service.NewMaintenanceService(authService, constants.DBMaintenanceInterval),
	}

	return nil
}

// setupHandlers initializes all HTTP request handlers.
func (s *Server) setupHandlers() error {
	if s.services == nil {
		return errors.New("services not initialized")
	}

	s.Handlers = &Handlers{
		AuthHandler: handlers.NewAuthHandler(s.services.Auth, s.Config),
		UserHandler: handlers.NewUserHandler(s.services.Users),
	}

	return nil
}

// Start starts the HTTP server and blocks until it fails or a shutdown signal arrives.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.Config.Server.ServerAddress()).
			Str("environment", s.Config.App.Environment).
			Msg("Starting server")

		serverErrors <- s.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	s.SetupMaintenanceTasks()

	select {
	case err := <-serverErrors:
		s.stopBackgroundTasks()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info().
			Str("signal", sig.String()).
			Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			if closeErr := s.httpServer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests,
// then stops background work and closes the database and redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info().Msg("Server stopped gracefully")

	s.stopBackgroundTasks()

	if s.Db != nil {
		s.Db.Close()
		log.Info().Msg("Database connection closed")
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close redis client")
		}
	}

	return nil
}

// SetupMaintenanceTasks starts the hourly cleanup of expired reset tokens and
// revoked claims, and the rate limiter's bucket eviction.
func (s *Server) SetupMaintenanceTasks() {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopBackground = cancel

	go s.services.Maintenance.Start(ctx)
	go s.services.Security.Start(ctx)
}

func (s *Server) stopBackgroundTasks() {
	if s.stopBackground != nil {
		s.stopBackground()
		s.stopBackground = nil
	}
}
