package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/ecotrack/auth-service/internal/constants"
)

// ErrMissingJWTSecret is returned when no signing secret is configured.
// The service refuses to start rather than sign with a guessable key.
var ErrMissingJWTSecret = errors.New("JWT secret must be set")

// AppConfig represents the entire application configuration.
// It is loaded once at startup and passed to constructors; nothing mutates it afterwards.
type AppConfig struct {
	App           AppSettings           `yaml:"app"`
	Database      DatabaseSettings      `yaml:"database"`
	Server        ServerSettings        `yaml:"server"`
	JWT           JWTSettings           `yaml:"jwt"`
	Cookie        CookieSettings        `yaml:"cookie"`
	Password      PasswordSettings      `yaml:"password"`
	PasswordReset PasswordResetSettings `yaml:"password_reset"`
	Mail          MailSettings          `yaml:"mail"`
	Revocation    RevocationSettings    `yaml:"revocation"`
	RateLimit     RateLimitSettings     `yaml:"rate_limit"`
	Logging       LoggingSettings       `yaml:"logging"`
	CORS          CORSSettings          `yaml:"cors"`
	Metrics       MetricsSettings       `yaml:"metrics"`
	Seed          SeedSettings          `yaml:"seed"`
}

// AppSettings contains general application settings
type AppSettings struct {
	Environment string `yaml:"environment" env:"APP_ENV"`
	Name        string `yaml:"name" env:"APP_NAME"`
	Version     string `yaml:"version" env:"APP_VERSION"`
}

// DatabaseSettings contains database connection settings.
// URL takes precedence over the individual connection fields.
type DatabaseSettings struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER"`
	URL      string `yaml:"url" env:"DATABASE_URL"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	Name     string `yaml:"name" env:"DB_NAME"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
	MaxConns int    `yaml:"max_conns" env:"DB_MAX_CONNS"`
	MinConns int    `yaml:"min_conns" env:"DB_MIN_CONNS"`
}

// ServerSettings contains HTTP server settings
type ServerSettings struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// JWTSettings contains session claim settings
type JWTSettings struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET"`
	Expiry time.Duration `yaml:"expiry" env:"JWT_EXPIRE"`
	Issuer string        `yaml:"issuer" env:"JWT_ISSUER"`
}

// CookieSettings controls the cookie that mirrors the bearer token.
// Its lifetime is independent of the token TTL.
type CookieSettings struct {
	Name       string `yaml:"name" env:"JWT_COOKIE_NAME"`
	ExpireDays int    `yaml:"expire_days" env:"JWT_COOKIE_EXPIRE"`
}

// PasswordSettings contains password hashing settings
type PasswordSettings struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST"`
}

// PasswordResetSettings controls the forgot/reset password flow
type PasswordResetSettings struct {
	TokenTTL           time.Duration `yaml:"token_ttl" env:"RESET_TOKEN_TTL"`
	RevealUnknownEmail bool          `yaml:"reveal_unknown_email" env:"RESET_REVEAL_UNKNOWN_EMAIL"`
	ExposeToken        bool          `yaml:"expose_token" env:"RESET_EXPOSE_TOKEN"`
	URL                string        `yaml:"url" env:"RESET_URL"`
}

// MailSettings selects and configures the reset token delivery channel
type MailSettings struct {
	Provider       string `yaml:"provider" env:"MAIL_PROVIDER"`
	SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	SendGridHost   string `yaml:"sendgrid_host" env:"SENDGRID_HOST"`
	FromAddress    string `yaml:"from_address" env:"MAIL_FROM_ADDRESS"`
	FromName       string `yaml:"from_name" env:"MAIL_FROM_NAME"`
}

// RevocationSettings selects where revoked session claims are remembered
type RevocationSettings struct {
	Backend   string `yaml:"backend" env:"REVOCATION_BACKEND"`
	RedisURL  string `yaml:"redis_url" env:"REDIS_URL"`
	KeyPrefix string `yaml:"key_prefix" env:"REVOCATION_KEY_PREFIX"`
}

// RateLimitSettings limits requests per client IP under /api
type RateLimitSettings struct {
	Window      time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW"`
	MaxRequests int           `yaml:"max_requests" env:"RATE_LIMIT_MAX_REQUESTS"`
}

// LoggingSettings contains logging configuration
type LoggingSettings struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"`
	RequestLog bool   `yaml:"request_log" env:"LOG_REQUESTS"`
}

// CORSSettings contains CORS configuration
type CORSSettings struct {
	ClientURL string `yaml:"client_url" env:"CLIENT_URL"`
}

// MetricsSettings controls the Prometheus endpoint, served unless disabled
type MetricsSettings struct {
	Disabled bool   `yaml:"disabled" env:"METRICS_DISABLED"`
	Path     string `yaml:"path" env:"METRICS_PATH"`
}

// SeedSettings describes the administrator account created on first start.
// Seeding is skipped unless both email and password are set.
type SeedSettings struct {
	AdminName     string `yaml:"admin_name" env:"SEED_ADMIN_NAME"`
	AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
	AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
}

// Enabled reports whether an administrator should be seeded
func (ss *SeedSettings) Enabled() bool {
	return ss.AdminEmail != "" && ss.AdminPassword != ""
}

// ConnectionString returns the Postgres connection URL.
// Both supported drivers accept the same URL form.
func (dbs *DatabaseSettings) ConnectionString() string {
	if dbs.URL != "" {
		return dbs.URL
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", dbs.Host, dbs.Port),
		Path:   "/" + dbs.Name,
	}
	if dbs.Password != "" {
		u.User = url.UserPassword(dbs.User, dbs.Password)
	} else {
		u.User = url.User(dbs.User)
	}
	q := url.Values{}
	q.Set("sslmode", dbs.SSLMode)
	u.RawQuery = q.Encode()

	return u.String()
}

// ServerAddress returns the complete server address
func (ss *ServerSettings) ServerAddress() string {
	return fmt.Sprintf("%s:%d", ss.Host, ss.Port)
}

// CookieMaxAge returns the cookie lifetime as a duration
func (cs *CookieSettings) CookieMaxAge() time.Duration {
	return time.Duration(cs.ExpireDays) * 24 * time.Hour
}

// IsDevelopment checks if the application is running in development mode
func (as *AppSettings) IsDevelopment() bool {
	return strings.ToLower(as.Environment) == constants.EnvDevelopment
}

// IsProduction checks if the application is running in production mode
func (as *AppSettings) IsProduction() bool {
	return strings.ToLower(as.Environment) == constants.EnvProduction
}

// IsTesting checks if the application is running in testing mode
func (as *AppSettings) IsTesting() bool {
	return strings.ToLower(as.Environment) == constants.EnvTesting
}

// Load loads the configuration from a config file and environment variables
func Load(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	// A missing file is fine, environment variables may carry everything
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := LoadEnv(config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	SetDefaults(config)

	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logConfig(config)

	return config, nil
}

// SetDefaults sets default values for any missing configuration
func SetDefaults(config *AppConfig) {
	if config.App.Environment == "" {
		config.App.Environment = constants.EnvDevelopment
	}
	if config.App.Name == "" {
		config.App.Name = constants.DefaultAppName
	}
	if config.App.Version == "" {
		config.App.Version = "1.0.0"
	}

	if config.Server.Port == 0 {
		config.Server.Port = constants.DefaultServerPort
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = constants.DefaultReadTimeout
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = constants.DefaultWriteTimeout
	}
	if config.Server.IdleTimeout == 0 {
		config.Server.IdleTimeout = constants.DefaultIdleTimeout
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = constants.DefaultShutdownTimeout
	}

	if config.Database.Driver == "" {
		config.Database.Driver = constants.DefaultDBDriver
	}
	if config.Database.SSLMode == "" {
		config.Database.SSLMode = constants.DefaultDBSSLMode
	}
	if config.Database.MaxConns == 0 {
		config.Database.MaxConns = constants.DefaultDBMaxConnections
	}
	if config.Database.MinConns == 0 {
		config.Database.MinConns = constants.DefaultDBMinConnections
	}

	if config.JWT.Expiry == 0 {
		config.JWT.Expiry = constants.DefaultJWTExpiry
	}
	if config.JWT.Issuer == "" {
		config.JWT.Issuer = constants.DefaultJWTIssuer
	}

	if config.Cookie.Name == "" {
		config.Cookie.Name = constants.AuthTokenCookie
	}
	if config.Cookie.ExpireDays == 0 {
		config.Cookie.ExpireDays = constants.DefaultCookieExpireDays
	}

	if config.Password.BcryptCost == 0 {
		config.Password.BcryptCost = constants.DefaultBcryptCost
	}

	if config.PasswordReset.TokenTTL == 0 {
		config.PasswordReset.TokenTTL = constants.DefaultResetTokenTTL
	}

	if config.Mail.Provider == "" {
		config.Mail.Provider = constants.MailProviderLog
	}
	if config.Mail.SendGridHost == "" {
		config.Mail.SendGridHost = constants.DefaultSendGridHost
	}
	if config.Mail.FromAddress == "" {
		config.Mail.FromAddress = constants.DefaultMailFromAddress
	}
	if config.Mail.FromName == "" {
		config.Mail.FromName = constants.DefaultMailFromName
	}

	if config.Revocation.Backend == "" {
		config.Revocation.Backend = constants.RevocationBackendMemory
	}
	if config.Revocation.KeyPrefix == "" {
		config.Revocation.KeyPrefix = constants.DefaultRevocationKeyPrefix
	}

	if config.RateLimit.Window == 0 {
		config.RateLimit.Window = constants.DefaultRateLimitWindow
	}
	if config.RateLimit.MaxRequests == 0 {
		config.RateLimit.MaxRequests = constants.DefaultRateLimitMaxRequests
	}

	if config.Logging.Level == "" {
		config.Logging.Level = constants.DefaultLogLevel
	}
	if config.Logging.Format == "" {
		config.Logging.Format = constants.DefaultLogFormat
	}

	if config.CORS.ClientURL == "" {
		config.CORS.ClientURL = constants.DefaultClientURL
	}

	if config.Metrics.Path == "" {
		config.Metrics.Path = constants.DefaultMetricsPath
	}

	if config.Seed.AdminName == "" {
		config.Seed.AdminName = constants.DefaultSeedAdminName
	}
}

// Validate checks that the configuration has all required values
func Validate(config *AppConfig) error {
	env := strings.ToLower(config.App.Environment)
	if env != constants.EnvDevelopment && env != constants.EnvTesting && env != constants.EnvProduction {
		return fmt.Errorf("invalid environment: %s", config.App.Environment)
	}

	if strings.TrimSpace(config.JWT.Secret) == "" {
		return ErrMissingJWTSecret
	}
	if config.JWT.Expiry < 0 {
		return fmt.Errorf("JWT expiry must be positive")
	}
	if config.Cookie.ExpireDays < 0 {
		return fmt.Errorf("cookie expire days must be positive")
	}

	// bcrypt rejects costs outside 4..31
	if config.Password.BcryptCost < 4 || config.Password.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31, got %d", config.Password.BcryptCost)
	}

	if config.PasswordReset.ExposeToken && config.App.IsProduction() {
		return fmt.Errorf("password reset tokens must not be exposed in production")
	}

	switch config.Database.Driver {
	case constants.DriverPostgres, constants.DriverPGX:
	default:
		return fmt.Errorf("unsupported database driver: %s", config.Database.Driver)
	}
	if config.Database.URL == "" && config.Database.User == "" {
		return fmt.Errorf("database url or user must be set")
	}

	switch config.Mail.Provider {
	case constants.MailProviderLog:
	case constants.MailProviderSendGrid:
		if config.Mail.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid api key must be set when mail provider is sendgrid")
		}
	default:
		return fmt.Errorf("unsupported mail provider: %s", config.Mail.Provider)
	}

	switch config.Revocation.Backend {
	case constants.RevocationBackendMemory:
	case constants.RevocationBackendRedis:
		if config.Revocation.RedisURL == "" {
			return fmt.Errorf("redis url must be set when revocation backend is redis")
		}
	default:
		return fmt.Errorf("unsupported revocation backend: %s", config.Revocation.Backend)
	}

	logLevel := strings.ToLower(config.Logging.Level)
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLevels {
		if logLevel == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// logConfig logs the current configuration without secrets
func logConfig(config *AppConfig) {
	log.Info().
		Str("environment", config.App.Environment).
		Str("version", config.App.Version).
		Str("server", config.Server.ServerAddress()).
		Str("db_driver", config.Database.Driver).
		Str("db_host", config.Database.Host).
		Str("db_name", config.Database.Name).
		Str("jwt_secret", constants.LogRedactedValue).
		Dur("jwt_expiry", config.JWT.Expiry).
		Int("cookie_expire_days", config.Cookie.ExpireDays).
		Str("mail_provider", config.Mail.Provider).
		Str("revocation_backend", config.Revocation.Backend).
		Bool("seed_admin", config.Seed.Enabled()).
		Str("log_level", config.Logging.Level).
		Msg("Configuration loaded")
}
