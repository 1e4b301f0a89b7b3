// Package scripts provides utility scripts for database and system management.
//
// The seeder populates data the service needs before its first request, such as
// an administrator account able to use the user administration routes. Like
// migrations, executed seeds are recorded so each runs once.
package scripts

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ecotrack/auth-service/internal/auth"
	"github.com/ecotrack/auth-service/internal/config"
	"github.com/ecotrack/auth-service/internal/constants"
	"github.com/ecotrack/auth-service/internal/database"
	"github.com/ecotrack/auth-service/internal/utils"
)

const seedAdminAccount = "admin_account"

// Seeder handles database seeding.
type Seeder struct {
	db     *database.Pool
	hasher *auth.PasswordHasher
	cfg    config.SeedSettings
}

// NewSeeder creates a new seeder.
//
// Parameters:
//   - db: A database connection pool to use for seeding
//   - hasher: Hashes the seeded administrator password
//   - cfg: The administrator account to create
//
// Returns:
//   - *Seeder: A configured seeder
func NewSeeder(db *database.Pool, hasher *auth.PasswordHasher, cfg config.SeedSettings) *Seeder {
	return &Seeder{
		db:     db,
		hasher: hasher,
		cfg:    cfg,
	}
}

// SeedDatabase runs every seed that has not been executed yet.
func (s *Seeder) SeedDatabase(ctx context.Context) error {
	if !s.cfg.Enabled() {
		log.Debug().Msg("No seed data configured")
		return nil
	}

	log.Info().Msg("Seeding database")
	startTime := time.Now()

	if err := s.createSeedsTable(ctx); err != nil {
		return fmt.Errorf("failed to create seeds table: %w", err)
	}

	executedSeeds, err := s.getExecutedSeeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed seeds: %w", err)
	}

	seeds := []struct {
		Name     string
		SeedFunc func(ctx context.Context, tx *sql.Tx) error
	}{
		{seedAdminAccount, s.seedAdmin},
	}

	for _, seed := range seeds {
		if executedSeeds[seed.Name] {
			log.Debug().Str("seed", seed.Name).Msg("Seed already executed")
			continue
		}
		log.Info().Str("seed", seed.Name).Msg("Running seed")
		if err := s.runSeed(ctx, seed.Name, seed.SeedFunc); err != nil {
			return err
		}
	}

	log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Database seeding completed")

	return nil
}

func (s *Seeder) createSeedsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS seeds (
			name VARCHAR(255) PRIMARY KEY,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *Seeder) getExecutedSeeds(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM seeds`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	seeds := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		seeds[name] = true
	}

	return seeds, rows.Err()
}

// runSeed runs a seed and records it in one transaction
func (s *Seeder) runSeed(ctx context.Context, name string, seedFunc func(ctx context.Context, tx *sql.Tx) error) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := seedFunc(ctx, tx); err != nil {
			return fmt.Errorf("seed %s failed: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO seeds (name) VALUES ($1)`, name); err != nil {
			return fmt.Errorf("failed to record seed: %w", err)
		}

		return nil
	})
}

// seedAdmin creates the configured administrator.
// An existing account with the same email is promoted instead; its password is left alone.
func (s *Seeder) seedAdmin(ctx context.Context, tx *sql.Tx) error {
	email := utils.NormalizeEmail(s.cfg.AdminEmail)
	if !utils.IsValidEmail(email) {
		return utils.NewValidationError("email", "Must be a valid email address")
	}
	if err := utils.ValidatePassword("password", s.cfg.AdminPassword); err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(s.cfg.AdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO users (name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
	`
	if _, err := tx.ExecContext(ctx, query, strings.TrimSpace(s.cfg.AdminName), email, passwordHash, constants.RoleAdmin, now); err != nil {
		return fmt.Errorf("failed to insert administrator: %w", err)
	}

	log.Info().Str("email", utils.MaskEmail(email)).Msg("Administrator account seeded")
	return nil
}
