package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ecotrack/auth-service/internal/constants"
	"github.com/ecotrack/auth-service/internal/database"
	"github.com/ecotrack/auth-service/internal/models"
	"github.com/ecotrack/auth-service/internal/utils"
)

// UserRepository is the single persistence interface for credential records
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, int64, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetResetToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id int64) error
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*models.User, error)
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// PostgresUserRepository is a PostgreSQL implementation of UserRepository
type PostgresUserRepository struct {
	db      database.SQLDatabase
	crud    *database.CRUD
	columns string
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db database.SQLDatabase) UserRepository {
	return &PostgresUserRepository{
		db:      db,
		crud:    database.NewCRUD(db),
		columns: strings.Join(database.Columns(models.User{}), ", "),
	}
}

// Create adds a new user to the database.
// The unique constraint on email decides duplicates; there is no pre-check.
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	startTime := time.Now()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = constants.RoleUser
	}

	query := `
        INSERT INTO users (name, email, password_hash, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING user_id, carbon_footprint, sustainability_score
    `

	err := r.db.QueryRowContext(
		ctx,
		query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID, &user.CarbonFootprint, &user.SustainabilityScore)

	utils.LogDBQuery(
		query,
		[]interface{}{user.Name, utils.MaskEmail(user.Email), constants.LogRedactedValue, user.Role, user.CreatedAt, user.UpdatedAt},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if utils.IsUniqueViolation(err) {
			return utils.NewDuplicateError(constants.ColumnEmail)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().
		Int64("user_id", user.ID).
		Str("email", utils.MaskEmail(user.Email)).
		Msg("User created")

	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE user_id = $1`, r.columns)

	user, err := r.queryOne(ctx, query, []interface{}{id}, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User not found")
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by its normalized email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, r.columns)

	email = utils.NormalizeEmail(email)
	user, err := r.queryOne(ctx, query, []interface{}{utils.MaskEmail(email)}, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError(constants.MsgNoUserWithEmail)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// List returns a page of users ordered by id and the total number of users
func (r *PostgresUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	total, err := r.crud.Count(ctx, &models.User{}, nil)
	if err != nil {
		return nil, 0, err
	}

	users := make([]*models.User, 0)
	err = r.crud.List(ctx, &models.User{}, &users, database.ListOptions{
		OrderBy: constants.ColumnUserID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// UpdatePassword replaces the password hash of a user
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	startTime := time.Now()

	query := `
        UPDATE users
        SET password_hash = $1, updated_at = $2
        WHERE user_id = $3
    `

	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id)

	utils.LogDBQuery(query, []interface{}{constants.LogRedactedValue, "now", id}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return requireAffected(result, "User not found")
}

// SetResetToken stores the hash of a freshly issued reset token, replacing any previous one
func (r *PostgresUserRepository) SetResetToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) error {
	startTime := time.Now()

	query := `
        UPDATE users
        SET reset_token_hash = $1, reset_expires_at = $2, updated_at = $3
        WHERE user_id = $4
    `

	result, err := r.db.ExecContext(ctx, query, tokenHash, expiresAt.UTC(), time.Now().UTC(), id)

	utils.LogDBQuery(query, []interface{}{constants.LogRedactedValue, expiresAt, "now", id}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	return requireAffected(result, "User not found")
}

// ClearResetToken drops an outstanding reset token, e.g. after its mail could not be delivered
func (r *PostgresUserRepository) ClearResetToken(ctx context.Context, id int64) error {
	startTime := time.Now()

	query := `
        UPDATE users
        SET reset_token_hash = NULL, reset_expires_at = NULL, updated_at = $1
        WHERE user_id = $2
    `

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)

	utils.LogDBQuery(query, []interface{}{"now", id}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}

	return requireAffected(result, "User not found")
}

// ConsumeResetToken sets a new password for the user holding an unexpired reset token
// and clears the token in the same statement, so a token can be used at most once.
func (r *PostgresUserRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*models.User, error) {
	startTime := time.Now()

	query := fmt.Sprintf(`
        UPDATE users
        SET password_hash = $1, reset_token_hash = NULL, reset_expires_at = NULL, updated_at = $2
        WHERE reset_token_hash = $3 AND reset_expires_at > $2
        RETURNING %s
    `, r.columns)

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, passwordHash, now.UTC(), tokenHash).Scan(database.ScanTargets(user)...)

	utils.LogDBQuery(query, []interface{}{constants.LogRedactedValue, now, constants.LogRedactedValue}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewInvalidResetTokenError()
		}
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	return user, nil
}

// ClearExpiredResetTokens removes reset state whose expiry has passed
func (r *PostgresUserRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	query := `
        UPDATE users
        SET reset_token_hash = NULL, reset_expires_at = NULL
        WHERE reset_expires_at IS NOT NULL AND reset_expires_at <= $1
    `

	result, err := r.db.ExecContext(ctx, query, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired reset tokens: %w", err)
	}

	return result.RowsAffected()
}

// Delete removes a user by ID
func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.crud.Delete(ctx, &models.User{}, id); err != nil {
		if utils.IsNotFoundError(err) {
			return utils.NewNotFoundError("User not found")
		}
		return err
	}

	log.Info().Int64("user_id", id).Msg("User deleted")
	return nil
}

// queryOne scans a single user row. logArgs is what gets logged in place of args.
func (r *PostgresUserRepository) queryOne(ctx context.Context, query string, logArgs []interface{}, args ...interface{}) (*models.User, error) {
	startTime := time.Now()

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(database.ScanTargets(user)...)

	utils.LogDBQuery(query, logArgs, time.Since(startTime), err)

	if err != nil {
		return nil, err
	}
	return user, nil
}

func requireAffected(result sql.Result, notFoundMessage string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return utils.NewNotFoundError(notFoundMessage)
	}
	return nil
}
