package migrations

import (
	"context"
	"database/sql"
)

// GetMigrations returns all migrations in execution order
func GetMigrations() []Migration {
	return []Migration{
		createUsersTable(),
		createResetTokenIndex(),
	}
}

// RequiredColumns lists columns added after the users table was first shipped
func RequiredColumns() []Column {
	return []Column{
		{Table: "users", Name: "role", Definition: "VARCHAR(20) NOT NULL DEFAULT 'user'"},
		{Table: "users", Name: "carbon_footprint", Definition: "DOUBLE PRECISION NOT NULL DEFAULT 0"},
		{Table: "users", Name: "sustainability_score", Definition: "DOUBLE PRECISION NOT NULL DEFAULT 0"},
		{Table: "users", Name: "reset_token_hash", Definition: "VARCHAR(64)"},
		{Table: "users", Name: "reset_expires_at", Definition: "TIMESTAMPTZ"},
	}
}

// createUsersTable creates the users table
func createUsersTable() Migration {
	return Migration{
		Name:        "create_users_table",
		Description: "Creates the users table",
		TableName:   "users",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS users (
					user_id BIGSERIAL PRIMARY KEY,
					name VARCHAR(50) NOT NULL,
					email VARCHAR(255) NOT NULL,
					password_hash VARCHAR(255) NOT NULL,
					role VARCHAR(20) NOT NULL DEFAULT 'user',
					carbon_footprint DOUBLE PRECISION NOT NULL DEFAULT 0,
					sustainability_score DOUBLE PRECISION NOT NULL DEFAULT 0,
					reset_token_hash VARCHAR(64),
					reset_expires_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT users_email_key UNIQUE (email),
					CONSTRAINT users_role_check CHECK (role IN ('user', 'admin', 'moderator'))
				)
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createResetTokenIndex indexes outstanding reset tokens
func createResetTokenIndex() Migration {
	return Migration{
		Name:        "create_users_reset_token_index",
		Description: "Indexes users by outstanding reset token hash",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE INDEX IF NOT EXISTS idx_users_reset_token_hash
				ON users(reset_token_hash)
				WHERE reset_token_hash IS NOT NULL
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}
