package migrations_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/ecotrack/auth-service/internal/database"
	"github.com/ecotrack/auth-service/migrations"
)

// createMockPool creates a mock database pool for testing
func createMockPool(t *testing.T) (*database.Pool, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return database.NewPool(db, "postgres"), mock
}

func expectColumnsPresent(mock sqlmock.Sqlmock) {
	for range migrations.RequiredColumns() {
		mock.ExpectQuery("SELECT EXISTS .*information_schema.columns").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	}
}

func TestNewMigrator(t *testing.T) {
	pool, _ := createMockPool(t)
	assert.NotNil(t, migrations.NewMigrator(pool))
}

func TestGetMigrations(t *testing.T) {
	list := migrations.GetMigrations()

	assert.NotEmpty(t, list)
	assert.Equal(t, "create_users_table", list[0].Name, "users table must be created first")

	seen := map[string]bool{}
	for _, migration := range list {
		assert.NotEmpty(t, migration.Name)
		assert.NotEmpty(t, migration.Description)
		assert.NotNil(t, migration.RunSQL)
		assert.False(t, seen[migration.Name], "duplicate migration %s", migration.Name)
		seen[migration.Name] = true
	}
}

func TestRunMigrations(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name: "Error - Create migrations table fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnError(errors.New("failed to create migrations table"))
			},
			wantErr: true,
		},
		{
			name: "Error - Get executed migrations fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM migrations").
					WillReturnError(errors.New("failed to get executed migrations"))
			},
			wantErr: true,
		},
		{
			name: "Error - Table exists check fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM migrations").
					WillReturnRows(sqlmock.NewRows([]string{"name"}))
				mock.ExpectQuery("SELECT EXISTS.*information_schema.tables").
					WillReturnError(errors.New("failed to check table existence"))
			},
			wantErr: true,
		},
		{
			name: "Success - Fresh database",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM migrations").
					WillReturnRows(sqlmock.NewRows([]string{"name"}))

				// users table
				mock.ExpectQuery("SELECT EXISTS.*information_schema.tables").
					WithArgs("users").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectBegin()
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT INTO migrations").
					WithArgs("create_users_table", sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()

				// reset token index
				mock.ExpectBegin()
				mock.ExpectExec("CREATE INDEX IF NOT EXISTS").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT INTO migrations").
					WithArgs("create_users_reset_token_index", sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()

				expectColumnsPresent(mock)
			},
			wantErr: false,
		},
		{
			name: "Success - Existing table is recorded and missing column added",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM migrations").
					WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("create_users_reset_token_index"))

				mock.ExpectQuery("SELECT EXISTS.*information_schema.tables").
					WithArgs("users").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
				mock.ExpectExec("INSERT INTO migrations").
					WithArgs("create_users_table", sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(1, 1))

				columns := migrations.RequiredColumns()
				mock.ExpectQuery("SELECT EXISTS .*information_schema.columns").
					WithArgs(columns[0].Table, columns[0].Name).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectExec("ALTER TABLE users ADD COLUMN " + columns[0].Name).
					WillReturnResult(sqlmock.NewResult(0, 0))
				for range columns[1:] {
					mock.ExpectQuery("SELECT EXISTS .*information_schema.columns").
						WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
				}
			},
			wantErr: false,
		},
		{
			name: "Error - Migration SQL fails and rolls back",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM migrations").
					WillReturnRows(sqlmock.NewRows([]string{"name"}))
				mock.ExpectQuery("SELECT EXISTS.*information_schema.tables").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectBegin()
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
					WillReturnError(errors.New("permission denied"))
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, mock := createMockPool(t)
			tt.setup(mock)

			err := migrations.NewMigrator(pool).RunMigrations(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
