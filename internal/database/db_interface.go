// Package database provides database access and management functions for the EcoTrack API.
// It implements a connection pool, transaction management, and common database operations.
package database

import (
	"context"
	"database/sql"
)

// SQLDatabase is the subset of *sql.DB the repositories and helpers rely on.
// Tests substitute a sqlmock connection.
type SQLDatabase interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	PingContext(ctx context.Context) error
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Ensure sql.DB and Pool implement SQLDatabase.
var (
	_ SQLDatabase = (*sql.DB)(nil)
	_ SQLDatabase = (*Pool)(nil)
)

// HealthChecker is implemented by anything that can report database health
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
