// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file defines table and column names so SQL in the
// repository and migration packages refers to the schema in one place.
package constants

// Table Names define the names of database tables used in the application.
const (
	// TableUsers is the name of the table storing credential records.
	TableUsers = "users"
)

// Column Names define the columns of the users table.
const (
	// ColumnUserID is the primary key of a credential record.
	ColumnUserID = "user_id"

	// ColumnEmail is the unique, lower-cased login identity.
	ColumnEmail = "email"

	// ColumnResetTokenHash holds the SHA-256 of the outstanding reset token.
	ColumnResetTokenHash = "reset_token_hash"

	// ColumnResetExpiresAt holds the instant the outstanding reset token stops being valid.
	ColumnResetExpiresAt = "reset_expires_at"
)

// Constraint Names define named schema constraints referenced in error handling.
const (
	// ConstraintUsersEmail is the unique constraint on users.email.
	ConstraintUsersEmail = "users_email_key"
)
