// Package utils provides utility functions and helpers for common operations
// used throughout the application: response writing, validation, error
// translation, logging and small string helpers.
package utils

import (
	"strconv"
	"strings"
)

// FormatInt64 formats an int64 as a string.
func FormatInt64(i int64) string {
	return strconv.FormatInt(i, 10)
}

// MaskEmail masks the local part of an email address for logging.
// For example: "user@example.com" becomes "u***r@example.com" and "al@x.com" becomes "a*@x.com".
//
// Parameters:
//   - email: the email address to mask
//
// Returns:
//   - the masked email address, or a fully redacted value if it is not an email
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}

	user := email[:at]
	domain := email[at+1:]

	if len(user) <= 2 {
		return user[:1] + strings.Repeat("*", len(user)-1) + "@" + domain
	}

	return string(user[0]) + strings.Repeat("*", len(user)-2) + string(user[len(user)-1]) + "@" + domain
}

// ContainsString checks if a slice of strings contains a specific string.
func ContainsString(slice []string, str string) bool {
	for _, item := range slice {
		if item == str {
			return true
		}
	}
	return false
}
