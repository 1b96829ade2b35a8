package db

import "strings"

// IsUniqueViolation reports whether err looks like a Postgres unique constraint
// failure. Pass a constraint name to match one constraint specifically; with an
// empty name any duplicate-key error matches.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	text := err.Error()
	if constraintName != "" {
		return strings.Contains(text, constraintName)
	}
	return strings.Contains(text, "duplicate key value")
}
