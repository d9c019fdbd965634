package types

import (
	"regexp"
	"strings"
)

type UserRole string

const (
	UserRoleCustomer UserRole = "CUSTOMER"
	UserRoleProvider UserRole = "PROVIDER"
	UserRoleAdmin    UserRole = "ADMIN"
)

// User is the principal resolved for a request or a live-channel session.
// User rows are owned by the account subsystem; this engine only reads them.
type User struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  UserRole `json:"role"`
}

type CreateUser struct {
	Email string
	Name  string
	Role  UserRole
}

var reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(s string) bool {
	return reEmail.MatchString(s)
}

// NormalizeEmail is the canonical form of an email used as a lookup key:
// trimmed and lower-cased. Token subjects and store lookups both go
// through this, so callers never re-normalize.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
