package domain

import (
	"strings"
	"time"
)

// User is an account on this server. Every shelf collection is namespaced
// under exactly one user; nothing is shared between accounts.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	CreatedAtMs  int64     `json:"created_at_ms"`
}

// NormalizeEmail lowercases and trims an email address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
