// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity in the system, representing a single account.
// It carries the credentials material (as an opaque hash) together with the
// identity fields; plaintext passwords never reach this type.
type User struct {
	ID           uuid.UUID     // The unique identifier for the account, assigned at creation.
	Username     string        // Login name, unique across all accounts regardless of status. Stored lowercase.
	Email        string        // Contact email, unique across all accounts. Stored lowercase.
	PasswordHash string        // Opaque hash produced by the password hasher. Never the raw password.
	FirstName    string        // Optional given name.
	LastName     string        // Optional family name.
	Status       AccountStatus // Active at creation; deletion moves the account to inactive.
	CreatedAt    time.Time     // Timestamp of when this account was created.
	UpdatedAt    time.Time     // Timestamp of the last modification to this account.
}

// IsActive reports whether the account can authenticate and appears in listings.
func (u *User) IsActive() bool {
	return u.Status == AccountActive
}
