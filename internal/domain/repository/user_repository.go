// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"identity/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// ListFilter describes a paginated listing request. Pages are 1-indexed.
type ListFilter struct {
	Page       int
	PageSize   int
	ActiveOnly bool
}

// UserRepository defines the standard operations for account persistence.
// The application layer depends on this interface, not the concrete implementation.
//
// Lookups by id, username and email match accounts in any status; activity
// semantics (who may log in, who is listed) are decided by the caller.
type UserRepository interface {
	// Create persists a new account. Uniqueness of username and email is
	// enforced across all accounts regardless of status; a violation is
	// reported as a domain conflict error even when it is detected by the
	// store's unique constraint under a concurrent insert.
	Create(ctx context.Context, user *entity.User) error

	// FindByID retrieves a single account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByUsername retrieves a single account by its username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByEmail retrieves a single account by its email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// List returns one page of accounts ordered by id ascending, plus the
	// total number of accounts matching the filter. Page sizes above the
	// configured maximum are clamped, not rejected; a page or page size
	// below 1 fails validation.
	List(ctx context.Context, filter ListFilter) ([]*entity.User, int64, error)

	// Update persists the mutated fields of an existing account and
	// refreshes its UpdatedAt timestamp. Username and email uniqueness is
	// re-checked by the store.
	Update(ctx context.Context, user *entity.User) error

	// SoftDelete marks an account inactive. It is idempotent: deleting an
	// already-inactive account succeeds without further effect.
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
