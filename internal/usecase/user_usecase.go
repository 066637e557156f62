// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"identity/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterUserInput defines the data required to register a new account.
type RegisterUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginInput defines the data required to log in. Login accepts either a
// username or an email address.
type LoginInput struct {
	Login    string
	Password string
}

// UpdateUserInput carries a partial update. Nil fields are left unchanged.
type UpdateUserInput struct {
	UserID    uuid.UUID
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

// ListUsersInput defines the pagination window for listing accounts.
// Listings cover active accounts only unless IncludeInactive is set.
type ListUsersInput struct {
	Page            int
	PageSize        int
	IncludeInactive bool
}

// ChangePasswordInput defines the data required to change an account's password.
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created account.
type RegisterOutput struct {
	User *entity.User
}

// LoginOutput returns the issued bearer token after a successful login.
type LoginOutput struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
	User        *entity.User
}

// ListUsersOutput returns one page of accounts and the paging totals.
// PageSize is the effective size after clamping, Pages the total page count.
type ListUsersOutput struct {
	Users    []*entity.User
	Total    int64
	Page     int
	PageSize int
	Pages    int
}

// UserUsecase defines the interface for account-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	RegisterUser(ctx context.Context, input *RegisterUserInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	// CurrentUser resolves a bearer token to the active account it identifies.
	CurrentUser(ctx context.Context, token string) (*entity.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
	ListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error)
	UpdateUser(ctx context.Context, input *UpdateUserInput) (*entity.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ChangePassword(ctx context.Context, input *ChangePasswordInput) error
}
