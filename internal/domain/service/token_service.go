package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims carried by the bearer tokens.
type Claims struct {
	UserID uuid.UUID
	jwt.RegisteredClaims
}

// TokenService defines the interface for issuing and validating bearer tokens.
// This abstracts the details of token creation from the use cases.
//
// Validation failures are one of the domain token errors (expired, malformed,
// signature invalid) so the caller can tell the kinds apart; the user service
// collapses them into a single unauthenticated error before they cross the
// service boundary.
type TokenService interface {
	// Generate creates a signed, time-limited token for the given account.
	// expiresIn is the configured lifetime in seconds.
	Generate(userID uuid.UUID) (token string, expiresIn int64, err error)

	// Validate checks the token signature and lifetime and returns its claims.
	Validate(tokenString string) (*Claims, error)

	// AccessTokenDuration returns the configured token lifetime.
	AccessTokenDuration() time.Duration
}
