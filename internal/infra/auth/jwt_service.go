// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"identity/config"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/service"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// The signing key and TTL are process-wide state, fixed at startup.
type jwtService struct {
	secret    string
	accessTTL time.Duration
	now       func() time.Time
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	return &jwtService{
		secret:    cfg.SecretKey.Access,
		accessTTL: cfg.Auth.AccessTokenTTL,
		now:       time.Now,
	}, nil
}

// Generate creates a signed access token for the given account.
func (s *jwtService) Generate(userID uuid.UUID) (string, int64, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": userID.String(),             // Subject (who the token is for)
		"iat": now.Unix(),                  // Issued At
		"exp": now.Add(s.accessTTL).Unix(), // Expiration Time
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, errors.Wrap(err, "failed to sign access token")
	}

	return signed, int64(s.accessTTL / time.Second), nil
}

// Validate checks a token string and returns its claims.
// The failure kinds (expired, malformed, bad signature) are distinguished so
// the caller can decide how much to reveal.
func (s *jwtService) Validate(tokenString string) (*service.Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(s.secret), nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return nil, translateJWTError(err)
	}
	if !token.Valid {
		return nil, domainerrors.ErrTokenSignatureInvalid.WrapMessage("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domainerrors.ErrTokenMalformed.WrapMessage("unexpected claims type")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, domainerrors.ErrTokenMalformed.WrapMessage("subject claim is missing")
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, domainerrors.ErrTokenMalformed.WrapMessage("subject claim is not a valid id")
	}

	issuedAt, _ := claims.GetIssuedAt()
	expiresAt, _ := claims.GetExpirationTime()

	result := &service.Claims{UserID: userID}
	if issuedAt != nil {
		result.IssuedAt = issuedAt
	}
	if expiresAt != nil {
		result.ExpiresAt = expiresAt
	}
	result.Subject = subject

	return result, nil
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *jwtService) AccessTokenDuration() time.Duration {
	return s.accessTTL
}

// translateJWTError maps jwt/v5 parse errors onto the domain token errors.
func translateJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domainerrors.ErrTokenExpired.WrapMessage(err.Error())
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return domainerrors.ErrTokenSignatureInvalid.WrapMessage(err.Error())
	default:
		return domainerrors.ErrTokenMalformed.WrapMessage(err.Error())
	}
}
