package auth

import (
	"testing"
	"time"

	"identity/config"
	domainerrors "identity/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(now time.Time, ttl time.Duration) *jwtService {
	return &jwtService{
		secret:    "test-secret",
		accessTTL: ttl,
		now:       func() time.Time { return now },
	}
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	now := time.Now()
	svc := newTestJWTService(now, 30*time.Minute)
	userID := uuid.New()

	token, expiresIn, err := svc.Generate(userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(1800), expiresIn)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(30*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestJWTService_Validate_Expired(t *testing.T) {
	issued := time.Now()
	svc := newTestJWTService(issued, 30*time.Minute)

	token, _, err := svc.Generate(uuid.New())
	require.NoError(t, err)

	// Move the clock past the TTL before validating.
	svc.now = func() time.Time { return issued.Add(31 * time.Minute) }

	_, err = svc.Validate(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrTokenExpired))
}

func TestJWTService_Validate_WrongKey(t *testing.T) {
	now := time.Now()
	issuer := newTestJWTService(now, 30*time.Minute)
	verifier := newTestJWTService(now, 30*time.Minute)
	verifier.secret = "another-secret"

	token, _, err := issuer.Generate(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrTokenSignatureInvalid))
}

func TestJWTService_Validate_Malformed(t *testing.T) {
	svc := newTestJWTService(time.Now(), 30*time.Minute)

	for _, tokenString := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Validate(tokenString)
		require.Error(t, err, "expected error for %q", tokenString)
		assert.True(t, errors.Is(err, domainerrors.ErrTokenMalformed), "expected malformed error for %q", tokenString)
	}
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	cfg := &config.Config{Auth: &config.AuthConfig{AccessTokenTTL: time.Minute}}

	_, err := NewJWTService(cfg)
	assert.Error(t, err)

	cfg.SecretKey.Access = "secret"
	svc, err := NewJWTService(cfg)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, svc.AccessTokenDuration())
}
