package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domainerrors "identity/internal/domain/errors"
)

func TestTranslateUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "username constraint",
			err:  &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "idx_users_username"},
			want: domainerrors.ErrUsernameTaken,
		},
		{
			name: "email constraint",
			err:  &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "idx_users_email"},
			want: domainerrors.ErrEmailTaken,
		},
		{
			name: "unknown constraint",
			err:  &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "idx_something_else"},
			want: domainerrors.ErrConflict,
		},
		{
			name: "wrapped pg error",
			err:  errors.Wrap(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "idx_users_email"}, "insert failed"),
			want: domainerrors.ErrEmailTaken,
		},
		{
			name: "gorm duplicated key",
			err:  gorm.ErrDuplicatedKey,
			want: domainerrors.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			translated, ok := translateUniqueViolation(tt.err)
			require.True(t, ok)
			assert.True(t, errors.Is(translated, tt.want))
		})
	}
}

func TestTranslateUniqueViolation_NotAViolation(t *testing.T) {
	for _, err := range []error{
		errors.New("connection refused"),
		&pgconn.PgError{Code: "23502"},
		gorm.ErrRecordNotFound,
	} {
		_, ok := translateUniqueViolation(err)
		assert.False(t, ok, "expected %v not to translate", err)
	}
}
