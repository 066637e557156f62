package postgres

import (
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	domainerrors "identity/internal/domain/errors"
)

// PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// translateUniqueViolation maps a storage-level unique constraint violation
// onto the matching domain conflict error. The constraint name decides which
// field is reported; an unrecognized constraint still surfaces as a conflict
// rather than a raw database error, so a concurrent duplicate insert and a
// pre-checked duplicate look identical to callers.
func translateUniqueViolation(err error) (error, bool) {
	constraint, ok := uniqueViolationConstraint(err)
	if !ok {
		return nil, false
	}

	switch {
	case strings.Contains(constraint, "username"):
		return domainerrors.ErrUsernameTaken.WrapMessage("username already exists"), true
	case strings.Contains(constraint, "email"):
		return domainerrors.ErrEmailTaken.WrapMessage("email already exists"), true
	default:
		return domainerrors.ErrConflict.WrapMessage("unique constraint violated"), true
	}
}

// uniqueViolationConstraint reports whether err is a unique constraint
// violation and, when the driver exposes it, the violated constraint name.
func uniqueViolationConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	return "", false
}

func isNotNullConstraintViolation(err error) bool {
	// Check error message for PostgreSQL-specific not null constraint violation patterns
	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "null value") ||
		strings.Contains(errMsg, "not null") ||
		strings.Contains(errMsg, "23502") // PostgreSQL not_null_violation error code
}
