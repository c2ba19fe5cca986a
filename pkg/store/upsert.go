package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
)

// Postgres error classes the upsert layer distinguishes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. A concurrent writer can win the race between our natural-key
// lookup and the insert; when that happens the row exists and the insert
// must be counted as a skip, not a failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

// IsForeignKeyViolation reports whether err is a Postgres foreign-key
// violation, which the duplicate resolver maps to a referential-integrity
// failure for the affected account.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return false
}

// classifyWriteErr maps driver errors onto the package sentinels so callers
// can branch with errors.Is instead of inspecting SQLSTATE codes.
func classifyWriteErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case IsUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, zmerrors.ErrAlreadyExists)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%s: %w: %v", op, zmerrors.ErrConstraintViolation, err)
	default:
		return fmt.Errorf("%s: %w: %v", op, zmerrors.ErrQuery, err)
	}
}
