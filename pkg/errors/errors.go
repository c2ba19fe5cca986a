// Package errors provides common domain error types for the zmig migration engine.
//
// This package defines sentinel errors for the conditions the migration
// procedures care about: unreachable stores, malformed reads, ambiguous
// entity matches and storage constraint violations. Using typed errors
// enables consistent handling with errors.Is() checks.
//
// Usage:
//
//	import zmerrors "github.com/zoea-platform/zmig/pkg/errors"
//
//	// Return a domain error
//	return nil, fmt.Errorf("opening legacy store: %w", zmerrors.ErrConnection)
//
//	// Check for domain errors
//	if zmerrors.IsAlreadyExists(err) {
//	    // count as skipped, continue the batch
//	}
package errors

import "errors"

// Domain errors - sentinel errors for migration run conditions.
var (
	// ErrConnection indicates a store was unreachable. Fatal for the run:
	// nothing has been written yet, so aborting carries no partial-state risk.
	ErrConnection = errors.New("store connection failed")

	// ErrQuery indicates a malformed or failed read. Fatal for the affected
	// entity only; the batch continues.
	ErrQuery = errors.New("query failed")

	// ErrAmbiguousMatch indicates the entity resolver could not pick a
	// target row. The caller must log and move on, never guess.
	ErrAmbiguousMatch = errors.New("ambiguous match")

	// ErrConstraintViolation indicates a write violated a storage constraint.
	// Recoverable as "already exists" on upserts; fatal for the account when
	// raised mid-cascade, because it means a dependent table was missed.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrAlreadyExists indicates the row is already present in the target
	// store. Upsert callers treat this as a skip, not a failure.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound indicates the requested row was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input, typically a usage error.
	ErrValidation = errors.New("validation error")
)

// IsConnection reports whether any error in err's chain is ErrConnection.
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsQuery reports whether any error in err's chain is ErrQuery.
func IsQuery(err error) bool {
	return errors.Is(err, ErrQuery)
}

// IsAmbiguousMatch reports whether any error in err's chain is ErrAmbiguousMatch.
func IsAmbiguousMatch(err error) bool {
	return errors.Is(err, ErrAmbiguousMatch)
}

// IsConstraintViolation reports whether any error in err's chain is ErrConstraintViolation.
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}

// IsAlreadyExists reports whether any error in err's chain is ErrAlreadyExists.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
