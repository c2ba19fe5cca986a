package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
		want    bool
	}{
		{"connection direct", ErrConnection, IsConnection, true},
		{"connection wrapped", fmt.Errorf("opening legacy store: %w", ErrConnection), IsConnection, true},
		{"connection mismatch", ErrQuery, IsConnection, false},
		{"query wrapped", fmt.Errorf("fetching venues: %w", ErrQuery), IsQuery, true},
		{"ambiguous wrapped", fmt.Errorf("venue 9999: %w", ErrAmbiguousMatch), IsAmbiguousMatch, true},
		{"constraint wrapped", fmt.Errorf("deleting account: %w", ErrConstraintViolation), IsConstraintViolation, true},
		{"already exists wrapped", fmt.Errorf("inserting slot: %w", ErrAlreadyExists), IsAlreadyExists, true},
		{"not found", ErrNotFound, IsNotFound, true},
		{"validation", ErrValidation, IsValidation, true},
		{"nil error", nil, IsConnection, false},
		{"unrelated error", errors.New("boom"), IsConstraintViolation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.checker(tt.err); got != tt.want {
				t.Errorf("checker(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDoubleWrapping(t *testing.T) {
	err := fmt.Errorf("stage classify: %w", fmt.Errorf("listing 42: %w", ErrConstraintViolation))
	if !IsConstraintViolation(err) {
		t.Errorf("expected ErrConstraintViolation in chain of %v", err)
	}
	if IsAlreadyExists(err) {
		t.Errorf("did not expect ErrAlreadyExists in chain of %v", err)
	}
}
