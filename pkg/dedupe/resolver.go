package dedupe

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/store"
)

// Store is the slice of the account repository the resolver needs.
type Store interface {
	FindByPhonePattern(ctx context.Context, pattern string) ([]store.Account, error)
	RelatedCounts(ctx context.Context, id uuid.UUID) (store.RelatedCounts, error)
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

// Deletion is the report row for one duplicate account.
type Deletion struct {
	Account Account
	Score   int
	Related store.RelatedCounts
	Deleted bool
	Err     error
}

// Report summarizes one resolver run.
type Report struct {
	Pattern   string
	Executed  bool
	GroupSize int
	Canonical *Account
	Deletions []Deletion
}

// Failed returns the deletions that errored.
func (r Report) Failed() []Deletion {
	var out []Deletion
	for _, d := range r.Deletions {
		if d.Err != nil {
			out = append(out, d)
		}
	}
	return out
}

// Resolver runs duplicate-account resolution against a target store.
type Resolver struct {
	store  Store
	logger logging.Logger
}

// NewResolver creates a resolver over s.
func NewResolver(s Store, logger logging.Logger) *Resolver {
	return &Resolver{store: s, logger: logger}
}

// Run finds accounts matching the phone pattern and resolves the group.
// With execute=false (the default posture) it reports what would be deleted
// and touches nothing. A referential-integrity failure on one account is
// fatal for that account only; the run continues and the failure appears in
// the report.
func (r *Resolver) Run(ctx context.Context, pattern string, execute bool) (Report, error) {
	if pattern == "" {
		return Report{}, fmt.Errorf("phone pattern is required: %w", zmerrors.ErrValidation)
	}

	matches, err := r.store.FindByPhonePattern(ctx, pattern)
	if err != nil {
		return Report{}, err
	}

	group := make([]Account, 0, len(matches))
	for _, m := range matches {
		phone := ""
		if m.PhoneNumber != nil {
			phone = *m.PhoneNumber
		}
		group = append(group, Account{
			ID:        m.ID,
			Email:     m.Email,
			FullName:  m.FullName,
			Phone:     phone,
			CreatedAt: m.CreatedAt,
		})
	}

	report := Report{Pattern: pattern, Executed: execute, GroupSize: len(group)}

	plan, ok := BuildPlan(pattern, group)
	if !ok {
		r.logger.Info("no duplicates to resolve",
			logging.F("pattern", pattern),
			logging.F("matches", len(group)))
		return report, nil
	}
	report.Canonical = &plan.Canonical

	r.logger.Info("resolved canonical account",
		logging.F("pattern", pattern),
		logging.F("canonical_id", plan.Canonical.ID.String()),
		logging.F("score", Score(plan.Canonical)),
		logging.F("duplicates", len(plan.Duplicates)))

	for _, dup := range plan.Duplicates {
		d := Deletion{Account: dup, Score: Score(dup)}

		d.Related, err = r.store.RelatedCounts(ctx, dup.ID)
		if err != nil {
			d.Err = err
			report.Deletions = append(report.Deletions, d)
			continue
		}

		r.logger.Info("duplicate account",
			logging.F("id", dup.ID.String()),
			logging.F("score", d.Score),
			logging.F("related_rows", d.Related.Total()),
			logging.F("would_delete", !execute))

		if execute {
			if err := r.store.DeleteCascade(ctx, dup.ID); err != nil {
				d.Err = err
				if errors.Is(err, zmerrors.ErrConstraintViolation) {
					r.logger.Error("cascade blocked by foreign key, skipping account",
						logging.F("id", dup.ID.String()),
						logging.Err(err))
				} else {
					r.logger.Error("cascade delete failed",
						logging.F("id", dup.ID.String()),
						logging.Err(err))
				}
			} else {
				d.Deleted = true
			}
		}
		report.Deletions = append(report.Deletions, d)
	}

	return report, nil
}
