// Package dedupe finds accounts sharing a phone-number pattern, picks the
// most complete one as canonical, and deletes the rest with their dependent
// rows. Runs are dry by default; nothing is deleted until the caller passes
// execute=true.
package dedupe

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is the slice of a target account the resolver scores.
type Account struct {
	ID        uuid.UUID
	Email     *string
	FullName  string
	Phone     string
	CreatedAt time.Time
}

// Completeness weights. Email dominates because it is the only recoverable
// login credential; name and age are tie-breaker signal.
const (
	scoreEmail     = 10
	scoreFullName  = 5
	scoreCreatedAt = 1
)

// Score returns the completeness score of an account.
func Score(a Account) int {
	s := 0
	if a.Email != nil && strings.TrimSpace(*a.Email) != "" {
		s += scoreEmail
	}
	if strings.TrimSpace(a.FullName) != "" {
		s += scoreFullName
	}
	if !a.CreatedAt.IsZero() {
		s += scoreCreatedAt
	}
	return s
}

// StripPrefix removes a leading country code from a phone pattern so
// "250788123" and "788123" group the same accounts.
func StripPrefix(pattern string) string {
	return strings.TrimPrefix(pattern, "250")
}

// Plan is the resolution decision for one duplicate group.
type Plan struct {
	Pattern    string
	Canonical  Account
	Duplicates []Account
}

// BuildPlan decides which account in the group survives. Highest
// completeness score wins; ties go to the oldest account. Groups smaller
// than two need no resolution and return false.
func BuildPlan(pattern string, group []Account) (Plan, bool) {
	if len(group) < 2 {
		return Plan{}, false
	}

	ranked := make([]Account, len(group))
	copy(ranked, group)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := Score(ranked[i]), Score(ranked[j])
		if si != sj {
			return si > sj
		}
		return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
	})

	return Plan{
		Pattern:    pattern,
		Canonical:  ranked[0],
		Duplicates: ranked[1:],
	}, true
}
