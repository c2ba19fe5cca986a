// Package resolve links legacy records to target rows when no shared key
// survived the platform migration. Matching runs in three tiers: a claimed
// legacy id wins outright, then normalized-name equality, then a prefix
// containment check for renamed entities. The first candidate to satisfy a
// tier, in enumeration order, is the match; later candidates never displace
// it, so a run is deterministic for a fixed candidate order.
package resolve

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Confidence grades how a match was found.
type Confidence int

const (
	// ConfidenceNone means no candidate matched.
	ConfidenceNone Confidence = iota
	// ConfidenceFuzzy means the match came from prefix containment.
	ConfidenceFuzzy
	// ConfidenceExact means the names were equal after normalization, or
	// the candidate already claimed the legacy id.
	ConfidenceExact
)

// String returns a lowercase label for logs and audit output.
func (c Confidence) String() string {
	switch c {
	case ConfidenceExact:
		return "exact"
	case ConfidenceFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// LegacyRecord is the source side of a resolution.
type LegacyRecord struct {
	ID   int64
	Name string
}

// Candidate is one target row the record may resolve to.
type Candidate struct {
	ID       uuid.UUID
	LegacyID *int64
	Name     string
}

// Match is the outcome of resolving one legacy record.
type Match struct {
	Candidate  *Candidate
	Confidence Confidence
}

// Found reports whether any candidate matched.
func (m Match) Found() bool { return m.Candidate != nil }

// prefixRunes is how much of a normalized name the containment tier
// compares. Short enough to survive suffix changes like "Restaurant" vs
// "Restaurant & Bar", long enough to keep collisions rare.
const prefixRunes = 10

var caseFolder = cases.Fold()

// Normalize lowercases (Unicode case folding), applies NFKC so visually
// identical names compare equal, and collapses runs of whitespace.
func Normalize(name string) string {
	folded := caseFolder.String(norm.NFKC.String(name))
	return strings.Join(strings.Fields(folded), " ")
}

// prefix returns the first n runes of s, or all of s when shorter.
func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// namesMatch implements the fuzzy tier: equal normalized names, or either
// name containing the first prefixRunes runes of the other.
func namesMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return strings.Contains(a, prefix(b, prefixRunes)) ||
		strings.Contains(b, prefix(a, prefixRunes))
}

// Resolve finds the target candidate for rec, if any. Candidates are
// scanned in the order given; ties go to the earliest candidate.
func Resolve(rec LegacyRecord, candidates []Candidate) Match {
	for i := range candidates {
		c := &candidates[i]
		if c.LegacyID != nil && *c.LegacyID == rec.ID {
			return Match{Candidate: c, Confidence: ConfidenceExact}
		}
	}

	want := Normalize(rec.Name)
	if want == "" {
		return Match{}
	}

	for i := range candidates {
		c := &candidates[i]
		if Normalize(c.Name) == want {
			return Match{Candidate: c, Confidence: ConfidenceExact}
		}
	}

	for i := range candidates {
		c := &candidates[i]
		if namesMatch(want, Normalize(c.Name)) {
			return Match{Candidate: c, Confidence: ConfidenceFuzzy}
		}
	}

	return Match{}
}
