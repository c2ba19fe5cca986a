// Package classify assigns types, categories and locations to migrated
// entities using ordered keyword rules. Rules are evaluated top to bottom
// and the first hit wins, so specific rules must be listed before the
// generic ones they would otherwise shadow. Every ruleset carries a default
// value; classification is total.
package classify

import "strings"

// Rule maps a set of keywords to a value. A rule matches when any of its
// keywords is a substring of the lowercased input.
type Rule struct {
	Keywords []string
	Value    string
}

// Ruleset is an ordered rule list with a fallback value.
type Ruleset struct {
	Rules   []Rule
	Default string
}

// Match returns the value of the first rule whose keywords hit text, or the
// default when nothing matches.
func (rs Ruleset) Match(text string) string {
	lower := strings.ToLower(text)
	for _, r := range rs.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Value
			}
		}
	}
	return rs.Default
}

// MatchRule is like Match but also reports which rule fired; matched is
// false when the default was used.
func (rs Ruleset) MatchRule(text string) (value string, matched bool) {
	lower := strings.ToLower(text)
	for _, r := range rs.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Value, true
			}
		}
	}
	return rs.Default, false
}
