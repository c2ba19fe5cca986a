// Package importer moves cleaned legacy rows into the target store. Each
// entity family gets one importer; all of them share skip-duplicates write
// semantics so a re-run converges instead of duplicating.
package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Target-schema column limits the importer truncates into.
const (
	maxNameLen        = 255
	maxDescriptionLen = 5000
	maxAddressLen     = 500
)

// legacyZeroDate is MariaDB's sentinel for "no date".
const legacyZeroDate = "0000-00-00"

var slugScrub = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a display name into a URL slug.
func Slugify(name string) string {
	slug := slugScrub.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// ParseCoordinates parses a legacy "lat,lng" string. Legacy rows hold empty
// strings, swapped values and plain garbage; anything outside valid ranges
// is rejected.
func ParseCoordinates(raw string) (lat, lng float64, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}
	return lat, lng, true
}

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone reduces a legacy phone to digits with the 250 country
// prefix. Local forms "07xxxxxxxx" and bare "7xxxxxxxx" both normalize to
// "2507xxxxxxxx". Returns "" when nothing usable remains.
func NormalizePhone(raw string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, "250"):
		return digits
	case strings.HasPrefix(digits, "0"):
		return "250" + digits[1:]
	case len(digits) == 9:
		return "250" + digits
	default:
		return digits
	}
}

// PlaceholderPhone builds the synthetic phone for a legacy user without
// one. The 250999 block is unassigned, so placeholders can never collide
// with a real subscriber number.
func PlaceholderPhone(legacyID int64) string {
	return fmt.Sprintf("250999%06d", legacyID)
}

// ParseLegacyDate parses a legacy date string, treating the '0000-00-00'
// sentinel and empty values as absent.
func ParseLegacyDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, legacyZeroDate) {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BookingNumber returns the legacy booking number, or a deterministic
// fallback for rows that never got one.
func BookingNumber(legacyID int64, number string, bookedAt time.Time) string {
	if n := strings.TrimSpace(number); n != "" {
		return n
	}
	return fmt.Sprintf("BK-%d-%d", legacyID, bookedAt.Unix())
}

// phoneAsText matches review bodies that are just a phone number, which the
// legacy mobile app produced by mis-wiring a form field.
var phoneAsText = regexp.MustCompile(`^[\d\s\+\-\(\)]+$`)

// IsPhoneGarbage reports whether a review body is a leaked phone number
// rather than prose.
func IsPhoneGarbage(body string) bool {
	body = strings.TrimSpace(body)
	return body != "" && len(body) < 20 && phoneAsText.MatchString(body)
}

// ParseRating parses a legacy free-text rating, clamping to the 1..5 scale.
// Unparseable ratings default to 5, matching how the legacy UI displayed
// them.
func ParseRating(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 5
	}
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}
