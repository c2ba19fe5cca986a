// Package schedule generates bookable date/time slots for tours. Each tour
// is classified into an operating pattern by keywords in its name and
// description, then the generator fills a rolling window with one slot per
// operating day, skipping dates that already have one.
package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Pattern describes how a class of tours operates: which weekdays it runs,
// how many spots each departure carries, and when it starts.
type Pattern struct {
	Name      string
	Days      []time.Weekday
	Spots     int
	StartHour int
	StartMin  int
}

// RunsOn reports whether the pattern operates on the given weekday.
func (p Pattern) RunsOn(d time.Weekday) bool {
	for _, day := range p.Days {
		if day == d {
			return true
		}
	}
	return false
}

var allWeek = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
	time.Thursday, time.Friday, time.Saturday,
}

// Operating patterns. Permit-limited treks run small and early; city tours
// run large and late; multi-day trips depart three fixed days a week.
var (
	patternGorilla = Pattern{Name: "gorillaTrekking", Days: allWeek, Spots: 8, StartHour: 6}
	patternWild    = Pattern{Name: "wildlife", Days: allWeek, Spots: 15, StartHour: 6, StartMin: 30}
	patternCity    = Pattern{Name: "cityTour", Days: allWeek, Spots: 20, StartHour: 9}
	patternMulti   = Pattern{Name: "multiDay", Days: []time.Weekday{time.Monday, time.Wednesday, time.Friday}, Spots: 10, StartHour: 8}
	patternDefault = Pattern{Name: "adventure", Days: []time.Weekday{time.Friday, time.Saturday, time.Sunday}, Spots: 12, StartHour: 9}
)

// multiDayRe matches durations like "3 day", "5-day", "2 days".
var multiDayRe = regexp.MustCompile(`(\d+)[\s-]*day`)

// Classify picks the operating pattern for a tour from its name and
// description. Order matters: gorilla treks would otherwise also match the
// wildlife keywords.
func Classify(name, description string) Pattern {
	text := strings.ToLower(name + " " + description)

	if strings.Contains(text, "gorilla") {
		return patternGorilla
	}
	for _, kw := range []string{"akagera", "nyungwe", "wildlife", "safari"} {
		if strings.Contains(text, kw) {
			return patternWild
		}
	}
	if strings.Contains(text, "kigali") && (strings.Contains(text, "city") || strings.Contains(text, "tour")) {
		return patternCity
	}
	if m := multiDayRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 1 {
			return patternMulti
		}
	}
	return patternDefault
}
