package classify

import "strings"

// Location pairs a city with the start-location label schedules display.
type Location struct {
	City          string
	StartLocation string
}

// locationRule maps keywords to a Location. Same ordered-first-hit
// semantics as Ruleset, with a struct value.
type locationRule struct {
	keywords []string
	value    Location
}

// tourLocations places a tour by the landmarks its name and description
// mention. National-park rules come before the city rules so "Kigali to
// Volcanoes Gorilla Trek" lands in Musanze, not Kigali.
var tourLocations = []locationRule{
	{[]string{"volcanoes", "gorilla", "golden monkey"}, Location{City: "Musanze", StartLocation: "Volcanoes National Park HQ, Kinigi"}},
	{[]string{"lake kivu", "rubavu", "gisenyi"}, Location{City: "Rubavu", StartLocation: "Rubavu Public Beach"}},
	{[]string{"akagera"}, Location{City: "Kigali", StartLocation: "Akagera National Park Gate"}},
	{[]string{"nyungwe"}, Location{City: "Huye", StartLocation: "Nyungwe Forest Reception"}},
	{[]string{"kigali", "city tour", "genocide memorial"}, Location{City: "Kigali", StartLocation: "Kigali City Center"}},
	{[]string{"musanze", "countryside", "cultural village"}, Location{City: "Musanze", StartLocation: "Musanze Town Center"}},
}

// defaultLocation is where unplaceable tours go. Most of the platform's
// inventory starts from the capital.
var defaultLocation = Location{City: "Kigali", StartLocation: "Kigali City Center"}

// LocationForTour returns the location for a tour given its name and
// description, and whether a rule (rather than the default) decided it.
func LocationForTour(text string) (Location, bool) {
	lower := strings.ToLower(text)
	for _, r := range tourLocations {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.value, true
			}
		}
	}
	return defaultLocation, false
}
