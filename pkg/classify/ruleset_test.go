package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRulesetFirstMatchWins(t *testing.T) {
	rs := Ruleset{
		Rules: []Rule{
			{Keywords: []string{"gorilla"}, Value: "trek"},
			{Keywords: []string{"tour", "gorilla"}, Value: "generic"},
		},
		Default: "other",
	}

	// Both rules hit; the earlier one must win.
	assert.Equal(t, "trek", rs.Match("Gorilla Tour Package"))
	assert.Equal(t, "generic", rs.Match("City Tour"))
	assert.Equal(t, "other", rs.Match("Boat Cruise"))
}

func TestRulesetIsTotal(t *testing.T) {
	inputs := []string{"", "   ", "xyz", "日本語", "no keywords here at all"}
	for _, in := range inputs {
		assert.Equal(t, ListingTypes.Default, ListingTypes.Match(in), "input %q", in)
	}
}

func TestRulesetMatchRule(t *testing.T) {
	v, matched := ListingTypes.MatchRule("Heaven Restaurant")
	assert.True(t, matched)
	assert.Equal(t, TypeRestaurant, v)

	v, matched = ListingTypes.MatchRule("Mystery Place")
	assert.False(t, matched)
	assert.Equal(t, TypeAttraction, v)
}

func TestListingTypeRules(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Heaven Restaurant", TypeRestaurant},
		{"Question Coffee Cafe", TypeCafe},
		{"Kigali Marriott Hotel", TypeHotel},
		{"Sundowner Bar & Lounge", TypeBar},
		{"Akagera Safari Tours", TypeTour},
		{"Kigali City Mall", TypeShopping},
		{"Kimironko Market", TypeShopping},
		{"Inema Arts Center", TypeAttraction},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ListingTypes.Match(tt.name), "name %q", tt.name)
	}
}

func TestCategorySlugForType(t *testing.T) {
	assert.Equal(t, "accommodation", CategorySlugForType(TypeHotel))
	assert.Equal(t, "dining", CategorySlugForType(TypeRestaurant))
	assert.Equal(t, "dining", CategorySlugForType("unknown-type"))
}

func TestTypeForLegacyCategory(t *testing.T) {
	assert.Equal(t, TypeRestaurant, TypeForLegacyCategory(1))
	assert.Equal(t, TypeHotel, TypeForLegacyCategory(4))
	assert.Equal(t, "", TypeForLegacyCategory(999))
}

func TestLocationForTour(t *testing.T) {
	tests := []struct {
		text     string
		wantCity string
		matched  bool
	}{
		{"Gorilla Trekking in Volcanoes National Park", "Musanze", true},
		// Park rule outranks the Kigali rule even when both hit.
		{"Kigali to Volcanoes Gorilla Trek", "Musanze", true},
		{"Lake Kivu Sunset Cruise", "Rubavu", true},
		{"Nyungwe Canopy Walk", "Huye", true},
		{"Kigali City Tour", "Kigali", true},
		{"Mystery Adventure", "Kigali", false},
	}
	for _, tt := range tests {
		loc, matched := LocationForTour(tt.text)
		assert.Equal(t, tt.wantCity, loc.City, "text %q", tt.text)
		assert.Equal(t, tt.matched, matched, "text %q", tt.text)
	}
}

func TestLocationForTourDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		loc, _ := LocationForTour("Akagera and Nyungwe Combined Safari")
		assert.Equal(t, "Kigali", loc.City)
	}
}
