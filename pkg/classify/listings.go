package classify

// Listing types used in the target store.
const (
	TypeRestaurant = "restaurant"
	TypeCafe       = "cafe"
	TypeHotel      = "hotel"
	TypeBar        = "bar"
	TypeTour       = "tour"
	TypeShopping   = "shopping"
	TypeAttraction = "attraction"
)

// ListingTypes classifies a listing by its name. Specific food-service and
// lodging rules come first; anything unrecognized is an attraction.
var ListingTypes = Ruleset{
	Rules: []Rule{
		{Keywords: []string{"restaurant", "resto", "grill", "kitchen", "cuisine", "pizzeria", "pizza", "buffet"}, Value: TypeRestaurant},
		{Keywords: []string{"cafe", "café", "coffee", "bakery", "patisserie", "creamery"}, Value: TypeCafe},
		{Keywords: []string{"hotel", "lodge", "resort", "guesthouse", "guest house", "apartment", "villa", "hostel", "motel"}, Value: TypeHotel},
		{Keywords: []string{"bar", "pub", "lounge", "club", "brewery"}, Value: TypeBar},
		{Keywords: []string{"tour", "safari", "trek", "expedition", "adventure"}, Value: TypeTour},
		{Keywords: []string{"mall", "market", "boutique", "shop", "store", "supermarket"}, Value: TypeShopping},
	},
	Default: TypeAttraction,
}

// legacyCategoryTypes maps legacy venue category ids to listing types.
// Categories the legacy platform never populated fall through to the
// name-based rules.
var legacyCategoryTypes = map[int64]string{
	1: TypeRestaurant,
	2: TypeBar,
	3: TypeCafe,
	4: TypeHotel,
	5: TypeAttraction,
	6: TypeShopping,
}

// TypeForLegacyCategory returns the listing type for a legacy category id,
// or "" when the id carries no signal.
func TypeForLegacyCategory(id int64) string {
	return legacyCategoryTypes[id]
}

// typeCategorySlugs maps listing types to target category slugs. Types
// without a dedicated category land in dining, the platform's catch-all.
var typeCategorySlugs = map[string]string{
	TypeRestaurant: "dining",
	TypeCafe:       "cafes",
	TypeHotel:      "accommodation",
	TypeBar:        "nightlife",
	TypeTour:       "tours-experiences",
	TypeShopping:   "shopping",
	TypeAttraction: "attractions",
}

// CategorySlugForType returns the target category slug a listing type maps
// to.
func CategorySlugForType(listingType string) string {
	if slug, ok := typeCategorySlugs[listingType]; ok {
		return slug
	}
	return "dining"
}
