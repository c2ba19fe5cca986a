package importer

import (
	"context"

	"github.com/google/uuid"

	"github.com/zoea-platform/zmig/pkg/legacy"
	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/runner"
	"github.com/zoea-platform/zmig/pkg/store"
)

// countrySeed carries the ISO codes the legacy schema never stored.
type countrySeed struct {
	name     string
	code     string
	code2    string
	currency string
	phone    string
}

// legacyCountries maps V1 country ids to seed data. Id 2 is a junk row the
// legacy admin UI created; it maps to Rwanda so its venues stay reachable.
var legacyCountries = map[int64]countrySeed{
	1: {"Rwanda", "RWA", "RW", "RWF", "+250"},
	2: {"Rwanda", "RWA", "RW", "RWF", "+250"},
	3: {"Uganda", "UGA", "UG", "UGX", "+256"},
	4: {"Tanzania", "TZA", "TZ", "TZS", "+255"},
	5: {"Kenya", "KEN", "KE", "KES", "+254"},
	6: {"Ghana", "GHA", "GH", "GHS", "+233"},
}

// legacyCities maps V1 location ids to target city names. Ids missing here
// were never referenced by a live venue.
var legacyCities = map[int64]string{
	1: "Kigali",
	2: "Musanze",
	3: "Rubavu",
	4: "Karongi",
	6: "Rusizi",
}

// defaultCityName is where venues with no usable location land.
const defaultCityName = "Kigali"

// LocationStore is the slice of the location repository the importer needs.
type LocationStore interface {
	EnsureCountry(ctx context.Context, c *store.Country) (uuid.UUID, error)
	EnsureCity(ctx context.Context, c *store.City) (uuid.UUID, error)
}

// LocationIndex resolves legacy country/location ids to target-store ids,
// creating the rows on first use and memoizing after.
type LocationIndex struct {
	store     LocationStore
	logger    logging.Logger
	countries map[int64]uuid.UUID
	cities    map[int64]uuid.UUID
}

// NewLocationIndex creates an index over s.
func NewLocationIndex(s LocationStore, logger logging.Logger) *LocationIndex {
	return &LocationIndex{
		store:     s,
		logger:    logger,
		countries: map[int64]uuid.UUID{},
		cities:    map[int64]uuid.UUID{},
	}
}

// Country returns the target country id for a legacy country id. Unknown
// ids fall back to Rwanda.
func (ix *LocationIndex) Country(ctx context.Context, legacyID int64) (uuid.UUID, error) {
	if id, ok := ix.countries[legacyID]; ok {
		return id, nil
	}
	seed, ok := legacyCountries[legacyID]
	if !ok {
		ix.logger.Warn("unknown legacy country, using Rwanda",
			logging.F("legacy_country_id", legacyID))
		seed = legacyCountries[1]
	}
	id, err := ix.store.EnsureCountry(ctx, &store.Country{
		Name:         seed.name,
		Code:         seed.code,
		Code2:        seed.code2,
		CurrencyCode: seed.currency,
		PhoneCode:    seed.phone,
		IsActive:     true,
	})
	if err != nil {
		return uuid.Nil, err
	}
	ix.countries[legacyID] = id
	return id, nil
}

// City returns the target city id for a legacy location id. Unknown ids
// fall back to the default city. All legacy cities are in Rwanda.
func (ix *LocationIndex) City(ctx context.Context, legacyID int64) (uuid.UUID, error) {
	if id, ok := ix.cities[legacyID]; ok {
		return id, nil
	}
	name, ok := legacyCities[legacyID]
	if !ok {
		name = defaultCityName
	}
	countryID, err := ix.Country(ctx, 1)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := ix.store.EnsureCity(ctx, &store.City{
		CountryID: countryID,
		Name:      name,
		Slug:      Slugify(name),
		IsActive:  true,
	})
	if err != nil {
		return uuid.Nil, err
	}
	ix.cities[legacyID] = id
	return id, nil
}

// Seed ensures target rows for the legacy geography up front: every country
// a venue actually references, and every legacy location. Legacy country
// rows no venue points at are skipped; the legacy admin UI accumulated a
// few that never went live.
func (ix *LocationIndex) Seed(ctx context.Context, countries []legacy.Country, referenced []int64, cities []legacy.Location, sum *runner.StageSummary) error {
	refs := make(map[int64]bool, len(referenced))
	for _, id := range referenced {
		refs[id] = true
	}

	for _, c := range countries {
		if !refs[c.ID] {
			sum.Skipped++
			continue
		}
		if _, err := ix.Country(ctx, c.ID); err != nil {
			sum.RecordFailure("country", c.Name, err)
			continue
		}
		sum.Migrated++
	}
	for _, l := range cities {
		if _, err := ix.City(ctx, l.ID); err != nil {
			sum.RecordFailure("city", l.Name, err)
			continue
		}
		sum.Migrated++
	}
	return nil
}
