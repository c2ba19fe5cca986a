package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zoea-platform/zmig/pkg/classify"
	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
	"github.com/zoea-platform/zmig/pkg/legacy"
	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/resolve"
	"github.com/zoea-platform/zmig/pkg/runner"
	"github.com/zoea-platform/zmig/pkg/store"
)

// defaultOperatingHours covers venues whose legacy working_hours field was
// empty or free text the parser could not use.
var defaultOperatingHours = map[string]string{
	"monday":    "08:00-22:00",
	"tuesday":   "08:00-22:00",
	"wednesday": "08:00-22:00",
	"thursday":  "08:00-22:00",
	"friday":    "08:00-23:00",
	"saturday":  "09:00-23:00",
	"sunday":    "09:00-21:00",
}

// ListingStore is the slice of the listing repository the venue importer
// needs.
type ListingStore interface {
	ListRefs(ctx context.Context) ([]store.ListingRef, error)
	Insert(ctx context.Context, l *store.Listing) (store.Outcome, error)
	SetLegacyID(ctx context.Context, id uuid.UUID, legacyID int64) error
}

// CategoryResolver maps category slugs to target ids.
type CategoryResolver interface {
	GetBySlug(ctx context.Context, slug string) (*store.Category, error)
}

// VenueImporter migrates legacy venues into target listings. Venues already
// present in the target (matched by name) are linked rather than inserted
// again.
type VenueImporter struct {
	listings   ListingStore
	categories CategoryResolver
	locations  *LocationIndex
	logger     logging.Logger
}

// NewVenueImporter creates a venue importer.
func NewVenueImporter(listings ListingStore, categories CategoryResolver, locations *LocationIndex, logger logging.Logger) *VenueImporter {
	return &VenueImporter{
		listings:   listings,
		categories: categories,
		locations:  locations,
		logger:     logger,
	}
}

// Run migrates the given legacy venues.
func (im *VenueImporter) Run(ctx context.Context, venues []legacy.Venue, sum *runner.StageSummary) error {
	refs, err := im.listings.ListRefs(ctx)
	if err != nil {
		return err
	}
	candidates := make([]resolve.Candidate, len(refs))
	for i, ref := range refs {
		candidates[i] = resolve.Candidate{ID: ref.ID, LegacyID: ref.LegacyID, Name: ref.Name}
	}

	for i := range venues {
		v := &venues[i]
		key := fmt.Sprintf("%d", v.ID)
		name := strings.TrimSpace(v.Name.String)
		if name == "" {
			sum.RecordFailure("venue", key, fmt.Errorf("venue has no name: %w", zmerrors.ErrValidation))
			continue
		}

		match := resolve.Resolve(resolve.LegacyRecord{ID: v.ID, Name: name}, candidates)
		if match.Found() {
			if match.Confidence == resolve.ConfidenceFuzzy {
				im.logger.Info("fuzzy venue match",
					logging.F("legacy_id", v.ID),
					logging.F("legacy_name", name),
					logging.F("listing_id", match.Candidate.ID.String()),
					logging.F("listing_name", match.Candidate.Name))
			}
			if match.Candidate.LegacyID == nil {
				if err := im.listings.SetLegacyID(ctx, match.Candidate.ID, v.ID); err != nil {
					sum.RecordFailure("venue", key, err)
					continue
				}
				match.Candidate.LegacyID = &v.ID
			}
			sum.Skipped++
			continue
		}

		listing, err := im.build(ctx, v, name)
		if err != nil {
			sum.RecordFailure("venue", key, err)
			continue
		}

		outcome, err := im.listings.Insert(ctx, listing)
		if err != nil {
			sum.RecordFailure("venue", key, err)
			continue
		}
		if outcome == store.OutcomeInserted {
			sum.Migrated++
			candidates = append(candidates, resolve.Candidate{
				ID: listing.ID, LegacyID: &v.ID, Name: listing.Name,
			})
		} else {
			sum.Skipped++
		}
	}
	return nil
}

func (im *VenueImporter) build(ctx context.Context, v *legacy.Venue, name string) (*store.Listing, error) {
	listingType := classify.TypeForLegacyCategory(v.CategoryID.Int64)
	if listingType == "" {
		listingType = classify.ListingTypes.Match(name)
	}

	l := &store.Listing{
		LegacyID: &v.ID,
		Name:     Truncate(name, maxNameLen),
		Slug:     Slugify(name),
		Type:     &listingType,
		Currency: "RWF",
		Status:   venueStatus(v.Status.String),
	}

	cat, err := im.categories.GetBySlug(ctx, classify.CategorySlugForType(listingType))
	if err == nil {
		l.CategoryID = &cat.ID
	} else if !errors.Is(err, zmerrors.ErrNotFound) {
		return nil, err
	}

	if about := strings.TrimSpace(v.About.String); about != "" {
		desc := Truncate(about, maxDescriptionLen)
		l.Description = &desc
		short := Truncate(about, maxAddressLen)
		l.ShortDescription = &short
	}
	if addr := strings.TrimSpace(v.Address.String); addr != "" {
		a := Truncate(addr, maxAddressLen)
		l.Address = &a
	}
	if lat, lng, ok := ParseCoordinates(v.Coordinates.String); ok {
		l.Latitude = &lat
		l.Longitude = &lng
	}
	if v.Price.Valid && v.Price.Float64 > 0 {
		price := v.Price.Float64
		l.MinPrice = &price
	}
	if phone := NormalizePhone(v.Phone.String); phone != "" {
		l.ContactPhone = &phone
	}
	if email := strings.ToLower(strings.TrimSpace(v.Email.String)); email != "" {
		l.ContactEmail = &email
	}
	if site := strings.TrimSpace(v.Website.String); site != "" {
		l.Website = &site
	}
	if v.Rating.Valid {
		l.Rating = v.Rating.Float64
	}
	if v.Reviews.Valid {
		l.ReviewCount = int(v.Reviews.Int64)
	}
	l.IsFeatured = v.Sponsored > 0

	countryID, err := im.locations.Country(ctx, v.CountryID.Int64)
	if err != nil {
		return nil, err
	}
	l.CountryID = &countryID
	cityID, err := im.locations.City(ctx, v.LocationID.Int64)
	if err != nil {
		return nil, err
	}
	l.CityID = &cityID

	hours, err := json.Marshal(defaultOperatingHours)
	if err != nil {
		return nil, fmt.Errorf("marshal operating hours: %w", err)
	}
	l.OperatingHours = hours

	if v.TimeAdded.Valid {
		l.CreatedAt = v.TimeAdded.Time
	} else {
		l.CreatedAt = time.Now().UTC()
	}
	return l, nil
}

func venueStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", "active", "1", "approved":
		return "active"
	case "pending", "review":
		return "pending"
	default:
		return "inactive"
	}
}
