package importer

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/zoea-platform/zmig/pkg/classify"
	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/runner"
	"github.com/zoea-platform/zmig/pkg/store"
)

// ReclassifyStore is the slice of the listing repository the reclassifier
// needs.
type ReclassifyStore interface {
	ListRefs(ctx context.Context) ([]store.ListingRef, error)
	UpdateClassification(ctx context.Context, id uuid.UUID, listingType *string, categoryID *uuid.UUID) error
}

// Reclassifier reruns the keyword rules over every listing and repairs
// stale types and categories. Safe to run any number of times; converged
// listings are skipped.
type Reclassifier struct {
	listings   ReclassifyStore
	categories CategoryResolver
	logger     logging.Logger
}

// NewReclassifier creates a reclassifier.
func NewReclassifier(listings ReclassifyStore, categories CategoryResolver, logger logging.Logger) *Reclassifier {
	return &Reclassifier{listings: listings, categories: categories, logger: logger}
}

// Run reclassifies every listing.
func (rc *Reclassifier) Run(ctx context.Context, sum *runner.StageSummary) error {
	refs, err := rc.listings.ListRefs(ctx)
	if err != nil {
		return err
	}

	slugIDs := map[string]*uuid.UUID{}
	for _, ref := range refs {
		newType := classify.ListingTypes.Match(ref.Name)
		slug := classify.CategorySlugForType(newType)

		catID, ok := slugIDs[slug]
		if !ok {
			cat, err := rc.categories.GetBySlug(ctx, slug)
			switch {
			case err == nil:
				catID = &cat.ID
			case errors.Is(err, zmerrors.ErrNotFound):
				rc.logger.Warn("category missing in target",
					logging.F("slug", slug))
				catID = nil
			default:
				return err
			}
			slugIDs[slug] = catID
		}

		typeChanged := ref.Type == nil || *ref.Type != newType
		catChanged := catID != nil && (ref.CategoryID == nil || *ref.CategoryID != *catID)
		if !typeChanged && !catChanged {
			sum.Skipped++
			continue
		}

		if err := rc.listings.UpdateClassification(ctx, ref.ID, &newType, catID); err != nil {
			sum.RecordFailure("listing", ref.ID.String(), err)
			continue
		}
		rc.logger.Debug("reclassified listing",
			logging.F("listing", ref.Name),
			logging.F("type", newType),
			logging.F("category", slug))
		sum.Migrated++
	}
	return nil
}
