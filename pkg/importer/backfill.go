package importer

import (
	"context"

	"github.com/google/uuid"

	"github.com/zoea-platform/zmig/pkg/legacy"
	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/resolve"
	"github.com/zoea-platform/zmig/pkg/runner"
	"github.com/zoea-platform/zmig/pkg/store"
)

// BackfillStore is the slice of the category repository the backfill needs.
type BackfillStore interface {
	ListWithoutLegacyID(ctx context.Context) ([]store.Category, error)
	ClaimedLegacyIDs(ctx context.Context) ([]int64, error)
	SetLegacyID(ctx context.Context, id uuid.UUID, legacyID int64) error
}

// CategoryBackfill links target categories to their legacy counterparts by
// normalized name equality, so later runs can match on legacy id instead of
// names. Name matching here is deliberately stricter than the venue
// resolver: a wrong category link silently misfiles every venue under it.
type CategoryBackfill struct {
	categories BackfillStore
	logger     logging.Logger
}

// NewCategoryBackfill creates a category backfill.
func NewCategoryBackfill(categories BackfillStore, logger logging.Logger) *CategoryBackfill {
	return &CategoryBackfill{categories: categories, logger: logger}
}

// Run links every unlinked target category whose normalized name equals a
// legacy category's. The lowest legacy id wins a name shared by several
// legacy rows, and a legacy id already held by any target category is
// never handed out again. Unmatched categories are skipped, not failed;
// the target taxonomy is broader than the legacy one.
func (cb *CategoryBackfill) Run(ctx context.Context, legacyCategories []legacy.Category, sum *runner.StageSummary) error {
	unlinked, err := cb.categories.ListWithoutLegacyID(ctx)
	if err != nil {
		return err
	}

	claimedIDs, err := cb.categories.ClaimedLegacyIDs(ctx)
	if err != nil {
		return err
	}
	claimed := make(map[int64]bool, len(claimedIDs))
	for _, id := range claimedIDs {
		claimed[id] = true
	}

	// First occurrence wins; the reader returns legacy categories in id
	// order, so a duplicated name maps to its lowest id.
	byName := make(map[string]int64, len(legacyCategories))
	for _, lc := range legacyCategories {
		name := resolve.Normalize(lc.Name)
		if _, ok := byName[name]; !ok {
			byName[name] = lc.ID
		}
	}

	for _, cat := range unlinked {
		legacyID, ok := byName[resolve.Normalize(cat.Name)]
		if !ok {
			cb.logger.Debug("no legacy counterpart for category",
				logging.F("category", cat.Name))
			sum.Skipped++
			continue
		}
		if claimed[legacyID] {
			cb.logger.Warn("legacy id already claimed",
				logging.F("category", cat.Name),
				logging.F("legacy_id", legacyID))
			sum.Skipped++
			continue
		}

		if err := cb.categories.SetLegacyID(ctx, cat.ID, legacyID); err != nil {
			sum.RecordFailure("category", cat.Slug, err)
			continue
		}
		claimed[legacyID] = true
		cb.logger.Info("linked category to legacy id",
			logging.F("category", cat.Name),
			logging.F("legacy_id", legacyID))
		sum.Migrated++
	}
	return nil
}
