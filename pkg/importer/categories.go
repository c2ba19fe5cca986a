package importer

import (
	"context"

	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/runner"
	"github.com/zoea-platform/zmig/pkg/store"
)

// canonicalCategories is the category set the keyword rules classify into.
// Seeded up front so a fresh target store can take a full migration run
// without manual preparation; existing rows are left alone unless their
// name drifted.
var canonicalCategories = []store.Category{
	{Name: "Dining", Slug: "dining", IsActive: true},
	{Name: "Cafes", Slug: "cafes", IsActive: true},
	{Name: "Accommodation", Slug: "accommodation", IsActive: true},
	{Name: "Nightlife", Slug: "nightlife", IsActive: true},
	{Name: "Tours & Experiences", Slug: "tours-experiences", IsActive: true},
	{Name: "Shopping", Slug: "shopping", IsActive: true},
	{Name: "Attractions", Slug: "attractions", IsActive: true},
}

// CategoryStore is the slice of the category repository the seeder needs.
type CategoryStore interface {
	Upsert(ctx context.Context, c *store.Category) (store.Outcome, error)
}

// SeedCategories upserts the canonical category set into the target store.
func SeedCategories(ctx context.Context, categories CategoryStore, logger logging.Logger, sum *runner.StageSummary) error {
	for _, c := range canonicalCategories {
		c := c
		outcome, err := categories.Upsert(ctx, &c)
		if err != nil {
			sum.RecordFailure("category", c.Slug, err)
			continue
		}
		switch outcome {
		case store.OutcomeInserted:
			logger.Info("category created", logging.F("slug", c.Slug))
			sum.Migrated++
		case store.OutcomeUpdated:
			logger.Info("category repaired", logging.F("slug", c.Slug))
			sum.Migrated++
		default:
			sum.Skipped++
		}
	}
	return nil
}
