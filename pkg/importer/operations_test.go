package importer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoea-platform/zmig/pkg/legacy"
	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/runner"
	"github.com/zoea-platform/zmig/pkg/store"
)

func TestFeaturedSyncMarksMatchedListing(t *testing.T) {
	target := store.ListingRef{ID: uuid.New(), Name: "Heaven Restaurant"}
	fl := newFakeListings(target)
	fs := NewFeaturedSync(fl, logging.NewNop())
	var sum runner.StageSummary

	err := fs.Run(context.Background(), []legacy.Venue{legacyVenue(10, "Heaven Restaurant")}, &sum)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Migrated)
	assert.True(t, fl.featured[target.ID])
	assert.Equal(t, int64(10), fl.linked[target.ID])
}

func TestFeaturedSyncAlreadyFeaturedSkips(t *testing.T) {
	lid := int64(10)
	target := store.ListingRef{ID: uuid.New(), LegacyID: &lid, Name: "Heaven Restaurant", IsFeatured: true}
	fl := newFakeListings(target)
	fs := NewFeaturedSync(fl, logging.NewNop())
	var sum runner.StageSummary

	err := fs.Run(context.Background(), []legacy.Venue{legacyVenue(10, "Heaven Restaurant")}, &sum)
	require.NoError(t, err)

	assert.Equal(t, 0, sum.Migrated)
	assert.Equal(t, 1, sum.Skipped)
}

func TestFeaturedSyncUnmatchedVenueFails(t *testing.T) {
	fl := newFakeListings()
	fs := NewFeaturedSync(fl, logging.NewNop())
	var sum runner.StageSummary

	err := fs.Run(context.Background(), []legacy.Venue{legacyVenue(99, "Ghost Venue")}, &sum)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Failed)
	assert.Empty(t, fl.featured)
}

type fakeBackfillStore struct {
	unlinked []store.Category
	claimed  []int64
	linked   map[uuid.UUID]int64
}

func (f *fakeBackfillStore) ListWithoutLegacyID(context.Context) ([]store.Category, error) {
	return f.unlinked, nil
}

func (f *fakeBackfillStore) ClaimedLegacyIDs(context.Context) ([]int64, error) {
	return f.claimed, nil
}

func (f *fakeBackfillStore) SetLegacyID(_ context.Context, id uuid.UUID, legacyID int64) error {
	if f.linked == nil {
		f.linked = map[uuid.UUID]int64{}
	}
	f.linked[id] = legacyID
	return nil
}

func TestCategoryBackfill(t *testing.T) {
	dining := store.Category{ID: uuid.New(), Name: "Restaurants", Slug: "dining"}
	spa := store.Category{ID: uuid.New(), Name: "Wellness & Spa", Slug: "wellness"}
	fb := &fakeBackfillStore{unlinked: []store.Category{dining, spa}}

	cb := NewCategoryBackfill(fb, logging.NewNop())
	var sum runner.StageSummary

	err := cb.Run(context.Background(), []legacy.Category{
		{ID: 1, Name: "  RESTAURANTS "},
		{ID: 2, Name: "Bars"},
	}, &sum)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Migrated)
	assert.Equal(t, 1, sum.Skipped, "no legacy counterpart is a skip, not a failure")
	assert.Equal(t, int64(1), fb.linked[dining.ID])
	_, ok := fb.linked[spa.ID]
	assert.False(t, ok)
}

func TestCategoryBackfillRequiresExactName(t *testing.T) {
	hall := store.Category{ID: uuid.New(), Name: "Dining Hall", Slug: "dining-hall"}
	fb := &fakeBackfillStore{unlinked: []store.Category{hall}}

	cb := NewCategoryBackfill(fb, logging.NewNop())
	var sum runner.StageSummary

	err := cb.Run(context.Background(), []legacy.Category{{ID: 3, Name: "Dining"}}, &sum)
	require.NoError(t, err)

	assert.Equal(t, 0, sum.Migrated)
	assert.Equal(t, 1, sum.Skipped, "a name prefix is not a category match")
	assert.Empty(t, fb.linked)
}

func TestCategoryBackfillLegacyIDClaimedOnce(t *testing.T) {
	first := store.Category{ID: uuid.New(), Name: "Dining", Slug: "dining"}
	second := store.Category{ID: uuid.New(), Name: "Dining", Slug: "dining-legacy"}
	fb := &fakeBackfillStore{unlinked: []store.Category{first, second}}

	cb := NewCategoryBackfill(fb, logging.NewNop())
	var sum runner.StageSummary

	err := cb.Run(context.Background(), []legacy.Category{{ID: 3, Name: "Dining"}}, &sum)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Migrated)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, int64(3), fb.linked[first.ID])
	_, ok := fb.linked[second.ID]
	assert.False(t, ok, "a legacy id is handed out at most once per run")
}

func TestCategoryBackfillSkipsAlreadyClaimedID(t *testing.T) {
	dup := store.Category{ID: uuid.New(), Name: "Bars", Slug: "bars-legacy"}
	fb := &fakeBackfillStore{unlinked: []store.Category{dup}, claimed: []int64{2}}

	cb := NewCategoryBackfill(fb, logging.NewNop())
	var sum runner.StageSummary

	err := cb.Run(context.Background(), []legacy.Category{{ID: 2, Name: "Bars"}}, &sum)
	require.NoError(t, err)

	assert.Equal(t, 0, sum.Migrated)
	assert.Equal(t, 1, sum.Skipped)
	assert.Empty(t, fb.linked)
}

func TestReclassifierRepairsStaleType(t *testing.T) {
	stale := "attraction"
	ref := store.ListingRef{ID: uuid.New(), Name: "Heaven Restaurant", Type: &stale}
	fl := newFakeListings(ref)
	rc := NewReclassifier(fl, testCategories(), logging.NewNop())
	var sum runner.StageSummary

	err := rc.Run(context.Background(), &sum)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Migrated)
	assert.Equal(t, "restaurant", *fl.refs[0].Type)
}

func TestReclassifierConvergedListingSkips(t *testing.T) {
	dining := testCategories()
	cat := dining.bySlug["dining"]
	typ := "restaurant"
	ref := store.ListingRef{ID: uuid.New(), Name: "Heaven Restaurant", Type: &typ, CategoryID: &cat.ID}
	fl := newFakeListings(ref)
	rc := NewReclassifier(fl, dining, logging.NewNop())
	var sum runner.StageSummary

	err := rc.Run(context.Background(), &sum)
	require.NoError(t, err)

	assert.Equal(t, 0, sum.Migrated)
	assert.Equal(t, 1, sum.Skipped)
}

type fakeCategoryStore struct {
	bySlug map[string]store.Category
}

func (f *fakeCategoryStore) Upsert(_ context.Context, c *store.Category) (store.Outcome, error) {
	if f.bySlug == nil {
		f.bySlug = map[string]store.Category{}
	}
	if existing, ok := f.bySlug[c.Slug]; ok {
		c.ID = existing.ID
		if existing.Name == c.Name {
			return store.OutcomeSkipped, nil
		}
		existing.Name = c.Name
		f.bySlug[c.Slug] = existing
		return store.OutcomeUpdated, nil
	}
	c.ID = uuid.New()
	f.bySlug[c.Slug] = *c
	return store.OutcomeInserted, nil
}

func TestSeedCategoriesFreshStore(t *testing.T) {
	fc := &fakeCategoryStore{}
	var sum runner.StageSummary

	err := SeedCategories(context.Background(), fc, logging.NewNop(), &sum)
	require.NoError(t, err)

	assert.Equal(t, len(canonicalCategories), sum.Migrated)
	assert.Contains(t, fc.bySlug, "dining")
	assert.Contains(t, fc.bySlug, "tours-experiences")
}

func TestSeedCategoriesIdempotent(t *testing.T) {
	fc := &fakeCategoryStore{}
	var first, second runner.StageSummary

	require.NoError(t, SeedCategories(context.Background(), fc, logging.NewNop(), &first))
	require.NoError(t, SeedCategories(context.Background(), fc, logging.NewNop(), &second))

	assert.Equal(t, 0, second.Migrated)
	assert.Equal(t, len(canonicalCategories), second.Skipped)
}

func TestSeedCategoriesRepairsDriftedName(t *testing.T) {
	fc := &fakeCategoryStore{}
	require.NoError(t, SeedCategories(context.Background(), fc, logging.NewNop(), &runner.StageSummary{}))

	drifted := fc.bySlug["dining"]
	drifted.Name = "Food"
	fc.bySlug["dining"] = drifted

	var sum runner.StageSummary
	require.NoError(t, SeedCategories(context.Background(), fc, logging.NewNop(), &sum))

	assert.Equal(t, "Dining", fc.bySlug["dining"].Name)
	assert.Equal(t, 1, sum.Migrated)
	assert.Equal(t, len(canonicalCategories)-1, sum.Skipped)
}
