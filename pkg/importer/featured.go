package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zoea-platform/zmig/pkg/legacy"
	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/resolve"
	"github.com/zoea-platform/zmig/pkg/runner"
	"github.com/zoea-platform/zmig/pkg/store"
)

// FeaturedStore is the slice of the listing repository the featured sync
// needs.
type FeaturedStore interface {
	ListRefs(ctx context.Context) ([]store.ListingRef, error)
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error
	SetLegacyID(ctx context.Context, id uuid.UUID, legacyID int64) error
}

// FeaturedSync carries the legacy sponsorship flags over: every sponsored
// legacy venue gets its target listing marked featured. Listings only gain
// the flag here; nothing is ever un-featured.
type FeaturedSync struct {
	listings FeaturedStore
	logger   logging.Logger
}

// NewFeaturedSync creates a featured sync.
func NewFeaturedSync(listings FeaturedStore, logger logging.Logger) *FeaturedSync {
	return &FeaturedSync{listings: listings, logger: logger}
}

// Run marks the target listings of the given sponsored venues as featured.
func (fs *FeaturedSync) Run(ctx context.Context, sponsored []legacy.Venue, sum *runner.StageSummary) error {
	refs, err := fs.listings.ListRefs(ctx)
	if err != nil {
		return err
	}
	candidates := make([]resolve.Candidate, len(refs))
	featured := map[uuid.UUID]bool{}
	for i, ref := range refs {
		candidates[i] = resolve.Candidate{ID: ref.ID, LegacyID: ref.LegacyID, Name: ref.Name}
		featured[ref.ID] = ref.IsFeatured
	}

	for i := range sponsored {
		v := &sponsored[i]
		key := fmt.Sprintf("%d", v.ID)
		name := strings.TrimSpace(v.Name.String)

		match := resolve.Resolve(resolve.LegacyRecord{ID: v.ID, Name: name}, candidates)
		if !match.Found() {
			sum.RecordFailure("venue", key,
				fmt.Errorf("no target listing for sponsored venue %q", name))
			continue
		}

		if match.Candidate.LegacyID == nil {
			if err := fs.listings.SetLegacyID(ctx, match.Candidate.ID, v.ID); err != nil {
				sum.RecordFailure("venue", key, err)
				continue
			}
			match.Candidate.LegacyID = &v.ID
		}

		if featured[match.Candidate.ID] {
			sum.Skipped++
			continue
		}
		if err := fs.listings.SetFeatured(ctx, match.Candidate.ID, true); err != nil {
			sum.RecordFailure("venue", key, err)
			continue
		}
		featured[match.Candidate.ID] = true
		fs.logger.Info("marked listing featured",
			logging.F("legacy_id", v.ID),
			logging.F("listing", match.Candidate.Name),
			logging.F("confidence", match.Confidence.String()))
		sum.Migrated++
	}
	return nil
}
