package importer

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoea-platform/zmig/pkg/legacy"
	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/runner"
	"github.com/zoea-platform/zmig/pkg/store"
)

type fakeEngagement struct {
	bookings  []*store.Booking
	reviews   []*store.Review
	favorites []*store.Favorite
	seen      map[int64]bool
}

func (f *fakeEngagement) InsertBooking(_ context.Context, b *store.Booking) (store.Outcome, error) {
	if f.seen == nil {
		f.seen = map[int64]bool{}
	}
	if b.LegacyID != nil && f.seen[*b.LegacyID] {
		return store.OutcomeSkipped, nil
	}
	if b.LegacyID != nil {
		f.seen[*b.LegacyID] = true
	}
	f.bookings = append(f.bookings, b)
	return store.OutcomeInserted, nil
}

func (f *fakeEngagement) InsertReview(_ context.Context, r *store.Review) (store.Outcome, error) {
	f.reviews = append(f.reviews, r)
	return store.OutcomeInserted, nil
}

func (f *fakeEngagement) InsertFavorite(_ context.Context, fav *store.Favorite) (store.Outcome, error) {
	f.favorites = append(f.favorites, fav)
	return store.OutcomeInserted, nil
}

func migratedWorld(t *testing.T) (*fakeAccounts, *fakeListings) {
	t.Helper()
	fa := newFakeAccounts()
	userLegacy := int64(7)
	phone := "250788123456"
	fa.add(&store.Account{LegacyID: &userLegacy, PhoneNumber: &phone})

	venueLegacy := int64(10)
	fl := newFakeListings(store.ListingRef{ID: uuid.New(), LegacyID: &venueLegacy, Name: "Heaven Restaurant"})
	return fa, fl
}

func TestBookingsImport(t *testing.T) {
	fa, fl := migratedWorld(t)
	fe := &fakeEngagement{}
	im := NewEngagementImporter(fa, fl, fe, logging.NewNop())
	var sum runner.StageSummary

	bookings := []legacy.Booking{{
		ID:           55,
		UserID:       7,
		VenueID:      10,
		Number:       ns(""),
		Status:       ns("Approved"),
		CheckinDate:  ns("2023-06-15"),
		CheckoutDate: ns("0000-00-00"),
		Adults:       sql.NullInt64{Int64: 2, Valid: true},
		Children:     sql.NullInt64{Int64: 1, Valid: true},
		BookingTime:  sql.NullTime{Time: time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC), Valid: true},
	}}

	require.NoError(t, im.Bookings(context.Background(), bookings, &sum))
	assert.Equal(t, 1, sum.Migrated)
	require.Len(t, fe.bookings, 1)

	b := fe.bookings[0]
	assert.Equal(t, "confirmed", b.Status)
	assert.Equal(t, 3, b.GuestCount)
	require.NotNil(t, b.CheckInDate)
	assert.Nil(t, b.CheckOutDate, "zero-date sentinel maps to absent")
	assert.Contains(t, b.BookingNumber, "BK-55-", "missing booking number gets the deterministic fallback")
}

func TestBookingsOrphanRecordedNotFatal(t *testing.T) {
	fa, fl := migratedWorld(t)
	im := NewEngagementImporter(fa, fl, &fakeEngagement{}, logging.NewNop())
	var sum runner.StageSummary

	bookings := []legacy.Booking{{ID: 56, UserID: 999, VenueID: 10}}
	require.NoError(t, im.Bookings(context.Background(), bookings, &sum))
	assert.Equal(t, 1, sum.Failed)
	require.Len(t, sum.Errors, 1)
	assert.Contains(t, sum.Errors[0].Err.Error(), "legacy user 999")
}

func TestReviewsScrubPhoneBodies(t *testing.T) {
	fa, fl := migratedWorld(t)
	fe := &fakeEngagement{}
	im := NewEngagementImporter(fa, fl, fe, logging.NewNop())
	var sum runner.StageSummary

	reviews := []legacy.Review{
		{ID: 1, UserID: 7, VenueID: 10, Rating: ns("4"), Review: ns("Great food!")},
		{ID: 2, UserID: 7, VenueID: 10, Rating: ns("junk"), Review: ns("0788123456")},
	}
	require.NoError(t, im.Reviews(context.Background(), reviews, &sum))
	require.Len(t, fe.reviews, 2)

	assert.Equal(t, 4.0, fe.reviews[0].Rating)
	assert.Equal(t, "Great food!", fe.reviews[0].Content)
	assert.Equal(t, 5.0, fe.reviews[1].Rating, "unparseable rating defaults to 5")
	assert.Empty(t, fe.reviews[1].Content, "phone-number body is scrubbed")
}

func TestFavoritesDedupe(t *testing.T) {
	fa, fl := migratedWorld(t)
	fe := &fakeEngagement{}
	im := NewEngagementImporter(fa, fl, fe, logging.NewNop())
	var sum runner.StageSummary

	favorites := []legacy.Favorite{
		{ID: 1, UserID: 7, VenueID: 10},
		{ID: 2, UserID: 7, VenueID: 10},
	}
	require.NoError(t, im.Favorites(context.Background(), favorites, &sum))
	assert.Equal(t, 1, sum.Migrated)
	assert.Equal(t, 1, sum.Skipped)
	assert.Len(t, fe.favorites, 1)
}
