package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
	"github.com/zoea-platform/zmig/pkg/legacy"
	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/runner"
	"github.com/zoea-platform/zmig/pkg/store"
)

// AccountLookup resolves legacy user ids to target accounts.
type AccountLookup interface {
	GetByLegacyID(ctx context.Context, legacyID int64) (*store.Account, error)
}

// ListingLookup resolves legacy venue ids to target listings.
type ListingLookup interface {
	GetByLegacyID(ctx context.Context, legacyID int64) (*store.ListingRef, error)
}

// EngagementStore is the slice of the engagement repository the importer
// needs.
type EngagementStore interface {
	InsertBooking(ctx context.Context, b *store.Booking) (store.Outcome, error)
	InsertReview(ctx context.Context, r *store.Review) (store.Outcome, error)
	InsertFavorite(ctx context.Context, f *store.Favorite) (store.Outcome, error)
}

// EngagementImporter migrates bookings, reviews and favorites. It runs
// after the user and venue stages; rows whose user or venue never made it
// across are recorded as failures and the stage continues.
type EngagementImporter struct {
	accounts AccountLookup
	listings ListingLookup
	engage   EngagementStore
	logger   logging.Logger

	userIDs    map[int64]uuid.UUID
	listingIDs map[int64]uuid.UUID
}

// NewEngagementImporter creates an engagement importer.
func NewEngagementImporter(accounts AccountLookup, listings ListingLookup, engage EngagementStore, logger logging.Logger) *EngagementImporter {
	return &EngagementImporter{
		accounts:   accounts,
		listings:   listings,
		engage:     engage,
		logger:     logger,
		userIDs:    map[int64]uuid.UUID{},
		listingIDs: map[int64]uuid.UUID{},
	}
}

func (im *EngagementImporter) userID(ctx context.Context, legacyID int64) (uuid.UUID, error) {
	if id, ok := im.userIDs[legacyID]; ok {
		return id, nil
	}
	acct, err := im.accounts.GetByLegacyID(ctx, legacyID)
	if err != nil {
		return uuid.Nil, err
	}
	im.userIDs[legacyID] = acct.ID
	return acct.ID, nil
}

func (im *EngagementImporter) listingID(ctx context.Context, legacyID int64) (uuid.UUID, error) {
	if id, ok := im.listingIDs[legacyID]; ok {
		return id, nil
	}
	ref, err := im.listings.GetByLegacyID(ctx, legacyID)
	if err != nil {
		return uuid.Nil, err
	}
	im.listingIDs[legacyID] = ref.ID
	return ref.ID, nil
}

// link resolves the user and venue of a legacy row; a missing side returns
// a descriptive error for the failure report.
func (im *EngagementImporter) link(ctx context.Context, userID, venueID int64) (uuid.UUID, uuid.UUID, error) {
	uid, err := im.userID(ctx, userID)
	if err != nil {
		if errors.Is(err, zmerrors.ErrNotFound) {
			return uuid.Nil, uuid.Nil, fmt.Errorf("legacy user %d not migrated: %w", userID, err)
		}
		return uuid.Nil, uuid.Nil, err
	}
	lid, err := im.listingID(ctx, venueID)
	if err != nil {
		if errors.Is(err, zmerrors.ErrNotFound) {
			return uuid.Nil, uuid.Nil, fmt.Errorf("legacy venue %d not migrated: %w", venueID, err)
		}
		return uuid.Nil, uuid.Nil, err
	}
	return uid, lid, nil
}

func countOutcome(sum *runner.StageSummary, outcome store.Outcome) {
	if outcome == store.OutcomeInserted {
		sum.Migrated++
	} else {
		sum.Skipped++
	}
}

// bookingStatuses maps legacy free-text statuses onto the target enum.
var bookingStatuses = map[string]string{
	"confirmed": "confirmed",
	"approved":  "confirmed",
	"completed": "completed",
	"done":      "completed",
	"cancelled": "cancelled",
	"canceled":  "cancelled",
	"rejected":  "cancelled",
	"pending":   "pending",
}

func bookingStatus(raw string) string {
	if s, ok := bookingStatuses[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return "pending"
}

// Bookings migrates legacy bookings.
func (im *EngagementImporter) Bookings(ctx context.Context, bookings []legacy.Booking, sum *runner.StageSummary) error {
	for i := range bookings {
		b := &bookings[i]
		key := fmt.Sprintf("%d", b.ID)

		uid, lid, err := im.link(ctx, b.UserID, b.VenueID)
		if err != nil {
			if errors.Is(err, zmerrors.ErrNotFound) {
				sum.RecordFailure("booking", key, err)
				continue
			}
			return err
		}

		bookedAt := time.Now().UTC()
		if b.BookingTime.Valid {
			bookedAt = b.BookingTime.Time
		}

		adults := int(b.Adults.Int64)
		if adults < 1 {
			adults = 1
		}
		children := int(b.Children.Int64)
		if children < 0 {
			children = 0
		}

		target := &store.Booking{
			LegacyID:      &b.ID,
			UserID:        uid,
			ListingID:     lid,
			BookingNumber: BookingNumber(b.ID, b.Number.String, bookedAt),
			Status:        bookingStatus(b.Status.String),
			GuestCount:    adults + children,
			Adults:        adults,
			Children:      children,
			Currency:      "RWF",
			PaymentStatus: paymentStatus(b.PaymentStatus.String),
			CreatedAt:     bookedAt,
		}
		if d, ok := ParseLegacyDate(b.CheckinDate.String); ok {
			target.CheckInDate = &d
		}
		if d, ok := ParseLegacyDate(b.CheckoutDate.String); ok {
			target.CheckOutDate = &d
		}
		if req := strings.TrimSpace(b.AdditionalRequest.String); req != "" {
			r := Truncate(req, maxAddressLen)
			target.SpecialRequests = &r
		}

		outcome, err := im.engage.InsertBooking(ctx, target)
		if err != nil {
			sum.RecordFailure("booking", key, err)
			continue
		}
		countOutcome(sum, outcome)
	}
	return nil
}

func paymentStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid", "success", "successful":
		return "paid"
	case "refunded":
		return "refunded"
	default:
		return "unpaid"
	}
}

// Reviews migrates legacy reviews, scrubbing bodies that are leaked phone
// numbers.
func (im *EngagementImporter) Reviews(ctx context.Context, reviews []legacy.Review, sum *runner.StageSummary) error {
	for i := range reviews {
		rev := &reviews[i]
		key := fmt.Sprintf("%d", rev.ID)

		uid, lid, err := im.link(ctx, rev.UserID, rev.VenueID)
		if err != nil {
			if errors.Is(err, zmerrors.ErrNotFound) {
				sum.RecordFailure("review", key, err)
				continue
			}
			return err
		}

		body := strings.TrimSpace(rev.Review.String)
		if IsPhoneGarbage(body) {
			im.logger.Debug("scrubbed phone-number review body",
				logging.F("legacy_id", rev.ID))
			body = ""
		}

		createdAt := time.Now().UTC()
		if rev.Time.Valid {
			createdAt = rev.Time.Time
		}

		target := &store.Review{
			LegacyID:  &rev.ID,
			UserID:    uid,
			ListingID: lid,
			Rating:    ParseRating(rev.Rating.String),
			Content:   body,
			Status:    "published",
			CreatedAt: createdAt,
		}
		outcome, err := im.engage.InsertReview(ctx, target)
		if err != nil {
			sum.RecordFailure("review", key, err)
			continue
		}
		countOutcome(sum, outcome)
	}
	return nil
}

// Favorites migrates legacy favorites, collapsing the duplicates the legacy
// app accumulated for the same user and venue.
func (im *EngagementImporter) Favorites(ctx context.Context, favorites []legacy.Favorite, sum *runner.StageSummary) error {
	seen := map[[2]int64]bool{}
	for i := range favorites {
		f := &favorites[i]
		key := fmt.Sprintf("%d", f.ID)

		pair := [2]int64{f.UserID, f.VenueID}
		if seen[pair] {
			sum.Skipped++
			continue
		}
		seen[pair] = true

		uid, lid, err := im.link(ctx, f.UserID, f.VenueID)
		if err != nil {
			if errors.Is(err, zmerrors.ErrNotFound) {
				sum.RecordFailure("favorite", key, err)
				continue
			}
			return err
		}

		outcome, err := im.engage.InsertFavorite(ctx, &store.Favorite{
			LegacyID:  &f.ID,
			UserID:    uid,
			ListingID: lid,
		})
		if err != nil {
			sum.RecordFailure("favorite", key, err)
			continue
		}
		countOutcome(sum, outcome)
	}
	return nil
}
