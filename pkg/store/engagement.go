package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
	"github.com/zoea-platform/zmig/pkg/logging"
)

// EngagementRepository writes bookings, reviews and favorites in the target
// store. The three share the same skip-duplicates shape, keyed on legacy_id.
type EngagementRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewEngagementRepository creates an engagement repository backed by pool.
func NewEngagementRepository(pool *pgxpool.Pool, logger logging.Logger) *EngagementRepository {
	return &EngagementRepository{pool: pool, logger: logger}
}

func (r *EngagementRepository) legacyExists(ctx context.Context, table string, legacyID *int64) (bool, error) {
	if legacyID == nil {
		return false, nil
	}
	q := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE legacy_id = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, *legacyID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s legacy id: %w: %v", table, zmerrors.ErrQuery, err)
	}
	return exists, nil
}

// InsertBooking creates a booking unless its legacy id is already present.
func (r *EngagementRepository) InsertBooking(ctx context.Context, b *Booking) (Outcome, error) {
	exists, err := r.legacyExists(ctx, "bookings", b.LegacyID)
	if err != nil {
		return OutcomeSkipped, err
	}
	if exists {
		return OutcomeSkipped, nil
	}

	const q = `
		INSERT INTO bookings (
			id, legacy_id, user_id, listing_id, booking_number, status,
			check_in_date, check_out_date, guest_count, adults, children,
			special_requests, total_amount, currency, payment_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (booking_number) DO NOTHING`

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	tag, err := r.pool.Exec(ctx, q,
		b.ID, b.LegacyID, b.UserID, b.ListingID, b.BookingNumber, b.Status,
		b.CheckInDate, b.CheckOutDate, b.GuestCount, b.Adults, b.Children,
		b.SpecialRequests, b.TotalAmount, b.Currency, b.PaymentStatus, b.CreatedAt)
	if err != nil {
		werr := classifyWriteErr("insert booking", err)
		if errors.Is(werr, zmerrors.ErrAlreadyExists) {
			return OutcomeSkipped, nil
		}
		return OutcomeSkipped, werr
	}
	if tag.RowsAffected() == 0 {
		return OutcomeSkipped, nil
	}
	return OutcomeInserted, nil
}

// InsertReview creates a review unless its legacy id is already present.
func (r *EngagementRepository) InsertReview(ctx context.Context, rev *Review) (Outcome, error) {
	exists, err := r.legacyExists(ctx, "reviews", rev.LegacyID)
	if err != nil {
		return OutcomeSkipped, err
	}
	if exists {
		return OutcomeSkipped, nil
	}

	const q = `
		INSERT INTO reviews (id, legacy_id, user_id, listing_id, rating, content, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if rev.ID == uuid.Nil {
		rev.ID = uuid.New()
	}
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now().UTC()
	}
	_, err = r.pool.Exec(ctx, q,
		rev.ID, rev.LegacyID, rev.UserID, rev.ListingID, rev.Rating, rev.Content, rev.Status, rev.CreatedAt)
	if err != nil {
		werr := classifyWriteErr("insert review", err)
		if errors.Is(werr, zmerrors.ErrAlreadyExists) {
			return OutcomeSkipped, nil
		}
		return OutcomeSkipped, werr
	}
	return OutcomeInserted, nil
}

// InsertFavorite creates a favorite unless the (user, listing) pair already
// exists.
func (r *EngagementRepository) InsertFavorite(ctx context.Context, f *Favorite) (Outcome, error) {
	const q = `
		INSERT INTO favorites (id, legacy_id, user_id, listing_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, listing_id) DO NOTHING`

	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	tag, err := r.pool.Exec(ctx, q, f.ID, f.LegacyID, f.UserID, f.ListingID, f.CreatedAt)
	if err != nil {
		werr := classifyWriteErr("insert favorite", err)
		if errors.Is(werr, zmerrors.ErrAlreadyExists) {
			return OutcomeSkipped, nil
		}
		return OutcomeSkipped, werr
	}
	if tag.RowsAffected() == 0 {
		return OutcomeSkipped, nil
	}
	return OutcomeInserted, nil
}
