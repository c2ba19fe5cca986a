package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
	"github.com/zoea-platform/zmig/pkg/logging"
)

// ListingRepository reads and writes listings in the target store.
type ListingRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewListingRepository creates a listing repository backed by pool.
func NewListingRepository(pool *pgxpool.Pool, logger logging.Logger) *ListingRepository {
	return &ListingRepository{pool: pool, logger: logger}
}

// GetByLegacyID returns the listing claiming legacyID, or ErrNotFound.
func (r *ListingRepository) GetByLegacyID(ctx context.Context, legacyID int64) (*ListingRef, error) {
	const q = `
		SELECT id, legacy_id, name, type, category_id, is_featured
		FROM listings
		WHERE legacy_id = $1 AND deleted_at IS NULL`

	ref := &ListingRef{}
	err := r.pool.QueryRow(ctx, q, legacyID).Scan(
		&ref.ID, &ref.LegacyID, &ref.Name, &ref.Type, &ref.CategoryID, &ref.IsFeatured)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("listing legacy_id=%d: %w", legacyID, zmerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get listing by legacy id: %w: %v", zmerrors.ErrQuery, err)
	}
	return ref, nil
}

// GetBySlug returns the listing with the given slug, or ErrNotFound.
func (r *ListingRepository) GetBySlug(ctx context.Context, slug string) (*ListingRef, error) {
	const q = `
		SELECT id, legacy_id, name, type, category_id, is_featured
		FROM listings
		WHERE slug = $1 AND deleted_at IS NULL`

	ref := &ListingRef{}
	err := r.pool.QueryRow(ctx, q, slug).Scan(
		&ref.ID, &ref.LegacyID, &ref.Name, &ref.Type, &ref.CategoryID, &ref.IsFeatured)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("listing slug=%q: %w", slug, zmerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get listing by slug: %w: %v", zmerrors.ErrQuery, err)
	}
	return ref, nil
}

// ListRefs returns all live listings as resolver candidates, in a stable
// order so fuzzy matching stays deterministic across runs.
func (r *ListingRepository) ListRefs(ctx context.Context) ([]ListingRef, error) {
	const q = `
		SELECT id, legacy_id, name, type, category_id, is_featured
		FROM listings
		WHERE deleted_at IS NULL
		ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w: %v", zmerrors.ErrQuery, err)
	}
	defer rows.Close()

	var refs []ListingRef
	for rows.Next() {
		var ref ListingRef
		if err := rows.Scan(&ref.ID, &ref.LegacyID, &ref.Name, &ref.Type, &ref.CategoryID, &ref.IsFeatured); err != nil {
			return nil, fmt.Errorf("scan listing: %w: %v", zmerrors.ErrQuery, err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list listings: %w: %v", zmerrors.ErrQuery, err)
	}
	return refs, nil
}

// Insert creates a listing with skip-duplicates semantics on the slug
// natural key. Returns OutcomeSkipped when the slug already exists.
func (r *ListingRepository) Insert(ctx context.Context, l *Listing) (Outcome, error) {
	if _, err := r.GetBySlug(ctx, l.Slug); err == nil {
		return OutcomeSkipped, nil
	} else if !errors.Is(err, zmerrors.ErrNotFound) {
		return OutcomeSkipped, err
	}

	const q = `
		INSERT INTO listings (
			id, legacy_id, merchant_id, name, slug, description, short_description,
			type, category_id, country_id, city_id, address, latitude, longitude,
			min_price, max_price, currency, contact_phone, contact_email, website,
			operating_hours, rating, review_count, status, is_featured, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26
		)
		ON CONFLICT (slug) DO NOTHING`

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	tag, err := r.pool.Exec(ctx, q,
		l.ID, l.LegacyID, l.MerchantID, l.Name, l.Slug, l.Description, l.ShortDescription,
		l.Type, l.CategoryID, l.CountryID, l.CityID, l.Address, l.Latitude, l.Longitude,
		l.MinPrice, l.MaxPrice, l.Currency, l.ContactPhone, l.ContactEmail, l.Website,
		l.OperatingHours, l.Rating, l.ReviewCount, l.Status, l.IsFeatured, l.CreatedAt)
	if err != nil {
		werr := classifyWriteErr("insert listing", err)
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

// SetLegacyID stamps a listing with the legacy id it was resolved to.
func (r *ListingRepository) SetLegacyID(ctx context.Context, id uuid.UUID, legacyID int64) error {
	const q = `UPDATE listings SET legacy_id = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, id, legacyID); err != nil {
		return classifyWriteErr("set listing legacy id", err)
	}
	return nil
}

// SetFeatured flips the featured flag on a listing.
func (r *ListingRepository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	const q = `UPDATE listings SET is_featured = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, featured)
	if err != nil {
		return classifyWriteErr("set listing featured", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing %s: %w", id, zmerrors.ErrNotFound)
	}
	return nil
}

// UpdateClassification sets the type and category of a listing. Either field
// may be nil to leave it unchanged.
func (r *ListingRepository) UpdateClassification(ctx context.Context, id uuid.UUID, listingType *string, categoryID *uuid.UUID) error {
	const q = `
		UPDATE listings
		SET type = COALESCE($2, type),
		    category_id = COALESCE($3, category_id),
		    updated_at = NOW()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, listingType, categoryID)
	if err != nil {
		return classifyWriteErr("update listing classification", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing %s: %w", id, zmerrors.ErrNotFound)
	}
	return nil
}
