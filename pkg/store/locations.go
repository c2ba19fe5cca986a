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

// LocationRepository reads and writes countries and cities in the target
// store.
type LocationRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewLocationRepository creates a location repository backed by pool.
func NewLocationRepository(pool *pgxpool.Pool, logger logging.Logger) *LocationRepository {
	return &LocationRepository{pool: pool, logger: logger}
}

// GetCountryByCode returns the country with the given ISO alpha-3 code, or
// ErrNotFound.
func (r *LocationRepository) GetCountryByCode(ctx context.Context, code string) (*Country, error) {
	const q = `
		SELECT id, name, code, code2, currency_code, phone_code, is_active
		FROM countries WHERE code = $1`

	c := &Country{}
	err := r.pool.QueryRow(ctx, q, code).Scan(
		&c.ID, &c.Name, &c.Code, &c.Code2, &c.CurrencyCode, &c.PhoneCode, &c.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("country code=%s: %w", code, zmerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get country: %w: %v", zmerrors.ErrQuery, err)
	}
	return c, nil
}

// EnsureCountry creates the country if its code is new and returns its id
// either way.
func (r *LocationRepository) EnsureCountry(ctx context.Context, c *Country) (uuid.UUID, error) {
	if existing, err := r.GetCountryByCode(ctx, c.Code); err == nil {
		return existing.ID, nil
	} else if !errors.Is(err, zmerrors.ErrNotFound) {
		return uuid.Nil, err
	}

	const q = `
		INSERT INTO countries (id, name, code, code2, currency_code, phone_code, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO NOTHING`

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	tag, err := r.pool.Exec(ctx, q, c.ID, c.Name, c.Code, c.Code2, c.CurrencyCode, c.PhoneCode, c.IsActive)
	if err != nil {
		werr := classifyWriteErr("insert country", err)
		if !errors.Is(werr, zmerrors.ErrAlreadyExists) {
			return uuid.Nil, werr
		}
	}
	if err == nil && tag.RowsAffected() > 0 {
		return c.ID, nil
	}
	// Lost the race; the row exists now.
	existing, err := r.GetCountryByCode(ctx, c.Code)
	if err != nil {
		return uuid.Nil, err
	}
	return existing.ID, nil
}

// GetCityBySlug returns the city with the given slug inside a country, or
// ErrNotFound.
func (r *LocationRepository) GetCityBySlug(ctx context.Context, countryID uuid.UUID, slug string) (*City, error) {
	const q = `
		SELECT id, country_id, name, slug, is_active
		FROM cities WHERE country_id = $1 AND slug = $2`

	c := &City{}
	err := r.pool.QueryRow(ctx, q, countryID, slug).Scan(&c.ID, &c.CountryID, &c.Name, &c.Slug, &c.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("city slug=%q: %w", slug, zmerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get city: %w: %v", zmerrors.ErrQuery, err)
	}
	return c, nil
}

// GetCityByName returns the city with the given name (case-insensitive,
// any country), or ErrNotFound.
func (r *LocationRepository) GetCityByName(ctx context.Context, name string) (*City, error) {
	const q = `
		SELECT id, country_id, name, slug, is_active
		FROM cities WHERE LOWER(name) = LOWER($1)
		ORDER BY created_at LIMIT 1`

	c := &City{}
	err := r.pool.QueryRow(ctx, q, name).Scan(&c.ID, &c.CountryID, &c.Name, &c.Slug, &c.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("city name=%q: %w", name, zmerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get city: %w: %v", zmerrors.ErrQuery, err)
	}
	return c, nil
}

// EnsureCity creates the city if its slug is new in the country and returns
// its id either way.
func (r *LocationRepository) EnsureCity(ctx context.Context, c *City) (uuid.UUID, error) {
	if existing, err := r.GetCityBySlug(ctx, c.CountryID, c.Slug); err == nil {
		return existing.ID, nil
	} else if !errors.Is(err, zmerrors.ErrNotFound) {
		return uuid.Nil, err
	}

	const q = `
		INSERT INTO cities (id, country_id, name, slug, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (country_id, slug) DO NOTHING`

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	tag, err := r.pool.Exec(ctx, q, c.ID, c.CountryID, c.Name, c.Slug, c.IsActive)
	if err != nil {
		werr := classifyWriteErr("insert city", err)
		if !errors.Is(werr, zmerrors.ErrAlreadyExists) {
			return uuid.Nil, werr
		}
	}
	if err == nil && tag.RowsAffected() > 0 {
		return c.ID, nil
	}
	existing, err := r.GetCityBySlug(ctx, c.CountryID, c.Slug)
	if err != nil {
		return uuid.Nil, err
	}
	return existing.ID, nil
}
