package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
	"github.com/zoea-platform/zmig/pkg/logging"
)

// TourRepository reads and writes tours in the target store.
type TourRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewTourRepository creates a tour repository backed by pool.
func NewTourRepository(pool *pgxpool.Pool, logger logging.Logger) *TourRepository {
	return &TourRepository{pool: pool, logger: logger}
}

// ListActive returns every tour the schedule generator should cover, in a
// stable order.
func (r *TourRepository) ListActive(ctx context.Context) ([]Tour, error) {
	const q = `
		SELECT id, name, description, city_id, start_location_name, status
		FROM tours
		WHERE status = 'active' AND deleted_at IS NULL
		ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list active tours: %w: %v", zmerrors.ErrQuery, err)
	}
	defer rows.Close()

	var out []Tour
	for rows.Next() {
		var t Tour
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CityID, &t.StartLocationName, &t.Status); err != nil {
			return nil, fmt.Errorf("scan tour: %w: %v", zmerrors.ErrQuery, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active tours: %w: %v", zmerrors.ErrQuery, err)
	}
	return out, nil
}

// SetLocation fills in the city and start location of a tour. Used by the
// schedule generator to repair tours imported without a location.
func (r *TourRepository) SetLocation(ctx context.Context, id uuid.UUID, cityID uuid.UUID, startLocation string) error {
	const q = `
		UPDATE tours
		SET city_id = $2, start_location_name = $3, updated_at = NOW()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, cityID, startLocation)
	if err != nil {
		return classifyWriteErr("set tour location", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tour %s: %w", id, zmerrors.ErrNotFound)
	}
	return nil
}
