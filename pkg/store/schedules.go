package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
	"github.com/zoea-platform/zmig/pkg/logging"
)

// ScheduleRepository writes schedule slots in the target store.
type ScheduleRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewScheduleRepository creates a schedule repository backed by pool.
func NewScheduleRepository(pool *pgxpool.Pool, logger logging.Logger) *ScheduleRepository {
	return &ScheduleRepository{pool: pool, logger: logger}
}

// InsertSlots writes the given slots with skip-duplicates semantics on the
// (tour_id, date) key and returns how many rows were actually created.
// Re-running the generator over an already-populated window inserts nothing.
func (r *ScheduleRepository) InsertSlots(ctx context.Context, slots []ScheduleSlot) (int, error) {
	const q = `
		INSERT INTO tour_schedules (tour_id, date, start_time, available_spots, booked_spots, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tour_id, date) DO NOTHING`

	inserted := 0
	for _, s := range slots {
		tag, err := r.pool.Exec(ctx, q,
			s.TourID, s.Date, s.StartTime, s.AvailableSpots, s.BookedSpots, s.IsAvailable)
		if err != nil {
			if IsUniqueViolation(err) {
				continue
			}
			return inserted, classifyWriteErr("insert schedule slot", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// CountSlots returns the number of existing slots for a tour, used for run
// reporting.
func (r *ScheduleRepository) CountSlots(ctx context.Context, tourID uuid.UUID) (int64, error) {
	const q = `SELECT COUNT(*) FROM tour_schedules WHERE tour_id = $1`
	var n int64
	if err := r.pool.QueryRow(ctx, q, tourID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count schedule slots: %w: %v", zmerrors.ErrQuery, err)
	}
	return n, nil
}
