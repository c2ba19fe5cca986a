package legacy

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/zoea-platform/zmig/config"
	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
)

// Reader is the legacy half of the dual-source reader. It holds one pooled
// connection for the duration of a run; callers must Close it on every exit
// path.
type Reader struct {
	db *sqlx.DB
}

// Open connects to the legacy store. Failure to reach the store is fatal for
// the run and reported as ErrConnection.
func Open(ctx context.Context, cfg config.LegacyStore) (*Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid legacy store config: %w", err)
	}

	db, err := sqlx.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening legacy store: %w: %v", zmerrors.ErrConnection, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging legacy store %s:%d/%s: %w: %v",
			cfg.Host, cfg.Port, cfg.Database, zmerrors.ErrConnection, err)
	}

	return &Reader{db: db}, nil
}

// Close releases the legacy connection.
func (r *Reader) Close() error {
	return r.db.Close()
}

// queryErr tags a failed read with ErrQuery while keeping the driver's
// message visible to the operator.
func queryErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, zmerrors.ErrQuery, err)
}

// Venues returns all legacy venues in venue_id order.
func (r *Reader) Venues(ctx context.Context) ([]Venue, error) {
	var rows []Venue
	err := r.db.SelectContext(ctx, &rows,
		`SELECT venue_id, user_id, category_id, venue_name, venue_code, venue_about,
		        venue_address, venue_phone, venue_email, venue_website, venue_coordinates,
		        venue_price, venue_rating, venue_reviews, venue_status, sponsored,
		        working_hours, country_id, location_id, time_added
		 FROM venues ORDER BY venue_id`)
	if err != nil {
		return nil, queryErr("selecting venues", err)
	}
	return rows, nil
}

// VenuesByUser returns one user's venues in venue_id order.
func (r *Reader) VenuesByUser(ctx context.Context, userID int64) ([]Venue, error) {
	var rows []Venue
	err := r.db.SelectContext(ctx, &rows,
		`SELECT venue_id, user_id, category_id, venue_name, venue_code, venue_about,
		        venue_address, venue_phone, venue_email, venue_website, venue_coordinates,
		        venue_price, venue_rating, venue_reviews, venue_status, sponsored,
		        working_hours, country_id, location_id, time_added
		 FROM venues WHERE user_id = ? ORDER BY venue_id`, userID)
	if err != nil {
		return nil, queryErr(fmt.Sprintf("selecting venues for user %d", userID), err)
	}
	return rows, nil
}

// SponsoredVenues returns venues with a nonzero sponsored rank, highest first.
func (r *Reader) SponsoredVenues(ctx context.Context) ([]Venue, error) {
	var rows []Venue
	err := r.db.SelectContext(ctx, &rows,
		`SELECT venue_id, user_id, category_id, venue_name, venue_code, venue_about,
		        venue_address, venue_phone, venue_email, venue_website, venue_coordinates,
		        venue_price, venue_rating, venue_reviews, venue_status, sponsored,
		        working_hours, country_id, location_id, time_added
		 FROM venues WHERE sponsored > 0 ORDER BY sponsored DESC, venue_id`)
	if err != nil {
		return nil, queryErr("selecting sponsored venues", err)
	}
	return rows, nil
}

// Categories returns all legacy categories, including locked ones, in
// category_id order. Enumeration order matters downstream: when two legacy
// categories share a normalized name, the lowest id wins the backfill.
func (r *Reader) Categories(ctx context.Context) ([]Category, error) {
	var rows []Category
	err := r.db.SelectContext(ctx, &rows,
		`SELECT category_id, category_name, category_status FROM categories ORDER BY category_id`)
	if err != nil {
		return nil, queryErr("selecting categories", err)
	}
	return rows, nil
}

// Users returns all legacy users, including those with minimal data.
func (r *Reader) Users(ctx context.Context) ([]User, error) {
	var rows []User
	err := r.db.SelectContext(ctx, &rows,
		`SELECT user_id, user_fname, user_lname, user_email, user_phone, user_gender,
		        user_location, user_age, user_password, user_status, account_type,
		        user_profile_picture, user_profile_cover, user_reg_date
		 FROM users ORDER BY user_id`)
	if err != nil {
		return nil, queryErr("selecting users", err)
	}
	return rows, nil
}

// Bookings returns all legacy bookings in booking_id order.
func (r *Reader) Bookings(ctx context.Context) ([]Booking, error) {
	var rows []Booking
	err := r.db.SelectContext(ctx, &rows,
		`SELECT booking_id, user_id, venue_id, booking_no, booking_status,
		        checkin_date, checkout_date, adults, children, additional_request,
		        payment_status, booking_time
		 FROM bookings ORDER BY booking_id`)
	if err != nil {
		return nil, queryErr("selecting bookings", err)
	}
	return rows, nil
}

// Reviews returns all legacy reviews in review_id order.
func (r *Reader) Reviews(ctx context.Context) ([]Review, error) {
	var rows []Review
	err := r.db.SelectContext(ctx, &rows,
		`SELECT review_id, user_id, venue_id, rating, review, review_status, review_time
		 FROM reviews ORDER BY review_id`)
	if err != nil {
		return nil, queryErr("selecting reviews", err)
	}
	return rows, nil
}

// Favorites returns all legacy favorites in favorite_id order.
func (r *Reader) Favorites(ctx context.Context) ([]Favorite, error) {
	var rows []Favorite
	err := r.db.SelectContext(ctx, &rows,
		`SELECT favorite_id, user_id, venue_id FROM favorites ORDER BY favorite_id`)
	if err != nil {
		return nil, queryErr("selecting favorites", err)
	}
	return rows, nil
}

// Locations returns all legacy locations in location_id order.
func (r *Reader) Locations(ctx context.Context) ([]Location, error) {
	var rows []Location
	err := r.db.SelectContext(ctx, &rows,
		`SELECT location_id, location_name FROM locations ORDER BY location_id`)
	if err != nil {
		return nil, queryErr("selecting locations", err)
	}
	return rows, nil
}

// Countries returns all legacy countries in country_id order.
func (r *Reader) Countries(ctx context.Context) ([]Country, error) {
	var rows []Country
	err := r.db.SelectContext(ctx, &rows,
		`SELECT country_id, name FROM countries ORDER BY country_id`)
	if err != nil {
		return nil, queryErr("selecting countries", err)
	}
	return rows, nil
}

// VenueCountryIDs returns the distinct non-null country ids referenced by
// venues, used when expanding city mappings.
func (r *Reader) VenueCountryIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids,
		`SELECT DISTINCT country_id FROM venues WHERE country_id IS NOT NULL ORDER BY country_id`)
	if err != nil {
		return nil, queryErr("selecting venue country ids", err)
	}
	return ids, nil
}
