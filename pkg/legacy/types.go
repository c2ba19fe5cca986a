// Package legacy provides read-only access to the V1 (MariaDB) store.
// Rows are never mutated by the migration engine; every struct here is a
// faithful, typed view of a legacy table.
package legacy

import "database/sql"

// Venue is a row from the V1 venues table. Free-text fields are nullable in
// the legacy schema and frequently empty or garbage; the importer cleans them.
type Venue struct {
	ID           int64           `db:"venue_id"`
	UserID       int64           `db:"user_id"`
	CategoryID   sql.NullInt64   `db:"category_id"`
	Name         sql.NullString  `db:"venue_name"`
	Code         sql.NullString  `db:"venue_code"`
	About        sql.NullString  `db:"venue_about"`
	Address      sql.NullString  `db:"venue_address"`
	Phone        sql.NullString  `db:"venue_phone"`
	Email        sql.NullString  `db:"venue_email"`
	Website      sql.NullString  `db:"venue_website"`
	Coordinates  sql.NullString  `db:"venue_coordinates"`
	Price        sql.NullFloat64 `db:"venue_price"`
	Rating       sql.NullFloat64 `db:"venue_rating"`
	Reviews      sql.NullInt64   `db:"venue_reviews"`
	Status       sql.NullString  `db:"venue_status"`
	Sponsored    int64           `db:"sponsored"`
	WorkingHours sql.NullString  `db:"working_hours"`
	CountryID    sql.NullInt64   `db:"country_id"`
	LocationID   sql.NullInt64   `db:"location_id"`
	TimeAdded    sql.NullTime    `db:"time_added"`
}

// Category is a row from the V1 categories table.
type Category struct {
	ID     int64          `db:"category_id"`
	Name   string         `db:"category_name"`
	Status sql.NullString `db:"category_status"`
}

// User is a row from the V1 users table.
type User struct {
	ID             int64          `db:"user_id"`
	FirstName      sql.NullString `db:"user_fname"`
	LastName       sql.NullString `db:"user_lname"`
	Email          sql.NullString `db:"user_email"`
	Phone          sql.NullString `db:"user_phone"`
	Gender         sql.NullString `db:"user_gender"`
	Location       sql.NullString `db:"user_location"`
	Age            sql.NullString `db:"user_age"`
	Password       sql.NullString `db:"user_password"`
	Status         sql.NullString `db:"user_status"`
	AccountType    sql.NullString `db:"account_type"`
	ProfilePicture sql.NullString `db:"user_profile_picture"`
	ProfileCover   sql.NullString `db:"user_profile_cover"`
	RegDate        sql.NullTime   `db:"user_reg_date"`
}

// Booking is a row from the V1 bookings table. Check-in/out dates are kept as
// raw strings because the legacy schema stores the sentinel '0000-00-00'.
type Booking struct {
	ID                int64          `db:"booking_id"`
	UserID            int64          `db:"user_id"`
	VenueID           int64          `db:"venue_id"`
	Number            sql.NullString `db:"booking_no"`
	Status            sql.NullString `db:"booking_status"`
	CheckinDate       sql.NullString `db:"checkin_date"`
	CheckoutDate      sql.NullString `db:"checkout_date"`
	Adults            sql.NullInt64  `db:"adults"`
	Children          sql.NullInt64  `db:"children"`
	AdditionalRequest sql.NullString `db:"additional_request"`
	PaymentStatus     sql.NullString `db:"payment_status"`
	BookingTime       sql.NullTime   `db:"booking_time"`
}

// Review is a row from the V1 reviews table. Rating is a string in the legacy
// schema and occasionally non-numeric.
type Review struct {
	ID      int64          `db:"review_id"`
	UserID  int64          `db:"user_id"`
	VenueID int64          `db:"venue_id"`
	Rating  sql.NullString `db:"rating"`
	Review  sql.NullString `db:"review"`
	Status  sql.NullString `db:"review_status"`
	Time    sql.NullTime   `db:"review_time"`
}

// Favorite is a row from the V1 favorites table.
type Favorite struct {
	ID      int64 `db:"favorite_id"`
	UserID  int64 `db:"user_id"`
	VenueID int64 `db:"venue_id"`
}

// Location is a row from the V1 locations table (cities in the target schema).
type Location struct {
	ID   int64  `db:"location_id"`
	Name string `db:"location_name"`
}

// Country is a row from the V1 countries table.
type Country struct {
	ID   int64  `db:"country_id"`
	Name string `db:"name"`
}
