// Package store provides the target-store (PostgreSQL) repositories for the
// migration engine: the target half of the dual-source reader plus the
// idempotent upsert layer. Every write in this package is safe to repeat;
// uniqueness violations are surfaced as ErrAlreadyExists so callers count
// them as skips instead of aborting the batch.
package store

import (
	"time"

	"github.com/google/uuid"
)

// Outcome describes what an upsert actually did.
type Outcome int

const (
	// OutcomeSkipped means the row was already converged; nothing written.
	OutcomeSkipped Outcome = iota
	// OutcomeInserted means a new row was created.
	OutcomeInserted
	// OutcomeUpdated means an existing row was materially different and updated.
	OutcomeUpdated
)

// String returns a lowercase label for run output.
func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeUpdated:
		return "updated"
	default:
		return "skipped"
	}
}

// Listing is a row in the target listings table.
type Listing struct {
	ID               uuid.UUID
	LegacyID         *int64
	MerchantID       *uuid.UUID
	Name             string
	Slug             string
	Description      *string
	ShortDescription *string
	Type             *string
	CategoryID       *uuid.UUID
	CountryID        *uuid.UUID
	CityID           *uuid.UUID
	Address          *string
	Latitude         *float64
	Longitude        *float64
	MinPrice         *float64
	MaxPrice         *float64
	Currency         string
	ContactPhone     *string
	ContactEmail     *string
	Website          *string
	OperatingHours   []byte // JSONB, passed through as raw JSON
	Rating           float64
	ReviewCount      int
	Status           string
	IsFeatured       bool
	CreatedAt        time.Time
	DeletedAt        *time.Time
}

// ListingRef is the slim projection the entity resolver works over.
type ListingRef struct {
	ID         uuid.UUID
	LegacyID   *int64
	Name       string
	Type       *string
	CategoryID *uuid.UUID
	IsFeatured bool
}

// Category is a row in the target categories table.
type Category struct {
	ID       uuid.UUID
	LegacyID *int64
	Name     string
	Slug     string
	ParentID *uuid.UUID
	IsActive bool
}

// Account is a row in the target users table. The engine calls them accounts
// to avoid confusion with legacy users.
type Account struct {
	ID                 uuid.UUID
	LegacyID           *int64
	Email              *string
	PhoneNumber        *string
	FirstName          *string
	LastName           *string
	FullName           string
	PasswordHash       string
	LegacyPasswordHash *string
	PasswordMigrated   bool
	Roles              []string
	IsActive           bool
	CreatedAt          time.Time
}

// Tour is a row in the target tours table.
type Tour struct {
	ID                uuid.UUID
	Name              string
	Description       *string
	CityID            *uuid.UUID
	StartLocationName *string
	Status            string
}

// ScheduleSlot is one bookable date/time instance for a tour. At most one
// slot may exist per (TourID, Date); the insert path enforces this with
// skip-duplicates semantics.
type ScheduleSlot struct {
	TourID         uuid.UUID
	Date           time.Time
	StartTime      *time.Time
	AvailableSpots int
	BookedSpots    int
	IsAvailable    bool
}

// Country is a row in the target countries table.
type Country struct {
	ID           uuid.UUID
	Name         string
	Code         string
	Code2        string
	CurrencyCode string
	PhoneCode    string
	IsActive     bool
}

// City is a row in the target cities table.
type City struct {
	ID        uuid.UUID
	CountryID uuid.UUID
	Name      string
	Slug      string
	IsActive  bool
}

// Booking is a row in the target bookings table (importer subset).
type Booking struct {
	ID              uuid.UUID
	LegacyID        *int64
	UserID          uuid.UUID
	ListingID       uuid.UUID
	BookingNumber   string
	Status          string
	CheckInDate     *time.Time
	CheckOutDate    *time.Time
	GuestCount      int
	Adults          int
	Children        int
	SpecialRequests *string
	TotalAmount     float64
	Currency        string
	PaymentStatus   string
	CreatedAt       time.Time
}

// Review is a row in the target reviews table (importer subset).
type Review struct {
	ID        uuid.UUID
	LegacyID  *int64
	UserID    uuid.UUID
	ListingID uuid.UUID
	Rating    float64
	Content   string
	Status    string
	CreatedAt time.Time
}

// Favorite is a row in the target favorites table (importer subset).
type Favorite struct {
	ID        uuid.UUID
	LegacyID  *int64
	UserID    uuid.UUID
	ListingID uuid.UUID
	CreatedAt time.Time
}
