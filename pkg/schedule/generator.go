package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zoea-platform/zmig/pkg/classify"
	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/store"
)

// DefaultWindowDays is how far ahead the generator fills when the caller
// does not say otherwise.
const DefaultWindowDays = 90

// Slots expands a pattern over a window starting at start (inclusive),
// producing one slot per operating day. Dates are normalized to midnight
// UTC so the (tour, date) uniqueness key is stable across runs.
func Slots(tourID uuid.UUID, p Pattern, start time.Time, days int) []store.ScheduleSlot {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	var out []store.ScheduleSlot
	for i := 0; i < days; i++ {
		d := day.AddDate(0, 0, i)
		if !p.RunsOn(d.Weekday()) {
			continue
		}
		startAt := d.Add(time.Duration(p.StartHour)*time.Hour + time.Duration(p.StartMin)*time.Minute)
		out = append(out, store.ScheduleSlot{
			TourID:         tourID,
			Date:           d,
			StartTime:      &startAt,
			AvailableSpots: p.Spots,
			IsAvailable:    true,
		})
	}
	return out
}

// TourStore is the slice of the tour repository the generator needs.
type TourStore interface {
	ListActive(ctx context.Context) ([]store.Tour, error)
	SetLocation(ctx context.Context, id uuid.UUID, cityID uuid.UUID, startLocation string) error
}

// SlotStore is the slice of the schedule repository the generator needs.
type SlotStore interface {
	InsertSlots(ctx context.Context, slots []store.ScheduleSlot) (int, error)
}

// CityResolver maps a city name to its target-store id.
type CityResolver interface {
	GetCityByName(ctx context.Context, name string) (*store.City, error)
}

// Generator fills schedule windows for every active tour.
type Generator struct {
	tours  TourStore
	slots  SlotStore
	cities CityResolver
	logger logging.Logger
	now    func() time.Time
}

// NewGenerator creates a generator over the given stores.
func NewGenerator(tours TourStore, slots SlotStore, cities CityResolver, logger logging.Logger) *Generator {
	return &Generator{tours: tours, slots: slots, cities: cities, logger: logger, now: time.Now}
}

// TourResult is the per-tour outcome of a generator run.
type TourResult struct {
	TourID   uuid.UUID
	TourName string
	Pattern  string
	Planned  int
	Inserted int
	Err      error
}

// Run generates slots for the next windowDays days for every active tour,
// repairing missing locations along the way. A failure on one tour is
// recorded and the run continues.
func (g *Generator) Run(ctx context.Context, windowDays int) ([]TourResult, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	tours, err := g.tours.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	// The window opens tomorrow; today is never bookable.
	start := g.now().AddDate(0, 0, 1)
	results := make([]TourResult, 0, len(tours))
	for _, tour := range tours {
		desc := ""
		if tour.Description != nil {
			desc = *tour.Description
		}
		p := Classify(tour.Name, desc)
		res := TourResult{TourID: tour.ID, TourName: tour.Name, Pattern: p.Name}

		if tour.CityID == nil {
			if err := g.repairLocation(ctx, tour, desc); err != nil {
				g.logger.Warn("could not set tour location",
					logging.F("tour", tour.Name), logging.Err(err))
			}
		}

		slots := Slots(tour.ID, p, start, windowDays)
		res.Planned = len(slots)
		res.Inserted, res.Err = g.slots.InsertSlots(ctx, slots)

		g.logger.Info("generated schedule",
			logging.F("tour", tour.Name),
			logging.F("pattern", p.Name),
			logging.F("planned", res.Planned),
			logging.F("inserted", res.Inserted))

		results = append(results, res)
	}
	return results, nil
}

func (g *Generator) repairLocation(ctx context.Context, tour store.Tour, desc string) error {
	loc, _ := classify.LocationForTour(tour.Name + " " + desc)
	city, err := g.cities.GetCityByName(ctx, loc.City)
	if err != nil {
		return fmt.Errorf("resolve city %q: %w", loc.City, err)
	}
	return g.tours.SetLocation(ctx, tour.ID, city.ID, loc.StartLocation)
}
