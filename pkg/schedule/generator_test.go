package schedule

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/store"
)

func TestSlotsDailyPattern(t *testing.T) {
	id := uuid.New()
	start := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC) // a Monday, mid-afternoon

	slots := Slots(id, patternGorilla, start, 7)
	require.Len(t, slots, 7, "daily pattern covers every day")

	first := slots[0]
	assert.Equal(t, id, first.TourID)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), first.Date, "date normalized to midnight")
	require.NotNil(t, first.StartTime)
	assert.Equal(t, 6, first.StartTime.Hour())
	assert.Equal(t, 8, first.AvailableSpots)
	assert.True(t, first.IsAvailable)
	assert.Zero(t, first.BookedSpots)
}

func TestSlotsWeekdaySubset(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday

	slots := Slots(uuid.New(), patternMulti, start, 14)
	require.Len(t, slots, 6, "Mon/Wed/Fri over two weeks")
	for _, s := range slots {
		wd := s.Date.Weekday()
		assert.Contains(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, wd)
	}
}

func TestSlotsStartMinute(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	slots := Slots(uuid.New(), patternWild, start, 1)
	require.Len(t, slots, 1)
	assert.Equal(t, 6, slots[0].StartTime.Hour())
	assert.Equal(t, 30, slots[0].StartTime.Minute())
}

type fakeTours struct {
	tours     []store.Tour
	locations map[uuid.UUID]string
}

func (f *fakeTours) ListActive(context.Context) ([]store.Tour, error) { return f.tours, nil }
func (f *fakeTours) SetLocation(_ context.Context, id uuid.UUID, _ uuid.UUID, loc string) error {
	if f.locations == nil {
		f.locations = map[uuid.UUID]string{}
	}
	f.locations[id] = loc
	return nil
}

type fakeSlots struct {
	existing map[string]bool // tourID|date already populated
	inserted int
}

func key(s store.ScheduleSlot) string {
	return s.TourID.String() + "|" + s.Date.Format("2006-01-02")
}

func (f *fakeSlots) InsertSlots(_ context.Context, slots []store.ScheduleSlot) (int, error) {
	if f.existing == nil {
		f.existing = map[string]bool{}
	}
	n := 0
	for _, s := range slots {
		if f.existing[key(s)] {
			continue
		}
		f.existing[key(s)] = true
		n++
	}
	f.inserted += n
	return n, nil
}

type fakeCities struct {
	cities map[string]uuid.UUID
}

func (f *fakeCities) GetCityByName(_ context.Context, name string) (*store.City, error) {
	id, ok := f.cities[name]
	if !ok {
		return nil, fmt.Errorf("city %q: %w", name, zmerrors.ErrNotFound)
	}
	return &store.City{ID: id, Name: name}, nil
}

func newTestGenerator(tours *fakeTours, slots *fakeSlots) *Generator {
	g := NewGenerator(tours, slots, &fakeCities{cities: map[string]uuid.UUID{
		"Kigali":  uuid.New(),
		"Musanze": uuid.New(),
	}}, logging.NewNop())
	g.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	return g
}

func TestGeneratorRun(t *testing.T) {
	cityID := uuid.New()
	tours := &fakeTours{tours: []store.Tour{
		{ID: uuid.New(), Name: "Gorilla Trekking", CityID: &cityID, Status: "active"},
	}}
	slots := &fakeSlots{}

	g := newTestGenerator(tours, slots)
	results, err := g.Run(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "gorillaTrekking", results[0].Pattern)
	assert.Equal(t, 7, results[0].Planned)
	assert.Equal(t, 7, results[0].Inserted)
	assert.NoError(t, results[0].Err)
}

func TestGeneratorWindowStartsTomorrow(t *testing.T) {
	cityID := uuid.New()
	tours := &fakeTours{tours: []store.Tour{
		{ID: uuid.New(), Name: "Gorilla Trekking", CityID: &cityID, Status: "active"},
	}}
	slots := &fakeSlots{}

	g := newTestGenerator(tours, slots) // now = 2026-03-02
	_, err := g.Run(context.Background(), 3)
	require.NoError(t, err)

	for k := range slots.existing {
		assert.NotContains(t, k, "2026-03-02", "the run date itself is never bookable")
	}
	assert.Contains(t, slots.existing, tours.tours[0].ID.String()+"|2026-03-03")
	assert.Contains(t, slots.existing, tours.tours[0].ID.String()+"|2026-03-05")
}

func TestGeneratorIdempotentAcrossRuns(t *testing.T) {
	cityID := uuid.New()
	tours := &fakeTours{tours: []store.Tour{
		{ID: uuid.New(), Name: "Kigali City Tour", CityID: &cityID, Status: "active"},
	}}
	slots := &fakeSlots{}
	g := newTestGenerator(tours, slots)

	first, err := g.Run(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 30, first[0].Inserted)

	second, err := g.Run(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 0, second[0].Inserted, "second run over the same window inserts nothing")
	assert.Equal(t, 30, second[0].Planned)
}

func TestGeneratorRepairsMissingLocation(t *testing.T) {
	tour := store.Tour{ID: uuid.New(), Name: "Gorilla Trekking Adventure", Status: "active"}
	tours := &fakeTours{tours: []store.Tour{tour}}
	g := newTestGenerator(tours, &fakeSlots{})

	_, err := g.Run(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Volcanoes National Park HQ, Kinigi", tours.locations[tour.ID])
}

func TestGeneratorDefaultWindow(t *testing.T) {
	cityID := uuid.New()
	tours := &fakeTours{tours: []store.Tour{
		{ID: uuid.New(), Name: "Kigali City Tour", CityID: &cityID, Status: "active"},
	}}
	slots := &fakeSlots{}
	g := newTestGenerator(tours, slots)

	results, err := g.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultWindowDays, results[0].Planned, "daily pattern fills the whole default window")
}
