package trips

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tripgen/internal/itinerary"
	"tripgen/internal/types"
)

// memRepo is an in-memory Repository for service tests.
type memRepo struct {
	mu     sync.Mutex
	trips  map[types.ID]Trip
	its    map[types.ID]Itinerary
	latest map[types.ID]types.ID
}

func newMemRepo() *memRepo {
	return &memRepo{trips: map[types.ID]Trip{}, its: map[types.ID]Itinerary{}, latest: map[types.ID]types.ID{}}
}

func (m *memRepo) SaveTrip(ctx context.Context, t Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[t.ID] = t
	return nil
}

func (m *memRepo) GetTrip(ctx context.Context, id types.ID) (Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return Trip{}, ErrNotFound
	}
	return t, nil
}

func (m *memRepo) SaveItinerary(ctx context.Context, it Itinerary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.its[it.ID] = it
	if it.TripID != "" {
		m.latest[it.TripID] = it.ID
	}
	return nil
}

func (m *memRepo) GetItinerary(ctx context.Context, id types.ID) (Itinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.its[id]
	if !ok {
		return Itinerary{}, ErrNotFound
	}
	return it, nil
}

func (m *memRepo) LatestItineraryID(ctx context.Context, tripID types.ID) (types.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.latest[tripID]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

type fallbackGenerator struct {
	err   error
	calls int
}

func (g *fallbackGenerator) Generate(ctx context.Context, req itinerary.TripRequest) (*itinerary.GeneratedItinerary, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	it := itinerary.Fallback(req, "test")
	return &it, nil
}

func validTrip() itinerary.TripRequest {
	return itinerary.TripRequest{
		StartLocation:  "Berlin",
		Destination:    "Rome",
		Budget:         2000,
		TripStyle:      itinerary.StyleBudget,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Travelers:      2,
		Preferences:    []string{"food"},
		Transportation: []string{"train"},
	}
}

func TestCreateTrip(t *testing.T) {
	svc := NewService(newMemRepo(), &fallbackGenerator{})
	ctx := context.Background()

	trip, err := svc.CreateTrip(ctx, validTrip())
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	if _, ok := types.ParseID(string(trip.ID)); !ok {
		t.Fatalf("trip id %q is not a uuid", trip.ID)
	}
	got, err := svc.GetTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	if got.Request.Destination != "Rome" {
		t.Errorf("unexpected stored trip: %+v", got)
	}
}

func TestCreateTrip_Invalid(t *testing.T) {
	svc := NewService(newMemRepo(), &fallbackGenerator{})
	req := validTrip()
	req.Budget = 10

	if _, err := svc.CreateTrip(context.Background(), req); !errors.Is(err, itinerary.ErrInvalidTrip) {
		t.Fatalf("expected ErrInvalidTrip, got %v", err)
	}
}

func TestGenerateForTrip(t *testing.T) {
	gen := &fallbackGenerator{}
	svc := NewService(newMemRepo(), gen)
	ctx := context.Background()

	trip, err := svc.CreateTrip(ctx, validTrip())
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	first, err := svc.GenerateForTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GenerateForTrip: %v", err)
	}
	second, err := svc.GenerateForTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GenerateForTrip: %v", err)
	}
	if first.ID == second.ID || gen.calls != 2 {
		t.Fatalf("each call should generate a new itinerary")
	}

	latest, err := svc.LatestForTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("LatestForTrip: %v", err)
	}
	if latest.ID != second.ID || latest.TripID != trip.ID {
		t.Errorf("latest = %s, want %s", latest.ID, second.ID)
	}
	if len(latest.Itinerary.DailyItinerary) != 3 {
		t.Errorf("expected 3 days, got %d", len(latest.Itinerary.DailyItinerary))
	}
}

func TestGenerateForTrip_UnknownTrip(t *testing.T) {
	gen := &fallbackGenerator{}
	svc := NewService(newMemRepo(), gen)

	if _, err := svc.GenerateForTrip(context.Background(), types.NewID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if gen.calls != 0 {
		t.Error("generator must not run for an unknown trip")
	}
}

func TestGenerate_GeneratorErrorNotStored(t *testing.T) {
	repo := newMemRepo()
	boom := errors.New("transport down")
	svc := NewService(repo, &fallbackGenerator{err: boom})

	if _, err := svc.Generate(context.Background(), validTrip()); !errors.Is(err, boom) {
		t.Fatalf("expected generator error, got %v", err)
	}
	if len(repo.its) != 0 {
		t.Error("nothing should be stored when generation fails")
	}
}
