// README: Trip service validates requests, runs generation and persists results.
package trips

import (
	"context"
	"fmt"
	"log"
	"time"

	"tripgen/internal/itinerary"
	"tripgen/internal/types"
)

// Repository is the persistence the service needs; *Store implements it.
type Repository interface {
	SaveTrip(ctx context.Context, t Trip) error
	GetTrip(ctx context.Context, id types.ID) (Trip, error)
	SaveItinerary(ctx context.Context, it Itinerary) error
	GetItinerary(ctx context.Context, id types.ID) (Itinerary, error)
	LatestItineraryID(ctx context.Context, tripID types.ID) (types.ID, error)
}

// Generator produces an itinerary for a request.
type Generator interface {
	Generate(ctx context.Context, req itinerary.TripRequest) (*itinerary.GeneratedItinerary, error)
}

type Service struct {
	repo      Repository
	generator Generator
	now       func() time.Time
}

func NewService(repo Repository, generator Generator) *Service {
	return &Service{repo: repo, generator: generator, now: time.Now}
}

// CreateTrip validates req and stores it under a new ID.
func (s *Service) CreateTrip(ctx context.Context, req itinerary.TripRequest) (Trip, error) {
	if err := req.Validate(); err != nil {
		return Trip{}, err
	}
	t := Trip{ID: types.NewID(), Request: req, CreatedAt: s.now().UTC()}
	if err := s.repo.SaveTrip(ctx, t); err != nil {
		return Trip{}, fmt.Errorf("save trip: %w", err)
	}
	return t, nil
}

func (s *Service) GetTrip(ctx context.Context, id types.ID) (Trip, error) {
	return s.repo.GetTrip(ctx, id)
}

// GenerateForTrip generates a fresh itinerary for a stored trip.
func (s *Service) GenerateForTrip(ctx context.Context, tripID types.ID) (Itinerary, error) {
	t, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return Itinerary{}, err
	}
	return s.generate(ctx, tripID, t.Request)
}

// Generate validates req, generates an itinerary and stores it.
func (s *Service) Generate(ctx context.Context, req itinerary.TripRequest) (Itinerary, error) {
	if err := req.Validate(); err != nil {
		return Itinerary{}, err
	}
	return s.generate(ctx, "", req)
}

func (s *Service) generate(ctx context.Context, tripID types.ID, req itinerary.TripRequest) (Itinerary, error) {
	gen, err := s.generator.Generate(ctx, req)
	if err != nil {
		return Itinerary{}, err
	}
	it := Itinerary{
		ID:        types.NewID(),
		TripID:    tripID,
		Request:   req,
		Itinerary: *gen,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.SaveItinerary(ctx, it); err != nil {
		return Itinerary{}, fmt.Errorf("save itinerary: %w", err)
	}
	log.Printf("trips: stored itinerary %s (trip=%q status=%s days=%d)", it.ID, tripID, gen.Status, len(gen.DailyItinerary))
	return it, nil
}

func (s *Service) GetItinerary(ctx context.Context, id types.ID) (Itinerary, error) {
	return s.repo.GetItinerary(ctx, id)
}

// LatestForTrip returns the most recent itinerary generated for a stored trip.
func (s *Service) LatestForTrip(ctx context.Context, tripID types.ID) (Itinerary, error) {
	id, err := s.repo.LatestItineraryID(ctx, tripID)
	if err != nil {
		return Itinerary{}, err
	}
	return s.repo.GetItinerary(ctx, id)
}
