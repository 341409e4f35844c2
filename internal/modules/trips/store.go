// README: Trip store backed by Redis JSON values with a TTL.
package trips

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tripgen/internal/types"
)

const (
	tripKeyPrefix      = "trips:request:%s"
	itineraryKeyPrefix = "trips:itinerary:%s"
	latestKeyPrefix    = "trips:request:%s:latest"
	// DefaultTTL applies when the store is built with a non-positive TTL.
	DefaultTTL = 30 * 24 * time.Hour
)

type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(redis *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{redis: redis, ttl: ttl}
}

func (s *Store) SaveTrip(ctx context.Context, t Trip) error {
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal trip: %w", err)
	}
	return s.redis.Set(ctx, tripKey(t.ID), b, s.ttl).Err()
}

func (s *Store) GetTrip(ctx context.Context, id types.ID) (Trip, error) {
	var t Trip
	err := s.getJSON(ctx, tripKey(id), &t)
	return t, err
}

// SaveItinerary stores it and, when it belongs to a stored trip, points the
// trip's latest itinerary at it. Both writes go out in one pipeline.
func (s *Store) SaveItinerary(ctx context.Context, it Itinerary) error {
	b, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("marshal itinerary: %w", err)
	}
	pipe := s.redis.Pipeline()
	pipe.Set(ctx, itineraryKey(it.ID), b, s.ttl)
	if it.TripID != "" {
		pipe.Set(ctx, latestKey(it.TripID), string(it.ID), s.ttl)
		pipe.Expire(ctx, tripKey(it.TripID), s.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) GetItinerary(ctx context.Context, id types.ID) (Itinerary, error) {
	var it Itinerary
	err := s.getJSON(ctx, itineraryKey(id), &it)
	return it, err
}

// LatestItineraryID returns the most recent itinerary generated for a trip.
func (s *Store) LatestItineraryID(ctx context.Context, tripID types.ID) (types.ID, error) {
	val, err := s.redis.Get(ctx, latestKey(tripID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return types.ID(val), nil
}

func (s *Store) getJSON(ctx context.Context, key string, v any) error {
	b, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func tripKey(id types.ID) string {
	return fmt.Sprintf(tripKeyPrefix, string(id))
}

func itineraryKey(id types.ID) string {
	return fmt.Sprintf(itineraryKeyPrefix, string(id))
}

func latestKey(id types.ID) string {
	return fmt.Sprintf(latestKeyPrefix, string(id))
}
