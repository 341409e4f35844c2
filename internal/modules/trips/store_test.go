package trips

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"tripgen/internal/itinerary"
	"tripgen/internal/types"
)

// setupTestStore connects to a real Redis. It skips the test when
// TRIPGEN_TEST_REDIS_ADDR is not set.
func setupTestStore(t *testing.T) (*Store, *redis.Client) {
	t.Helper()
	addr := os.Getenv("TRIPGEN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TRIPGEN_TEST_REDIS_ADDR not set; skipping Redis-backed tests")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}
	return NewStore(rdb, time.Hour), rdb
}

func TestStoreTripRoundTrip(t *testing.T) {
	store, rdb := setupTestStore(t)
	ctx := context.Background()

	trip := Trip{ID: types.NewID(), Request: validTrip(), CreatedAt: time.Now().UTC().Truncate(time.Second)}
	if err := store.SaveTrip(ctx, trip); err != nil {
		t.Fatalf("SaveTrip: %v", err)
	}
	t.Cleanup(func() { rdb.Del(ctx, tripKey(trip.ID)) })

	got, err := store.GetTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	if !got.Request.StartDate.Equal(trip.Request.StartDate) || got.Request.Destination != "Rome" {
		t.Errorf("unexpected trip: %+v", got)
	}

	ttl, err := rdb.TTL(ctx, tripKey(trip.ID)).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("unexpected ttl %s", ttl)
	}
}

func TestStoreItineraryLatest(t *testing.T) {
	store, rdb := setupTestStore(t)
	ctx := context.Background()

	tripID := types.NewID()
	it := Itinerary{
		ID:        types.NewID(),
		TripID:    tripID,
		Request:   validTrip(),
		Itinerary: itinerary.Fallback(validTrip(), "test"),
		CreatedAt: time.Now().UTC(),
	}
	if err := store.SaveItinerary(ctx, it); err != nil {
		t.Fatalf("SaveItinerary: %v", err)
	}
	t.Cleanup(func() { rdb.Del(ctx, itineraryKey(it.ID), latestKey(tripID)) })

	id, err := store.LatestItineraryID(ctx, tripID)
	if err != nil {
		t.Fatalf("LatestItineraryID: %v", err)
	}
	if id != it.ID {
		t.Fatalf("latest = %s, want %s", id, it.ID)
	}
	got, err := store.GetItinerary(ctx, id)
	if err != nil {
		t.Fatalf("GetItinerary: %v", err)
	}
	if got.Itinerary.Status != itinerary.StatusFallback || len(got.Itinerary.DailyItinerary) != 3 {
		t.Errorf("unexpected itinerary: %+v", got.Itinerary)
	}
}

func TestStoreMissing(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.GetTrip(ctx, types.NewID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTrip: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetItinerary(ctx, types.NewID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetItinerary: expected ErrNotFound, got %v", err)
	}
	if _, err := store.LatestItineraryID(ctx, types.NewID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("LatestItineraryID: expected ErrNotFound, got %v", err)
	}
}

func TestNewStoreDefaultTTL(t *testing.T) {
	if s := NewStore(nil, 0); s.ttl != DefaultTTL {
		t.Errorf("ttl = %s, want %s", s.ttl, DefaultTTL)
	}
}
