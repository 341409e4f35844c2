package maps

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"googlemaps.github.io/maps"
)

// MinRating is the lowest rating a place needs to be suggested.
const MinRating = 4.0

// Place represents a simplified location result.
type Place struct {
	Name             string
	Address          string
	Rating           float32
	PlaceID          string
	UserRatingsTotal int
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client *maps.Client
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string, opts ...maps.ClientOption) (*PlacesService, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// TopRated searches for category (e.g. "hotel") in location and returns up to
// limit results rated at least MinRating, best first. Ties go to the place with
// more reviews.
func (s *PlacesService) TopRated(ctx context.Context, location, category string, limit int) ([]Place, error) {
	query := category
	if location = strings.TrimSpace(location); location != "" {
		query = fmt.Sprintf("%s in %s", category, location)
	}

	resp, err := s.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    query,
		Language: "en",
	})
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	seen := make(map[string]bool)
	var results []Place
	for _, r := range resp.Results {
		if r.Rating < MinRating || seen[r.PlaceID] {
			continue
		}
		seen[r.PlaceID] = true
		results = append(results, Place{
			Name:             r.Name,
			Address:          r.FormattedAddress,
			Rating:           r.Rating,
			PlaceID:          r.PlaceID,
			UserRatingsTotal: r.UserRatingsTotal,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Rating != results[j].Rating {
			return results[i].Rating > results[j].Rating
		}
		return results[i].UserRatingsTotal > results[j].UserRatingsTotal
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
