package maps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

// Mode is a Directions API travel mode.
type Mode = maps.Mode

const (
	ModeDriving   = maps.TravelModeDriving
	ModeTransit   = maps.TravelModeTransit
	ModeWalking   = maps.TravelModeWalking
	ModeBicycling = maps.TravelModeBicycling
)

// modeByPreference maps trip transportation preferences to ground travel modes.
// Air travel has no Directions route.
var modeByPreference = map[string]Mode{
	"car":           ModeDriving,
	"train":         ModeTransit,
	"bus":           ModeTransit,
	"publictransit": ModeTransit,
	"walking":       ModeWalking,
	"bicycle":       ModeBicycling,
}

// ModesFor returns the distinct travel modes for prefs in preference order.
func ModesFor(prefs []string) []Mode {
	var modes []Mode
	seen := make(map[Mode]bool)
	for _, p := range prefs {
		key := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(p))
		m, ok := modeByPreference[key]
		if !ok || seen[m] {
			continue
		}
		seen[m] = true
		modes = append(modes, m)
	}
	return modes
}

// Estimate summarizes the first route Google returns for one mode.
type Estimate struct {
	Mode     Mode
	Duration time.Duration
	Distance string
}

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API Key.
// Extra options (such as maps.WithBaseURL) are passed to the client.
func NewRouteService(apiKey string, opts ...maps.ClientOption) (*RouteService, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// Estimate returns the travel time and distance from origin to destination by mode.
func (s *RouteService) Estimate(ctx context.Context, origin, destination string, mode Mode) (Estimate, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        mode,
		Language:    "en",
	}
	if mode == ModeTransit {
		r.DepartureTime = "now"
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return Estimate{}, fmt.Errorf("maps api error (%s): %w", mode, err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Estimate{}, fmt.Errorf("no %s route found", mode)
	}

	leg := routes[0].Legs[0]
	return Estimate{Mode: mode, Duration: leg.Duration, Distance: leg.Distance.HumanReadable}, nil
}
