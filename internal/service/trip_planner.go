package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"tripgen/internal/ai"
	"tripgen/internal/itinerary"
	"tripgen/internal/maps"
)

// hintTimeout caps the time spent gathering local context before prompting.
const hintTimeout = 5 * time.Second

// Stage is a step of a single generation run.
type Stage string

const (
	StageIdle             Stage = "idle"
	StagePrompting        Stage = "prompting"
	StageAwaitingResponse Stage = "awaiting_response"
	StageExtracting       Stage = "extracting"
	StageRepairing        Stage = "repairing"
	StageNormalizing      Stage = "normalizing"
	StageDegraded         Stage = "degraded"
	StageReady            Stage = "ready"
)

// ShapeError records an unexpected failure while turning the model text into an itinerary.
type ShapeError struct {
	Stage Stage
	Cause any
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shaping failed while %s: %v", e.Stage, e.Cause)
}

// TravelEstimator returns the travel time and distance between two places.
type TravelEstimator interface {
	Estimate(ctx context.Context, origin, destination string, mode maps.Mode) (maps.Estimate, error)
}

// maxRouteModes caps the directions lookups made for one request.
const maxRouteModes = 2

var modeLabel = map[maps.Mode]string{
	maps.ModeDriving:   "Driving",
	maps.ModeTransit:   "Public transit",
	maps.ModeWalking:   "Walking",
	maps.ModeBicycling: "Cycling",
}

// PlaceFinder returns well-rated places of a category around a location.
type PlaceFinder interface {
	TopRated(ctx context.Context, location, category string, limit int) ([]maps.Place, error)
}

// TripPlanner runs the generation pipeline: prompt, call the model, then
// extract, repair and normalize its reply. Unrecoverable JSON is normalized as
// an empty document; a panic while shaping yields a fallback itinerary.
type TripPlanner struct {
	provider ai.LLMProvider
	routes   TravelEstimator
	places   PlaceFinder
}

// NewTripPlanner wires a planner. routes and places may be nil; local context
// hints are then skipped.
func NewTripPlanner(provider ai.LLMProvider, routes TravelEstimator, places PlaceFinder) *TripPlanner {
	return &TripPlanner{
		provider: provider,
		routes:   routes,
		places:   places,
	}
}

// run tracks and logs the stage of one Generate call.
type run struct {
	trip  string
	stage Stage
}

func (r *run) to(next Stage) {
	log.Printf("planner: %s %s -> %s", r.trip, r.stage, next)
	r.stage = next
}

// Generate produces an itinerary for req. The only errors returned are
// *ai.ConfigurationError and *ai.TransportError; every other failure yields a
// defaulted or fallback itinerary.
func (p *TripPlanner) Generate(ctx context.Context, req itinerary.TripRequest) (*itinerary.GeneratedItinerary, error) {
	if p.provider == nil {
		return nil, &ai.ConfigurationError{Field: "provider", Reason: "is not configured"}
	}

	r := &run{trip: fmt.Sprintf("%s %s..%s", req.Destination,
		req.StartDate.Format(time.DateOnly), req.EndDate.Format(time.DateOnly)), stage: StageIdle}

	r.to(StagePrompting)
	prompt := ai.BuildItineraryPrompt(req, p.localHints(ctx, req)...)

	r.to(StageAwaitingResponse)
	raw, err := p.provider.Generate(ctx, prompt)
	if err != nil {
		log.Printf("planner: %s transport failed: %v", r.trip, err)
		return nil, err
	}

	it := p.shape(r, raw, req)
	r.to(StageReady)
	return &it, nil
}

// shape runs extract, repair and normalize on the model text. A panic in any
// of them is converted into a ShapeError and a fallback itinerary.
func (p *TripPlanner) shape(r *run, raw string, req itinerary.TripRequest) (it itinerary.GeneratedItinerary) {
	defer func() {
		if rec := recover(); rec != nil {
			serr := &ShapeError{Stage: r.stage, Cause: rec}
			it = p.degrade(r, req, serr.Error())
		}
	}()

	r.to(StageExtracting)
	candidate := itinerary.Extract(raw)

	r.to(StageRepairing)
	parsed, err := itinerary.Decode(candidate)
	if err != nil {
		log.Printf("planner: %s %v; normalizing an empty document", r.trip, err)
	}

	r.to(StageNormalizing)
	it = itinerary.Normalize(parsed, req)
	if it.Status != itinerary.StatusComplete {
		log.Printf("planner: %s normalized with status %s: %s", r.trip, it.Status, it.DegradedReason)
	}
	return it
}

func (p *TripPlanner) degrade(r *run, req itinerary.TripRequest, reason string) itinerary.GeneratedItinerary {
	r.to(StageDegraded)
	log.Printf("planner: %s degraded: %s", r.trip, reason)
	return itinerary.Fallback(req, reason)
}

// localHints gathers optional context lines from Google Maps. Lookups that
// fail or time out are logged and skipped.
func (p *TripPlanner) localHints(ctx context.Context, req itinerary.TripRequest) []string {
	if p.routes == nil && p.places == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, hintTimeout)
	defer cancel()

	var hints []string
	if p.routes != nil && strings.TrimSpace(req.StartLocation) != "" {
		modes := maps.ModesFor(req.Transportation)
		if len(modes) == 0 {
			modes = []maps.Mode{maps.ModeDriving}
		}
		if len(modes) > maxRouteModes {
			modes = modes[:maxRouteModes]
		}
		for _, mode := range modes {
			est, err := p.routes.Estimate(ctx, req.StartLocation, req.Destination, mode)
			if err != nil {
				log.Printf("planner: %s estimate %s -> %s: %v", mode, req.StartLocation, req.Destination, err)
				continue
			}
			hints = append(hints, fmt.Sprintf("%s from %s to %s takes about %s (%s)",
				modeLabel[mode], req.StartLocation, req.Destination, roundDuration(est.Duration), est.Distance))
		}
	}

	if p.places != nil {
		if h := p.placeHint(ctx, req.Destination, "hotel", "Well-rated hotels"); h != "" {
			hints = append(hints, h)
		}
		if len(req.DietaryRestrictions) > 0 {
			category := strings.Join(req.DietaryRestrictions, " ") + " restaurant"
			if h := p.placeHint(ctx, req.Destination, category, "Well-rated "+category+"s"); h != "" {
				hints = append(hints, h)
			}
		}
	}
	return hints
}

func (p *TripPlanner) placeHint(ctx context.Context, location, category, label string) string {
	found, err := p.places.TopRated(ctx, location, category, 3)
	if err != nil {
		log.Printf("planner: places %q in %s: %v", category, location, err)
		return ""
	}
	if len(found) == 0 {
		return ""
	}
	names := make([]string, 0, len(found))
	for _, pl := range found {
		names = append(names, fmt.Sprintf("%s (%.1f)", pl.Name, pl.Rating))
	}
	return fmt.Sprintf("%s in %s: %s", label, location, strings.Join(names, ", "))
}

// roundDuration renders d as "15 hours 5 minutes" style text.
func roundDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h, m := int(d.Hours()), int(d.Minutes())%60
	switch {
	case h == 0:
		return plural(m, "minute")
	case m == 0:
		return plural(h, "hour")
	default:
		return plural(h, "hour") + " " + plural(m, "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
