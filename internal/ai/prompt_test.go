package ai

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"tripgen/internal/itinerary"
)

func promptTrip() itinerary.TripRequest {
	return itinerary.TripRequest{
		StartLocation:       "Berlin",
		Destination:         "Rome",
		Budget:              2000,
		TripStyle:           itinerary.StyleBalanced,
		StartDate:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:             time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Travelers:           2,
		Preferences:         []string{"history", "food"},
		DietaryRestrictions: []string{"vegetarian"},
		Transportation:      []string{"train", "walking"},
	}
}

func TestBuildItineraryPrompt(t *testing.T) {
	p := BuildItineraryPrompt(promptTrip())

	for _, want := range []string{
		"Destination: Rome",
		"Starting From: Berlin",
		"Dates: 1/1/2024 to 1/3/2024 (3 days)",
		"Travelers: 2 people",
		"Budget: $2000",
		"Trip Style: balanced",
		"Preferences: history, food",
		"Dietary Restrictions: vegetarian",
		"Transportation: train, walking",
		`"dailyItinerary"`,
		`"date": "Day 1 - 1/1/2024"`,
		`"totalBudget": 2000`,
		`"publicTransit": []`,
		"all 3 days",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(p, "Accessibility Needs") {
		t.Error("empty accessibility list should be left out")
	}
	if strings.Contains(p, "Local context") {
		t.Error("no hints were given")
	}
}

func TestBuildItineraryPrompt_Hints(t *testing.T) {
	p := BuildItineraryPrompt(promptTrip(), "Driving from Berlin takes about 15 hours", "  ", "Well-rated hotels: Hotel Artemide (4.7)")

	if !strings.Contains(p, "Local context:\n- Driving from Berlin takes about 15 hours\n- Well-rated hotels: Hotel Artemide (4.7)\n") {
		t.Errorf("hints not rendered as expected:\n%s", p)
	}
}

func TestBuildItineraryPrompt_ExampleIsValidJSON(t *testing.T) {
	req := promptTrip()
	doc := exampleDocument(req, "1/1/2024", "1/3/2024")
	v, err := itinerary.Decode(doc)
	if err != nil {
		t.Fatalf("example document does not decode: %v", err)
	}
	it := itinerary.Normalize(v, req)
	if it.Status != itinerary.StatusPartial {
		// one day for a three-day trip is flagged
		t.Errorf("status = %s (%s)", it.Status, it.DegradedReason)
	}
	if it.Accommodations[0].Name != "Hotel name" {
		t.Errorf("example accommodation lost: %+v", it.Accommodations)
	}
}

func TestBuildItineraryPrompt_ExampleEscapesPlaceNames(t *testing.T) {
	req := promptTrip()
	req.Destination = "Ro\ame \"Eternal\" City\x7f"
	req.StartLocation = "Berlin\nMitte\\Ost"
	doc := exampleDocument(req, "1/1/2024", "1/3/2024")

	var v struct {
		Destination      string `json:"destination"`
		TransportOptions struct {
			Flight []struct {
				DepartureLocation string `json:"departureLocation"`
			} `json:"flight"`
		} `json:"transportOptions"`
	}
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		t.Fatalf("example document is not valid JSON: %v\n%s", err, doc)
	}
	if v.Destination != req.Destination {
		t.Errorf("destination = %q, want %q", v.Destination, req.Destination)
	}
	if len(v.TransportOptions.Flight) != 1 || v.TransportOptions.Flight[0].DepartureLocation != req.StartLocation {
		t.Errorf("departure location not preserved: %+v", v.TransportOptions.Flight)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := formatAmount(1500); got != "1500" {
		t.Errorf("formatAmount(1500) = %q", got)
	}
	if got := formatAmount(99.5); got != "99.50" {
		t.Errorf("formatAmount(99.5) = %q", got)
	}
}
