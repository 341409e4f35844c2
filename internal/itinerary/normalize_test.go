package itinerary

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

func testTrip() TripRequest {
	return TripRequest{
		StartLocation:  "Berlin",
		Destination:    "Rome",
		Budget:         2000,
		TripStyle:      StyleBalanced,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Travelers:      2,
		Preferences:    []string{"history", "food"},
		Transportation: []string{"train"},
	}
}

const completeDoc = `{
  "destination": "Rome",
  "startDate": "1/1/2024",
  "endDate": "1/3/2024",
  "travelers": 2,
  "weatherSummary": "Mild and mostly dry",
  "dailyItinerary": [
    {"date": "Day 1 - 1/1/2024", "weather": "Sunny", "activities": [
      {"time": "9:00 AM", "name": "Colosseum", "description": "Guided tour", "location": "Piazza del Colosseo",
       "cost": 18, "weatherDependent": false, "duration": "2 hours", "popularity": 9.5, "category": "history",
       "tip": "Book ahead",
       "mealSuggestion": {"restaurantName": "Da Enzo", "cuisine": "Roman", "dietaryOptions": ["vegetarian"],
         "priceRange": "$$", "specialty": "Cacio e pepe", "walkingDistance": "10 min"}}
    ]},
    {"date": "Day 2 - 1/2/2024", "weather": "Cloudy", "activities": [
      {"time": "10:00 AM", "name": "Vatican Museums", "description": "Sistine Chapel", "location": "Vatican City",
       "cost": 20, "weatherDependent": false}
    ]},
    {"date": "Day 3 - 1/3/2024", "weather": "Rain", "activities": [
      {"time": "Afternoon", "name": "Trastevere walk", "description": "Old streets", "location": "Trastevere",
       "cost": 0, "weatherDependent": true}
    ]}
  ],
  "accommodations": [
    {"name": "Hotel Artemide", "description": "Central hotel", "location": "Via Nazionale", "price": 180,
     "rating": 4.6, "image": "https://example.com/h.jpg", "amenities": [{"name": "Free WiFi"}],
     "nearbyAttractions": ["Termini"]}
  ],
  "transportOptions": {
    "flight": [],
    "train": [{"type": "train", "provider": "Trenitalia", "departureTime": "8:00 AM", "arrivalTime": "7:00 PM",
      "duration": "11 hours", "price": 120, "departureLocation": "Berlin Hbf", "arrivalLocation": "Roma Termini",
      "details": "Via Munich", "recommendedBookingTime": "2 weeks ahead"}],
    "car": [], "bus": [], "publicTransit": [],
    "localTransportation": [{"mode": "Metro", "coverage": "Lines A-C", "costPerTrip": 1.5, "dayPassCost": 7,
      "frequency": "Every 5 min", "operatingHours": "5:30-23:30", "accessibility": "Partial", "tips": ["Validate tickets"]}]
  },
  "budgetBreakdown": {
    "totalBudget": 2000, "totalSpent": 1500,
    "categories": [
      {"name": "Accommodation", "amount": 540, "percentage": 27, "items": [{"item": "3 nights", "cost": 540}]},
      {"name": "Food", "amount": 400, "percentage": 20, "savingTip": "Eat where locals eat"}
    ],
    "contingencyAmount": 200,
    "localCurrency": {"currency": "EUR", "exchangeRate": "1 EUR = 1.09 USD", "paymentTips": ["Cards widely accepted"]}
  },
  "packingList": [
    {"category": "Clothing", "items": [{"name": "Rain jacket", "essential": true, "weatherConsideration": "Rain on day 3"}],
     "notes": "Layers"}
  ],
  "status": "complete"
}`

func decodeDoc(t *testing.T, doc string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return v
}

func renormalize(t *testing.T, it GeneratedItinerary, req TripRequest) GeneratedItinerary {
	t.Helper()
	b, err := json.Marshal(it)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return Normalize(decodeDoc(t, string(b)), req)
}

func TestNormalize_CompleteDocument(t *testing.T) {
	it := Normalize(decodeDoc(t, completeDoc), testTrip())

	if it.Status != StatusComplete {
		t.Fatalf("expected complete, got %s (%s)", it.Status, it.DegradedReason)
	}
	if len(it.DailyItinerary) != 3 {
		t.Fatalf("expected 3 days, got %d", len(it.DailyItinerary))
	}
	act := it.DailyItinerary[0].Activities[0]
	if act.Popularity == nil || *act.Popularity != 9.5 {
		t.Errorf("popularity not carried through: %v", act.Popularity)
	}
	if act.MealSuggestion == nil || act.MealSuggestion.RestaurantName != "Da Enzo" {
		t.Errorf("meal suggestion not carried through: %+v", act.MealSuggestion)
	}
	if act.MealSuggestion.TimingTip != "" {
		t.Errorf("absent optional field should stay absent, got %q", act.MealSuggestion.TimingTip)
	}
	if it.DailyItinerary[1].Activities[0].MealSuggestion != nil {
		t.Error("meal suggestion should be absent when the model gave none")
	}
	if len(it.TransportOptions.Train) != 1 || it.TransportOptions.Train[0].RecommendedBookingTime != "2 weeks ahead" {
		t.Errorf("train options lost: %+v", it.TransportOptions.Train)
	}
	if it.BudgetBreakdown.LocalCurrency == nil || it.BudgetBreakdown.LocalCurrency.Currency != "EUR" {
		t.Errorf("local currency lost: %+v", it.BudgetBreakdown.LocalCurrency)
	}
	if !it.PackingList[0].Items[0].Essential {
		t.Error("essential flag lost")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	req := testTrip()
	// defaulted fields plus a day list shorter than the trip
	oneDay := decodeDoc(t, `{"destination":"Rome","dailyItinerary":[
		{"date":"Day 1 - 1/1/2024","weather":"Sunny","activities":[{"name":"Colosseum","cost":18}]}]}`)
	cases := map[string]any{
		"complete": decodeDoc(t, completeDoc),
		"sparse":   decodeDoc(t, `{"destination":"Rome"}`),
		"empty":    map[string]any{},
		"garbage":  "not an object",
		"one day":  oneDay,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			first := Normalize(in, req)
			second := renormalize(t, first, req)
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("normalization not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
			}
		})
	}
}

func TestNormalize_KeepsReasonOnRenormalize(t *testing.T) {
	req := testTrip()
	first := Normalize(decodeDoc(t, `{"dailyItinerary":[{"date":"Day 1 - 1/1/2024","activities":[]}]}`), req)
	if first.Status != StatusPartial {
		t.Fatalf("status = %s", first.Status)
	}
	if !strings.Contains(first.DegradedReason, "defaulted") || !strings.Contains(first.DegradedReason, "3-day trip") {
		t.Fatalf("reason = %q", first.DegradedReason)
	}
	if second := renormalize(t, first, req); second.DegradedReason != first.DegradedReason {
		t.Errorf("reason changed on second pass:\nfirst:  %q\nsecond: %q", first.DegradedReason, second.DegradedReason)
	}
}

// TestNormalize_FencedRome follows a fenced single-field reply through the whole decode path.
func TestNormalize_FencedRome(t *testing.T) {
	req := testTrip()
	parsed, err := Decode(Extract("```json\n{\"destination\":\"Rome\"}\n```"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	it := Normalize(parsed, req)

	if it.Destination != "Rome" {
		t.Errorf("destination = %q", it.Destination)
	}
	if len(it.DailyItinerary) != req.DayCount() {
		t.Fatalf("expected %d days, got %d", req.DayCount(), len(it.DailyItinerary))
	}
	for i, d := range it.DailyItinerary {
		if len(d.Activities) == 0 || d.Activities[0].Name != NotAvailable {
			t.Errorf("day %d is not a sentinel day: %+v", i, d)
		}
	}
	if len(it.Accommodations) != 1 || it.Accommodations[0].Name != "Accommodation data not available" {
		t.Errorf("expected one sentinel accommodation, got %+v", it.Accommodations)
	}
	to := it.TransportOptions
	for mode, l := range map[string][]TransportOption{
		"flight": to.Flight, "train": to.Train, "car": to.Car, "bus": to.Bus, "publicTransit": to.PublicTransit,
	} {
		if l == nil {
			t.Errorf("transport list %s is nil", mode)
		}
	}
	if it.Status != StatusPartial {
		t.Errorf("expected partial status, got %s", it.Status)
	}
	if it.StartDate != "1/1/2024" || it.Travelers != 2 {
		t.Errorf("top-level defaults not taken from the request: %q %d", it.StartDate, it.Travelers)
	}
}

func TestNormalize_NonNumericBudgetAmount(t *testing.T) {
	doc := decodeDoc(t, completeDoc).(map[string]any)
	budget := doc["budgetBreakdown"].(map[string]any)
	cats := budget["categories"].([]any)
	cats[0].(map[string]any)["amount"] = "about 540"

	it := Normalize(doc, testTrip())

	got := it.BudgetBreakdown.Categories
	if len(got) != 2 {
		t.Fatalf("expected both categories kept, got %d", len(got))
	}
	if got[0].Name != "Accommodation" || got[0].Amount != 0 || got[0].Percentage != 27 {
		t.Errorf("unexpected coerced category: %+v", got[0])
	}
	if got[1].Amount != 400 {
		t.Errorf("valid category changed: %+v", got[1])
	}
	if it.Status != StatusPartial {
		t.Errorf("expected partial status, got %s", it.Status)
	}
	if !strings.Contains(it.DegradedReason, "categories[0].amount") {
		t.Errorf("reason should name the coerced field, got %q", it.DegradedReason)
	}
}

func TestNormalize_FieldPolicies(t *testing.T) {
	doc := `{
	  "dailyItinerary": [
	    {"date": "Day 1", "weather": 42,
	     "morning": [{"time": "9 AM", "name": "Market", "description": "d", "location": "l", "cost": -5, "weatherDependent": "yes"}],
	     "afternoon": ["not an object"],
	     "evening": []}
	  ],
	  "accommodations": [{"name": "Inn", "rating": 11, "price": "cheap", "amenities": ["Pool", {"name": "Spa"}, {}]}],
	  "packingList": [{"name": "Docs", "items": ["Passport", {"name": "Visa", "essential": true}, 7]}, {"category": "Empty", "items": []}],
	  "transportOptions": {"flight": "none", "bus": [{"provider": "FlixBus", "price": 30}]}
	}`
	it := Normalize(decodeDoc(t, doc), testTrip())

	day := it.DailyItinerary[0]
	if day.Weather != weatherUnavailable {
		t.Errorf("non-string weather should be sentineled, got %q", day.Weather)
	}
	if len(day.Activities) != 2 {
		t.Fatalf("expected morning+afternoon activities concatenated, got %d", len(day.Activities))
	}
	if day.Activities[0].Cost != 0 || day.Activities[0].WeatherDependent {
		t.Errorf("cost/flag not coerced: %+v", day.Activities[0])
	}
	if day.Activities[0].Name != "Market" {
		t.Errorf("valid activity changed: %+v", day.Activities[0])
	}
	if day.Activities[1].Name != "Invalid activity data" {
		t.Errorf("malformed activity not replaced: %+v", day.Activities[1])
	}

	acc := it.Accommodations[0]
	if acc.Rating != 5 || acc.Price != 0 {
		t.Errorf("rating/price not coerced: %+v", acc)
	}
	wantAmenities := []Amenity{{Name: "Pool"}, {Name: "Spa"}, {Name: "Amenity"}}
	if !reflect.DeepEqual(acc.Amenities, wantAmenities) {
		t.Errorf("amenities = %+v, want %+v", acc.Amenities, wantAmenities)
	}
	if acc.NearbyAttractions != nil {
		t.Errorf("absent optional list should stay nil, got %v", acc.NearbyAttractions)
	}

	docs := it.PackingList[0]
	if docs.Category != "Docs" || len(docs.Items) != 3 {
		t.Fatalf("unexpected packing category: %+v", docs)
	}
	if docs.Items[0].Name != "Passport" || !docs.Items[1].Essential || docs.Items[2].Name != NotAvailable {
		t.Errorf("unexpected packing items: %+v", docs.Items)
	}
	if len(it.PackingList[1].Items) != 1 || it.PackingList[1].Items[0].Name != NotAvailable {
		t.Errorf("empty item list should get a sentinel: %+v", it.PackingList[1])
	}

	if it.TransportOptions.Flight == nil || len(it.TransportOptions.Flight) != 0 {
		t.Errorf("non-list flight should become an empty list, got %+v", it.TransportOptions.Flight)
	}
	bus := it.TransportOptions.Bus
	if len(bus) != 1 || bus[0].Provider != "FlixBus" || bus[0].Price != 30 || bus[0].Details != "No details available" {
		t.Errorf("unexpected bus options: %+v", bus)
	}
}

func TestNormalize_DayCountMismatchKept(t *testing.T) {
	doc := `{"dailyItinerary": [{"date": "Day 1", "weather": "Sun", "activities": [{"name": "Only day"}]}]}`
	it := Normalize(decodeDoc(t, doc), testTrip())

	if len(it.DailyItinerary) != 1 {
		t.Fatalf("model day list should be kept as-is, got %d days", len(it.DailyItinerary))
	}
	if !strings.Contains(it.DegradedReason, "1 days for a 3-day trip") {
		t.Errorf("mismatch not flagged: %q", it.DegradedReason)
	}
}

func TestNormalize_NonObjectRoot(t *testing.T) {
	req := testTrip()
	for _, in := range []any{nil, "text", 3.5, []any{1, 2}} {
		it := Normalize(in, req)
		if it.Destination != req.Destination || len(it.DailyItinerary) != req.DayCount() {
			t.Errorf("Normalize(%v) did not fall back to request values: %+v", in, it)
		}
		if len(it.Accommodations) == 0 || len(it.PackingList) == 0 || len(it.BudgetBreakdown.Categories) == 0 {
			t.Errorf("Normalize(%v) left a required list empty", in)
		}
	}
}
