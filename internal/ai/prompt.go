package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"tripgen/internal/itinerary"
)

// BuildItineraryPrompt renders the instruction text sent to the model for req.
// hints are optional lines of local context (travel time, well-rated hotels)
// appended after the trip parameters.
func BuildItineraryPrompt(req itinerary.TripRequest, hints ...string) string {
	days := req.DayCount()
	start := req.StartDate.Format(itinerary.DisplayDateLayout)
	end := req.EndDate.Format(itinerary.DisplayDateLayout)

	var b strings.Builder
	b.WriteString("You are an expert travel planner. I need a detailed travel itinerary in JSON format for the following trip:\n\n")
	fmt.Fprintf(&b, "Starting From: %s\n", req.StartLocation)
	fmt.Fprintf(&b, "Destination: %s\n", req.Destination)
	fmt.Fprintf(&b, "Dates: %s to %s (%d days)\n", start, end, days)
	fmt.Fprintf(&b, "Travelers: %d people\n", req.Travelers)
	fmt.Fprintf(&b, "Budget: $%s\n", formatAmount(req.Budget))
	fmt.Fprintf(&b, "Trip Style: %s\n", req.TripStyle)
	fmt.Fprintf(&b, "Preferences: %s\n", strings.Join(req.Preferences, ", "))
	if len(req.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "Dietary Restrictions: %s\n", strings.Join(req.DietaryRestrictions, ", "))
	}
	if len(req.Accessibility) > 0 {
		fmt.Fprintf(&b, "Accessibility Needs: %s\n", strings.Join(req.Accessibility, ", "))
	}
	fmt.Fprintf(&b, "Transportation: %s\n", strings.Join(req.Transportation, ", "))

	var local []string
	for _, h := range hints {
		if h = strings.TrimSpace(h); h != "" {
			local = append(local, "- "+h)
		}
	}
	if len(local) > 0 {
		b.WriteString("\nLocal context:\n")
		b.WriteString(strings.Join(local, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\nIMPORTANT: Respond with a valid JSON object that follows this exact structure:\n\n")
	b.WriteString(exampleDocument(req, start, end))
	fmt.Fprintf(&b, "\n\nThe JSON must be valid. Include realistic data for %s with appropriate costs, activities, and accommodations for a $%s budget. "+
		"Create daily activities for all %d days of the trip, one dailyItinerary entry per day starting on %s. "+
		"Include flight, train, car, bus and publicTransit lists even when they are empty.\n",
		req.Destination, formatAmount(req.Budget), days, start)
	return b.String()
}

func exampleDocument(req itinerary.TripRequest, start, end string) string {
	return fmt.Sprintf(`{
  "destination": %s,
  "startDate": %s,
  "endDate": %s,
  "travelers": %d,
  "weatherSummary": "Brief weather summary for the trip",
  "dailyItinerary": [
    {
      "date": "Day 1 - %s",
      "weather": "Weather forecast for this day",
      "activities": [
        {
          "time": "8:00 AM - 10:00 AM",
          "name": "Activity name",
          "description": "Detailed description",
          "location": "Location name",
          "cost": 25,
          "weatherDependent": true,
          "duration": "2 hours",
          "category": "Sightseeing",
          "tip": "Arrive early to avoid queues"
        },
        {
          "time": "12:30 PM - 1:30 PM",
          "name": "Lunch",
          "description": "Detailed description",
          "location": "Restaurant area",
          "cost": 30,
          "weatherDependent": false,
          "mealSuggestion": {
            "restaurantName": "Restaurant name",
            "cuisine": "Local",
            "dietaryOptions": ["vegetarian"],
            "priceRange": "$$",
            "specialty": "Signature dish"
          }
        }
      ]
    }
  ],
  "accommodations": [
    {
      "name": "Hotel name",
      "description": "Hotel description",
      "location": "Neighborhood",
      "price": 150,
      "rating": 4.5,
      "image": "https://example.com/hotel.jpg",
      "amenities": [{"name": "Free WiFi"}, {"name": "Breakfast included"}]
    }
  ],
  "transportOptions": {
    "flight": [
      {
        "type": "flight",
        "provider": "Airline name",
        "departureTime": "10:00 AM",
        "arrivalTime": "12:00 PM",
        "duration": "2 hours",
        "price": 300,
        "departureLocation": %s,
        "arrivalLocation": %s,
        "details": "Flight details"
      }
    ],
    "train": [],
    "car": [],
    "bus": [],
    "publicTransit": []
  },
  "budgetBreakdown": {
    "totalBudget": %s,
    "totalSpent": 0,
    "categories": [
      {"name": "Accommodation", "amount": 500, "percentage": 50},
      {"name": "Food", "amount": 300, "percentage": 30},
      {"name": "Activities", "amount": 200, "percentage": 20}
    ],
    "contingencyAmount": 100
  },
  "packingList": [
    {"category": "Clothing", "items": ["T-shirts", "Pants", "Socks"]},
    {"category": "Toiletries", "items": ["Toothbrush", "Toothpaste"]}
  ]
}`, jsonString(req.Destination), jsonString(start), jsonString(end), req.Travelers, start,
		jsonString(req.StartLocation), jsonString(req.Destination), formatAmount(req.Budget))
}

// jsonString renders s as a JSON string literal.
func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// formatAmount prints whole amounts without a fractional part.
func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
