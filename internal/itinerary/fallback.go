package itinerary

import "fmt"

const (
	errorMarker      = "Error occurred"
	errorDescription = "There was an error generating this data. Please try again later."
)

// placeholderDays builds one day per trip date, each with a morning, afternoon
// and evening placeholder activity.
func placeholderDays(req TripRequest, name, description string) []DayPlan {
	count := req.DayCount()
	days := make([]DayPlan, 0, count)
	for i := 0; i < count; i++ {
		activities := make([]Activity, 0, 3)
		for _, slot := range []string{"Morning", "Afternoon", "Evening"} {
			activities = append(activities, Activity{
				Time:        slot,
				Name:        name,
				Description: description,
				Location:    "N/A",
			})
		}
		days = append(days, DayPlan{
			Date:       fmt.Sprintf("Day %d - %s", i+1, req.DayDate(i).Format(DisplayDateLayout)),
			Weather:    NotAvailable,
			Activities: activities,
		})
	}
	return days
}

// Fallback builds the itinerary shown when nothing usable came back from the
// model. It depends on req alone and every text field is a visible error marker.
func Fallback(req TripRequest, reason string) GeneratedItinerary {
	return GeneratedItinerary{
		Destination:    req.Destination,
		StartDate:      req.StartDate.Format(DisplayDateLayout),
		EndDate:        req.EndDate.Format(DisplayDateLayout),
		Travelers:      req.Travelers,
		WeatherSummary: "An error occurred while generating weather data",
		DailyItinerary: placeholderDays(req, errorMarker, errorDescription),
		Accommodations: []Accommodation{{
			Name:        "Error generating accommodation data",
			Description: "There was a problem generating accommodation details",
			Location:    req.Destination,
			Image:       DefaultAccommodationImage,
			Amenities:   []Amenity{{Name: "Error"}},
		}},
		TransportOptions: TransportOptions{
			Flight:        []TransportOption{},
			Train:         []TransportOption{},
			Car:           []TransportOption{},
			Bus:           []TransportOption{},
			PublicTransit: []TransportOption{},
		},
		BudgetBreakdown: BudgetBreakdown{
			TotalBudget: req.Budget,
			Categories:  []BudgetCategory{{Name: "Error", Amount: req.Budget, Percentage: 100}},
		},
		PackingList: []PackingCategory{{
			Category: "Error",
			Items:    []PackingItem{{Name: "There was an error generating packing list data"}},
		}},
		Status:         StatusFallback,
		DegradedReason: reason,
	}
}
