// README: Trip request and generated itinerary value objects.
package itinerary

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DisplayDateLayout matches the en-US short date the front end renders (1/3/2024).
const DisplayDateLayout = "1/2/2006"

// MaxTripDays bounds the date range a single request may span.
const MaxTripDays = 60

type TripStyle string

const (
	StyleLuxury   TripStyle = "luxury"
	StyleBalanced TripStyle = "balanced"
	StyleBudget   TripStyle = "budget"
)

// Status tells the presentation layer how much of the itinerary came from the model.
type Status string

const (
	StatusComplete Status = "complete"
	StatusPartial  Status = "partial"
	StatusFallback Status = "fallback"
)

// severity orders statuses so the worse one can be kept.
func (s Status) severity() int {
	switch s {
	case StatusPartial:
		return 1
	case StatusFallback:
		return 2
	default:
		return 0
	}
}

var ErrInvalidTrip = errors.New("invalid trip request")

// TripRequest is the user-supplied set of preferences a generation starts from.
type TripRequest struct {
	StartLocation       string    `json:"startLocation"`
	Destination         string    `json:"destination"`
	Budget              float64   `json:"budget"`
	TripStyle           TripStyle `json:"tripStyle"`
	StartDate           time.Time `json:"startDate"`
	EndDate             time.Time `json:"endDate"`
	Travelers           int       `json:"travelers"`
	Preferences         []string  `json:"preferences"`
	DietaryRestrictions []string  `json:"dietaryRestrictions,omitempty"`
	Accessibility       []string  `json:"accessibility,omitempty"`
	Transportation      []string  `json:"transportation"`
}

// DayCount returns floor((end-start)/1day)+1, never less than 1.
func (r TripRequest) DayCount() int {
	days := int(r.EndDate.Sub(r.StartDate)/(24*time.Hour)) + 1
	if days < 1 {
		return 1
	}
	return days
}

// DayDate returns the calendar date of the i-th (zero-based) trip day.
func (r TripRequest) DayDate(i int) time.Time {
	return r.StartDate.AddDate(0, 0, i)
}

// Validate enforces the same constraints the trip form applies client-side.
func (r TripRequest) Validate() error {
	var problems []string
	if len(strings.TrimSpace(r.StartLocation)) < 2 {
		problems = append(problems, "starting location is required")
	}
	if len(strings.TrimSpace(r.Destination)) < 2 {
		problems = append(problems, "destination is required")
	}
	if r.Budget < 100 || r.Budget > 50000 {
		problems = append(problems, "budget must be between 100 and 50000")
	}
	switch r.TripStyle {
	case StyleLuxury, StyleBalanced, StyleBudget:
	default:
		problems = append(problems, "trip style must be luxury, balanced or budget")
	}
	switch {
	case r.StartDate.IsZero() || r.EndDate.IsZero():
		problems = append(problems, "start and end dates are required")
	case r.EndDate.Before(r.StartDate):
		problems = append(problems, "end date must not be before start date")
	case r.DayCount() > MaxTripDays:
		problems = append(problems, fmt.Sprintf("trip cannot exceed %d days", MaxTripDays))
	}
	if r.Travelers < 1 || r.Travelers > 20 {
		problems = append(problems, "travelers must be between 1 and 20")
	}
	if len(r.Preferences) == 0 {
		problems = append(problems, "select at least one preference")
	}
	if len(r.Transportation) == 0 {
		problems = append(problems, "select at least one transportation method")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTrip, strings.Join(problems, "; "))
	}
	return nil
}

// GeneratedItinerary is the fully-shaped travel plan handed to the presentation layer.
type GeneratedItinerary struct {
	Destination      string            `json:"destination"`
	StartDate        string            `json:"startDate"`
	EndDate          string            `json:"endDate"`
	Travelers        int               `json:"travelers"`
	WeatherSummary   string            `json:"weatherSummary"`
	DailyItinerary   []DayPlan         `json:"dailyItinerary"`
	Accommodations   []Accommodation   `json:"accommodations"`
	TransportOptions TransportOptions  `json:"transportOptions"`
	BudgetBreakdown  BudgetBreakdown   `json:"budgetBreakdown"`
	PackingList      []PackingCategory `json:"packingList"`
	Status           Status            `json:"status"`
	DegradedReason   string            `json:"degradedReason,omitempty"`
}

type DayPlan struct {
	Date       string     `json:"date"`
	Weather    string     `json:"weather"`
	Activities []Activity `json:"activities"`
}

type Activity struct {
	Time             string          `json:"time"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Location         string          `json:"location"`
	Cost             float64         `json:"cost"`
	WeatherDependent bool            `json:"weatherDependent"`
	Duration         string          `json:"duration,omitempty"`
	Popularity       *float64        `json:"popularity,omitempty"`
	Category         string          `json:"category,omitempty"`
	BestTimeToVisit  string          `json:"bestTimeToVisit,omitempty"`
	Tip              string          `json:"tip,omitempty"`
	MealSuggestion   *MealSuggestion `json:"mealSuggestion,omitempty"`
}

type MealSuggestion struct {
	RestaurantName  string   `json:"restaurantName"`
	Cuisine         string   `json:"cuisine"`
	DietaryOptions  []string `json:"dietaryOptions"`
	PriceRange      string   `json:"priceRange"`
	Specialty       string   `json:"specialty"`
	WalkingDistance string   `json:"walkingDistance,omitempty"`
	TimingTip       string   `json:"timingTip,omitempty"`
}

type Amenity struct {
	Name string `json:"name"`
}

type Accommodation struct {
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Location             string    `json:"location"`
	Price                float64   `json:"price"`
	Rating               float64   `json:"rating"`
	Image                string    `json:"image"`
	Amenities            []Amenity `json:"amenities"`
	NearbyAttractions    []string  `json:"nearbyAttractions,omitempty"`
	TransportationAccess []string  `json:"transportationAccess,omitempty"`
}

// TransportOptions keeps one list per mode; the mode lists are always present, possibly empty.
type TransportOptions struct {
	Flight              []TransportOption     `json:"flight"`
	Train               []TransportOption     `json:"train"`
	Car                 []TransportOption     `json:"car"`
	Bus                 []TransportOption     `json:"bus"`
	PublicTransit       []TransportOption     `json:"publicTransit"`
	LocalTransportation []LocalTransportation `json:"localTransportation,omitempty"`
}

type TransportOption struct {
	Type                   string  `json:"type,omitempty"`
	Provider               string  `json:"provider"`
	DepartureTime          string  `json:"departureTime"`
	ArrivalTime            string  `json:"arrivalTime"`
	Duration               string  `json:"duration"`
	Price                  float64 `json:"price"`
	DepartureLocation      string  `json:"departureLocation"`
	ArrivalLocation        string  `json:"arrivalLocation"`
	Details                string  `json:"details"`
	RecommendedBookingTime string  `json:"recommendedBookingTime,omitempty"`
}

type LocalTransportation struct {
	Mode           string   `json:"mode"`
	Coverage       string   `json:"coverage"`
	CostPerTrip    float64  `json:"costPerTrip"`
	DayPassCost    float64  `json:"dayPassCost"`
	Frequency      string   `json:"frequency"`
	OperatingHours string   `json:"operatingHours"`
	Accessibility  string   `json:"accessibility"`
	Tips           []string `json:"tips,omitempty"`
}

type BudgetBreakdown struct {
	TotalBudget       float64            `json:"totalBudget"`
	TotalSpent        float64            `json:"totalSpent"`
	Categories        []BudgetCategory   `json:"categories"`
	ContingencyAmount float64            `json:"contingencyAmount"`
	LocalCurrency     *LocalCurrencyInfo `json:"localCurrency,omitempty"`
}

type BudgetCategory struct {
	Name       string     `json:"name"`
	Amount     float64    `json:"amount"`
	Percentage float64    `json:"percentage"`
	Items      []CostItem `json:"items,omitempty"`
	SavingTip  string     `json:"savingTip,omitempty"`
}

type CostItem struct {
	Item string  `json:"item"`
	Cost float64 `json:"cost"`
}

type LocalCurrencyInfo struct {
	Currency     string   `json:"currency"`
	ExchangeRate string   `json:"exchangeRate"`
	PaymentTips  []string `json:"paymentTips,omitempty"`
}

type PackingCategory struct {
	Category string        `json:"category"`
	Items    []PackingItem `json:"items"`
	Notes    string        `json:"notes,omitempty"`
}

type PackingItem struct {
	Name                 string `json:"name"`
	Essential            bool   `json:"essential"`
	WeatherConsideration string `json:"weatherConsideration,omitempty"`
	PackingTip           string `json:"packingTip,omitempty"`
}
