package itinerary

import (
	"fmt"
	"math"
	"strings"
)

// DefaultAccommodationImage is used when the model gives no usable image reference.
const DefaultAccommodationImage = "https://images.unsplash.com/photo-1566073771259-6a8506099945"

const (
	NotAvailable       = "Data not available"
	timeNotSpecified   = "Time not specified"
	placeNotSpecified  = "Location not specified"
	noDescription      = "No description available"
	noActivityDetails  = "Activity details could not be generated"
	weatherUnavailable = "Weather data not available"
)

const maxReasonPaths = 5

// normalizer accumulates the paths it had to default while walking one document.
type normalizer struct {
	req       TripRequest
	defaulted []string
}

func (n *normalizer) mark(path string) {
	n.defaulted = append(n.defaulted, path)
}

// str reads a required string, substituting def when it is missing or malformed.
func (n *normalizer) str(obj map[string]any, path, def string, keys ...string) string {
	v, _ := lookup(obj, keys...)
	if s, ok := asString(v); ok {
		return s
	}
	n.mark(path + "." + keys[0])
	return def
}

// num reads a required number; anything non-numeric becomes 0.
func (n *normalizer) num(obj map[string]any, path string, keys ...string) float64 {
	v, _ := lookup(obj, keys...)
	if f, ok := asNumber(v); ok {
		return f
	}
	n.mark(path + "." + keys[0])
	return 0
}

func (n *normalizer) nonNeg(obj map[string]any, path string, keys ...string) float64 {
	return math.Max(n.num(obj, path, keys...), 0)
}

func (n *normalizer) boolean(obj map[string]any, path string, keys ...string) bool {
	v, _ := lookup(obj, keys...)
	if b, ok := asBool(v); ok {
		return b
	}
	n.mark(path + "." + keys[0])
	return false
}

// Normalize turns an arbitrary decoded value into a complete GeneratedItinerary.
// Every required field is filled, every required list is non-empty, and optional
// fields the model left out stay absent. It never panics on malformed input.
func Normalize(parsed any, req TripRequest) GeneratedItinerary {
	n := &normalizer{req: req}
	root, ok := asObject(parsed)
	if !ok {
		n.mark("$")
		root = map[string]any{}
	}

	it := GeneratedItinerary{
		Destination:    n.str(root, "$", req.Destination, "destination"),
		StartDate:      n.str(root, "$", req.StartDate.Format(DisplayDateLayout), "startDate"),
		EndDate:        n.str(root, "$", req.EndDate.Format(DisplayDateLayout), "endDate"),
		Travelers:      n.travelers(root),
		WeatherSummary: n.str(root, "$", weatherUnavailable, "weatherSummary"),
	}

	var dayNote string
	it.DailyItinerary, dayNote = n.days(root)
	it.Accommodations = n.accommodations(root)
	it.TransportOptions = n.transport(root)
	it.BudgetBreakdown = n.budget(root)
	it.PackingList = n.packing(root)

	it.Status, it.DegradedReason = n.status(root, dayNote)
	return it
}

func (n *normalizer) travelers(root map[string]any) int {
	v, _ := lookup(root, "travelers")
	if f, ok := asNumber(v); ok && f >= 1 {
		return int(math.Round(f))
	}
	n.mark("$.travelers")
	return n.req.Travelers
}

func (n *normalizer) status(root map[string]any, dayNote string) (Status, string) {
	status := StatusComplete
	var notes []string
	if len(n.defaulted) > 0 {
		status = StatusPartial
		shown := n.defaulted
		if len(shown) > maxReasonPaths {
			shown = shown[:maxReasonPaths]
		}
		note := "defaulted " + strings.Join(shown, ", ")
		if extra := len(n.defaulted) - len(shown); extra > 0 {
			note += fmt.Sprintf(" and %d more", extra)
		}
		notes = append(notes, note)
	}
	if dayNote != "" {
		status = StatusPartial
		notes = append(notes, dayNote)
	}
	reason := strings.Join(notes, "; ")

	// A degraded status carried in from an earlier pass is never downgraded, and
	// at equal severity its reason wins.
	prev, _ := asString(root["status"])
	if p := Status(prev); p.severity() > 0 && p.severity() >= status.severity() {
		status = p
		if r := optString(root, "degradedReason"); r != "" {
			reason = r
		}
	}
	return status, reason
}

// --- days and activities ---

func (n *normalizer) days(root map[string]any) ([]DayPlan, string) {
	v, _ := lookup(root, "dailyItinerary", "days")
	list, ok := asList(v)
	if !ok || len(list) == 0 {
		n.mark("$.dailyItinerary")
		return placeholderDays(n.req, NotAvailable, "Data could not be generated. Please try again later."), ""
	}

	days := make([]DayPlan, 0, len(list))
	for i, raw := range list {
		days = append(days, n.day(raw, fmt.Sprintf("$.dailyItinerary[%d]", i)))
	}

	// The model's day list is kept as-is; a length mismatch is only reported.
	var note string
	if want := n.req.DayCount(); len(days) != want {
		note = fmt.Sprintf("model returned %d days for a %d-day trip", len(days), want)
	}
	return days, note
}

func (n *normalizer) day(raw any, path string) DayPlan {
	obj, ok := asObject(raw)
	if !ok {
		n.mark(path)
		obj = map[string]any{}
	}
	return DayPlan{
		Date:       n.str(obj, path, "Date not specified", "date"),
		Weather:    n.str(obj, path, weatherUnavailable, "weather"),
		Activities: n.activities(obj, path),
	}
}

// activities reads the flat activity list, or concatenates the older
// morning/afternoon/evening lists when that is what the model produced.
func (n *normalizer) activities(day map[string]any, path string) []Activity {
	var raws []any
	if l, ok := asList(day["activities"]); ok {
		raws = l
	} else {
		for _, part := range []string{"morning", "afternoon", "evening"} {
			if l, ok := asList(day[part]); ok {
				raws = append(raws, l...)
			}
		}
	}
	if len(raws) == 0 {
		n.mark(path + ".activities")
		return []Activity{{
			Time:        timeNotSpecified,
			Name:        NotAvailable,
			Description: noActivityDetails,
			Location:    "N/A",
		}}
	}

	out := make([]Activity, 0, len(raws))
	for i, raw := range raws {
		out = append(out, n.activity(raw, fmt.Sprintf("%s.activities[%d]", path, i)))
	}
	return out
}

func (n *normalizer) activity(raw any, path string) Activity {
	obj, ok := asObject(raw)
	if !ok {
		n.mark(path)
		return Activity{
			Time:        timeNotSpecified,
			Name:        "Invalid activity data",
			Description: noActivityDetails,
			Location:    "N/A",
		}
	}
	return Activity{
		Time:             n.str(obj, path, timeNotSpecified, "time"),
		Name:             n.str(obj, path, "Activity name not available", "name"),
		Description:      n.str(obj, path, noDescription, "description"),
		Location:         n.str(obj, path, placeNotSpecified, "location"),
		Cost:             n.nonNeg(obj, path, "cost"),
		WeatherDependent: n.boolean(obj, path, "weatherDependent"),
		Duration:         optString(obj, "duration"),
		Popularity:       optNumber(obj, "popularity", "popularityScore"),
		Category:         optString(obj, "category"),
		BestTimeToVisit:  optString(obj, "bestTimeToVisit"),
		Tip:              optString(obj, "tip", "tips"),
		MealSuggestion:   n.meal(obj, path),
	}
}

func (n *normalizer) meal(activity map[string]any, path string) *MealSuggestion {
	obj, ok := asObject(activity["mealSuggestion"])
	if !ok {
		return nil
	}
	path += ".mealSuggestion"
	options := optStrings(obj, "dietaryOptions")
	if options == nil {
		options = []string{}
	}
	return &MealSuggestion{
		RestaurantName:  n.str(obj, path, "Restaurant not specified", "restaurantName", "restaurant"),
		Cuisine:         n.str(obj, path, "Cuisine not specified", "cuisine"),
		DietaryOptions:  options,
		PriceRange:      n.str(obj, path, "Price range not specified", "priceRange"),
		Specialty:       n.str(obj, path, "Not specified", "specialty"),
		WalkingDistance: optString(obj, "walkingDistance"),
		TimingTip:       optString(obj, "timingTip"),
	}
}

// --- accommodations ---

func (n *normalizer) accommodations(root map[string]any) []Accommodation {
	list, ok := asList(root["accommodations"])
	if !ok || len(list) == 0 {
		n.mark("$.accommodations")
		return []Accommodation{{
			Name:        "Accommodation data not available",
			Description: "Accommodation details could not be generated",
			Location:    n.req.Destination,
			Image:       DefaultAccommodationImage,
			Amenities:   []Amenity{{Name: NotAvailable}},
		}}
	}
	out := make([]Accommodation, 0, len(list))
	for i, raw := range list {
		out = append(out, n.accommodation(raw, fmt.Sprintf("$.accommodations[%d]", i)))
	}
	return out
}

func (n *normalizer) accommodation(raw any, path string) Accommodation {
	obj, ok := asObject(raw)
	if !ok {
		n.mark(path)
		obj = map[string]any{}
	}
	return Accommodation{
		Name:                 n.str(obj, path, "Accommodation data not available", "name"),
		Description:          n.str(obj, path, "Description not available", "description"),
		Location:             n.str(obj, path, placeNotSpecified, "location"),
		Price:                n.nonNeg(obj, path, "price"),
		Rating:               clamp(n.num(obj, path, "rating"), 0, 5),
		Image:                n.str(obj, path, DefaultAccommodationImage, "image"),
		Amenities:            n.amenities(obj, path),
		NearbyAttractions:    optStrings(obj, "nearbyAttractions"),
		TransportationAccess: optStrings(obj, "transportationAccess"),
	}
}

// amenities accepts both bare strings and {"name": ...} objects.
func (n *normalizer) amenities(acc map[string]any, path string) []Amenity {
	list, ok := asList(acc["amenities"])
	if !ok || len(list) == 0 {
		n.mark(path + ".amenities")
		return []Amenity{{Name: NotAvailable}}
	}
	out := make([]Amenity, 0, len(list))
	for i, raw := range list {
		if s, ok := asString(raw); ok {
			out = append(out, Amenity{Name: s})
			continue
		}
		obj, _ := asObject(raw)
		out = append(out, Amenity{Name: n.str(obj, fmt.Sprintf("%s.amenities[%d]", path, i), "Amenity", "name")})
	}
	return out
}

// --- transport ---

func (n *normalizer) transport(root map[string]any) TransportOptions {
	obj, ok := asObject(root["transportOptions"])
	if !ok {
		n.mark("$.transportOptions")
		obj = map[string]any{}
	}
	const path = "$.transportOptions"
	opts := TransportOptions{
		Flight:        n.transportList(obj, path, "flight"),
		Train:         n.transportList(obj, path, "train"),
		Car:           n.transportList(obj, path, "car"),
		Bus:           n.transportList(obj, path, "bus"),
		PublicTransit: n.transportList(obj, path, "publicTransit"),
	}
	if list, ok := asList(obj["localTransportation"]); ok && len(list) > 0 {
		opts.LocalTransportation = make([]LocalTransportation, 0, len(list))
		for i, raw := range list {
			opts.LocalTransportation = append(opts.LocalTransportation,
				n.localTransport(raw, fmt.Sprintf("%s.localTransportation[%d]", path, i)))
		}
	}
	return opts
}

// transportList always returns a non-nil slice; an absent mode is simply empty.
func (n *normalizer) transportList(obj map[string]any, path, mode string) []TransportOption {
	list, _ := asList(obj[mode])
	out := make([]TransportOption, 0, len(list))
	for i, raw := range list {
		out = append(out, n.transportOption(raw, fmt.Sprintf("%s.%s[%d]", path, mode, i)))
	}
	return out
}

func (n *normalizer) transportOption(raw any, path string) TransportOption {
	obj, ok := asObject(raw)
	if !ok {
		n.mark(path)
		obj = map[string]any{}
	}
	return TransportOption{
		Type:                   optString(obj, "type"),
		Provider:               n.str(obj, path, "Provider not specified", "provider"),
		DepartureTime:          n.str(obj, path, timeNotSpecified, "departureTime"),
		ArrivalTime:            n.str(obj, path, timeNotSpecified, "arrivalTime"),
		Duration:               n.str(obj, path, "Duration not specified", "duration"),
		Price:                  n.nonNeg(obj, path, "price"),
		DepartureLocation:      n.str(obj, path, placeNotSpecified, "departureLocation"),
		ArrivalLocation:        n.str(obj, path, placeNotSpecified, "arrivalLocation"),
		Details:                n.str(obj, path, "No details available", "details"),
		RecommendedBookingTime: optString(obj, "recommendedBookingTime"),
	}
}

func (n *normalizer) localTransport(raw any, path string) LocalTransportation {
	obj, ok := asObject(raw)
	if !ok {
		n.mark(path)
		obj = map[string]any{}
	}
	return LocalTransportation{
		Mode:           n.str(obj, path, "Mode not specified", "mode", "type"),
		Coverage:       n.str(obj, path, "Coverage not specified", "coverage"),
		CostPerTrip:    n.nonNeg(obj, path, "costPerTrip"),
		DayPassCost:    n.nonNeg(obj, path, "dayPassCost"),
		Frequency:      n.str(obj, path, "Frequency not specified", "frequency"),
		OperatingHours: n.str(obj, path, "Hours not specified", "operatingHours"),
		Accessibility:  n.str(obj, path, "Accessibility not specified", "accessibility"),
		Tips:           optStrings(obj, "tips"),
	}
}

// --- budget ---

func (n *normalizer) budget(root map[string]any) BudgetBreakdown {
	obj, ok := asObject(root["budgetBreakdown"])
	if !ok {
		n.mark("$.budgetBreakdown")
		return BudgetBreakdown{
			TotalBudget: n.req.Budget,
			Categories:  placeholderBudgetCategories(n.req.Budget),
		}
	}
	const path = "$.budgetBreakdown"

	total := n.req.Budget
	if f, ok := asNumber(obj["totalBudget"]); ok {
		total = math.Max(f, 0)
	} else {
		n.mark(path + ".totalBudget")
	}

	b := BudgetBreakdown{
		TotalBudget:       total,
		TotalSpent:        n.nonNeg(obj, path, "totalSpent"),
		ContingencyAmount: n.nonNeg(obj, path, "contingencyAmount"),
	}

	list, ok := asList(obj["categories"])
	if !ok || len(list) == 0 {
		n.mark(path + ".categories")
		b.Categories = placeholderBudgetCategories(total)
	} else {
		b.Categories = make([]BudgetCategory, 0, len(list))
		for i, raw := range list {
			b.Categories = append(b.Categories, n.budgetCategory(raw, fmt.Sprintf("%s.categories[%d]", path, i)))
		}
	}

	if cur, ok := asObject(obj["localCurrency"]); ok {
		b.LocalCurrency = &LocalCurrencyInfo{
			Currency:     n.str(cur, path+".localCurrency", "Currency not specified", "currency"),
			ExchangeRate: n.str(cur, path+".localCurrency", "Exchange rate not available", "exchangeRate"),
			PaymentTips:  optStrings(cur, "paymentTips"),
		}
	}
	return b
}

func (n *normalizer) budgetCategory(raw any, path string) BudgetCategory {
	obj, ok := asObject(raw)
	if !ok {
		n.mark(path)
		obj = map[string]any{}
	}
	c := BudgetCategory{
		Name:       n.str(obj, path, "Category not specified", "name"),
		Amount:     n.nonNeg(obj, path, "amount"),
		Percentage: n.nonNeg(obj, path, "percentage"),
		SavingTip:  optString(obj, "savingTip"),
	}
	if items, ok := asList(obj["items"]); ok && len(items) > 0 {
		for i, it := range items {
			itemObj, _ := asObject(it)
			itemPath := fmt.Sprintf("%s.items[%d]", path, i)
			c.Items = append(c.Items, CostItem{
				Item: n.str(itemObj, itemPath, "Item not specified", "item", "name"),
				Cost: n.nonNeg(itemObj, itemPath, "cost", "amount"),
			})
		}
	}
	return c
}

// --- packing ---

func (n *normalizer) packing(root map[string]any) []PackingCategory {
	list, ok := asList(root["packingList"])
	if !ok || len(list) == 0 {
		n.mark("$.packingList")
		return []PackingCategory{
			{Category: "Essentials", Items: []PackingItem{{Name: NotAvailable}}},
			{Category: "Clothing", Items: []PackingItem{{Name: NotAvailable}}},
			{Category: "Other", Items: []PackingItem{{Name: "Packing list data could not be generated"}}},
		}
	}
	out := make([]PackingCategory, 0, len(list))
	for i, raw := range list {
		out = append(out, n.packingCategory(raw, fmt.Sprintf("$.packingList[%d]", i)))
	}
	return out
}

func (n *normalizer) packingCategory(raw any, path string) PackingCategory {
	obj, ok := asObject(raw)
	if !ok {
		n.mark(path)
		obj = map[string]any{}
	}
	c := PackingCategory{
		Category: n.str(obj, path, "Packing category", "category", "name"),
		Notes:    optString(obj, "notes"),
	}

	list, ok := asList(obj["items"])
	if !ok || len(list) == 0 {
		n.mark(path + ".items")
		c.Items = []PackingItem{{Name: NotAvailable}}
		return c
	}
	c.Items = make([]PackingItem, 0, len(list))
	for i, raw := range list {
		c.Items = append(c.Items, n.packingItem(raw, fmt.Sprintf("%s.items[%d]", path, i)))
	}
	return c
}

// packingItem accepts a bare string, which is how the prompt's example lists items.
func (n *normalizer) packingItem(raw any, path string) PackingItem {
	if s, ok := asString(raw); ok {
		return PackingItem{Name: s}
	}
	obj, ok := asObject(raw)
	if !ok {
		n.mark(path)
		return PackingItem{Name: NotAvailable}
	}
	return PackingItem{
		Name:                 n.str(obj, path, "Item not specified", "name"),
		Essential:            n.boolean(obj, path, "essential"),
		WeatherConsideration: optString(obj, "weatherConsideration"),
		PackingTip:           optString(obj, "packingTip"),
	}
}

func placeholderBudgetCategories(total float64) []BudgetCategory {
	return []BudgetCategory{
		{Name: "Accommodation"},
		{Name: "Food"},
		{Name: "Activities"},
		{Name: "Transportation"},
		{Name: NotAvailable, Amount: total, Percentage: 100},
	}
}
