// README: Stored trip requests and the itineraries generated from them.
package trips

import (
	"errors"
	"time"

	"tripgen/internal/itinerary"
	"tripgen/internal/types"
)

var ErrNotFound = errors.New("not found")

// Trip is a validated trip request kept so an itinerary can be (re)generated later.
type Trip struct {
	ID        types.ID              `json:"id"`
	Request   itinerary.TripRequest `json:"request"`
	CreatedAt time.Time             `json:"createdAt"`
}

// Itinerary is a generated itinerary together with the request it answers.
type Itinerary struct {
	ID        types.ID                     `json:"id"`
	TripID    types.ID                     `json:"tripId,omitempty"`
	Request   itinerary.TripRequest        `json:"request"`
	Itinerary itinerary.GeneratedItinerary `json:"itinerary"`
	CreatedAt time.Time                    `json:"createdAt"`
}
