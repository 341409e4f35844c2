// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripgen/internal/ai"
	"tripgen/internal/itinerary"
	"tripgen/internal/modules/trips"
	"tripgen/internal/modules/usage"
	"tripgen/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

// generationErrorResponse is returned when the model could not be reached. It
// carries the provider's raw body and a placeholder itinerary the client can render.
type generationErrorResponse struct {
	Error       string                       `json:"error"`
	RawResponse string                       `json:"raw_response,omitempty"`
	Itinerary   itinerary.GeneratedItinerary `json:"itinerary"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// pathID reads and validates the ":id" path parameter.
func pathID(c *gin.Context) (types.ID, bool) {
	id, ok := types.ParseID(c.Param("id"))
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid id")
		return "", false
	}
	return id, true
}

func writeTripError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, itinerary.ErrInvalidTrip):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, trips.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, usage.ErrQuotaExceeded):
		writeError(c, http.StatusTooManyRequests, err.Error())
	default:
		log.Printf("handlers: %v", err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// writeGenerationError maps a failed generation for req to a response. Model
// failures answer with a fallback itinerary next to the error.
func writeGenerationError(c *gin.Context, req itinerary.TripRequest, err error) {
	var cerr *ai.ConfigurationError
	var terr *ai.TransportError
	switch {
	case errors.As(err, &cerr):
		log.Printf("handlers: generation unavailable: %v", cerr)
		writeError(c, http.StatusServiceUnavailable, "itinerary generation is not configured")
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(c, http.StatusGatewayTimeout, generationErrorResponse{
			Error:     "itinerary generation timed out",
			Itinerary: itinerary.Fallback(req, "generation timed out"),
		})
	case errors.As(err, &terr):
		status := http.StatusBadGateway
		if errors.Is(err, ai.ErrRateLimit) {
			status = http.StatusTooManyRequests
		}
		writeJSON(c, status, generationErrorResponse{
			Error:       terr.Kind.Error(),
			RawResponse: terr.Raw,
			Itinerary:   itinerary.Fallback(req, terr.Kind.Error()),
		})
	default:
		writeTripError(c, err)
	}
}
