// README: Trip and itinerary handlers (create, generate, fetch, export).
package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tripgen/internal/http/middleware"
	"tripgen/internal/itinerary"
	"tripgen/internal/modules/trips"
	"tripgen/internal/modules/usage"
	"tripgen/internal/share"
	"tripgen/internal/types"
)

// TripHandler serves the trip and itinerary endpoints. usage may be nil, in
// which case no quota is enforced.
type TripHandler struct {
	trips     *trips.Service
	usage     *usage.Service
	timeout   time.Duration
	publicURL string
}

func NewTripHandler(tripSvc *trips.Service, usageSvc *usage.Service, timeout time.Duration, publicURL string) *TripHandler {
	return &TripHandler{
		trips:     tripSvc,
		usage:     usageSvc,
		timeout:   timeout,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

type tripRequestBody struct {
	StartLocation       string   `json:"startLocation" binding:"required,min=2"`
	Destination         string   `json:"destination" binding:"required,min=2"`
	Budget              float64  `json:"budget" binding:"required,gte=100,lte=50000"`
	TripStyle           string   `json:"tripStyle" binding:"required,oneof=luxury balanced budget"`
	StartDate           string   `json:"startDate" binding:"required"`
	EndDate             string   `json:"endDate" binding:"required"`
	Travelers           int      `json:"travelers" binding:"required,gte=1,lte=20"`
	Preferences         []string `json:"preferences" binding:"required,min=1"`
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	Accessibility       []string `json:"accessibility"`
	Transportation      []string `json:"transportation" binding:"required,min=1"`
}

type itineraryResp struct {
	ID        types.ID                     `json:"id"`
	TripID    types.ID                     `json:"trip_id,omitempty"`
	Status    itinerary.Status             `json:"status"`
	ShareURL  string                       `json:"share_url"`
	Itinerary itinerary.GeneratedItinerary `json:"itinerary"`
}

// parseDate accepts a calendar date (2024-01-02) or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a date", itinerary.ErrInvalidTrip, s)
	}
	return t, nil
}

func (b tripRequestBody) toRequest() (itinerary.TripRequest, error) {
	start, err := parseDate(b.StartDate)
	if err != nil {
		return itinerary.TripRequest{}, err
	}
	end, err := parseDate(b.EndDate)
	if err != nil {
		return itinerary.TripRequest{}, err
	}
	return itinerary.TripRequest{
		StartLocation:       strings.TrimSpace(b.StartLocation),
		Destination:         strings.TrimSpace(b.Destination),
		Budget:              b.Budget,
		TripStyle:           itinerary.TripStyle(b.TripStyle),
		StartDate:           start,
		EndDate:             end,
		Travelers:           b.Travelers,
		Preferences:         b.Preferences,
		DietaryRestrictions: b.DietaryRestrictions,
		Accessibility:       b.Accessibility,
		Transportation:      b.Transportation,
	}, nil
}

func bindTrip(c *gin.Context) (itinerary.TripRequest, bool) {
	var body tripRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, "invalid trip request: "+err.Error())
		return itinerary.TripRequest{}, false
	}
	req, err := body.toRequest()
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		writeTripError(c, err)
		return itinerary.TripRequest{}, false
	}
	return req, true
}

// CreateTrip handles POST /api/trips.
func (h *TripHandler) CreateTrip(c *gin.Context) {
	req, ok := bindTrip(c)
	if !ok {
		return
	}
	t, err := h.trips.CreateTrip(c.Request.Context(), req)
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, map[string]any{"trip_id": t.ID, "days": req.DayCount()})
}

// GetTrip handles GET /api/trips/:id.
func (h *TripHandler) GetTrip(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.trips.GetTrip(c.Request.Context(), id)
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

// GenerateForTrip handles POST /api/trips/:id/itinerary.
func (h *TripHandler) GenerateForTrip(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.trips.GetTrip(c.Request.Context(), id)
	if err != nil {
		writeTripError(c, err)
		return
	}
	h.generate(c, t.Request, func(ctx context.Context) (trips.Itinerary, error) {
		return h.trips.GenerateForTrip(ctx, id)
	})
}

// LatestForTrip handles GET /api/trips/:id/itinerary.
func (h *TripHandler) LatestForTrip(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	it, err := h.trips.LatestForTrip(c.Request.Context(), id)
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, h.itineraryResp(it))
}

// Generate handles POST /api/itineraries.
func (h *TripHandler) Generate(c *gin.Context) {
	req, ok := bindTrip(c)
	if !ok {
		return
	}
	h.generate(c, req, func(ctx context.Context) (trips.Itinerary, error) {
		return h.trips.Generate(ctx, req)
	})
}

// generate charges the caller's quota, runs fn under the generation timeout
// and refunds the quota when fn fails.
func (h *TripHandler) generate(c *gin.Context, req itinerary.TripRequest, fn func(ctx context.Context) (trips.Itinerary, error)) {
	caller := middleware.Caller(c)
	if h.usage != nil {
		if err := h.usage.Consume(c.Request.Context(), caller); err != nil {
			writeTripError(c, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	it, err := fn(ctx)
	if err != nil {
		if h.usage != nil {
			if rerr := h.usage.Refund(c.Request.Context(), caller); rerr != nil {
				log.Printf("handlers: refund %s: %v", caller, rerr)
			}
		}
		writeGenerationError(c, req, err)
		return
	}
	writeJSON(c, http.StatusOK, h.itineraryResp(it))
}

// GetItinerary handles GET /api/itineraries/:id.
func (h *TripHandler) GetItinerary(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	it, err := h.trips.GetItinerary(c.Request.Context(), id)
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, h.itineraryResp(it))
}

// ItineraryPDF handles GET /api/itineraries/:id/pdf.
func (h *TripHandler) ItineraryPDF(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	it, err := h.trips.GetItinerary(c.Request.Context(), id)
	if err != nil {
		writeTripError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := share.WritePDF(&buf, it.Itinerary, h.shareURL(id)); err != nil {
		writeTripError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=itinerary-%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ItineraryQR handles GET /api/itineraries/:id/qr?size=N.
func (h *TripHandler) ItineraryQR(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.trips.GetItinerary(c.Request.Context(), id); err != nil {
		writeTripError(c, err)
		return
	}
	size := 256
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid size")
			return
		}
		size = n
	}
	png, err := share.QRCode(h.shareURL(id), size)
	if err != nil {
		writeTripError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// Usage handles GET /api/usage.
func (h *TripHandler) Usage(c *gin.Context) {
	if h.usage == nil {
		writeJSON(c, http.StatusOK, map[string]any{"limited": false})
		return
	}
	left, err := h.usage.Remaining(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"limited": true, "remaining": left, "quota": h.usage.Quota()})
}

func (h *TripHandler) shareURL(id types.ID) string {
	return h.publicURL + "/api/itineraries/" + string(id)
}

func (h *TripHandler) itineraryResp(it trips.Itinerary) itineraryResp {
	return itineraryResp{
		ID:        it.ID,
		TripID:    it.TripID,
		Status:    it.Itinerary.Status,
		ShareURL:  h.shareURL(it.ID),
		Itinerary: it.Itinerary,
	}
}
