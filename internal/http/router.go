// README: HTTP router registration.
package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripgen/internal/http/handlers"
	"tripgen/internal/http/middleware"
)

func (s *Server) Routes() http.Handler {
	r := gin.New()
	// X-Forwarded-For counts only from configured proxies.
	if err := r.SetTrustedProxies(s.trustedProxies); err != nil {
		log.Printf("http: trusted proxies %v: %v; trusting none", s.trustedProxies, err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middleware.Recovery(), middleware.Logging())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	if s.verifier != nil {
		api.Use(middleware.Auth(s.verifier))
	}

	tripHandler := handlers.NewTripHandler(s.trips, s.usage, s.generateTimeout, s.publicURL)
	generation := []gin.HandlerFunc{}
	if s.ratePerMin > 0 {
		generation = append(generation, middleware.RateLimit(middleware.NewLimiter(s.ratePerMin)))
	}

	api.POST("/trips", tripHandler.CreateTrip)
	api.GET("/trips/:id", tripHandler.GetTrip)
	api.POST("/trips/:id/itinerary", append(generation, tripHandler.GenerateForTrip)...)
	api.GET("/trips/:id/itinerary", tripHandler.LatestForTrip)

	api.POST("/itineraries", append(generation, tripHandler.Generate)...)
	api.GET("/itineraries/:id", tripHandler.GetItinerary)
	api.GET("/itineraries/:id/pdf", tripHandler.ItineraryPDF)
	api.GET("/itineraries/:id/qr", tripHandler.ItineraryQR)

	api.GET("/usage", tripHandler.Usage)
	return r
}
