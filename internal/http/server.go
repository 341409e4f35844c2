// README: API gateway; holds the services the HTTP routes delegate to.
package http

import (
	"time"

	"tripgen/internal/infra"
	"tripgen/internal/modules/trips"
	"tripgen/internal/modules/usage"
)

type ServerDeps struct {
	Trips *trips.Service
	// Usage is optional; generation is not metered without it.
	Usage *usage.Service
	// Verifier is optional; without it callers are identified by client IP.
	Verifier        infra.TokenVerifier
	RatePerMin      int
	GenerateTimeout time.Duration
	PublicURL       string
	// TrustedProxies may set X-Forwarded-For; nil trusts none.
	TrustedProxies  []string
}

type Server struct {
	trips           *trips.Service
	usage           *usage.Service
	verifier        infra.TokenVerifier
	ratePerMin      int
	generateTimeout time.Duration
	publicURL       string
	trustedProxies  []string
}

func NewServer(deps ServerDeps) *Server {
	timeout := deps.GenerateTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Server{
		trips:           deps.Trips,
		usage:           deps.Usage,
		verifier:        deps.Verifier,
		ratePerMin:      deps.RatePerMin,
		generateTimeout: timeout,
		publicURL:       deps.PublicURL,
		trustedProxies:  deps.TrustedProxies,
	}
}
