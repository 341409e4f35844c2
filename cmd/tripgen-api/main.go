// README: Entry point; loads config, wires services and serves the HTTP API until interrupted.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripgen/internal/ai"
	"tripgen/internal/config"
	httptransport "tripgen/internal/http"
	"tripgen/internal/infra"
	"tripgen/internal/maps"
	"tripgen/internal/modules/trips"
	"tripgen/internal/modules/usage"
	"tripgen/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		var cerr *ai.ConfigurationError
		if !errors.As(err, &cerr) {
			log.Fatalf("ai init: %v", err)
		}
		// Serve anyway; generation answers 503 until the key is configured.
		log.Printf("ai: generation disabled: %v", err)
		provider = nil
	}
	if c, ok := provider.(interface{ Close() }); ok {
		defer c.Close()
	}

	var routes service.TravelEstimator
	var places service.PlaceFinder
	if cfg.Maps.APIKey != "" {
		rs, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps routes init: %v", err)
		}
		ps, err := maps.NewPlacesService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps places init: %v", err)
		}
		routes, places = rs, ps
	}
	planner := service.NewTripPlanner(provider, routes, places)

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()
	tripSvc := trips.NewService(trips.NewStore(redisClient, cfg.Redis.ItineraryTTL), planner)

	var usageSvc *usage.Service
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		usageSvc = usage.NewService(usage.NewStore(dbPool), cfg.Limits.MonthlyQuota)
	} else {
		log.Printf("usage: TRIPGEN_DB_DSN not set, monthly quota disabled")
	}

	var verifier infra.TokenVerifier
	if cfg.Firebase.ProjectID != "" {
		verifier, err = infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Fatalf("firebase init: %v", err)
		}
	}

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Trips:           tripSvc,
		Usage:           usageSvc,
		Verifier:        verifier,
		RatePerMin:      cfg.Limits.RatePerMin,
		GenerateTimeout: cfg.HTTP.GenerateTimeout,
		PublicURL:       cfg.HTTP.PublicURL,
		TrustedProxies:  cfg.HTTP.TrustedProxies,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("http: shutdown: %v", err)
		}
	}()

	log.Printf("http: listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
