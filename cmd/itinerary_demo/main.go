package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"tripgen/internal/ai"
	"tripgen/internal/config"
	"tripgen/internal/itinerary"
	"tripgen/internal/service"
)

func main() {
	tripFile := flag.String("trip", "", "path to a trip request JSON file")
	promptOnly := flag.Bool("prompt", false, "print the prompt without calling the model")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	req := sampleTrip()
	if *tripFile != "" {
		data, err := os.ReadFile(*tripFile)
		if err != nil {
			log.Fatalf("read trip: %v", err)
		}
		if err := json.Unmarshal(data, &req); err != nil {
			log.Fatalf("decode trip: %v", err)
		}
	}
	if err := req.Validate(); err != nil {
		log.Fatal(err)
	}

	if *promptOnly {
		fmt.Println(ai.BuildItineraryPrompt(req))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.GenerateTimeout)
	defer cancel()

	provider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}
	if c, ok := provider.(interface{ Close() }); ok {
		defer c.Close()
	}

	fmt.Printf("Planning %d days in %s\n", req.DayCount(), req.Destination)
	it, err := service.NewTripPlanner(provider, nil, nil).Generate(ctx, req)
	if err != nil {
		log.Fatalf("Error generating itinerary: %v", err)
	}

	out, err := json.MarshalIndent(it, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
	fmt.Printf("Status: %s\n", it.Status)
	if it.DegradedReason != "" {
		fmt.Printf("Reason: %s\n", it.DegradedReason)
	}
}

func sampleTrip() itinerary.TripRequest {
	start := time.Now().AddDate(0, 1, 0).Truncate(24 * time.Hour)
	return itinerary.TripRequest{
		StartLocation:  "San Francisco, CA",
		Destination:    "Kyoto, Japan",
		Budget:         4000,
		TripStyle:      itinerary.StyleBalanced,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, 3),
		Travelers:      2,
		Preferences:    []string{"culture", "food", "nature"},
		Transportation: []string{"flight", "public transit"},
	}
}
