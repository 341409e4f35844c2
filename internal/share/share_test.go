package share

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"tripgen/internal/itinerary"
)

func shareTrip() itinerary.TripRequest {
	return itinerary.TripRequest{
		StartLocation:  "Berlin",
		Destination:    "Zürich",
		Budget:         1500,
		TripStyle:      itinerary.StyleLuxury,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Travelers:      1,
		Preferences:    []string{"museums"},
		Transportation: []string{"train"},
	}
}

func TestWritePDF(t *testing.T) {
	it := itinerary.Fallback(shareTrip(), "no response")
	it.TransportOptions.Train = []itinerary.TransportOption{{Provider: "SBB", DepartureLocation: "Berlin", ArrivalLocation: "Zürich", Duration: "8h", Price: 120}}

	var buf bytes.Buffer
	if err := WritePDF(&buf, it, "https://trips.example.com/api/itineraries/abc"); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestWritePDF_NoShareURL(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, itinerary.Normalize(map[string]any{}, shareTrip()), ""); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty pdf")
	}
}

func TestQRCode(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{256, 256},
		{10, MinQRSize},
		{5000, MaxQRSize},
	}
	for _, tt := range tests {
		b, err := QRCode("https://trips.example.com/api/itineraries/abc", tt.size)
		if err != nil {
			t.Fatalf("QRCode(%d): %v", tt.size, err)
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(b))
		if err != nil {
			t.Fatalf("decode png: %v", err)
		}
		if cfg.Width != tt.want || cfg.Height != tt.want {
			t.Errorf("QRCode(%d) size = %dx%d, want %d", tt.size, cfg.Width, cfg.Height, tt.want)
		}
	}
}
