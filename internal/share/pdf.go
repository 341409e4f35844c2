// README: Printable PDF rendering of a generated itinerary.
package share

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/phpdave11/gofpdf"

	"tripgen/internal/itinerary"
)

const (
	pageMargin = 15.0
	lineHeight = 6.0
	qrSizeMM   = 30.0
)

// WritePDF renders it as an A4 document to w. When shareURL is non-empty a QR
// code linking to it is placed in the page header.
func WritePDF(w io.Writer, it itinerary.GeneratedItinerary, shareURL string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if shareURL != "" {
		png, err := QRCode(shareURL, 256)
		if err != nil {
			return err
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("share-qr", opts, bytes.NewReader(png))
		pageW, _ := pdf.GetPageSize()
		pdf.ImageOptions("share-qr", pageW-pageMargin-qrSizeMM, pageMargin, qrSizeMM, qrSizeMM, false, opts, 0, "")
	}

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Trip to %s", it.Destination)))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, lineHeight, tr(fmt.Sprintf("%s - %s, %d traveler(s)", it.StartDate, it.EndDate, it.Travelers)))
	pdf.Ln(lineHeight)
	if it.Status != itinerary.StatusComplete {
		pdf.SetTextColor(180, 60, 0)
		pdf.MultiCell(0, lineHeight, tr(statusNote(it)), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.MultiCell(0, lineHeight, tr(it.WeatherSummary), "", "L", false)
	if shareURL != "" {
		pdf.SetY(pageMargin + qrSizeMM + 2)
	}

	section(pdf, tr, "Daily itinerary")
	for _, day := range it.DailyItinerary {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, lineHeight+1, tr(day.Date))
		pdf.Ln(lineHeight + 1)
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, lineHeight, tr("Weather: "+day.Weather))
		pdf.Ln(lineHeight)
		pdf.SetFont("Arial", "", 10)
		for _, a := range day.Activities {
			line := fmt.Sprintf("%s  %s @ %s (%s)", a.Time, a.Name, a.Location, money(a.Cost))
			pdf.MultiCell(0, lineHeight, tr(line), "", "L", false)
			if a.Description != "" {
				pdf.SetX(pageMargin + 6)
				pdf.MultiCell(0, lineHeight-1, tr(a.Description), "", "L", false)
			}
			if m := a.MealSuggestion; m != nil {
				pdf.SetX(pageMargin + 6)
				pdf.MultiCell(0, lineHeight-1, tr(fmt.Sprintf("Meal: %s (%s, %s)", m.RestaurantName, m.Cuisine, m.PriceRange)), "", "L", false)
			}
		}
		pdf.Ln(2)
	}

	section(pdf, tr, "Accommodations")
	for _, a := range it.Accommodations {
		amenities := make([]string, 0, len(a.Amenities))
		for _, am := range a.Amenities {
			amenities = append(amenities, am.Name)
		}
		pdf.MultiCell(0, lineHeight, tr(fmt.Sprintf("%s - %s, %s per night, rated %.1f", a.Name, a.Location, money(a.Price), a.Rating)), "", "L", false)
		if len(amenities) > 0 {
			pdf.SetX(pageMargin + 6)
			pdf.MultiCell(0, lineHeight-1, tr(strings.Join(amenities, ", ")), "", "L", false)
		}
	}

	section(pdf, tr, "Getting there")
	modes := []struct {
		name string
		list []itinerary.TransportOption
	}{
		{"Flight", it.TransportOptions.Flight},
		{"Train", it.TransportOptions.Train},
		{"Car", it.TransportOptions.Car},
		{"Bus", it.TransportOptions.Bus},
		{"Public transit", it.TransportOptions.PublicTransit},
	}
	for _, m := range modes {
		for _, o := range m.list {
			pdf.MultiCell(0, lineHeight, tr(fmt.Sprintf("%s: %s, %s -> %s, %s (%s)",
				m.name, o.Provider, o.DepartureLocation, o.ArrivalLocation, o.Duration, money(o.Price))), "", "L", false)
		}
	}

	section(pdf, tr, "Budget")
	b := it.BudgetBreakdown
	pdf.Cell(0, lineHeight, tr(fmt.Sprintf("Total budget %s, contingency %s", money(b.TotalBudget), money(b.ContingencyAmount))))
	pdf.Ln(lineHeight)
	for _, c := range b.Categories {
		pdf.Cell(70, lineHeight, tr(c.Name))
		pdf.Cell(30, lineHeight, money(c.Amount))
		pdf.Cell(0, lineHeight, fmt.Sprintf("%.0f%%", c.Percentage))
		pdf.Ln(lineHeight)
	}

	section(pdf, tr, "Packing list")
	for _, pc := range it.PackingList {
		names := make([]string, 0, len(pc.Items))
		for _, item := range pc.Items {
			names = append(names, item.Name)
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, lineHeight, tr(pc.Category))
		pdf.Ln(lineHeight)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, lineHeight, tr(strings.Join(names, ", ")), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr(title))
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 10)
}

func statusNote(it itinerary.GeneratedItinerary) string {
	if it.Status == itinerary.StatusFallback {
		return "This itinerary could not be generated and only contains placeholders."
	}
	note := "Some details were not provided by the planner and show placeholders."
	if it.DegradedReason != "" {
		note += " (" + it.DegradedReason + ")"
	}
	return note
}

func money(v float64) string {
	return fmt.Sprintf("$%.0f", v)
}
