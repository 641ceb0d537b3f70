package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/iliyamo/flight-seat-booking/internal/model"
)

// ItineraryPDF renders a one-page itinerary for a booking. passengers may be
// empty, in which case only the passenger count is printed.
func ItineraryPDF(b *model.Booking, f *model.Flight, passengers []model.Passenger) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetTitle("Itinerary "+b.Reference, false)
	pdf.AddPage()

	// header bar
	pdf.SetFillColor(16, 42, 84)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(120, 10, "Flight Itinerary", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "Booking "+b.Reference, "", 1, "L", false, 0, "")
	pdf.SetY(36)
	pdf.SetTextColor(0, 0, 0)

	if b.Status == model.BookingCancelled {
		pdf.SetTextColor(180, 30, 30)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(170, 8, "CANCELLED", "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	section := func(title string) {
		pdf.SetFillColor(16, 42, 84)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, value, "", 1, "L", false, 0, "")
	}

	section("Flight")
	row("Flight", fmt.Sprintf("%s (%s)", f.FlightNumber, f.Airline))
	row("Route", f.Origin+" - "+f.Destination)
	row("Departure", f.DepartureTime.UTC().Format("Mon 02 Jan 2006, 15:04 UTC"))
	row("Arrival", f.ArrivalTime.UTC().Format("Mon 02 Jan 2006, 15:04 UTC"))
	row("Duration", f.DurationLabel)
	row("Cabin", f.CabinClass)
	pdf.Ln(4)

	section("Passengers")
	if len(passengers) == 0 {
		row("Travellers", fmt.Sprintf("%d", len(b.PassengerInfo)))
	}
	for _, p := range passengers {
		seat := b.SeatNumbers[fmt.Sprintf("%d", p.ID)]
		if seat == "" {
			seat = "-"
		}
		row(p.Name, fmt.Sprintf("%s, seat %s", p.Type, seat))
	}
	if seats := b.Seats(); len(seats) > 0 {
		row("Seats", strings.Join(seats, ", "))
	}
	pdf.Ln(4)

	section("Fare")
	row("Base fare", money(b.BaseFare))
	row("Taxes and fees", money(b.Surcharge))
	row("Seat fees", money(b.SeatFees))
	if b.Discount > 0 {
		row("Promo "+b.PromocodeUsed, "-"+money(b.Discount))
	}
	pdf.SetFillColor(230, 236, 245)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(55, 9, "TOTAL", "", 0, "L", true, 0, "")
	pdf.CellFormat(115, 9, money(b.TotalPrice), "", 1, "L", true, 0, "")
	pdf.Ln(2)
	row("Payment", b.PaymentStatus)
	if b.PaymentRef != nil {
		row("Payment reference", *b.PaymentRef)
	}

	pdf.SetY(-22)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 8, "Issued "+time.Now().UTC().Format("02 Jan 2006 15:04 UTC"), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("itinerary pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func money(v float64) string {
	return fmt.Sprintf("INR %.2f", v)
}
