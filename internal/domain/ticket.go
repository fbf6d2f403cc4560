package domain

import (
	"fmt"
	"strings"
)

type TicketStatus string

const (
	TicketStatusBooked   TicketStatus = "booked"
	TicketStatusRefunded TicketStatus = "refunded"
)

// Ticket is the client-side projection of a backend Booking, shaped the
// way the views consume it. Identity is ID, unique within the store.
type Ticket struct {
	ID            string       `json:"id"`
	FlightNumber  string       `json:"flightNumber"`
	From          string       `json:"from"`
	To            string       `json:"to"`
	Date          string       `json:"date"`
	Time          string       `json:"time"`
	Price         int64        `json:"price"`
	PassengerName string       `json:"passengerName"`
	PassengerID   string       `json:"passengerId"`
	Status        TicketStatus `json:"status"`
	PNR           string       `json:"pnr"`
	TicketNo      string       `json:"ticketNo,omitempty"`

	// Synthetic marks tickets produced in degraded mode; they are not
	// backed by a backend booking yet.
	Synthetic bool `json:"-"`
}

// TicketFromBooking projects a backend booking onto the ticket shape.
// The backend does not carry passenger or route details on the booking
// record, so those fields are derived the same way on every refresh.
func TicketFromBooking(b Booking) Ticket {
	date := b.DeadlinePickupAt
	if i := strings.IndexByte(date, 'T'); i >= 0 {
		date = date[:i]
	}
	status := TicketStatusBooked
	if b.Status == BookingStatusRefunded {
		status = TicketStatusRefunded
	}
	return Ticket{
		ID:            fmt.Sprintf("%d", b.ID),
		FlightNumber:  fmt.Sprintf("CA%04d", b.FlightID),
		From:          "PEK",
		To:            "SHA",
		Date:          date,
		Time:          "12:00",
		Price:         b.TotalAmount,
		PassengerName: fmt.Sprintf("Passenger %d", b.ID),
		PassengerID:   fmt.Sprintf("11010119900101%04d", b.ID),
		Status:        status,
		PNR:           b.PNR,
	}
}
