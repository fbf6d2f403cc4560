package ticketapi

import (
	"github.com/aerodesk/aerodesk/internal/domain"
)

// ValidationError marks a request rejected before any transport call.
// It is never masked by degraded mode.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type PassengerRegistration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type AgencyRegistration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type FlightQuery struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	Date string `json:"date,omitempty"`
}

type BookingQuery struct {
	Status domain.BookingStatus `json:"status,omitempty"`
	PNR    string               `json:"pnr,omitempty"`
	Page   int                  `json:"page,omitempty"`
	Size   int                  `json:"size,omitempty"`
}

type BookingPage struct {
	List  []domain.Booking `json:"list"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}

type BookingPassenger struct {
	PassengerID int64   `json:"passengerId"`
	SeatNo      *string `json:"seatNo"`
}

type BookingRequest struct {
	AgencyID         int64              `json:"agencyId"`
	FlightID         int64              `json:"flightId"`
	TotalAmount      int64              `json:"totalAmount"`
	DepositAmount    int64              `json:"depositAmount"`
	DeadlinePickupAt string             `json:"deadlinePickupAt"`
	Passengers       []BookingPassenger `json:"passengers"`
}

func (r BookingRequest) Validate() error {
	switch {
	case r.AgencyID == 0:
		return &ValidationError{Message: "booking request missing agency id"}
	case r.FlightID == 0:
		return &ValidationError{Message: "booking request missing flight id"}
	case r.TotalAmount == 0:
		return &ValidationError{Message: "booking request missing total amount"}
	case len(r.Passengers) == 0:
		return &ValidationError{Message: "booking request missing passengers"}
	}
	return nil
}

type BookingReceipt struct {
	BookingID int64                `json:"bookingId"`
	PNR       string               `json:"pnr"`
	TicketNo  string               `json:"ticketNo"`
	Status    domain.BookingStatus `json:"status"`

	// Synthetic is set when the receipt was produced in degraded mode.
	Synthetic bool `json:"-"`
}

type RefundRequest struct {
	BookingID int64  `json:"bookingId"`
	Reason    string `json:"reason,omitempty"`
}

func (r RefundRequest) Validate() error {
	if r.BookingID == 0 {
		return &ValidationError{Message: "refund request missing booking id"}
	}
	return nil
}

type RefundReceipt struct {
	PNR      string `json:"pnr"`
	FlightNo string `json:"flightNo"`
}

type DelayRequest struct {
	FlightID   int64  `json:"flightId"`
	NewDepTime string `json:"newDepTime"`
	NewArrTime string `json:"newArrTime"`
}

func (r DelayRequest) Validate() error {
	switch {
	case r.FlightID == 0:
		return &ValidationError{Message: "delay request missing flight id"}
	case r.NewDepTime == "" || r.NewArrTime == "":
		return &ValidationError{Message: "delay request missing new times"}
	}
	return nil
}

type DelayResult struct {
	FlightID         int64  `json:"flightId"`
	NewDepTime       string `json:"newDepTime"`
	NewArrTime       string `json:"newArrTime"`
	AffectedBookings int    `json:"affectedBookings"`
}

type CancelRequest struct {
	FlightID int64  `json:"flightId"`
	Reason   string `json:"reason"`
}

func (r CancelRequest) Validate() error {
	switch {
	case r.FlightID == 0:
		return &ValidationError{Message: "cancel request missing flight id"}
	case r.Reason == "":
		return &ValidationError{Message: "cancel request missing reason"}
	}
	return nil
}

type CancelResult struct {
	FlightID         int64                `json:"flightId"`
	Status           domain.BookingStatus `json:"status"`
	AffectedBookings int                  `json:"affectedBookings"`
	AffectedTickets  int                  `json:"affectedTickets"`
}
