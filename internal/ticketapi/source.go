package ticketapi

import (
	"context"

	"github.com/aerodesk/aerodesk/internal/domain"
)

// Source is the full endpoint surface of the booking backend. The store
// depends on this interface only; whether results come from the remote
// API or from synthesis is decided at composition time.
type Source interface {
	Login(ctx context.Context, creds Credentials) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	RegisterPassenger(ctx context.Context, reg PassengerRegistration) error
	RegisterAgency(ctx context.Context, reg AgencyRegistration) error
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.User, error)

	SearchFlights(ctx context.Context, q FlightQuery) ([]domain.Flight, error)
	SearchBookings(ctx context.Context, q BookingQuery) (*BookingPage, error)
	CreateBooking(ctx context.Context, req BookingRequest) (*BookingReceipt, error)
	UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (int64, error)
	BookingByID(ctx context.Context, id int64) (*domain.Booking, error)
	BookingByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	CreateRefund(ctx context.Context, req RefundRequest) (*RefundReceipt, error)
	DelayFlight(ctx context.Context, req DelayRequest) (*DelayResult, error)
	CancelFlight(ctx context.Context, req CancelRequest) (*CancelResult, error)
}

// FallbackSource covers exactly the operations degraded mode may
// substitute. Authentication never has a synthetic equivalent.
type FallbackSource interface {
	SearchFlights(ctx context.Context, q FlightQuery) ([]domain.Flight, error)
	SearchBookings(ctx context.Context, q BookingQuery) (*BookingPage, error)
	CreateBooking(ctx context.Context, req BookingRequest) (*BookingReceipt, error)
	UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (int64, error)
	BookingByID(ctx context.Context, id int64) (*domain.Booking, error)
	BookingByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	CreateRefund(ctx context.Context, req RefundRequest) (*RefundReceipt, error)
	DelayFlight(ctx context.Context, req DelayRequest) (*DelayResult, error)
	CancelFlight(ctx context.Context, req CancelRequest) (*CancelResult, error)
}
