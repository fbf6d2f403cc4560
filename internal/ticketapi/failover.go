package ticketapi

import (
	"context"
	"errors"
	"log"

	"github.com/aerodesk/aerodesk/internal/domain"
)

// FailoverSource delegates to the remote source and, for the fixed
// fallback operation set, substitutes a synthetic result when the remote
// call fails. Authentication operations always propagate, as do
// validation errors: those mean the caller's input was wrong, not that
// the backend was unreachable.
//
// Masked failures are logged; they are otherwise invisible to the
// caller, which is the point and the risk of degraded mode. Disable it
// at composition time by using the remote source directly.
type FailoverSource struct {
	remote   Source
	fallback FallbackSource
}

func NewFailoverSource(remote Source, fallback FallbackSource) *FailoverSource {
	return &FailoverSource{remote: remote, fallback: fallback}
}

func (s *FailoverSource) Login(ctx context.Context, creds Credentials) (*TokenPair, error) {
	return s.remote.Login(ctx, creds)
}

func (s *FailoverSource) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return s.remote.Refresh(ctx, refreshToken)
}

func (s *FailoverSource) RegisterPassenger(ctx context.Context, reg PassengerRegistration) error {
	return s.remote.RegisterPassenger(ctx, reg)
}

func (s *FailoverSource) RegisterAgency(ctx context.Context, reg AgencyRegistration) error {
	return s.remote.RegisterAgency(ctx, reg)
}

func (s *FailoverSource) Logout(ctx context.Context) error {
	return s.remote.Logout(ctx)
}

func (s *FailoverSource) CurrentUser(ctx context.Context) (*domain.User, error) {
	return s.remote.CurrentUser(ctx)
}

func (s *FailoverSource) SearchFlights(ctx context.Context, q FlightQuery) ([]domain.Flight, error) {
	flights, err := s.remote.SearchFlights(ctx, q)
	if s.masked("search flights", err) {
		return s.fallback.SearchFlights(ctx, q)
	}
	return flights, err
}

func (s *FailoverSource) SearchBookings(ctx context.Context, q BookingQuery) (*BookingPage, error) {
	page, err := s.remote.SearchBookings(ctx, q)
	if s.masked("search bookings", err) {
		return s.fallback.SearchBookings(ctx, q)
	}
	return page, err
}

func (s *FailoverSource) CreateBooking(ctx context.Context, req BookingRequest) (*BookingReceipt, error) {
	receipt, err := s.remote.CreateBooking(ctx, req)
	if s.masked("create booking", err) {
		return s.fallback.CreateBooking(ctx, req)
	}
	return receipt, err
}

func (s *FailoverSource) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (int64, error) {
	updated, err := s.remote.UpdateBookingStatus(ctx, id, status)
	if s.masked("update booking status", err) {
		return s.fallback.UpdateBookingStatus(ctx, id, status)
	}
	return updated, err
}

func (s *FailoverSource) BookingByID(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.remote.BookingByID(ctx, id)
	if s.masked("booking by id", err) {
		return s.fallback.BookingByID(ctx, id)
	}
	return booking, err
}

func (s *FailoverSource) BookingByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	booking, err := s.remote.BookingByPNR(ctx, pnr)
	if s.masked("booking by pnr", err) {
		return s.fallback.BookingByPNR(ctx, pnr)
	}
	return booking, err
}

func (s *FailoverSource) CreateRefund(ctx context.Context, req RefundRequest) (*RefundReceipt, error) {
	receipt, err := s.remote.CreateRefund(ctx, req)
	if s.masked("create refund", err) {
		return s.fallback.CreateRefund(ctx, req)
	}
	return receipt, err
}

func (s *FailoverSource) DelayFlight(ctx context.Context, req DelayRequest) (*DelayResult, error) {
	result, err := s.remote.DelayFlight(ctx, req)
	if s.masked("delay flight", err) {
		return s.fallback.DelayFlight(ctx, req)
	}
	return result, err
}

func (s *FailoverSource) CancelFlight(ctx context.Context, req CancelRequest) (*CancelResult, error) {
	result, err := s.remote.CancelFlight(ctx, req)
	if s.masked("cancel flight", err) {
		return s.fallback.CancelFlight(ctx, req)
	}
	return result, err
}

// masked reports whether err should be replaced by a synthetic result.
// Validation errors are never masked.
func (s *FailoverSource) masked(op string, err error) bool {
	if err == nil {
		return false
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return false
	}
	log.Printf("degraded mode: %s failed, substituting synthetic result: %v", op, err)
	return true
}

var _ Source = (*FailoverSource)(nil)
