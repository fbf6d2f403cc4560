package ticketapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aerodesk/aerodesk/internal/domain"
	"github.com/aerodesk/aerodesk/internal/transport"
)

// RemoteSource maps every operation onto the REST endpoints of the
// booking backend through the normalizing transport client.
type RemoteSource struct {
	client *transport.Client
}

func NewRemoteSource(client *transport.Client) *RemoteSource {
	return &RemoteSource{client: client}
}

func (s *RemoteSource) Login(ctx context.Context, creds Credentials) (*TokenPair, error) {
	return call[TokenPair](s, ctx, http.MethodPost, "/login", creds, nil)
}

func (s *RemoteSource) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body := map[string]string{"refreshToken": refreshToken}
	return call[TokenPair](s, ctx, http.MethodPost, "/refresh", body, nil)
}

func (s *RemoteSource) RegisterPassenger(ctx context.Context, reg PassengerRegistration) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/register/passenger", reg, nil)
	return err
}

// RegisterAgency requires an admin credential; the transport attaches it
// from the persisted session like every other call.
func (s *RemoteSource) RegisterAgency(ctx context.Context, reg AgencyRegistration) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/register/agency", reg, nil)
	return err
}

func (s *RemoteSource) Logout(ctx context.Context) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/logout", nil, nil)
	return err
}

func (s *RemoteSource) CurrentUser(ctx context.Context) (*domain.User, error) {
	return call[domain.User](s, ctx, http.MethodGet, "/me", nil, nil)
}

func (s *RemoteSource) SearchFlights(ctx context.Context, q FlightQuery) ([]domain.Flight, error) {
	query := url.Values{}
	if q.From != "" {
		query.Set("from", q.From)
	}
	if q.To != "" {
		query.Set("to", q.To)
	}
	if q.Date != "" {
		query.Set("date", q.Date)
	}
	raw, err := s.client.Do(ctx, http.MethodGet, "/flights", nil, query)
	if err != nil {
		return nil, err
	}
	var flights []domain.Flight
	if err := json.Unmarshal(raw, &flights); err != nil {
		return nil, fmt.Errorf("decode flights: %w", err)
	}
	return flights, nil
}

func (s *RemoteSource) SearchBookings(ctx context.Context, q BookingQuery) (*BookingPage, error) {
	return call[BookingPage](s, ctx, http.MethodPost, "/booking/search", q, nil)
}

func (s *RemoteSource) CreateBooking(ctx context.Context, req BookingRequest) (*BookingReceipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return call[BookingReceipt](s, ctx, http.MethodPost, "/booking", req, nil)
}

func (s *RemoteSource) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (int64, error) {
	query := url.Values{"status": []string{string(status)}}
	raw, err := s.client.Do(ctx, http.MethodPost, fmt.Sprintf("/booking/%d/status", id), nil, query)
	if err != nil {
		return 0, err
	}
	var updated int64
	if err := json.Unmarshal(raw, &updated); err != nil {
		return 0, fmt.Errorf("decode booking status response: %w", err)
	}
	return updated, nil
}

func (s *RemoteSource) BookingByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return call[domain.Booking](s, ctx, http.MethodGet, fmt.Sprintf("/booking/%d", id), nil, nil)
}

func (s *RemoteSource) BookingByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	return call[domain.Booking](s, ctx, http.MethodGet, "/booking/pnr/"+url.PathEscape(pnr), nil, nil)
}

func (s *RemoteSource) CreateRefund(ctx context.Context, req RefundRequest) (*RefundReceipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return call[RefundReceipt](s, ctx, http.MethodPost, "/refund", req, nil)
}

func (s *RemoteSource) DelayFlight(ctx context.Context, req DelayRequest) (*DelayResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return call[DelayResult](s, ctx, http.MethodPost, "/flight/delay", req, nil)
}

func (s *RemoteSource) CancelFlight(ctx context.Context, req CancelRequest) (*CancelResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return call[CancelResult](s, ctx, http.MethodPost, "/flight/cancel", req, nil)
}

func call[T any](s *RemoteSource, ctx context.Context, method, path string, body any, query url.Values) (*T, error) {
	raw, err := s.client.Do(ctx, method, path, body, query)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	return &out, nil
}

var _ Source = (*RemoteSource)(nil)
