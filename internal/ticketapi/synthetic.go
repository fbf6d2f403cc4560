package ticketapi

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/aerodesk/aerodesk/internal/airports"
	"github.com/aerodesk/aerodesk/internal/domain"
)

var airlinePrefixes = []string{"CA", "MU", "CZ", "HU", "ZH"}

const (
	synthFlightCount = 10
	synthMinPrice    = 500
	synthMaxPrice    = 2500
	synthMaxSeats    = 20
	defaultDate      = "2024-05-15"
)

// SyntheticSource produces structurally valid substitutes for the
// degraded-mode operation set. It never returns an error. Randomized
// fields draw from bounded ranges: prices 500-2500, seats 1-20,
// departures 06:00-17:45 on a 15-minute grid.
type SyntheticSource struct {
	airports []airports.Airport
	now      func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

type SyntheticOption func(*SyntheticSource)

// WithRand replaces the random source, making synthesis deterministic.
func WithRand(rng *rand.Rand) SyntheticOption {
	return func(s *SyntheticSource) { s.rng = rng }
}

// WithClock replaces the wall clock used for generated identifiers and
// deadlines.
func WithClock(now func() time.Time) SyntheticOption {
	return func(s *SyntheticSource) { s.now = now }
}

func NewSyntheticSource(table []airports.Airport, opts ...SyntheticOption) *SyntheticSource {
	s := &SyntheticSource{
		airports: table,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchFlights synthesizes a flight list. With an explicit origin and
// distinct destination (or no airport table at all) it returns the two
// fixed flights the UI was demoed with; otherwise it draws random routes
// from the airport table. No row ever has From == To and flight numbers
// are unique within one call.
func (s *SyntheticSource) SearchFlights(_ context.Context, q FlightQuery) ([]domain.Flight, error) {
	date := q.Date
	if date == "" {
		date = defaultDate
	}

	if len(s.airports) == 0 || (q.From != "" && q.To != "" && q.From != q.To) {
		from, to := q.From, q.To
		if from == "" {
			from = "PEK"
		}
		// A route onto itself is unsatisfiable; substitute a distinct
		// destination rather than synthesize an impossible flight.
		if to == "" || to == from {
			to = "SHA"
			if from == "SHA" {
				to = "PEK"
			}
		}
		return []domain.Flight{
			{ID: "CA1234", From: from, To: to, Date: date, Time: "09:00", Price: 1200, SeatsAvailable: 15},
			{ID: "CA1235", From: from, To: to, Date: date, Time: "14:00", Price: 1300, SeatsAvailable: 8},
		}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, synthFlightCount)
	flights := make([]domain.Flight, 0, synthFlightCount)
	for len(flights) < synthFlightCount {
		fromIdx := s.rng.Intn(len(s.airports))
		toIdx := s.rng.Intn(len(s.airports))
		for toIdx == fromIdx {
			toIdx = s.rng.Intn(len(s.airports))
		}

		var number string
		for {
			number = airlinePrefixes[s.rng.Intn(len(airlinePrefixes))] + fmt.Sprintf("%d", 1000+s.rng.Intn(9000))
			if !seen[number] {
				break
			}
		}
		seen[number] = true

		hour := 6 + s.rng.Intn(12)
		minute := s.rng.Intn(4) * 15

		flights = append(flights, domain.Flight{
			ID:             number,
			From:           s.airports[fromIdx].IATACode,
			To:             s.airports[toIdx].IATACode,
			Date:           date,
			Time:           fmt.Sprintf("%02d:%02d", hour, minute),
			Price:          int64(synthMinPrice + s.rng.Intn(synthMaxPrice-synthMinPrice+1)),
			SeatsAvailable: 1 + s.rng.Intn(synthMaxSeats),
		})
	}
	return flights, nil
}

func (s *SyntheticSource) SearchBookings(_ context.Context, q BookingQuery) (*BookingPage, error) {
	page, size := q.Page, q.Size
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = 10
	}
	return &BookingPage{
		List:  []domain.Booking{s.placeholderBooking(1, "ABC123")},
		Total: 1,
		Page:  page,
		Size:  size,
	}, nil
}

func (s *SyntheticSource) CreateBooking(_ context.Context, _ BookingRequest) (*BookingReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &BookingReceipt{
		BookingID: s.now().UnixMilli(),
		PNR:       "PNR" + s.digits(6),
		TicketNo:  "TK" + s.digits(15),
		Status:    domain.BookingStatusTicketed,
		Synthetic: true,
	}, nil
}

// UpdateBookingStatus acknowledges the update by echoing the id, the
// same contract the backend has.
func (s *SyntheticSource) UpdateBookingStatus(_ context.Context, id int64, _ domain.BookingStatus) (int64, error) {
	return id, nil
}

func (s *SyntheticSource) BookingByID(_ context.Context, id int64) (*domain.Booking, error) {
	b := s.placeholderBooking(id, "ABC123")
	return &b, nil
}

func (s *SyntheticSource) BookingByPNR(_ context.Context, pnr string) (*domain.Booking, error) {
	b := s.placeholderBooking(1, pnr)
	return &b, nil
}

func (s *SyntheticSource) CreateRefund(_ context.Context, _ RefundRequest) (*RefundReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &RefundReceipt{
		PNR:      "PNR" + s.digits(6),
		FlightNo: fmt.Sprintf("CA%d", 1000+s.rng.Intn(9000)),
	}, nil
}

func (s *SyntheticSource) DelayFlight(_ context.Context, req DelayRequest) (*DelayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &DelayResult{
		FlightID:         req.FlightID,
		NewDepTime:       req.NewDepTime,
		NewArrTime:       req.NewArrTime,
		AffectedBookings: 1 + s.rng.Intn(50),
	}, nil
}

func (s *SyntheticSource) CancelFlight(_ context.Context, req CancelRequest) (*CancelResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &CancelResult{
		FlightID:         req.FlightID,
		Status:           domain.BookingStatusCancelled,
		AffectedBookings: 1 + s.rng.Intn(50),
		AffectedTickets:  1 + s.rng.Intn(100),
	}, nil
}

func (s *SyntheticSource) placeholderBooking(id int64, pnr string) domain.Booking {
	created := s.now().Format("2006-01-02T15:04:05")
	return domain.Booking{
		ID:               id,
		CreatedAt:        created,
		UpdatedAt:        created,
		PNR:              pnr,
		AgencyID:         1,
		FlightID:         2,
		Status:           domain.BookingStatusTicketed,
		TotalAmount:      3500,
		DepositAmount:    1000,
		DeadlinePickupAt: s.now().Add(24 * time.Hour).Format("2006-01-02T15:04:05"),
	}
}

// digits returns n random digits, first one non-zero so generated
// identifiers keep their full width. Callers hold s.mu.
func (s *SyntheticSource) digits(n int) string {
	buf := make([]byte, n)
	buf[0] = byte('1' + s.rng.Intn(9))
	for i := 1; i < n; i++ {
		buf[i] = byte('0' + s.rng.Intn(10))
	}
	return string(buf)
}

var _ FallbackSource = (*SyntheticSource)(nil)
