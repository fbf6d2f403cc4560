package store

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerodesk/aerodesk/internal/domain"
	"github.com/aerodesk/aerodesk/internal/session"
	"github.com/aerodesk/aerodesk/internal/ticketapi"
	"github.com/aerodesk/aerodesk/internal/transport"
)

// fakeSource implements ticketapi.Source with overridable behavior per
// operation. Unset operations return empty results.
type fakeSource struct {
	loginFn          func(ctx context.Context, creds ticketapi.Credentials) (*ticketapi.TokenPair, error)
	logoutFn         func(ctx context.Context) error
	currentUserFn    func(ctx context.Context) (*domain.User, error)
	searchBookingsFn func(ctx context.Context, q ticketapi.BookingQuery) (*ticketapi.BookingPage, error)
	createBookingFn  func(ctx context.Context, req ticketapi.BookingRequest) (*ticketapi.BookingReceipt, error)
	updateStatusFn   func(ctx context.Context, id int64, status domain.BookingStatus) (int64, error)
	searchFlightsFn  func(ctx context.Context, q ticketapi.FlightQuery) ([]domain.Flight, error)

	statusUpdates int
}

func (f *fakeSource) Login(ctx context.Context, creds ticketapi.Credentials) (*ticketapi.TokenPair, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, creds)
	}
	return &ticketapi.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (f *fakeSource) Refresh(context.Context, string) (*ticketapi.TokenPair, error) {
	return &ticketapi.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (f *fakeSource) RegisterPassenger(context.Context, ticketapi.PassengerRegistration) error {
	return nil
}

func (f *fakeSource) RegisterAgency(context.Context, ticketapi.AgencyRegistration) error {
	return nil
}

func (f *fakeSource) Logout(ctx context.Context) error {
	if f.logoutFn != nil {
		return f.logoutFn(ctx)
	}
	return nil
}

func (f *fakeSource) CurrentUser(ctx context.Context) (*domain.User, error) {
	if f.currentUserFn != nil {
		return f.currentUserFn(ctx)
	}
	return &domain.User{ID: "u-1", Username: "zhang", Role: domain.RolePassenger}, nil
}

func (f *fakeSource) SearchFlights(ctx context.Context, q ticketapi.FlightQuery) ([]domain.Flight, error) {
	if f.searchFlightsFn != nil {
		return f.searchFlightsFn(ctx, q)
	}
	return nil, nil
}

func (f *fakeSource) SearchBookings(ctx context.Context, q ticketapi.BookingQuery) (*ticketapi.BookingPage, error) {
	if f.searchBookingsFn != nil {
		return f.searchBookingsFn(ctx, q)
	}
	return &ticketapi.BookingPage{Page: q.Page, Size: q.Size}, nil
}

func (f *fakeSource) CreateBooking(ctx context.Context, req ticketapi.BookingRequest) (*ticketapi.BookingReceipt, error) {
	if f.createBookingFn != nil {
		return f.createBookingFn(ctx, req)
	}
	return &ticketapi.BookingReceipt{BookingID: 1000, PNR: "ABC123", TicketNo: "TK100000000000000", Status: domain.BookingStatusTicketed}, nil
}

func (f *fakeSource) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (int64, error) {
	f.statusUpdates++
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, status)
	}
	return id, nil
}

func (f *fakeSource) BookingByID(context.Context, int64) (*domain.Booking, error) {
	return &domain.Booking{}, nil
}

func (f *fakeSource) BookingByPNR(context.Context, string) (*domain.Booking, error) {
	return &domain.Booking{}, nil
}

func (f *fakeSource) CreateRefund(context.Context, ticketapi.RefundRequest) (*ticketapi.RefundReceipt, error) {
	return &ticketapi.RefundReceipt{}, nil
}

func (f *fakeSource) DelayFlight(context.Context, ticketapi.DelayRequest) (*ticketapi.DelayResult, error) {
	return &ticketapi.DelayResult{}, nil
}

func (f *fakeSource) CancelFlight(context.Context, ticketapi.CancelRequest) (*ticketapi.CancelResult, error) {
	return &ticketapi.CancelResult{}, nil
}

var _ ticketapi.Source = (*fakeSource)(nil)

func newFileSessions(t *testing.T) *session.FileStore {
	t.Helper()
	return session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestLogin_PersistsTokensBeforeProfileFetch(t *testing.T) {
	sessions := newFileSessions(t)
	src := &fakeSource{}
	src.currentUserFn = func(ctx context.Context) (*domain.User, error) {
		persisted, err := sessions.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "access", persisted.AccessToken, "tokens must be persisted before the profile fetch")
		return &domain.User{ID: "u-1", Username: "zhang", Role: domain.RolePassenger}, nil
	}
	app := New(src, sessions)

	pair, err := app.Login(context.Background(), ticketapi.Credentials{Username: "zhang", Password: "passenger123"})

	require.NoError(t, err)
	assert.Equal(t, "access", pair.AccessToken)
	assert.True(t, app.LoggedIn())
	assert.True(t, app.IsPassenger())

	persisted, err := sessions.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, persisted.User)
	assert.Equal(t, "zhang", persisted.User.Username)
}

func TestLogin_FailurePersistsNothing(t *testing.T) {
	sessions := newFileSessions(t)
	src := &fakeSource{
		loginFn: func(context.Context, ticketapi.Credentials) (*ticketapi.TokenPair, error) {
			return nil, &transport.RequestError{Code: "401", Message: "bad credentials"}
		},
	}
	app := New(src, sessions)

	_, err := app.Login(context.Background(), ticketapi.Credentials{Username: "zhang", Password: "wrong"})

	var reqErr *transport.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.False(t, app.LoggedIn())

	persisted, loadErr := sessions.Load(context.Background())
	require.NoError(t, loadErr)
	assert.False(t, persisted.LoggedIn())
}

func TestBookTicket_DegradedModeProducesSyntheticTicket(t *testing.T) {
	unreachable := ticketapi.NewRemoteSource(transport.NewClient("http://127.0.0.1:1", 200*time.Millisecond, nil))
	synthetic := ticketapi.NewSyntheticSource(nil, ticketapi.WithRand(rand.New(rand.NewSource(1))))
	app := New(ticketapi.NewFailoverSource(unreachable, synthetic), newFileSessions(t))

	ticket, err := app.BookTicket(context.Background(), TicketRequest{
		FlightNumber:  "CA1234",
		From:          "PEK",
		To:            "SHA",
		Date:          "2024-05-15",
		Time:          "09:00",
		Price:         1200,
		PassengerName: "Zhang Wei",
		PassengerID:   "110101199001011234",
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ticket.PNR, "PNR"))
	assert.True(t, strings.HasPrefix(ticket.TicketNo, "TK"))
	assert.Equal(t, domain.TicketStatusBooked, ticket.Status)
	assert.True(t, ticket.Synthetic)

	// The canonical refresh after the booking must not evict a ticket
	// the backend has never seen.
	got, ok := app.TicketByID(ticket.ID)
	require.True(t, ok)
	assert.Equal(t, "CA1234", got.FlightNumber)
	assert.NotEmpty(t, app.BookedTickets())
}

func TestRefundTicket_UnknownIDTouchesNothing(t *testing.T) {
	src := &fakeSource{}
	app := New(src, newFileSessions(t))

	err := app.RefundTicket(context.Background(), "42")

	require.ErrorIs(t, err, ErrTicketNotFound)
	assert.Zero(t, src.statusUpdates)
}

func TestRefundTicket_FlipsStatusAfterConfirmation(t *testing.T) {
	src := &fakeSource{
		createBookingFn: func(context.Context, ticketapi.BookingRequest) (*ticketapi.BookingReceipt, error) {
			return &ticketapi.BookingReceipt{
				BookingID: 77,
				PNR:       "PNR123456",
				TicketNo:  "TK100000000000000",
				Status:    domain.BookingStatusTicketed,
				Synthetic: true,
			}, nil
		},
	}
	app := New(src, newFileSessions(t))

	_, err := app.BookTicket(context.Background(), TicketRequest{FlightNumber: "CA1234", Price: 1200})
	require.NoError(t, err)

	require.NoError(t, app.RefundTicket(context.Background(), "77"))

	got, ok := app.TicketByID("77")
	require.True(t, ok)
	assert.Equal(t, domain.TicketStatusRefunded, got.Status)
	assert.Empty(t, app.BookedTickets())
	assert.Len(t, app.RefundedTickets(), 1)
}

func TestRefundTicket_BackendFailureLeavesStatusBooked(t *testing.T) {
	src := &fakeSource{
		createBookingFn: func(context.Context, ticketapi.BookingRequest) (*ticketapi.BookingReceipt, error) {
			return &ticketapi.BookingReceipt{BookingID: 77, PNR: "PNR123456", TicketNo: "TK1", Synthetic: true}, nil
		},
		updateStatusFn: func(context.Context, int64, domain.BookingStatus) (int64, error) {
			return 0, errors.New("status update rejected")
		},
	}
	app := New(src, newFileSessions(t))

	_, err := app.BookTicket(context.Background(), TicketRequest{FlightNumber: "CA1234", Price: 1200})
	require.NoError(t, err)

	require.Error(t, app.RefundTicket(context.Background(), "77"))

	got, ok := app.TicketByID("77")
	require.True(t, ok)
	assert.Equal(t, domain.TicketStatusBooked, got.Status)
}

func TestRefundedTicketSurvivesCanonicalRefresh(t *testing.T) {
	src := &fakeSource{
		createBookingFn: func(context.Context, ticketapi.BookingRequest) (*ticketapi.BookingReceipt, error) {
			return &ticketapi.BookingReceipt{BookingID: 77, PNR: "PNR123456", TicketNo: "TK1", Synthetic: true}, nil
		},
	}
	app := New(src, newFileSessions(t))

	_, err := app.BookTicket(context.Background(), TicketRequest{FlightNumber: "CA1234", Price: 1200})
	require.NoError(t, err)
	require.NoError(t, app.RefundTicket(context.Background(), "77"))

	// The canonical listing only returns ticketed bookings, so a
	// refresh returning nothing must not drop the refunded ticket.
	require.NoError(t, app.Initialize(context.Background()))

	got, ok := app.TicketByID("77")
	require.True(t, ok)
	assert.Equal(t, domain.TicketStatusRefunded, got.Status)
}

func TestInitialize_CanonicalViewWinsByID(t *testing.T) {
	src := &fakeSource{
		searchBookingsFn: func(_ context.Context, q ticketapi.BookingQuery) (*ticketapi.BookingPage, error) {
			assert.Equal(t, domain.BookingStatusTicketed, q.Status)
			return &ticketapi.BookingPage{
				List: []domain.Booking{{
					ID:               5,
					PNR:              "XYZ789",
					Status:           domain.BookingStatusTicketed,
					TotalAmount:      2100,
					DeadlinePickupAt: "2024-05-16T12:00:00",
				}},
				Total: 1, Page: q.Page, Size: q.Size,
			}, nil
		},
	}
	app := New(src, newFileSessions(t))

	require.NoError(t, app.Initialize(context.Background()))

	got, ok := app.TicketByID("5")
	require.True(t, ok)
	assert.Equal(t, "XYZ789", got.PNR)
	assert.Equal(t, domain.TicketStatusBooked, got.Status)
	assert.Len(t, app.BookedTickets(), 1)
}

func TestInitialize_DropsStaleNonSyntheticTickets(t *testing.T) {
	src := &fakeSource{
		createBookingFn: func(context.Context, ticketapi.BookingRequest) (*ticketapi.BookingReceipt, error) {
			return &ticketapi.BookingReceipt{BookingID: 99, PNR: "OLD999", TicketNo: "TK9", Status: domain.BookingStatusTicketed}, nil
		},
	}
	app := New(src, newFileSessions(t))

	_, err := app.BookTicket(context.Background(), TicketRequest{FlightNumber: "CA1234", Price: 1200})
	require.NoError(t, err)

	_, ok := app.TicketByID("99")
	assert.False(t, ok, "a real booking absent from the canonical listing is stale")
}

func TestInitialize_SyncsSessionEvenWhenTicketFetchFails(t *testing.T) {
	sessions := newFileSessions(t)
	require.NoError(t, sessions.Save(context.Background(), session.Session{
		AccessToken: "tok",
		User:        &domain.User{ID: "u-1", Username: "zhang", Role: domain.RolePassenger},
	}))
	src := &fakeSource{
		searchBookingsFn: func(context.Context, ticketapi.BookingQuery) (*ticketapi.BookingPage, error) {
			return nil, &transport.NetworkError{Err: errors.New("connection refused")}
		},
	}
	app := New(src, sessions)

	err := app.Initialize(context.Background())

	require.Error(t, err)
	assert.True(t, app.LoggedIn(), "login flag must track persisted state despite the failed ticket fetch")
	assert.True(t, app.IsPassenger())
}

func TestLogout_ClearsLocalStateEvenWhenBackendFails(t *testing.T) {
	sessions := newFileSessions(t)
	src := &fakeSource{
		logoutFn: func(context.Context) error {
			return &transport.NetworkError{Err: errors.New("connection refused")}
		},
	}
	app := New(src, sessions)

	_, err := app.Login(context.Background(), ticketapi.Credentials{Username: "zhang", Password: "passenger123"})
	require.NoError(t, err)
	require.True(t, app.LoggedIn())

	require.NoError(t, app.Logout(context.Background()))
	assert.False(t, app.LoggedIn())
	assert.Nil(t, app.User())

	persisted, err := sessions.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, persisted.LoggedIn())

	require.NoError(t, app.Logout(context.Background()))
}

func TestFetchFlights_ReplacesCacheWholesale(t *testing.T) {
	src := &fakeSource{
		searchFlightsFn: func(context.Context, ticketapi.FlightQuery) ([]domain.Flight, error) {
			return []domain.Flight{{ID: "HU7801", From: "SZX", To: "PEK", Date: "2024-06-01", Time: "07:15", Price: 1750, SeatsAvailable: 3}}, nil
		},
	}
	app := New(src, newFileSessions(t))
	require.NotEmpty(t, app.Flights())

	flights, err := app.FetchFlights(context.Background(), ticketapi.FlightQuery{})

	require.NoError(t, err)
	require.Len(t, flights, 1)
	got := app.Flights()
	require.Len(t, got, 1)
	assert.Equal(t, "HU7801", got[0].ID)
}

func TestFetchFlights_ErrorKeepsPreviousCache(t *testing.T) {
	src := &fakeSource{
		searchFlightsFn: func(context.Context, ticketapi.FlightQuery) ([]domain.Flight, error) {
			return nil, &transport.NetworkError{Err: errors.New("connection refused")}
		},
	}
	app := New(src, newFileSessions(t))
	before := app.Flights()

	_, err := app.FetchFlights(context.Background(), ticketapi.FlightQuery{})

	assert.Error(t, err)
	assert.Equal(t, before, app.Flights())
}
