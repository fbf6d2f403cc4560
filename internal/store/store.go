package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aerodesk/aerodesk/internal/domain"
	"github.com/aerodesk/aerodesk/internal/session"
	"github.com/aerodesk/aerodesk/internal/ticketapi"
)

var ErrTicketNotFound = errors.New("ticket not found")

// The backend keys bookings by agency and passenger; the client has no
// passenger registry, so it books against these fixed ids the way the
// original UI did.
const (
	defaultAgencyID    = 1
	defaultPassengerID = 1
	ticketPageSize     = 50
)

// TicketRequest is the view-facing booking input.
type TicketRequest struct {
	FlightNumber  string `json:"flightNumber"`
	From          string `json:"from"`
	To            string `json:"to"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Price         int64  `json:"price"`
	PassengerName string `json:"passengerName"`
	PassengerID   string `json:"passengerId"`
}

// Store is the in-memory application state: the ticket list, the flight
// cache, and a cached copy of the persisted session. All mutations take
// the write lock, so each commit is atomic, but overlapping
// orchestrations are not serialized against each other: the later
// completion wins per ticket id.
type Store struct {
	src      ticketapi.Source
	sessions session.Store

	mu       sync.RWMutex
	tickets  map[string]domain.Ticket
	order    []string
	flights  []domain.Flight
	session  session.Session
	loggedIn bool
}

func New(src ticketapi.Source, sessions session.Store) *Store {
	return &Store{
		src:      src,
		sessions: sessions,
		tickets:  make(map[string]domain.Ticket),
		flights: []domain.Flight{
			{ID: "CA1234", From: "PEK", To: "SHA", Date: "2024-05-15", Time: "09:00", Price: 1200, SeatsAvailable: 15},
			{ID: "CA1235", From: "PEK", To: "SHA", Date: "2024-05-15", Time: "14:00", Price: 1300, SeatsAvailable: 8},
			{ID: "MU5137", From: "SHA", To: "CAN", Date: "2024-05-15", Time: "10:30", Price: 980, SeatsAvailable: 12},
			{ID: "CZ3143", From: "CAN", To: "PEK", Date: "2024-05-15", Time: "16:45", Price: 1500, SeatsAvailable: 5},
		},
	}
}

// Initialize re-syncs the cached session from persisted storage and
// pulls the canonical ticket list from the backend. It is run at
// startup and again after every server-visible mutation. The session
// sync happens first so the login flag reflects persisted state even
// when the ticket fetch fails.
func (s *Store) Initialize(ctx context.Context) error {
	s.syncSession(ctx)

	page, err := s.src.SearchBookings(ctx, ticketapi.BookingQuery{
		Status: domain.BookingStatusTicketed,
		Page:   1,
		Size:   ticketPageSize,
	})
	if err != nil {
		return fmt.Errorf("load booked tickets: %w", err)
	}

	canonical := make([]domain.Ticket, 0, len(page.List))
	for _, b := range page.List {
		canonical = append(canonical, domain.TicketFromBooking(b))
	}
	s.reconcile(canonical)
	return nil
}

// reconcile replaces the ticket list with the canonical view. Canonical
// entries win by id. Tickets the canonical view does not mention are
// dropped, with two exceptions that survive the refresh: synthetic
// tickets the backend has not indexed yet, and refunded tickets, which
// the ticketed-only listing never returns.
func (s *Store) reconcile(canonical []domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]domain.Ticket, len(canonical))
	order := make([]string, 0, len(canonical))
	for _, t := range canonical {
		if _, dup := next[t.ID]; dup {
			continue
		}
		next[t.ID] = t
		order = append(order, t.ID)
	}
	for _, id := range s.order {
		if _, ok := next[id]; ok {
			continue
		}
		old := s.tickets[id]
		if old.Synthetic || old.Status == domain.TicketStatusRefunded {
			next[id] = old
			order = append(order, id)
		}
	}
	s.tickets = next
	s.order = order
}

// syncSession re-reads persisted session state. A readable session with
// a credential and profile flips the login flag; anything else clears
// it. Profile refresh failures fall back to the cached copy.
func (s *Store) syncSession(ctx context.Context) {
	sess, err := s.sessions.Load(ctx)
	if err != nil || !sess.LoggedIn() || sess.User == nil {
		if err != nil {
			log.Printf("load persisted session: %v", err)
		}
		s.mu.Lock()
		s.session = session.Session{}
		s.loggedIn = false
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.session = sess
	s.loggedIn = true
	s.mu.Unlock()

	user, err := s.src.CurrentUser(ctx)
	if err != nil {
		log.Printf("refresh user profile failed, using cached copy: %v", err)
		return
	}
	sess.User = user
	if err := s.sessions.Save(ctx, sess); err != nil {
		log.Printf("persist refreshed profile: %v", err)
	}
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
}

// Login authenticates, persists the session (tokens first, then the
// fetched profile) and only then returns, so a follow-up Initialize
// observes the persisted credential.
func (s *Store) Login(ctx context.Context, creds ticketapi.Credentials) (*ticketapi.TokenPair, error) {
	pair, err := s.src.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	sess := session.Session{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	user, err := s.src.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch user profile: %w", err)
	}
	sess.User = user
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session profile: %w", err)
	}

	s.mu.Lock()
	s.session = sess
	s.loggedIn = true
	s.mu.Unlock()

	s.refreshAfterMutation(ctx)
	return pair, nil
}

// Logout clears the persisted and cached session. The backend call is
// best effort: local state is cleared even when it fails. Calling
// Logout with no session persisted is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.src.Logout(ctx); err != nil {
		log.Printf("backend logout failed, clearing local session anyway: %v", err)
	}
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}
	s.mu.Lock()
	s.session = session.Session{}
	s.loggedIn = false
	s.mu.Unlock()
	return nil
}

// RegisterPassenger creates the account and, when autoLogin is set, logs
// in with the new credentials.
func (s *Store) RegisterPassenger(ctx context.Context, reg ticketapi.PassengerRegistration, autoLogin bool) error {
	if err := s.src.RegisterPassenger(ctx, reg); err != nil {
		return err
	}
	if !autoLogin {
		return nil
	}
	_, err := s.Login(ctx, ticketapi.Credentials{Username: reg.Username, Password: reg.Password})
	return err
}

func (s *Store) RegisterAgency(ctx context.Context, reg ticketapi.AgencyRegistration) error {
	return s.src.RegisterAgency(ctx, reg)
}

// BookTicket books a flight and commits the resulting ticket to memory
// before triggering the canonical refresh.
func (s *Store) BookTicket(ctx context.Context, req TicketRequest) (domain.Ticket, error) {
	booking := ticketapi.BookingRequest{
		AgencyID:         defaultAgencyID,
		FlightID:         flightNumberID(req.FlightNumber),
		TotalAmount:      req.Price,
		DepositAmount:    req.Price * 30 / 100,
		DeadlinePickupAt: time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		Passengers:       []ticketapi.BookingPassenger{{PassengerID: defaultPassengerID}},
	}

	receipt, err := s.src.CreateBooking(ctx, booking)
	if err != nil {
		return domain.Ticket{}, err
	}

	ticket := domain.Ticket{
		ID:            strconv.FormatInt(receipt.BookingID, 10),
		FlightNumber:  req.FlightNumber,
		From:          req.From,
		To:            req.To,
		Date:          req.Date,
		Time:          req.Time,
		Price:         req.Price,
		PassengerName: req.PassengerName,
		PassengerID:   req.PassengerID,
		Status:        domain.TicketStatusBooked,
		PNR:           receipt.PNR,
		TicketNo:      receipt.TicketNo,
		Synthetic:     receipt.Synthetic,
	}

	s.mu.Lock()
	if _, ok := s.tickets[ticket.ID]; !ok {
		s.order = append(s.order, ticket.ID)
	}
	s.tickets[ticket.ID] = ticket
	s.mu.Unlock()

	s.refreshAfterMutation(ctx)
	return ticket, nil
}

// RefundTicket transitions one ticket to refunded. The local status
// flips only after the backend (or its synthetic substitute) confirms
// the update; an unknown id leaves every ticket untouched.
func (s *Store) RefundTicket(ctx context.Context, id string) error {
	s.mu.RLock()
	ticket, ok := s.tickets[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}

	bookingID := flightNumberID(ticket.ID)
	if _, err := s.src.UpdateBookingStatus(ctx, bookingID, domain.BookingStatusRefunded); err != nil {
		return err
	}

	s.mu.Lock()
	if t, ok := s.tickets[id]; ok {
		t.Status = domain.TicketStatusRefunded
		s.tickets[id] = t
	}
	s.mu.Unlock()

	s.refreshAfterMutation(ctx)
	return nil
}

// FetchFlights refreshes the flight cache wholesale: the previous list
// is replaced, never merged.
func (s *Store) FetchFlights(ctx context.Context, q ticketapi.FlightQuery) ([]domain.Flight, error) {
	flights, err := s.src.SearchFlights(ctx, q)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.flights = flights
	s.mu.Unlock()
	return flights, nil
}

func (s *Store) SearchBookings(ctx context.Context, q ticketapi.BookingQuery) (*ticketapi.BookingPage, error) {
	return s.src.SearchBookings(ctx, q)
}

func (s *Store) BookingByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.src.BookingByID(ctx, id)
}

func (s *Store) BookingByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	return s.src.BookingByPNR(ctx, pnr)
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (int64, error) {
	updated, err := s.src.UpdateBookingStatus(ctx, id, status)
	if err != nil {
		return 0, err
	}
	s.refreshAfterMutation(ctx)
	return updated, nil
}

func (s *Store) CreateBooking(ctx context.Context, req ticketapi.BookingRequest) (*ticketapi.BookingReceipt, error) {
	receipt, err := s.src.CreateBooking(ctx, req)
	if err != nil {
		return nil, err
	}
	s.refreshAfterMutation(ctx)
	return receipt, nil
}

func (s *Store) CreateRefund(ctx context.Context, req ticketapi.RefundRequest) (*ticketapi.RefundReceipt, error) {
	receipt, err := s.src.CreateRefund(ctx, req)
	if err != nil {
		return nil, err
	}
	s.refreshAfterMutation(ctx)
	return receipt, nil
}

func (s *Store) DelayFlight(ctx context.Context, req ticketapi.DelayRequest) (*ticketapi.DelayResult, error) {
	result, err := s.src.DelayFlight(ctx, req)
	if err != nil {
		return nil, err
	}
	s.refreshAfterMutation(ctx)
	return result, nil
}

func (s *Store) CancelFlight(ctx context.Context, req ticketapi.CancelRequest) (*ticketapi.CancelResult, error) {
	result, err := s.src.CancelFlight(ctx, req)
	if err != nil {
		return nil, err
	}
	s.refreshAfterMutation(ctx)
	return result, nil
}

// refreshAfterMutation re-runs the full initialization after a
// server-visible mutation. The mutation already succeeded, so a refresh
// failure is logged, not returned.
func (s *Store) refreshAfterMutation(ctx context.Context) {
	if err := s.Initialize(ctx); err != nil {
		log.Printf("refresh after mutation: %v", err)
	}
}

func (s *Store) BookedTickets() []domain.Ticket {
	return s.ticketsWithStatus(domain.TicketStatusBooked)
}

func (s *Store) RefundedTickets() []domain.Ticket {
	return s.ticketsWithStatus(domain.TicketStatusRefunded)
}

func (s *Store) ticketsWithStatus(status domain.TicketStatus) []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Ticket, 0, len(s.order))
	for _, id := range s.order {
		if t := s.tickets[id]; t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) TicketByID(id string) (domain.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	return t, ok
}

func (s *Store) Flights() []domain.Flight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Flight, len(s.flights))
	copy(out, s.flights)
	return out
}

func (s *Store) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.User
}

func (s *Store) Role() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session.User == nil {
		return ""
	}
	return s.session.User.Role
}

func (s *Store) IsAdmin() bool     { return s.Role() == domain.RoleAdmin }
func (s *Store) IsAgency() bool    { return s.Role() == domain.RoleAgency }
func (s *Store) IsPassenger() bool { return s.Role() == domain.RolePassenger }

// flightNumberID extracts the numeric part of a flight or ticket code,
// the backend's id convention ("CA1234" -> 1234).
func flightNumberID(code string) int64 {
	var digits strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	id, _ := strconv.ParseInt(digits.String(), 10, 64)
	return id
}
