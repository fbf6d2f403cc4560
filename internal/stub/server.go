// Package stub implements an in-memory backend speaking the same
// envelope protocol the real booking service uses. It exists so the
// client layer can be developed and demoed against a real HTTP boundary
// without the production backend.
package stub

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/aerodesk/aerodesk/config"
	"github.com/aerodesk/aerodesk/internal/domain"
	"github.com/aerodesk/aerodesk/internal/events"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const envelopeOK = "200"

type envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type account struct {
	password string
	user     domain.User
}

type Server struct {
	cfg      config.StubConfig
	producer *events.Producer
	topic    string

	mu            sync.Mutex
	accounts      map[string]account
	refreshTokens map[string]string
	flights       []domain.Flight
	bookings      map[int64]*domain.Booking
	nextBookingID int64
	rng           *rand.Rand
}

func NewServer(cfg config.StubConfig, producer *events.Producer, topic string) *Server {
	s := &Server{
		cfg:           cfg,
		producer:      producer,
		topic:         topic,
		accounts:      make(map[string]account),
		refreshTokens: make(map[string]string),
		bookings:      make(map[int64]*domain.Booking),
		nextBookingID: 1000,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.seed()
	return s
}

func (s *Server) seed() {
	for _, a := range []struct {
		username, password, name string
		role                     domain.Role
	}{
		{"admin", "admin123", "Administrator", domain.RoleAdmin},
		{"skytrip", "agency123", "SkyTrip Travel", domain.RoleAgency},
		{"zhang", "passenger123", "Zhang San", domain.RolePassenger},
	} {
		s.accounts[a.username] = account{
			password: a.password,
			user: domain.User{
				ID:       uuid.NewString(),
				Username: a.username,
				Name:     a.name,
				Email:    a.username + "@example.com",
				Phone:    "13800138000",
				Role:     a.role,
			},
		}
	}

	s.flights = []domain.Flight{
		{ID: "CA1234", From: "PEK", To: "SHA", Date: "2024-05-15", Time: "09:00", Price: 1200, SeatsAvailable: 15},
		{ID: "CA1235", From: "PEK", To: "SHA", Date: "2024-05-15", Time: "14:00", Price: 1300, SeatsAvailable: 8},
		{ID: "MU5137", From: "SHA", To: "CAN", Date: "2024-05-15", Time: "10:30", Price: 980, SeatsAvailable: 12},
		{ID: "CZ3143", From: "CAN", To: "PEK", Date: "2024-05-15", Time: "16:45", Price: 1500, SeatsAvailable: 5},
	}
}

// Handler builds the gin engine with every endpoint of the backend
// contract mounted under /api.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.POST("/login", s.login)
	api.POST("/refresh", s.refresh)
	api.POST("/register/passenger", s.registerPassenger)
	api.POST("/logout", s.logout)
	api.GET("/flights", s.listFlights)
	api.POST("/booking/search", s.searchBookings)
	api.POST("/booking", s.createBooking)
	api.POST("/booking/:id/status", s.updateBookingStatus)
	api.GET("/booking/:id", s.bookingByID)
	api.GET("/booking/pnr/:pnr", s.bookingByPNR)
	api.POST("/refund", s.createRefund)
	api.POST("/flight/delay", s.delayFlight)
	api.POST("/flight/cancel", s.cancelFlight)

	authed := api.Group("")
	authed.Use(s.requireAuth())
	authed.GET("/me", s.currentUser)
	authed.POST("/register/agency", s.registerAgency)

	return router
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Code: envelopeOK, Message: "OK", Data: data})
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, envelope{Code: code, Message: message})
}

// publish sends a booking lifecycle event when a producer is wired;
// event loss never fails the request.
func (s *Server) publish(ctx context.Context, eventType string, b *domain.Booking) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := events.BookingEvent{
		Type:        eventType,
		BookingID:   b.ID,
		PNR:         b.PNR,
		FlightID:    b.FlightID,
		Status:      string(b.Status),
		TotalAmount: b.TotalAmount,
		OccurredAt:  time.Now(),
	}
	if err := s.producer.Publish(ctx, s.topic, b.PNR, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %d: %v", eventType, b.ID, err)
	}
}
