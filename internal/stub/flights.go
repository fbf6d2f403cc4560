package stub

import (
	"net/http"
	"time"

	"github.com/aerodesk/aerodesk/internal/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) listFlights(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	date := c.Query("date")

	s.mu.Lock()
	matched := make([]domain.Flight, 0, len(s.flights))
	for _, f := range s.flights {
		if from != "" && f.From != from {
			continue
		}
		if to != "" && f.To != to {
			continue
		}
		if date != "" && f.Date != date {
			continue
		}
		matched = append(matched, f)
	}
	s.mu.Unlock()

	ok(c, matched)
}

func (s *Server) delayFlight(c *gin.Context) {
	var req struct {
		FlightID   int64  `json:"flightId"`
		NewDepTime string `json:"newDepTime"`
		NewArrTime string `json:"newArrTime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.FlightID == 0 || req.NewDepTime == "" || req.NewArrTime == "" {
		fail(c, http.StatusBadRequest, "400", "missing flight delay fields")
		return
	}

	affected := s.touchBookingsForFlight(c, req.FlightID, "flight_delayed", nil)

	ok(c, gin.H{
		"flightId":         req.FlightID,
		"newDepTime":       req.NewDepTime,
		"newArrTime":       req.NewArrTime,
		"affectedBookings": affected,
	})
}

func (s *Server) cancelFlight(c *gin.Context) {
	var req struct {
		FlightID int64  `json:"flightId"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.FlightID == 0 || req.Reason == "" {
		fail(c, http.StatusBadRequest, "400", "missing flight cancel fields")
		return
	}

	cancelled := domain.BookingStatusCancelled
	affected := s.touchBookingsForFlight(c, req.FlightID, "flight_cancelled", &cancelled)

	ok(c, gin.H{
		"flightId":         req.FlightID,
		"status":           domain.BookingStatusCancelled,
		"affectedBookings": affected,
		"affectedTickets":  affected,
	})
}

// touchBookingsForFlight publishes one event per booking on the flight
// and optionally transitions them to the given status.
func (s *Server) touchBookingsForFlight(c *gin.Context, flightID int64, eventType string, status *domain.BookingStatus) int {
	s.mu.Lock()
	touched := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if b.FlightID != flightID {
			continue
		}
		if status != nil {
			b.Status = *status
			b.UpdatedAt = time.Now().Format(wireTimestamp)
		}
		touched = append(touched, b)
	}
	s.mu.Unlock()

	for _, b := range touched {
		s.publish(c.Request.Context(), eventType, b)
	}
	return len(touched)
}
