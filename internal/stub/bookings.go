package stub

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aerodesk/aerodesk/internal/domain"
	"github.com/gin-gonic/gin"
)

const wireTimestamp = "2006-01-02T15:04:05"

type searchRequest struct {
	Status domain.BookingStatus `json:"status"`
	PNR    string               `json:"pnr"`
	Page   int                  `json:"page"`
	Size   int                  `json:"size"`
}

type createBookingRequest struct {
	AgencyID         int64  `json:"agencyId"`
	FlightID         int64  `json:"flightId"`
	TotalAmount      int64  `json:"totalAmount"`
	DepositAmount    int64  `json:"depositAmount"`
	DeadlinePickupAt string `json:"deadlinePickupAt"`
	Passengers       []struct {
		PassengerID int64   `json:"passengerId"`
		SeatNo      *string `json:"seatNo"`
	} `json:"passengers"`
}

func (s *Server) searchBookings(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "400", "malformed search request")
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Size <= 0 {
		req.Size = 10
	}

	s.mu.Lock()
	matched := make([]domain.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		if req.Status != "" && b.Status != req.Status {
			continue
		}
		if req.PNR != "" && b.PNR != req.PNR {
			continue
		}
		matched = append(matched, *b)
	}
	s.mu.Unlock()

	start := (req.Page - 1) * req.Size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + req.Size
	if end > len(matched) {
		end = len(matched)
	}

	ok(c, gin.H{
		"list":  matched[start:end],
		"total": len(matched),
		"page":  req.Page,
		"size":  req.Size,
	})
}

func (s *Server) createBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "400", "malformed booking request")
		return
	}
	if req.AgencyID == 0 || req.FlightID == 0 || req.TotalAmount == 0 || len(req.Passengers) == 0 {
		fail(c, http.StatusBadRequest, "400", "missing required booking fields")
		return
	}

	now := time.Now().Format(wireTimestamp)
	deadline := req.DeadlinePickupAt
	if deadline == "" {
		deadline = time.Now().Add(24 * time.Hour).Format(wireTimestamp)
	}

	s.mu.Lock()
	id := s.nextBookingID
	s.nextBookingID++
	booking := &domain.Booking{
		ID:               id,
		CreatedAt:        now,
		UpdatedAt:        now,
		PNR:              s.newPNR(),
		AgencyID:         req.AgencyID,
		FlightID:         req.FlightID,
		Status:           domain.BookingStatusTicketed,
		TotalAmount:      req.TotalAmount,
		DepositAmount:    req.DepositAmount,
		DeadlinePickupAt: deadline,
	}
	s.bookings[id] = booking
	ticketNo := "TK" + s.digits(15)
	s.mu.Unlock()

	s.publish(c.Request.Context(), "booking_created", booking)

	ok(c, gin.H{
		"bookingId": booking.ID,
		"pnr":       booking.PNR,
		"ticketNo":  ticketNo,
		"status":    booking.Status,
	})
}

func (s *Server) updateBookingStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "400", "invalid booking id")
		return
	}
	status := domain.BookingStatus(c.Query("status"))
	if status == "" {
		fail(c, http.StatusBadRequest, "400", "missing status")
		return
	}

	s.mu.Lock()
	booking, found := s.bookings[id]
	if found {
		booking.Status = status
		booking.UpdatedAt = time.Now().Format(wireTimestamp)
	}
	s.mu.Unlock()
	if !found {
		fail(c, http.StatusNotFound, "404", "booking not found")
		return
	}

	s.publish(c.Request.Context(), "booking_status_changed", booking)
	ok(c, booking.ID)
}

func (s *Server) bookingByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "400", "invalid booking id")
		return
	}

	s.mu.Lock()
	booking, found := s.bookings[id]
	var copied domain.Booking
	if found {
		copied = *booking
	}
	s.mu.Unlock()
	if !found {
		fail(c, http.StatusNotFound, "404", "booking not found")
		return
	}
	ok(c, copied)
}

func (s *Server) bookingByPNR(c *gin.Context) {
	pnr := c.Param("pnr")

	s.mu.Lock()
	var copied *domain.Booking
	for _, b := range s.bookings {
		if b.PNR == pnr {
			clone := *b
			copied = &clone
			break
		}
	}
	s.mu.Unlock()
	if copied == nil {
		fail(c, http.StatusNotFound, "404", "booking not found")
		return
	}
	ok(c, copied)
}

func (s *Server) createRefund(c *gin.Context) {
	var req struct {
		BookingID int64  `json:"bookingId"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.BookingID == 0 {
		fail(c, http.StatusBadRequest, "400", "missing booking id")
		return
	}

	s.mu.Lock()
	booking, found := s.bookings[req.BookingID]
	var pnr, flightNo string
	if found {
		booking.Status = domain.BookingStatusRefunded
		booking.UpdatedAt = time.Now().Format(wireTimestamp)
		pnr = booking.PNR
		flightNo = fmt.Sprintf("CA%04d", booking.FlightID)
	}
	s.mu.Unlock()
	if !found {
		fail(c, http.StatusNotFound, "404", "booking not found")
		return
	}

	s.publish(c.Request.Context(), "refund_created", booking)
	ok(c, gin.H{"pnr": pnr, "flightNo": flightNo})
}

// newPNR returns a record locator in the usual 3 letters + 3 digits
// shape. Callers hold s.mu.
func (s *Server) newPNR() string {
	letters := make([]byte, 3)
	for i := range letters {
		letters[i] = byte('A' + s.rng.Intn(26))
	}
	return string(letters) + s.digits(3)
}

// digits returns n random digits, first one non-zero. Callers hold s.mu.
func (s *Server) digits(n int) string {
	buf := make([]byte, n)
	buf[0] = byte('1' + s.rng.Intn(9))
	for i := 1; i < n; i++ {
		buf[i] = byte('0' + s.rng.Intn(10))
	}
	return string(buf)
}
