package domain

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusTicketed  BookingStatus = "TICKETED"
	BookingStatusRefunded  BookingStatus = "REFUNDED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking is the backend-shaped record. Timestamps stay as the wire
// strings; the backend emits them without a zone offset.
type Booking struct {
	ID               int64         `json:"id"`
	CreatedAt        string        `json:"createdAt"`
	UpdatedAt        string        `json:"updatedAt"`
	PNR              string        `json:"pnr"`
	AgencyID         int64         `json:"agencyId"`
	FlightID         int64         `json:"flightId"`
	Status           BookingStatus `json:"status"`
	TotalAmount      int64         `json:"totalAmount"`
	DepositAmount    int64         `json:"depositAmount"`
	DeadlinePickupAt string        `json:"deadlinePickupAt"`
}
