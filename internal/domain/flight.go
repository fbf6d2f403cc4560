package domain

// Flight as the search surface presents it: ID is the IATA-style flight
// code, From/To are airport codes, Date and Time are display strings.
type Flight struct {
	ID             string `json:"id"`
	From           string `json:"from"`
	To             string `json:"to"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Price          int64  `json:"price"`
	SeatsAvailable int    `json:"seatsAvailable"`
}
