// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published once a booking has been durably
// confirmed. It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID   string   `json:"booking_id"`
	BusID       string   `json:"bus_id"`
	BusName     string   `json:"bus_name"`
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	TravelDate  string   `json:"travel_date"`
	UserID      uint64   `json:"user_id"`
	Seats       []string `json:"seats"`
	TotalFare   float64  `json:"total_fare"`
	ConfirmedAt string   `json:"confirmed_at"`
}
