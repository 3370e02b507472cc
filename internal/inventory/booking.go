package inventory

import "time"

// Booking statuses. A ledger entry is created pending the instant a claim
// attempt begins, becomes confirmed only once the seat map mutation is
// durably persisted, and becomes canceled on rollback, claim failure or
// explicit cancellation. Entries are never deleted.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCanceled  = "canceled"
)

// MaxSeatsPerBooking caps the number of seats a single booking request
// may claim.
const MaxSeatsPerBooking = 5

// Booking is one ledger entry: the durable record of a booking attempt
// and its lifecycle status. Seats preserves the order of the original
// request. Only the Allocator creates and transitions entries.
type Booking struct {
	ID          string    `json:"booking_id"`
	BusID       string    `json:"bus_id"`
	UserID      uint64    `json:"user_id"`
	Seats       []string  `json:"seats"`
	TotalFare   float64   `json:"total_fare"`
	BookingDate time.Time `json:"booking_date"`
	Status      string    `json:"status"`
}

// BookingRequest carries the inputs of one booking attempt into the
// Allocator. FarePerSeat comes from the bus record; the Allocator trusts
// UserID as authenticated by the caller.
type BookingRequest struct {
	BusID       string
	UserID      uint64
	Seats       []string
	FarePerSeat float64
}
