package model

import "time"

// Bus represents one scheduled bus as stored in the `buses` table.
// The fleet is flat: each bus carries its own route, schedule, fare
// and fixed seat count. Seat inventory lives in the `bus_seats`
// table and is owned by the inventory engine; the fields here are
// read-only to it.
//
// Fields:
//  ID            – primary key identifier.
//  BusID         – external identifier (e.g. BUS123), unique.
//  Name          – display name of the bus.
//  Number        – registration number, unique.
//  Source        – starting location of the route.
//  Destination   – final location of the route.
//  TravelDate    – date of travel.
//  DepartureTime – departure in HH:mm (24-hour clock).
//  FarePerSeat   – fare for a single seat.
//  TotalSeats    – fixed size of the seat layout.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Bus struct {
	ID            uint64    // buses.id
	BusID         string    // buses.bus_id
	Name          string    // buses.name
	Number        string    // buses.number
	Source        string    // buses.source
	Destination   string    // buses.destination
	TravelDate    time.Time // buses.travel_date
	DepartureTime string    // buses.departure_time
	FarePerSeat   float64   // buses.fare_per_seat
	TotalSeats    int       // buses.total_seats
	CreatedAt     time.Time // buses.created_at
	UpdatedAt     time.Time // buses.updated_at
}

// BusSeat mirrors one row of the `bus_seats` table: a single seat of a
// bus's fixed layout and its current status. The label encodes the deck
// (R1U1 is upper deck, R1L1 lower). Status transitions are performed
// only by the inventory engine inside booking transactions.
//
// Fields:
//  ID        – primary key identifier.
//  BusID     – external bus identifier the seat belongs to.
//  SeatLabel – seat label, unique per bus.
//  Deck      – deck marker (U or L), derived from the label.
//  Status    – FREE or BOOKED.
//  UpdatedAt – last status change.
type BusSeat struct {
	ID        uint64    // bus_seats.id
	BusID     string    // bus_seats.bus_id
	SeatLabel string    // bus_seats.seat_label
	Deck      string    // bus_seats.deck
	Status    string    // bus_seats.status
	UpdatedAt time.Time // bus_seats.updated_at
}
