// Package inventory implements the seat inventory and booking allocation
// engine: the per-bus seat map, the atomic multi-seat claim protocol and
// the cancellation path. These error values let handlers distinguish the
// failure scenarios and map them onto HTTP status codes. For example,
// ErrBusNotFound becomes a 404 while a SeatsUnavailableError becomes a
// 409 listing every conflicting seat.
package inventory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBusNotFound is returned when no seat inventory exists for the
// requested bus ID.
var ErrBusNotFound = errors.New("bus not found")

// ErrBookingNotFound is returned by Cancel when no ledger entry exists
// for the given booking ID.
var ErrBookingNotFound = errors.New("booking not found")

// ErrAlreadyCanceled is returned by Cancel when the booking has already
// been canceled. Cancellation is a one-way status transition.
var ErrAlreadyCanceled = errors.New("booking already canceled")

// ErrTooManySeats is returned when a booking request carries no seats or
// more than MaxSeatsPerBooking seats. The seat map is never touched.
var ErrTooManySeats = errors.New("a booking must request between 1 and 5 seats")

// ErrDuplicateSeat is returned when the same seat label appears more than
// once in a single booking request.
var ErrDuplicateSeat = errors.New("duplicate seat in request")

// ErrTimeout is returned when the caller's deadline elapses while waiting
// for the per-bus exclusive scope. No seat map mutation has occurred.
var ErrTimeout = errors.New("timed out waiting for bus inventory")

// ErrBusHasBookings is returned when a bus cannot be deregistered because
// seats are still booked. Deletion requires every seat to be available.
var ErrBusHasBookings = errors.New("bus has outstanding bookings")

// UnknownSeatError reports seat labels that match no seat in the bus's
// layout. It is distinct from SeatsUnavailableError: an unknown label is a
// request defect, not a booking conflict.
type UnknownSeatError struct {
	Seats []string // offending labels, sorted
}

func (e *UnknownSeatError) Error() string {
	return fmt.Sprintf("unknown seats: %s", strings.Join(e.Seats, ", "))
}

// SeatsUnavailableError reports every requested seat that is already
// booked. The claim is all-or-nothing, so the presence of any entry means
// no seat from the request was taken.
type SeatsUnavailableError struct {
	Seats []string // unavailable labels, sorted
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.Seats, ", "))
}

// PersistenceError wraps a storage failure that occurred after validation.
// When it surfaces from Book, the in-memory claim has already been rolled
// back; the seat map is in the state it held before the call.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "persistence failed: " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }
