package inventory

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Store is the narrow persistence contract the Allocator consumes. The
// repository layer implements it over MySQL; tests supply an in-memory
// fake. SaveBooking and SaveCancellation must each write the seat map
// mutation and the ledger transition as a single durable unit: either
// both are stored or neither is.
type Store interface {
	// LoadSeatMap returns the current seat map for busID or ErrBusNotFound.
	LoadSeatMap(ctx context.Context, busID string) (*SeatMap, error)
	// SaveBooking persists the claimed seats together with the ledger
	// entry, promoting the entry to confirmed inside the same unit.
	SaveBooking(ctx context.Context, sm *SeatMap, b *Booking) error
	// SaveCancellation marks the entry canceled and returns its seats to
	// the available pools in one unit.
	SaveCancellation(ctx context.Context, sm *SeatMap, bookingID string) error
	// GetBooking returns the ledger entry or ErrBookingNotFound.
	GetBooking(ctx context.Context, bookingID string) (*Booking, error)
}

// Allocator turns booking requests into all-or-nothing state changes
// spanning the seat map and the booking ledger. It is safe for arbitrary
// concurrent use: a keyed lock serializes operations per bus while
// leaving unrelated buses untouched.
type Allocator struct {
	store Store
	locks *lockTable
}

// NewAllocator returns an Allocator backed by the given store.
func NewAllocator(store Store) *Allocator {
	return &Allocator{store: store, locks: newLockTable()}
}

// Book attempts to claim every seat in the request for req.UserID. It
// returns the confirmed ledger entry, or an error describing exactly why
// nothing was booked: ErrTooManySeats, ErrDuplicateSeat, ErrBusNotFound,
// ErrTimeout, an UnknownSeatError, a SeatsUnavailableError or a
// PersistenceError. In every failure case the seat inventory is left in
// the state it held before the call.
func (a *Allocator) Book(ctx context.Context, req BookingRequest) (*Booking, error) {
	if len(req.Seats) == 0 || len(req.Seats) > MaxSeatsPerBooking {
		return nil, ErrTooManySeats
	}
	seen := make(map[string]struct{}, len(req.Seats))
	for _, s := range req.Seats {
		if _, dup := seen[s]; dup {
			return nil, ErrDuplicateSeat
		}
		seen[s] = struct{}{}
	}

	release, err := a.locks.acquire(ctx, req.BusID)
	if err != nil {
		return nil, err
	}
	defer release()

	sm, err := a.store.LoadSeatMap(ctx, req.BusID)
	if err != nil {
		return nil, err
	}
	if err := sm.Claim(req.Seats); err != nil {
		return nil, err
	}

	booking := &Booking{
		ID:          uuid.NewString(),
		BusID:       req.BusID,
		UserID:      req.UserID,
		Seats:       append([]string(nil), req.Seats...),
		TotalFare:   req.FarePerSeat * float64(len(req.Seats)),
		BookingDate: time.Now().UTC(),
		Status:      StatusPending,
	}
	if err := a.store.SaveBooking(ctx, sm, booking); err != nil {
		// The in-memory claim must not outlive a failed persist. Release
		// restores the seats to their pools; if the map no longer reports
		// them available the invariant is broken and needs manual
		// reconciliation.
		sm.Release(req.Seats)
		for _, s := range req.Seats {
			if !sm.IsAvailable(s) {
				log.Printf("inventory: RECONCILE bus=%s seat=%s not restored after failed persist", req.BusID, s)
			}
		}
		return nil, &PersistenceError{Err: err}
	}
	booking.Status = StatusConfirmed
	return booking, nil
}

// Cancel marks the booking canceled and returns its seats to the
// available pools. It fails with ErrBookingNotFound when no ledger entry
// exists and ErrAlreadyCanceled when the entry was canceled before. The
// status transition and the seat release are persisted atomically under
// the same per-bus exclusive scope used by Book.
func (a *Allocator) Cancel(ctx context.Context, bookingID string) error {
	b, err := a.store.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status == StatusCanceled {
		return ErrAlreadyCanceled
	}

	release, err := a.locks.acquire(ctx, b.BusID)
	if err != nil {
		return err
	}
	defer release()

	// Re-read under the lock; the entry may have been canceled while we
	// were waiting.
	b, err = a.store.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status == StatusCanceled {
		return ErrAlreadyCanceled
	}

	sm, err := a.store.LoadSeatMap(ctx, b.BusID)
	if err != nil {
		return err
	}
	sm.Release(b.Seats)
	if err := a.store.SaveCancellation(ctx, sm, bookingID); err != nil {
		return &PersistenceError{Err: err}
	}
	return nil
}

// Availability returns sorted snapshots of the upper and lower seat
// pools for busID. Reads are served from a single consistent load and do
// not take the bus lock.
func (a *Allocator) Availability(ctx context.Context, busID string) (upper, lower []string, err error) {
	sm, err := a.store.LoadSeatMap(ctx, busID)
	if err != nil {
		return nil, nil, err
	}
	upper, lower = sm.Available()
	return upper, lower, nil
}
