package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store. Seat state only changes in
// SaveBooking and SaveCancellation, mirroring the transactional
// repository: a failed save leaves the durable state untouched.
type fakeStore struct {
	mu       sync.Mutex
	layout   []string
	free     map[string]bool
	bookings map[string]*Booking

	failSave  error
	saveEnter chan struct{} // closed-once signal that SaveBooking started
	saveBlock chan struct{} // SaveBooking waits for this to close when set
}

func newFakeStore(totalSeats int) *fakeStore {
	layout := GenerateLayout(totalSeats)
	free := make(map[string]bool, len(layout))
	for _, l := range layout {
		free[l] = true
	}
	return &fakeStore{
		layout:   layout,
		free:     free,
		bookings: make(map[string]*Booking),
	}
}

func (s *fakeStore) LoadSeatMap(ctx context.Context, busID string) (*SeatMap, error) {
	if busID != "BUS1" {
		return nil, ErrBusNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var available []string
	for _, l := range s.layout {
		if s.free[l] {
			available = append(available, l)
		}
	}
	return NewSeatMap(busID, s.layout, available)
}

func (s *fakeStore) SaveBooking(ctx context.Context, sm *SeatMap, b *Booking) error {
	if s.saveEnter != nil {
		select {
		case <-s.saveEnter:
		default:
			close(s.saveEnter)
		}
	}
	if s.saveBlock != nil {
		<-s.saveBlock
	}
	if s.failSave != nil {
		return s.failSave
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range b.Seats {
		s.free[l] = false
	}
	stored := *b
	stored.Status = StatusConfirmed
	s.bookings[b.ID] = &stored
	return nil
}

func (s *fakeStore) SaveCancellation(ctx context.Context, sm *SeatMap, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return ErrBookingNotFound
	}
	b.Status = StatusCanceled
	for _, l := range b.Seats {
		s.free[l] = true
	}
	return nil
}

func (s *fakeStore) GetBooking(ctx context.Context, bookingID string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func TestBookConfirmsAndComputesFare(t *testing.T) {
	store := newFakeStore(8)
	a := NewAllocator(store)

	b, err := a.Book(context.Background(), BookingRequest{
		BusID:       "BUS1",
		UserID:      7,
		Seats:       []string{"R1U1", "R1L1", "R1U2"},
		FarePerSeat: 12.5,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, []string{"R1U1", "R1L1", "R1U2"}, b.Seats)
	assert.Equal(t, 37.5, b.TotalFare)
	assert.NotEmpty(t, b.ID)

	upper, lower, err := a.Availability(context.Background(), "BUS1")
	require.NoError(t, err)
	assert.NotContains(t, upper, "R1U1")
	assert.NotContains(t, upper, "R1U2")
	assert.NotContains(t, lower, "R1L1")
}

func TestBookSeatCountBounds(t *testing.T) {
	a := NewAllocator(newFakeStore(16))

	_, err := a.Book(context.Background(), BookingRequest{BusID: "BUS1"})
	assert.ErrorIs(t, err, ErrTooManySeats)

	_, err = a.Book(context.Background(), BookingRequest{
		BusID: "BUS1",
		Seats: []string{"R1U1", "R1U2", "R1U3", "R1U4", "R2U1", "R2U2"},
	})
	assert.ErrorIs(t, err, ErrTooManySeats)

	// Exactly five is allowed.
	b, err := a.Book(context.Background(), BookingRequest{
		BusID: "BUS1",
		Seats: []string{"R1U1", "R1U2", "R1U3", "R1U4", "R2U1"},
	})
	require.NoError(t, err)
	assert.Len(t, b.Seats, 5)
}

func TestBookRejectsDuplicateSeat(t *testing.T) {
	a := NewAllocator(newFakeStore(8))
	_, err := a.Book(context.Background(), BookingRequest{
		BusID: "BUS1",
		Seats: []string{"R1U1", "R1U1"},
	})
	assert.ErrorIs(t, err, ErrDuplicateSeat)
}

func TestBookUnknownBus(t *testing.T) {
	a := NewAllocator(newFakeStore(8))
	_, err := a.Book(context.Background(), BookingRequest{
		BusID: "BUS404",
		Seats: []string{"R1U1"},
	})
	assert.ErrorIs(t, err, ErrBusNotFound)
}

func TestBookUnknownSeatKeepsSeatBookable(t *testing.T) {
	store := newFakeStore(8)
	a := NewAllocator(store)

	_, err := a.Book(context.Background(), BookingRequest{
		BusID: "BUS1",
		Seats: []string{"R1U1", "R9U9"},
	})
	var unknown *UnknownSeatError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"R9U9"}, unknown.Seats)

	// The rejected request must not have consumed the valid seat.
	b, err := a.Book(context.Background(), BookingRequest{
		BusID: "BUS1",
		Seats: []string{"R1U1"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)
}

func TestConcurrentSingleSeatRace(t *testing.T) {
	store := newFakeStore(8)
	a := NewAllocator(store)

	const contenders = 16
	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(uid uint64) {
			defer wg.Done()
			_, err := a.Book(context.Background(), BookingRequest{
				BusID:  "BUS1",
				UserID: uid,
				Seats:  []string{"R1U1"},
			})
			results <- err
		}(uint64(i + 1))
	}
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		var unavailable *SeatsUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, []string{"R1U1"}, unavailable.Seats)
		conflicts++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, contenders-1, conflicts)
}

func TestPersistFailureRestoresSeats(t *testing.T) {
	store := newFakeStore(8)
	store.failSave = errors.New("disk on fire")
	a := NewAllocator(store)

	_, err := a.Book(context.Background(), BookingRequest{
		BusID: "BUS1",
		Seats: []string{"R1U1", "R1L1"},
	})
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)

	// Durable state never changed, so the seats must still be free.
	store.failSave = nil
	b, err := a.Book(context.Background(), BookingRequest{
		BusID: "BUS1",
		Seats: []string{"R1U1", "R1L1"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)
}

func TestBookTimeoutLeavesInventoryUntouched(t *testing.T) {
	store := newFakeStore(8)
	store.saveEnter = make(chan struct{})
	store.saveBlock = make(chan struct{})
	a := NewAllocator(store)

	first := make(chan error, 1)
	go func() {
		_, err := a.Book(context.Background(), BookingRequest{
			BusID: "BUS1",
			Seats: []string{"R1U1"},
		})
		first <- err
	}()

	// Wait until the first booking holds the bus lock inside SaveBooking.
	select {
	case <-store.saveEnter:
	case <-time.After(time.Second):
		t.Fatal("first booking never reached the store")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := a.Book(ctx, BookingRequest{
		BusID: "BUS1",
		Seats: []string{"R1U2"},
	})
	assert.ErrorIs(t, err, ErrTimeout)

	close(store.saveBlock)
	require.NoError(t, <-first)

	// The timed-out request consumed nothing.
	upper, _, err := a.Availability(context.Background(), "BUS1")
	require.NoError(t, err)
	assert.Contains(t, upper, "R1U2")
	assert.NotContains(t, upper, "R1U1")
}

func TestCancelReturnsSeatsForRebooking(t *testing.T) {
	store := newFakeStore(8)
	a := NewAllocator(store)

	b, err := a.Book(context.Background(), BookingRequest{
		BusID:  "BUS1",
		UserID: 1,
		Seats:  []string{"R1U1", "R1L1"},
	})
	require.NoError(t, err)

	require.NoError(t, a.Cancel(context.Background(), b.ID))

	got, err := store.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, got.Status)

	// Another user books the released seats.
	b2, err := a.Book(context.Background(), BookingRequest{
		BusID:  "BUS1",
		UserID: 2,
		Seats:  []string{"R1U1", "R1L1"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b2.Status)
}

func TestCancelErrors(t *testing.T) {
	store := newFakeStore(8)
	a := NewAllocator(store)

	err := a.Cancel(context.Background(), "no-such-booking")
	assert.ErrorIs(t, err, ErrBookingNotFound)

	b, err := a.Book(context.Background(), BookingRequest{
		BusID: "BUS1",
		Seats: []string{"R1U1"},
	})
	require.NoError(t, err)
	require.NoError(t, a.Cancel(context.Background(), b.ID))

	err = a.Cancel(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrAlreadyCanceled)
}
