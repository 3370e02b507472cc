package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftroute/bus-seat-reservation/internal/database"
	"github.com/swiftroute/bus-seat-reservation/internal/inventory"
	"github.com/swiftroute/bus-seat-reservation/internal/model"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
}

func TestSeatArgs(t *testing.T) {
	args := seatArgs("BUS1", []string{"R1U1", "R1L1"})
	require.Len(t, args, 3)
	assert.Equal(t, "BUS1", args[0])
	assert.Equal(t, "R1U1", args[1])
	assert.Equal(t, "R1L1", args[2])
}

// The remaining tests exercise the repository against a real MySQL
// instance and run only when INTEGRATION_TEST=true with DB_* variables
// set.
func integrationRepo(t *testing.T) *InventoryRepo {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}
	db, err := database.Open(
		os.Getenv("DB_USER"), os.Getenv("DB_PASS"),
		os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_NAME"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewInventoryRepo(db)
}

func testBus(busID string) *model.Bus {
	return &model.Bus{
		BusID:         busID,
		Name:          "Integration Express",
		Number:        "IT-" + busID,
		Source:        "A",
		Destination:   "B",
		TravelDate:    time.Now().UTC().AddDate(0, 0, 7),
		DepartureTime: "08:00",
		FarePerSeat:   100,
		TotalSeats:    8,
	}
}

func TestCreateLoadDeleteBus(t *testing.T) {
	r := integrationRepo(t)
	ctx := context.Background()
	busID := "BUS900001"

	sm, err := r.CreateBus(ctx, testBus(busID))
	require.NoError(t, err)
	assert.Equal(t, 8, sm.TotalSeats())
	assert.True(t, sm.FullyAvailable())

	_, err = r.CreateBus(ctx, testBus(busID))
	assert.ErrorIs(t, err, ErrBusExists)

	loaded, err := r.LoadSeatMap(ctx, busID)
	require.NoError(t, err)
	assert.True(t, loaded.FullyAvailable())

	require.NoError(t, r.DeleteBus(ctx, busID))
	_, err = r.LoadSeatMap(ctx, busID)
	assert.ErrorIs(t, err, inventory.ErrBusNotFound)

	assert.ErrorIs(t, r.DeleteBus(ctx, busID), ErrBusNotFound)
}

func TestSaveBookingRoundTrip(t *testing.T) {
	r := integrationRepo(t)
	ctx := context.Background()
	busID := "BUS900002"

	sm, err := r.CreateBus(ctx, testBus(busID))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.DeleteBus(ctx, busID) })

	seats := []string{"R1U1", "R1L1"}
	require.NoError(t, sm.Claim(seats))
	b := &inventory.Booking{
		ID:          uuid.NewString(),
		BusID:       busID,
		UserID:      1,
		Seats:       seats,
		TotalFare:   200,
		BookingDate: time.Now().UTC(),
		Status:      inventory.StatusPending,
	}
	require.NoError(t, r.SaveBooking(ctx, sm, b))

	got, err := r.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusConfirmed, got.Status)
	assert.Equal(t, seats, got.Seats)

	loaded, err := r.LoadSeatMap(ctx, busID)
	require.NoError(t, err)
	assert.False(t, loaded.IsAvailable("R1U1"))
	assert.False(t, loaded.IsAvailable("R1L1"))

	// A bus with booked seats cannot be deregistered.
	assert.ErrorIs(t, r.DeleteBus(ctx, busID), inventory.ErrBusHasBookings)

	// Booking the same seats again must abort on the status guard.
	sm2, err := r.LoadSeatMap(ctx, busID)
	require.NoError(t, err)
	b2 := &inventory.Booking{
		ID: uuid.NewString(), BusID: busID, UserID: 2, Seats: seats,
		TotalFare: 200, BookingDate: time.Now().UTC(), Status: inventory.StatusPending,
	}
	assert.Error(t, r.SaveBooking(ctx, sm2, b2))

	require.NoError(t, r.SaveCancellation(ctx, loaded, b.ID))
	got, err = r.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusCanceled, got.Status)

	loaded, err = r.LoadSeatMap(ctx, busID)
	require.NoError(t, err)
	assert.True(t, loaded.FullyAvailable())
}
