package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/swiftroute/bus-seat-reservation/internal/inventory"
	"github.com/swiftroute/bus-seat-reservation/internal/queue"
	"github.com/swiftroute/bus-seat-reservation/internal/repository"
	queuepublisher "github.com/swiftroute/bus-seat-reservation/internal/service"
)

// BookingHandler exposes the booking engine over HTTP: booking,
// cancellation, availability and booking history. All methods assume
// JWT authentication and role checks have been performed by middleware.
// The fare lookup happens here, before the allocator takes the per-bus
// exclusive scope, so unrelated I/O never stalls other requests for the
// same bus.
type BookingHandler struct {
	Allocator   *inventory.Allocator
	Buses       *repository.BusRepo
	Inventory   *repository.InventoryRepo
	BookTimeout time.Duration // deadline for one claim+persist cycle
}

// NewBookingHandler constructs a BookingHandler. All dependencies must
// be non-nil.
func NewBookingHandler(alloc *inventory.Allocator, buses *repository.BusRepo, inv *repository.InventoryRepo, bookTimeout time.Duration) *BookingHandler {
	if alloc == nil || buses == nil || inv == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Allocator: alloc, Buses: buses, Inventory: inv, BookTimeout: bookTimeout}
}

// Book handles POST /v1/buses/:id/book. The request body carries a
// "seats" array of 1 to 5 seat labels. The whole request succeeds or
// fails: on conflict the response lists every unavailable seat and no
// seat from the request is booked.
func (h *BookingHandler) Book(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	busID := c.Param("id")
	if busID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bus id"})
	}
	var body struct {
		Seats []string `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.BookTimeout)
	defer cancel()

	// Fare lookup is deliberately outside the allocator's exclusive
	// scope.
	bus, err := h.Buses.GetByBusID(ctx, busID)
	if err != nil {
		if err == repository.ErrBusNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	booking, err := h.Allocator.Book(ctx, inventory.BookingRequest{
		BusID:       busID,
		UserID:      userID,
		Seats:       body.Seats,
		FarePerSeat: bus.FarePerSeat,
	})
	if err != nil {
		return bookingError(c, err)
	}

	// Publish the confirmed booking for downstream consumers. Failures
	// are logged and ignored; the booking is already durable.
	event := queue.BookingConfirmedEvent{
		BookingID:   booking.ID,
		BusID:       bus.BusID,
		BusName:     bus.Name,
		Source:      bus.Source,
		Destination: bus.Destination,
		TravelDate:  bus.TravelDate.UTC().Format("2006-01-02"),
		UserID:      booking.UserID,
		Seats:       booking.Seats,
		TotalFare:   booking.TotalFare,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pubCancel()
		if err := queuepublisher.PublishBookingConfirmed(pubCtx, event); err != nil {
			log.Printf("booking: publish confirmed event failed: %v", err)
		}
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id": booking.ID,
		"seats":      booking.Seats,
		"total_fare": booking.TotalFare,
		"status":     booking.Status,
	})
}

// Cancel handles POST /v1/bookings/:id/cancel. Cancellation is a status
// transition; the ledger entry is kept and the seats return to their
// pools atomically.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID := c.Param("id")
	if bookingID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.BookTimeout)
	defer cancel()

	// Only the booking's owner may cancel it.
	b, err := h.Inventory.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, inventory.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if b.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Allocator.Cancel(ctx, bookingID); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": inventory.StatusCanceled})
}

// Availability handles GET /v1/buses/:id/seats. It is public and
// returns the available seat labels grouped by deck.
func (h *BookingHandler) Availability(c echo.Context) error {
	busID := c.Param("id")
	if busID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bus id"})
	}
	upper, lower, err := h.Allocator.Availability(c.Request().Context(), busID)
	if err != nil {
		if errors.Is(err, inventory.ErrBusNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"bus_id":      busID,
		"upper_seats": upper,
		"lower_seats": lower,
	})
}

// ListBookings handles GET /v1/my-bookings and returns the caller's
// booking history, newest first.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Inventory.ListBookingsByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": bookings})
}

// GetBooking handles GET /v1/bookings/:id for the booking's owner.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID := c.Param("id")
	b, err := h.Inventory.GetBooking(c.Request().Context(), bookingID)
	if err != nil {
		if errors.Is(err, inventory.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if b.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// bookingError maps allocator errors onto HTTP responses. Conflict
// responses name every seat involved, not just the first.
func bookingError(c echo.Context, err error) error {
	var unknown *inventory.UnknownSeatError
	var unavailable *inventory.SeatsUnavailableError
	var persistence *inventory.PersistenceError
	switch {
	case errors.Is(err, inventory.ErrTooManySeats):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "a booking must request between 1 and 5 seats"})
	case errors.Is(err, inventory.ErrDuplicateSeat):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate seat in request"})
	case errors.As(err, &unknown):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown seats", "unknown": unknown.Seats})
	case errors.Is(err, inventory.ErrBusNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
	case errors.Is(err, inventory.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.As(err, &unavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "some seats are unavailable", "unavailable": unavailable.Seats})
	case errors.Is(err, inventory.ErrAlreadyCanceled):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already canceled"})
	case errors.Is(err, inventory.ErrTimeout):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "booking timed out, no seats were taken"})
	case errors.As(err, &persistence):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking could not be persisted"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
