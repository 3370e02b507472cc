package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/swiftroute/bus-seat-reservation/internal/inventory"
	"github.com/swiftroute/bus-seat-reservation/internal/model"
	"github.com/swiftroute/bus-seat-reservation/internal/repository"
)

// BusHandler implements fleet management (ADMIN) and public bus search.
// Request validation lives here, at the boundary: malformed input never
// reaches the inventory engine.
type BusHandler struct {
	Buses     *repository.BusRepo
	Inventory *repository.InventoryRepo
}

// NewBusHandler constructs a BusHandler with the provided repositories.
func NewBusHandler(buses *repository.BusRepo, inv *repository.InventoryRepo) *BusHandler {
	if buses == nil || inv == nil {
		panic("nil repository passed to NewBusHandler")
	}
	return &BusHandler{Buses: buses, Inventory: inv}
}

var (
	busIDPattern     = regexp.MustCompile(`^BUS\d+$`)
	busNumberPattern = regexp.MustCompile(`^[A-Za-z0-9\- ]+$`)
	departurePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
)

type addBusReq struct {
	BusID         string  `json:"bus_id"`
	Name          string  `json:"name"`
	Number        string  `json:"number"`
	Source        string  `json:"source"`
	Destination   string  `json:"destination"`
	TravelDate    string  `json:"travel_date"`    // YYYY-MM-DD
	DepartureTime string  `json:"departure_time"` // HH:mm, 24-hour
	FarePerSeat   float64 `json:"fare_per_seat"`
	TotalSeats    int     `json:"total_seats"` // defaults to 40
}

// AddBus handles POST /v1/buses. It registers a bus and generates its
// full seat layout, every seat available. ADMIN only.
func (h *BusHandler) AddBus(c echo.Context) error {
	var req addBusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.BusID = strings.TrimSpace(req.BusID)
	req.Name = strings.TrimSpace(req.Name)
	req.Number = strings.TrimSpace(req.Number)
	req.Source = strings.TrimSpace(req.Source)
	req.Destination = strings.TrimSpace(req.Destination)

	if !busIDPattern.MatchString(req.BusID) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bus_id must start with BUS followed by numbers"})
	}
	if req.Name == "" || len(req.Name) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must be between 1 and 100 characters"})
	}
	if req.Number == "" || !busNumberPattern.MatchString(req.Number) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number must contain only letters, numbers, spaces or hyphens"})
	}
	if req.Source == "" || req.Destination == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source and destination are required"})
	}
	travelDate, err := time.Parse("2006-01-02", req.TravelDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "travel_date must be in YYYY-MM-DD format"})
	}
	if !departurePattern.MatchString(req.DepartureTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "departure_time must be in HH:mm format"})
	}
	if req.FarePerSeat < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "fare_per_seat must not be negative"})
	}
	if req.TotalSeats == 0 {
		req.TotalSeats = 40
	}
	if req.TotalSeats < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_seats must be at least 1"})
	}

	bus := &model.Bus{
		BusID:         req.BusID,
		Name:          req.Name,
		Number:        req.Number,
		Source:        req.Source,
		Destination:   req.Destination,
		TravelDate:    travelDate,
		DepartureTime: req.DepartureTime,
		FarePerSeat:   req.FarePerSeat,
		TotalSeats:    req.TotalSeats,
	}
	sm, err := h.Inventory.CreateBus(c.Request().Context(), bus)
	if err != nil {
		if errors.Is(err, repository.ErrBusExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "bus already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create bus failed"})
	}
	upper, lower := sm.Available()
	return c.JSON(http.StatusCreated, echo.Map{
		"bus_id":      bus.BusID,
		"name":        bus.Name,
		"source":      bus.Source,
		"destination": bus.Destination,
		"upper_seats": upper,
		"lower_seats": lower,
	})
}

// DeleteBus handles DELETE /v1/buses/:id. Deregistration is permitted
// only when every seat of the bus is available; otherwise it responds
// 409. ADMIN only.
func (h *BusHandler) DeleteBus(c echo.Context) error {
	busID := c.Param("id")
	if busID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bus id"})
	}
	err := h.Inventory.DeleteBus(c.Request().Context(), busID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBusNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		case errors.Is(err, inventory.ErrBusHasBookings):
			return c.JSON(http.StatusConflict, echo.Map{"error": "bus has outstanding bookings"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBusBookings handles GET /v1/buses/:id/bookings. It returns the
// full ledger for one bus, canceled entries included. ADMIN only.
func (h *BusHandler) ListBusBookings(c echo.Context) error {
	busID := c.Param("id")
	if busID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bus id"})
	}
	if _, err := h.Buses.GetByBusID(c.Request().Context(), busID); err != nil {
		if errors.Is(err, repository.ErrBusNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	bookings, err := h.Inventory.ListBookingsByBus(c.Request().Context(), busID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bus_id": busID, "items": bookings})
}

// SearchBuses handles GET /v1/search/buses?source=&destination=&date=.
// It is public: guests can browse routes before registering. The date
// parameter is optional.
func (h *BusHandler) SearchBuses(c echo.Context) error {
	source := strings.TrimSpace(c.QueryParam("source"))
	destination := strings.TrimSpace(c.QueryParam("destination"))
	if source == "" || destination == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source and destination are required"})
	}
	var travelDate *time.Time
	if d := strings.TrimSpace(c.QueryParam("date")); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be in YYYY-MM-DD format"})
		}
		travelDate = &t
	}
	buses, err := h.Buses.Search(c.Request().Context(), source, destination, travelDate)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items := make([]echo.Map, 0, len(buses))
	for _, b := range buses {
		items = append(items, echo.Map{
			"bus_id":         b.BusID,
			"name":           b.Name,
			"number":         b.Number,
			"source":         b.Source,
			"destination":    b.Destination,
			"travel_date":    b.TravelDate.UTC().Format("2006-01-02"),
			"departure_time": b.DepartureTime,
			"fare_per_seat":  b.FarePerSeat,
			"total_seats":    b.TotalSeats,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(items), "items": items})
}
