package router

import (
	"github.com/labstack/echo/v4"

	"github.com/swiftroute/bus-seat-reservation/internal/handler"
	"github.com/swiftroute/bus-seat-reservation/internal/middleware"
)

// RegisterBooking registers the booking endpoints. Seat availability is
// public so guests can browse before registering; booking, cancellation
// and history require a CUSTOMER token. The cache middleware is applied
// only to the public availability read.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	if cache != nil {
		e.GET("/v1/buses/:id/seats", h.Availability, cache)
	} else {
		e.GET("/v1/buses/:id/seats", h.Availability)
	}

	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("CUSTOMER"))
	g.POST("/buses/:id/book", h.Book)
	g.POST("/bookings/:id/cancel", h.Cancel)
	g.GET("/bookings/:id", h.GetBooking)
	g.GET("/my-bookings", h.ListBookings)
}
