package router

import (
	"github.com/labstack/echo/v4"

	"github.com/swiftroute/bus-seat-reservation/internal/handler"
	"github.com/swiftroute/bus-seat-reservation/internal/middleware"
)

// RegisterBus registers fleet management (ADMIN only) and the public
// route search.
func RegisterBus(e *echo.Echo, h *handler.BusHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	if cache != nil {
		e.GET("/v1/search/buses", h.SearchBuses, cache)
	} else {
		e.GET("/v1/search/buses", h.SearchBuses)
	}

	g := e.Group("/v1/buses")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))
	g.POST("", h.AddBus)
	g.DELETE("/:id", h.DeleteBus)
	g.GET("/:id/bookings", h.ListBusBookings)
}
