package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/swiftroute/bus-seat-reservation/internal/config"
	"github.com/swiftroute/bus-seat-reservation/internal/database"
	"github.com/swiftroute/bus-seat-reservation/internal/handler"
	"github.com/swiftroute/bus-seat-reservation/internal/inventory"
	"github.com/swiftroute/bus-seat-reservation/internal/middleware"
	"github.com/swiftroute/bus-seat-reservation/internal/queue"
	"github.com/swiftroute/bus-seat-reservation/internal/repository"
	"github.com/swiftroute/bus-seat-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the public-read cache. A nil client
	// disables both without failing startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	buses := repository.NewBusRepo(db)
	inv := repository.NewInventoryRepo(db)

	alloc := inventory.NewAllocator(inv)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	bookingH := handler.NewBookingHandler(alloc, buses, inv, cfg.BookTimeout)
	busH := handler.NewBusHandler(buses, inv)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterBooking(e, bookingH, cfg.JWTSecret, cache)
	router.RegisterBus(e, busH, cfg.JWTSecret, cache)

	// Background consumer appends confirmed bookings to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
