package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/flight-seat-booking/internal/config"
	"github.com/iliyamo/flight-seat-booking/internal/database"
	"github.com/iliyamo/flight-seat-booking/internal/handler"
	"github.com/iliyamo/flight-seat-booking/internal/logger"
	"github.com/iliyamo/flight-seat-booking/internal/middleware"
	"github.com/iliyamo/flight-seat-booking/internal/payment"
	"github.com/iliyamo/flight-seat-booking/internal/promo"
	"github.com/iliyamo/flight-seat-booking/internal/queue"
	"github.com/iliyamo/flight-seat-booking/internal/repository"
	"github.com/iliyamo/flight-seat-booking/internal/router"
	"github.com/iliyamo/flight-seat-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load() // Load environment config
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
	log.Info("stopped")
}

// run wires the server and blocks until SIGINT or SIGTERM.
func run(cfg config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("database unavailable: %w", err)
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info("schema applied")
	}

	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	var sessions service.SessionStore
	if err != nil {
		log.Warn("redis unavailable; rate limiting and caching disabled, seat sessions kept in memory", "err", err)
		sessions = service.NewMemorySessionStore(cfg.SeatSessionTTL)
	} else {
		defer rdb.Close()
		sessions = service.NewRedisSessionStore(rdb, cfg.SeatSessionTTL)
	}

	rules, err := promo.LoadRules(cfg.PromoRulesFile)
	if err != nil {
		return fmt.Errorf("promo rules: %w", err)
	}
	promoEngine, err := promo.NewEngine(rules)
	if err != nil {
		return fmt.Errorf("promo rules: %w", err)
	}

	if cfg.QueueConsumer {
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.BookingLogPath, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("booking consumer stopped", "err", err)
			}
		}()
	}

	flights := repository.NewFlightRepo(db)
	airports := repository.NewAirportRepo(db)
	passengers := repository.NewPassengerRepo(db)
	bookings := repository.NewBookingRepo(db)
	seats := service.NewSeatSelectionService(sessions, flights, cfg.DefaultSeats, log)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSAllowOrigin,
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, middleware.HeaderUserID},
	}))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e, router.Handlers{
		Ready:         &handler.ReadyHandler{DB: db, Redis: rdb},
		Flights:       handler.NewFlightHandler(flights, airports, seats, log),
		SeatSelection: handler.NewSeatSelectionHandler(seats, log),
		Bookings: handler.NewBookingHandler(bookings, flights, passengers, seats, promoEngine,
			payment.NewProcessor(cfg.PaymentDelay, cfg.BcryptCost),
			service.NewPublisher(cfg.RabbitURL, log),
			handler.TicketConfig{Secret: cfg.TicketSecret, TTL: cfg.TicketTTL}, log),
		Passengers: handler.NewPassengerHandler(passengers, log),
	}) // Register application routes

	addr := ":" + cfg.Port // Address string with port
	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
