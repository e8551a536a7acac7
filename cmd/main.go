// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/evently-hq/evently/internal/auth"
	"github.com/evently-hq/evently/internal/clock"
	"github.com/evently-hq/evently/internal/config"
	"github.com/evently-hq/evently/internal/database"
	"github.com/evently-hq/evently/internal/handler"
	"github.com/evently-hq/evently/internal/queue"
	"github.com/evently-hq/evently/internal/repository"
	"github.com/evently-hq/evently/internal/service"
	"github.com/evently-hq/evently/migrations"
)

func main() {
	cfg := config.Load()

	// ── 1. Logging ────────────────────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Env == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx := context.Background()

	// ── 2. Connect to PostgreSQL and apply the schema ─────────────────────
	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := migrations.Run(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrations")
	}

	// Optional backends. Both degrade to no-ops when absent.
	rdb := database.NewRedisClient(cfg)

	var publisher *queue.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = queue.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn().Err(err).Msg("amqp unreachable, booking events disabled")
		} else {
			defer publisher.Close()
			log.Info().Str("exchange", cfg.AMQPExchange).Msg("connected to rabbitmq")
		}
	}

	// ── 3. Wire up layers ────────────────────────────────────────────────
	clk := clock.NewSystem()
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	eventRepo := repository.NewEventRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	ledger := repository.NewCapacityLedger(pool)

	authSvc := service.NewAuthService(userRepo, tokens)
	eventSvc := service.NewEventService(eventRepo, bookingRepo, clk)
	bookingSvc := service.NewBookingService(eventRepo, bookingRepo, ledger, publisher, clk)

	authHandler := handler.NewAuthHandler(authSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	adminHandler := handler.NewAdminHandler(eventSvc)

	// ── 4. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS)
	r.Use(chimiddleware.Timeout(cfg.StorageTimeout))

	rateLimit := handler.RateLimit(rdb, cfg.RateLimitPerMinute)

	// Health
	r.Get("/health", handler.HealthCheck)

	// Public routes
	r.Route("/auth", func(r chi.Router) {
		r.Use(rateLimit)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})
	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{id}", eventHandler.GetEvent)
	})

	// Authenticated routes
	r.Route("/bookings", func(r chi.Router) {
		r.Use(handler.Authenticate(tokens))
		r.Use(rateLimit)
		r.Post("/", bookingHandler.CreateBooking)
		r.Get("/my", bookingHandler.ListMyBookings)
		r.Post("/{id}/cancel", bookingHandler.CancelBooking)
	})

	// Admin routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(handler.Authenticate(tokens))
		r.Use(handler.RequireAdmin)
		r.Get("/dashboard", adminHandler.Dashboard)
		r.Post("/events", adminHandler.CreateEvent)
		r.Put("/events/{id}", adminHandler.UpdateEvent)
		r.Delete("/events/{id}", adminHandler.DeleteEvent)
		r.Get("/events/{id}/attendees", adminHandler.ListAttendees)
	})

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
