package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/o.rides/internal/booking"
	"github.com/Simplici0/o.rides/internal/config"
	"github.com/Simplici0/o.rides/internal/db"
	"github.com/Simplici0/o.rides/internal/fare"
	"github.com/Simplici0/o.rides/internal/logger"
	"github.com/Simplici0/o.rides/internal/migrations"
	"github.com/Simplici0/o.rides/internal/seed"
)

type server struct {
	auth     *authService
	bookings *booking.Service
	log      *zap.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.IsDev())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		zlog.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		zlog.Fatal("failed to run database migrations", zap.Error(err))
	}

	loc, err := cfg.Location()
	if err != nil {
		zlog.Fatal("failed to resolve fare timezone", zap.Error(err))
	}
	pricing, err := config.LoadPricing(cfg.RatesFile, loc)
	if err != nil {
		zlog.Fatal("failed to load rate table", zap.Error(err), zap.String("rates_file", cfg.RatesFile))
	}
	calc, err := fare.NewCalculator(pricing)
	if err != nil {
		zlog.Fatal("invalid rate table", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	stats, err := seed.Run(ctx, database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Pricing:       pricing,
	})
	cancel()
	if err != nil {
		zlog.Fatal("failed to seed database", zap.Error(err))
	}
	zlog.Info("seed complete", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))

	srv := &server{
		auth:     newAuthService(database, cfg.SessionSecret),
		bookings: booking.NewService(booking.NewStore(database), calc, zlog),
		log:      zlog,
	}

	addr := ":" + cfg.Port
	zlog.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("fare_timezone", cfg.FareTimezone))
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Get("/rates", s.handleRates)
		r.Post("/quotes", s.handleQuote)
		r.Post("/bookings", s.handleCreateBooking)
		r.Get("/bookings/{id}", s.handleGetBooking)
		r.Get("/bookings/{id}/receipt", s.handleBookingReceipt)
		r.With(s.auth.requireAdmin).Post("/bookings/{id}/complete", s.handleCompleteBooking)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.auth.requireAdmin)
		r.Get("/bookings", s.handleAdminBookings)
	})

	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
