// Package main is the entry point for the flight tracks API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/flight-tracks/backend/internal/config"
	"github.com/pkordes/flight-tracks/backend/internal/handler"
	"github.com/pkordes/flight-tracks/backend/internal/middleware"
	"github.com/pkordes/flight-tracks/backend/internal/repo"
	"github.com/pkordes/flight-tracks/backend/internal/service"
	"github.com/pkordes/flight-tracks/backend/migrations"
)

// repos groups the three repositories of whichever backend is selected.
type repos struct {
	cities repo.CityRepo
	legs   repo.LegRepo
	tracks repo.TrackRepo
}

func main() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Storage ----------------------------------------------------------
	var rs repos
	switch cfg.Storage {
	case config.StorageMemory:
		store := repo.NewMemoryStore()
		rs = repos{cities: store.Cities(), legs: store.Legs(), tracks: store.Tracks()}
		slog.Warn("using in-memory storage; data is lost on exit")
	default:
		pool, err := openPool(cfg)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		slog.Info("database connection established")

		if cfg.MigrateOnStart {
			// goose needs a *sql.DB; this one shares the pool's connections.
			db := stdlib.OpenDBFromPool(pool)
			err := migrations.Up(context.Background(), db, logger)
			db.Close()
			if err != nil {
				slog.Error("failed to apply migrations", "error", err)
				os.Exit(1)
			}
		}
		rs = repos{cities: repo.NewCityRepo(pool), legs: repo.NewLegRepo(pool), tracks: repo.NewTrackRepo(pool)}
	}

	// --- Services ---------------------------------------------------------
	composer := service.NewComposer(rs.tracks, cfg.Rules(), service.ComposerOptions{
		Workers:       cfg.ComposeWorkers,
		MaxCandidates: cfg.MaxCandidates,
	}, logger)
	trackSvc := service.NewTrackService(rs.tracks, rs.legs, composer, logger)
	legSvc := service.NewLegService(rs.legs, rs.cities, trackSvc, logger)
	citySvc := service.NewCityService(rs.cities)

	slog.Info("transfer rules",
		"min_transfer", cfg.MinTransfer.String(),
		"max_transfer", cfg.MaxTransfer.String(),
		"max_transfers", cfg.MaxTransfers,
		"compose_workers", cfg.ComposeWorkers,
	)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Metrics →
	// Recoverer → CORS → MaxBodySize.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(middleware.NewMetricsHandler())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", handler.NewServer(citySvc, legSvc, trackSvc).Routes())

	// --- HTTP Server ------------------------------------------------------
	// Composition runs inside POST handlers, so writes get a longer budget.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openPool creates the pgx pool and verifies the database is reachable
// before accepting traffic.
func openPool(cfg config.Config) (*pgxpool.Pool, error) {
	// New() does not open connections immediately; the ping does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
