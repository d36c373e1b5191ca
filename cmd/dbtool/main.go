// Command dbtool applies the database migrations and seeds cities and legs
// from a YAML file. Legs are created through the services, so every track
// the seeded legs make possible is composed as part of the seed.
//
// Usage:
//
//	dbtool [--database-url URL] [--file seed.yaml] [--migrate-only] [--dry-run]
//
// --dry-run seeds an in-memory store instead of Postgres and prints what
// would have been composed.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/pkordes/flight-tracks/backend/internal/config"
	"github.com/pkordes/flight-tracks/backend/internal/repo"
	"github.com/pkordes/flight-tracks/backend/migrations"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	var (
		databaseURL string
		seedFile    string
		migrateOnly bool
		dryRun      bool
		verbose     bool
	)
	flagSet := pflag.NewFlagSet("dbtool", pflag.ContinueOnError)
	flagSet.StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string (default $DATABASE_URL)")
	flagSet.StringVarP(&seedFile, "file", "f", "", "YAML seed file with cities and legs")
	flagSet.BoolVar(&migrateOnly, "migrate-only", false, "apply migrations and exit")
	flagSet.BoolVar(&dryRun, "dry-run", false, "seed an in-memory store instead of the database")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if migrateOnly && dryRun {
		return errors.New("--migrate-only and --dry-run are mutually exclusive")
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var seed Seed
	if seedFile != "" {
		var err error
		if seed, err = LoadSeed(seedFile); err != nil {
			return err
		}
	}
	comp, err := config.LoadComposition()
	if err != nil {
		return err
	}

	if dryRun {
		store := repo.NewMemoryStore()
		stats, err := Apply(ctx, seed, store.Cities(), store.Legs(), store.Tracks(), comp, logger)
		if err != nil {
			return err
		}
		fmt.Printf("dry run: %d cities, %d legs, %d tracks\n", stats.Cities, stats.Legs, stats.Tracks)
		return nil
	}

	if databaseURL == "" {
		return errors.New("--database-url or DATABASE_URL is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("open pool: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if err := migrations.Up(ctx, db, logger); err != nil {
		return err
	}
	if migrateOnly || seedFile == "" {
		logger.Info("migrations complete")
		return nil
	}

	stats, err := Apply(ctx, seed, repo.NewCityRepo(pool), repo.NewLegRepo(pool), repo.NewTrackRepo(pool), comp, logger)
	if err != nil {
		return err
	}
	logger.Info("seed complete", "cities", stats.Cities, "legs", stats.Legs, "tracks", stats.Tracks)
	return nil
}
