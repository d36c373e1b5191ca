// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
)

// Storage backends selectable with STORAGE.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string.
	// Required when Storage is "postgres".
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// Storage selects the repo backend: "postgres" (default) or "memory".
	Storage string

	// MigrateOnStart applies pending goose migrations before serving.
	MigrateOnStart bool

	// MinTransfer and MaxTransfer bound the layover at a join point.
	// Defaults: 30m and 12h.
	MinTransfer time.Duration
	MaxTransfer time.Duration

	// MaxTransfers caps the join points in one track. Defaults to 3.
	MaxTransfers int

	// ComposeWorkers is how many queued tracks one composition run searches
	// concurrently. Defaults to 1.
	ComposeWorkers int

	// MaxCandidates caps the partners returned by one head or tail query.
	// 0 disables the cap. Defaults to 1000.
	MaxCandidates int

	// MaxBodyBytes limits request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// naming the first variable whose value cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Storage:     strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	var missing []string
	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StorageMemory:
	default:
		return Config{}, fmt.Errorf("STORAGE: unknown backend %q (want %s or %s)", cfg.Storage, StoragePostgres, StorageMemory)
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.MigrateOnStart, err = getBool("MIGRATE_ON_START", false); err != nil {
		return Config{}, err
	}
	comp, err := LoadComposition()
	if err != nil {
		return Config{}, err
	}
	cfg.MinTransfer = comp.Rules.MinTransfer
	cfg.MaxTransfer = comp.Rules.MaxTransfer
	cfg.MaxTransfers = comp.Rules.MaxTransfers
	cfg.ComposeWorkers = comp.Workers
	cfg.MaxCandidates = comp.MaxCandidates

	maxBody, err := getInt("MAX_BODY_BYTES", 1<<20, 1)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)

	return cfg, nil
}

// Composition holds the settings every process that composes tracks must
// share: the API server and the seeding tool.
type Composition struct {
	Rules         domain.TransferRules
	Workers       int
	MaxCandidates int
}

// LoadComposition reads the transfer rules and composer limits from
// MIN_TRANSFER_DURATION, MAX_TRANSFER_DURATION, MAX_TRANSFERS_NUMBER,
// COMPOSE_WORKERS and MAX_CANDIDATES. It needs no other variable, so tools
// without a server config can use it.
func LoadComposition() (Composition, error) {
	var (
		c   Composition
		err error
	)
	if c.Rules.MinTransfer, err = getDuration("MIN_TRANSFER_DURATION", domain.DefaultMinTransfer); err != nil {
		return Composition{}, err
	}
	if c.Rules.MaxTransfer, err = getDuration("MAX_TRANSFER_DURATION", domain.DefaultMaxTransfer); err != nil {
		return Composition{}, err
	}
	if c.Rules.MaxTransfers, err = getInt("MAX_TRANSFERS_NUMBER", domain.DefaultMaxTransfers, 0); err != nil {
		return Composition{}, err
	}
	if c.Workers, err = getInt("COMPOSE_WORKERS", 1, 1); err != nil {
		return Composition{}, err
	}
	if c.MaxCandidates, err = getInt("MAX_CANDIDATES", 1000, 0); err != nil {
		return Composition{}, err
	}

	if c.Rules.MinTransfer < 0 {
		return Composition{}, errors.New("MIN_TRANSFER_DURATION: must not be negative")
	}
	if c.Rules.MinTransfer >= c.Rules.MaxTransfer {
		return Composition{}, fmt.Errorf("MIN_TRANSFER_DURATION (%s) must be less than MAX_TRANSFER_DURATION (%s)",
			c.Rules.MinTransfer, c.Rules.MaxTransfer)
	}
	return c, nil
}

// Rules returns the transfer rules the composer runs under.
func (c Config) Rules() domain.TransferRules {
	return domain.TransferRules{
		MinTransfer:  c.MinTransfer,
		MaxTransfer:  c.MaxTransfer,
		MaxTransfers: c.MaxTransfers,
	}
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback, minimum int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	if n < minimum {
		return 0, fmt.Errorf("%s: must be at least %d, got %d", key, minimum, n)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
