package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pkordes/flight-tracks/backend/internal/config"
	"github.com/pkordes/flight-tracks/backend/internal/domain"
	"github.com/pkordes/flight-tracks/backend/internal/repo"
	"github.com/pkordes/flight-tracks/backend/internal/service"
)

// Seed is the YAML seed file layout.
type Seed struct {
	Cities []SeedCity `yaml:"cities"`
	Legs   []SeedLeg  `yaml:"legs"`
}

// SeedCity is one entry under cities:.
type SeedCity struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// SeedLeg is one entry under legs:. Times are RFC 3339.
type SeedLeg struct {
	Origin      string    `yaml:"origin"`
	Destination string    `yaml:"destination"`
	Departure   time.Time `yaml:"departure"`
	Arrival     time.Time `yaml:"arrival"`
	Price       int64     `yaml:"price"`
}

// Stats reports what Apply stored.
type Stats struct {
	Cities int
	Legs   int
	Tracks int
}

// LoadSeed reads and decodes a seed file. Unknown keys are rejected.
func LoadSeed(path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()

	var s Seed
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Seed{}, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return s, nil
}

// Apply stores the seed's cities, then its legs in file order, through the
// same services and composition settings the API uses. Tracks counts every
// track stored, elementary and composite.
func Apply(ctx context.Context, s Seed, cities repo.CityRepo, legs repo.LegRepo, tracks repo.TrackRepo, comp config.Composition, log *slog.Logger) (Stats, error) {
	composer := service.NewComposer(tracks, comp.Rules, service.ComposerOptions{
		Workers:       comp.Workers,
		MaxCandidates: comp.MaxCandidates,
	}, log)
	trackSvc := service.NewTrackService(tracks, legs, composer, log)
	legSvc := service.NewLegService(legs, cities, trackSvc, log)
	citySvc := service.NewCityService(cities)

	var stats Stats
	for _, c := range s.Cities {
		if _, err := citySvc.Upsert(ctx, c.Code, c.Name); err != nil {
			return stats, fmt.Errorf("city %q: %w", c.Code, err)
		}
		stats.Cities++
	}

	for i, l := range s.Legs {
		_, _, err := legSvc.Create(ctx, domain.Leg{
			Origin:      l.Origin,
			Destination: l.Destination,
			Departure:   l.Departure,
			Arrival:     l.Arrival,
			Price:       l.Price,
		})
		if err != nil {
			return stats, fmt.Errorf("leg %d (%s→%s): %w", i, l.Origin, l.Destination, err)
		}
		stats.Legs++
	}

	_, total, err := trackSvc.ListPaged(ctx, domain.TrackFilter{MaxTransfers: -1}, domain.PaginationParams{Page: 1, Limit: 1})
	if err != nil {
		return stats, err
	}
	stats.Tracks = int(total)
	return stats, nil
}
