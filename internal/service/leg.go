package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
	"github.com/pkordes/flight-tracks/backend/internal/repo"
)

// LegService implements business logic for flight legs.
// Every stored leg owns exactly one elementary track, so creating and
// withdrawing a leg goes through the TrackService.
type LegService struct {
	legs   repo.LegRepo
	cities repo.CityRepo
	tracks *TrackService
	log    *slog.Logger
}

// NewLegService constructs a LegService backed by the provided repos.
func NewLegService(legs repo.LegRepo, cities repo.CityRepo, tracks *TrackService, log *slog.Logger) *LegService {
	if log == nil {
		log = slog.Default()
	}
	return &LegService{legs: legs, cities: cities, tracks: tracks, log: log}
}

// Create validates and stores a leg, then creates its elementary track, which
// in turn composes every itinerary the new leg makes possible.
//
// Returns domain.ErrValidation for invalid input. If the leg and its track
// were stored but composition failed, both are returned with the error.
func (s *LegService) Create(ctx context.Context, leg domain.Leg) (domain.Leg, domain.Track, error) {
	leg.Origin = domain.NormalizeCityCode(leg.Origin)
	leg.Destination = domain.NormalizeCityCode(leg.Destination)
	if err := s.validateLeg(ctx, leg); err != nil {
		return domain.Leg{}, domain.Track{}, err
	}

	saved, err := s.legs.Create(ctx, leg)
	if err != nil {
		return domain.Leg{}, domain.Track{}, fmt.Errorf("service.LegService.Create: %w", err)
	}

	track, err := s.tracks.CreateForLeg(ctx, saved)
	if err != nil {
		if track.ID != uuid.Nil {
			return saved, track, fmt.Errorf("service.LegService.Create: %w", err)
		}
		// The track never got stored; drop the leg so it does not linger without one.
		if derr := s.legs.Delete(ctx, saved.ID); derr != nil {
			s.log.ErrorContext(ctx, "remove leg after failed track create", "leg", saved.ID, "error", derr)
		}
		return domain.Leg{}, domain.Track{}, fmt.Errorf("service.LegService.Create: %w", err)
	}
	return saved, track, nil
}

// GetByID returns a single leg.
func (s *LegService) GetByID(ctx context.Context, id uuid.UUID) (domain.Leg, error) {
	leg, err := s.legs.GetByID(ctx, id)
	if err != nil {
		return domain.Leg{}, fmt.Errorf("service.LegService.GetByID: %w", err)
	}
	return leg, nil
}

// ListPaged returns one page of legs ordered by departure and the total count.
// Always returns a non-nil slice.
func (s *LegService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Leg, int64, error) {
	legs, total, err := s.legs.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.LegService.ListPaged: %w", err)
	}
	if legs == nil {
		legs = []domain.Leg{}
	}
	return legs, total, nil
}

// Delete withdraws a leg: its elementary track and every composite built on
// it are removed first, then the leg itself. Returns the number of tracks
// removed.
func (s *LegService) Delete(ctx context.Context, id uuid.UUID) (int, error) {
	if _, err := s.legs.GetByID(ctx, id); err != nil {
		return 0, fmt.Errorf("service.LegService.Delete: %w", err)
	}

	removed := 0
	track, err := s.tracks.ForLeg(ctx, id)
	switch {
	case err == nil:
		removed, err = s.tracks.Delete(ctx, track.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return removed, fmt.Errorf("service.LegService.Delete: %w", err)
		}
	case !errors.Is(err, domain.ErrNotFound):
		return 0, fmt.Errorf("service.LegService.Delete: %w", err)
	}

	if err := s.legs.Delete(ctx, id); err != nil {
		return removed, fmt.Errorf("service.LegService.Delete: %w", err)
	}
	return removed, nil
}

// validateLeg enforces the rules a leg must satisfy before it is stored.
//   - Origin and destination are required, distinct, and known cities.
//   - Arrival must be strictly after departure.
//   - Price must not be negative.
func (s *LegService) validateLeg(ctx context.Context, leg domain.Leg) error {
	if leg.Origin == "" || leg.Destination == "" {
		return fmt.Errorf("%w: origin and destination are required", domain.ErrValidation)
	}
	if leg.Origin == leg.Destination {
		return fmt.Errorf("%w: origin and destination must differ", domain.ErrValidation)
	}
	if !leg.Arrival.After(leg.Departure) {
		return fmt.Errorf("%w: arrival must be after departure", domain.ErrValidation)
	}
	if leg.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	for _, code := range []string{leg.Origin, leg.Destination} {
		if _, err := s.cities.GetByCode(ctx, code); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: unknown city %q", domain.ErrValidation, code)
			}
			return fmt.Errorf("service.LegService.Create: %w", err)
		}
	}
	return nil
}
