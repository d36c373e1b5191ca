package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
	"github.com/pkordes/flight-tracks/backend/internal/repo"
)

// cityCodePattern accepts IATA/ICAO-style codes and short internal ids.
var cityCodePattern = regexp.MustCompile(`^[A-Z0-9]{2,8}$`)

// CityService implements business logic for the city directory.
// Its main job is code normalization: a city's identity is its upper-case code.
type CityService struct {
	cities repo.CityRepo
}

// NewCityService constructs a CityService backed by the provided CityRepo.
func NewCityService(cities repo.CityRepo) *CityService {
	return &CityService{cities: cities}
}

// Upsert normalizes code and stores the city, or returns the existing one.
// An empty name defaults to the code.
// Returns domain.ErrValidation if the code is malformed.
func (s *CityService) Upsert(ctx context.Context, code, name string) (domain.City, error) {
	code = domain.NormalizeCityCode(code)
	if !cityCodePattern.MatchString(code) {
		return domain.City{}, fmt.Errorf("%w: city code must be 2-8 letters or digits", domain.ErrValidation)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = code
	}

	c, err := s.cities.Upsert(ctx, code, name)
	if err != nil {
		return domain.City{}, fmt.Errorf("service.CityService.Upsert: %w", err)
	}
	return c, nil
}

// List returns cities whose code starts with prefix (case-insensitive).
func (s *CityService) List(ctx context.Context, prefix string) ([]domain.City, error) {
	cities, err := s.cities.List(ctx, domain.NormalizeCityCode(prefix))
	if err != nil {
		return nil, fmt.Errorf("service.CityService.List: %w", err)
	}
	if cities == nil {
		return []domain.City{}, nil
	}
	return cities, nil
}
