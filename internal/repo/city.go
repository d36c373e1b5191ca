package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
)

// CityRepo defines the persistence operations for the city directory.
type CityRepo interface {
	// Upsert inserts a city by code, or returns the existing city if the code
	// is already present. The name of the first writer is preserved.
	Upsert(ctx context.Context, code, name string) (domain.City, error)

	// GetByCode retrieves a single city. Returns domain.ErrNotFound if absent.
	GetByCode(ctx context.Context, code string) (domain.City, error)

	// List returns all cities whose code starts with prefix, ordered by code.
	// If prefix is empty, all cities are returned.
	List(ctx context.Context, prefix string) ([]domain.City, error)
}

// pgCityRepo is the Postgres implementation of CityRepo.
type pgCityRepo struct {
	db db
}

// NewCityRepo constructs a CityRepo backed by the provided db connection.
func NewCityRepo(db db) CityRepo {
	return &pgCityRepo{db: db}
}

// Upsert inserts a city or returns the existing row on code conflict.
// DO UPDATE SET is a no-op that makes RETURNING fire on conflict too.
func (r *pgCityRepo) Upsert(ctx context.Context, code, name string) (domain.City, error) {
	const q = `
		INSERT INTO cities (code, name)
		VALUES (@code, @name)
		ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
		RETURNING id, code, name, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"code": code, "name": name})
	result, err := scanCity(row)
	if err != nil {
		return domain.City{}, fmt.Errorf("repo.CityRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgCityRepo) GetByCode(ctx context.Context, code string) (domain.City, error) {
	const q = `
		SELECT id, code, name, created_at
		FROM cities
		WHERE code = @code`

	result, err := scanCity(r.db.QueryRow(ctx, q, pgx.NamedArgs{"code": code}))
	if err != nil {
		return domain.City{}, fmt.Errorf("repo.CityRepo.GetByCode: %w", err)
	}
	return result, nil
}

func (r *pgCityRepo) List(ctx context.Context, prefix string) ([]domain.City, error) {
	const q = `
		SELECT id, code, name, created_at
		FROM cities
		WHERE code LIKE @prefix || '%'
		ORDER BY code`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"prefix": prefix})
	if err != nil {
		return nil, fmt.Errorf("repo.CityRepo.List: %w", err)
	}
	cities, err := collect(rows, scanCity)
	if err != nil {
		return nil, fmt.Errorf("repo.CityRepo.List: %w", err)
	}
	return cities, nil
}

// scanCity maps a single database row into a domain.City.
func scanCity(s scanner) (domain.City, error) {
	var (
		c  domain.City
		id pgtype.UUID
	)
	if err := s.Scan(&id, &c.Code, &c.Name, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.City{}, domain.ErrNotFound
		}
		return domain.City{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	return c, nil
}
