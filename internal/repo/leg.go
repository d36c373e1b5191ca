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

// LegRepo defines the persistence operations for flight legs.
type LegRepo interface {
	// Create inserts a new leg and returns the persisted record (with
	// DB-generated id and created_at populated).
	Create(ctx context.Context, leg domain.Leg) (domain.Leg, error)

	// GetByID retrieves a single leg. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Leg, error)

	// GetByIDs fetches many legs in one round trip. The result order is
	// unspecified and IDs with no matching leg are simply absent.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Leg, error)

	// ListPaged returns one page of legs ordered by departure and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Leg, int64, error)

	// Delete removes a leg by ID. Returns domain.ErrNotFound if it does not
	// exist and domain.ErrConflict while a track still references it.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgLegRepo is the Postgres implementation of LegRepo.
type pgLegRepo struct {
	db db
}

// NewLegRepo constructs a LegRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewLegRepo(db db) LegRepo {
	return &pgLegRepo{db: db}
}

const legColumns = `id, origin, destination, departure, arrival, price, created_at`

// Create inserts a new leg row and returns the full persisted record.
func (r *pgLegRepo) Create(ctx context.Context, leg domain.Leg) (domain.Leg, error) {
	const q = `
		INSERT INTO legs (origin, destination, departure, arrival, price)
		VALUES (@origin, @destination, @departure, @arrival, @price)
		RETURNING ` + legColumns

	args := pgx.NamedArgs{
		"origin":      leg.Origin,
		"destination": leg.Destination,
		"departure":   leg.Departure,
		"arrival":     leg.Arrival,
		"price":       leg.Price,
	}

	result, err := scanLeg(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Leg{}, fmt.Errorf("repo.LegRepo.Create: %w", mapInsertErr(err))
	}
	return result, nil
}

// GetByID retrieves a leg by primary key.
func (r *pgLegRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Leg, error) {
	const q = `SELECT ` + legColumns + ` FROM legs WHERE id = @id`

	result, err := scanLeg(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Leg{}, fmt.Errorf("repo.LegRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetByIDs uses = ANY so the whole chain resolves in one query.
func (r *pgLegRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Leg, error) {
	const q = `SELECT ` + legColumns + ` FROM legs WHERE id = ANY(@ids::uuid[])`

	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": strs})
	if err != nil {
		return nil, fmt.Errorf("repo.LegRepo.GetByIDs: %w", err)
	}
	legs, err := collect(rows, scanLeg)
	if err != nil {
		return nil, fmt.Errorf("repo.LegRepo.GetByIDs: %w", err)
	}
	return legs, nil
}

// ListPaged returns one page of legs ordered by departure, then id.
func (r *pgLegRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Leg, int64, error) {
	const countQ = `SELECT count(*) FROM legs`
	const q = `
		SELECT ` + legColumns + `
		FROM legs
		ORDER BY departure, id
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.LegRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.LegRepo.ListPaged: %w", err)
	}
	legs, err := collect(rows, scanLeg)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.LegRepo.ListPaged: %w", err)
	}
	return legs, total, nil
}

// Delete removes a leg by primary key.
func (r *pgLegRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM legs WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.LegRepo.Delete: %w", mapDeleteErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.LegRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanLeg maps a single database row into a domain.Leg.
func scanLeg(s scanner) (domain.Leg, error) {
	var (
		l  domain.Leg
		id pgtype.UUID
	)
	err := s.Scan(&id, &l.Origin, &l.Destination, &l.Departure, &l.Arrival, &l.Price, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Leg{}, domain.ErrNotFound
		}
		return domain.Leg{}, err
	}
	l.ID = uuid.UUID(id.Bytes)
	return l, nil
}
