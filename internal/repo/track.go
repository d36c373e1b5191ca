package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
)

// TrackRepo defines the persistence operations for tracks.
// The composer and the lifecycle service depend on this interface only.
type TrackRepo interface {
	// Create inserts a track whose leg chain is already computed.
	// Returns domain.ErrConflict if a track for the same leg or the same
	// (left, right) pair exists, and domain.ErrNotFound if a referenced leg or
	// component is gone.
	Create(ctx context.Context, track domain.Track) (domain.Track, error)

	// GetByID retrieves a single track. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Track, error)

	// GetByLegID retrieves the elementary track wrapping a leg.
	GetByLegID(ctx context.Context, legID uuid.UUID) (domain.Track, error)

	// Find returns tracks matching every predicate in q, oldest first.
	Find(ctx context.Context, q domain.TrackQuery) ([]domain.Track, error)

	// ListDependents returns the tracks that use id as their left or right component.
	ListDependents(ctx context.Context, id uuid.UUID) ([]domain.Track, error)

	// ListPaged returns one page of tracks matching f and the total count.
	ListPaged(ctx context.Context, f domain.TrackFilter, p domain.PaginationParams) ([]domain.Track, int64, error)

	// Delete removes a single track. Returns domain.ErrNotFound if it does not
	// exist and domain.ErrConflict while a composite still references it.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTrackRepo is the Postgres implementation of TrackRepo.
type pgTrackRepo struct {
	db db
}

// NewTrackRepo constructs a TrackRepo backed by the provided db connection.
func NewTrackRepo(db db) TrackRepo {
	return &pgTrackRepo{db: db}
}

const trackColumns = `id, leg_id, left_id, right_id, origin, destination, departure, arrival, price, transfers, leg_ids, created_at`

// Create inserts a track row. UNIQUE (left_id, right_id) rejects a second
// composite for the same ordered pair, even when two composers race.
func (r *pgTrackRepo) Create(ctx context.Context, t domain.Track) (domain.Track, error) {
	const q = `
		INSERT INTO tracks (leg_id, left_id, right_id, origin, destination, departure, arrival, price, transfers, leg_ids)
		VALUES (@leg_id, @left_id, @right_id, @origin, @destination, @departure, @arrival, @price, @transfers, @leg_ids)
		RETURNING ` + trackColumns

	args := pgx.NamedArgs{
		"leg_id":      t.LegID, // nil becomes NULL
		"left_id":     t.LeftID,
		"right_id":    t.RightID,
		"origin":      t.Origin,
		"destination": t.Destination,
		"departure":   t.Departure,
		"arrival":     t.Arrival,
		"price":       t.Price,
		"transfers":   t.Transfers,
		"leg_ids":     t.Legs.String(),
	}

	result, err := scanTrack(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Track{}, fmt.Errorf("repo.TrackRepo.Create: %w", mapInsertErr(err))
	}
	return result, nil
}

func (r *pgTrackRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Track, error) {
	const q = `SELECT ` + trackColumns + ` FROM tracks WHERE id = @id`

	result, err := scanTrack(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Track{}, fmt.Errorf("repo.TrackRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTrackRepo) GetByLegID(ctx context.Context, legID uuid.UUID) (domain.Track, error) {
	const q = `SELECT ` + trackColumns + ` FROM tracks WHERE leg_id = @leg_id`

	result, err := scanTrack(r.db.QueryRow(ctx, q, pgx.NamedArgs{"leg_id": legID}))
	if err != nil {
		return domain.Track{}, fmt.Errorf("repo.TrackRepo.GetByLegID: %w", err)
	}
	return result, nil
}

// Find builds the WHERE clause from the non-empty predicates. The head and
// tail searches hit tracks_heads_idx and tracks_tails_idx respectively.
func (r *pgTrackRepo) Find(ctx context.Context, tq domain.TrackQuery) ([]domain.Track, error) {
	where := []string{"transfers BETWEEN @min_transfers AND @max_transfers"}
	args := pgx.NamedArgs{
		"min_transfers": tq.Transfers.Min,
		"max_transfers": tq.Transfers.Max,
	}
	if tq.Origin != "" {
		where = append(where, "origin = @origin")
		args["origin"] = tq.Origin
	}
	if tq.Destination != "" {
		where = append(where, "destination = @destination")
		args["destination"] = tq.Destination
	}
	if tq.Departure != nil {
		where = append(where, "departure BETWEEN @departure_from AND @departure_to")
		args["departure_from"] = tq.Departure.From
		args["departure_to"] = tq.Departure.To
	}
	if tq.Arrival != nil {
		where = append(where, "arrival BETWEEN @arrival_from AND @arrival_to")
		args["arrival_from"] = tq.Arrival.From
		args["arrival_to"] = tq.Arrival.To
	}

	q := `SELECT ` + trackColumns + ` FROM tracks WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at, id`
	if tq.Limit > 0 {
		q += ` LIMIT @limit`
		args["limit"] = tq.Limit
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.TrackRepo.Find: %w", err)
	}
	tracks, err := collect(rows, scanTrack)
	if err != nil {
		return nil, fmt.Errorf("repo.TrackRepo.Find: %w", err)
	}
	return tracks, nil
}

func (r *pgTrackRepo) ListDependents(ctx context.Context, id uuid.UUID) ([]domain.Track, error) {
	const q = `
		SELECT ` + trackColumns + `
		FROM tracks
		WHERE left_id = @id OR right_id = @id
		ORDER BY transfers DESC, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("repo.TrackRepo.ListDependents: %w", err)
	}
	tracks, err := collect(rows, scanTrack)
	if err != nil {
		return nil, fmt.Errorf("repo.TrackRepo.ListDependents: %w", err)
	}
	return tracks, nil
}

// ListPaged returns tracks ordered by departure, then price.
func (r *pgTrackRepo) ListPaged(ctx context.Context, f domain.TrackFilter, p domain.PaginationParams) ([]domain.Track, int64, error) {
	where := []string{"TRUE"}
	args := pgx.NamedArgs{}
	if f.Origin != "" {
		where = append(where, "origin = @origin")
		args["origin"] = f.Origin
	}
	if f.Destination != "" {
		where = append(where, "destination = @destination")
		args["destination"] = f.Destination
	}
	if f.MaxTransfers >= 0 {
		where = append(where, "transfers <= @max_transfers")
		args["max_transfers"] = f.MaxTransfers
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM tracks WHERE `+cond, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TrackRepo.ListPaged: count: %w", err)
	}

	args["limit"] = p.Limit
	args["offset"] = p.Offset()
	q := `SELECT ` + trackColumns + ` FROM tracks WHERE ` + cond +
		` ORDER BY departure, price, id LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TrackRepo.ListPaged: %w", err)
	}
	tracks, err := collect(rows, scanTrack)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TrackRepo.ListPaged: %w", err)
	}
	return tracks, total, nil
}

// Delete removes one track. The RESTRICT foreign keys on left_id/right_id make
// deleting a still-referenced component fail instead of leaving a dangling
// composite.
func (r *pgTrackRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM tracks WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TrackRepo.Delete: %w", mapDeleteErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TrackRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanTrack maps a single database row into a domain.Track, converting the
// nullable reference columns and decoding the leg chain.
func scanTrack(s scanner) (domain.Track, error) {
	var (
		t               domain.Track
		id, legID       pgtype.UUID
		leftID, rightID pgtype.UUID
		chain           string
	)

	err := s.Scan(&id, &legID, &leftID, &rightID, &t.Origin, &t.Destination,
		&t.Departure, &t.Arrival, &t.Price, &t.Transfers, &chain, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Track{}, domain.ErrNotFound
		}
		return domain.Track{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.LegID = nullableUUID(legID)
	t.LeftID = nullableUUID(leftID)
	t.RightID = nullableUUID(rightID)

	t.Legs, err = domain.ParseLegChain(chain)
	if err != nil {
		return domain.Track{}, fmt.Errorf("track %s: %w", t.ID, err)
	}
	return t, nil
}

func nullableUUID(v pgtype.UUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := uuid.UUID(v.Bytes)
	return &id
}
