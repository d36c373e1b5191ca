// Package service contains the business logic for the flight tracks API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
	"github.com/pkordes/flight-tracks/backend/internal/metrics"
	"github.com/pkordes/flight-tracks/backend/internal/repo"
)

// maxCascadeAttempts bounds how often Delete re-walks the dependents when a
// composite referencing the cascade appears while it runs.
const maxCascadeAttempts = 3

// TrackService manages the track lifecycle: computing the leg chain before a
// track is stored, composing after it is stored, and cascading deletes.
type TrackService struct {
	tracks   repo.TrackRepo
	legs     repo.LegRepo
	composer *Composer
	log      *slog.Logger
}

// NewTrackService constructs a TrackService. The composer must share the
// same TrackRepo.
func NewTrackService(tracks repo.TrackRepo, legs repo.LegRepo, composer *Composer, log *slog.Logger) *TrackService {
	if log == nil {
		log = slog.Default()
	}
	return &TrackService{tracks: tracks, legs: legs, composer: composer, log: log}
}

// CreateForLeg stores the elementary track for leg and composes from it.
//
// If the track was stored but composition failed, the stored track is
// returned together with the error.
func (s *TrackService) CreateForLeg(ctx context.Context, leg domain.Leg) (domain.Track, error) {
	t, err := s.create(ctx, domain.ElementaryTrack(leg))
	if err != nil {
		return t, fmt.Errorf("service.TrackService.CreateForLeg: %w", err)
	}
	return t, nil
}

// CreateComposite joins two stored tracks, stores the composite and composes
// from it. Returns domain.ErrInvariant if the pair cannot be joined and
// domain.ErrConflict if it already exists.
func (s *TrackService) CreateComposite(ctx context.Context, leftID, rightID uuid.UUID) (domain.Track, error) {
	left, err := s.tracks.GetByID(ctx, leftID)
	if err != nil {
		return domain.Track{}, fmt.Errorf("service.TrackService.CreateComposite: left: %w", err)
	}
	right, err := s.tracks.GetByID(ctx, rightID)
	if err != nil {
		return domain.Track{}, fmt.Errorf("service.TrackService.CreateComposite: right: %w", err)
	}

	composite, err := domain.Join(s.composer.Rules(), left, right)
	if err != nil {
		return domain.Track{}, fmt.Errorf("service.TrackService.CreateComposite: %w", err)
	}
	t, err := s.create(ctx, composite)
	if err != nil {
		return t, fmt.Errorf("service.TrackService.CreateComposite: %w", err)
	}
	return t, nil
}

// create stores t, whose chain is already set, then runs the composer.
func (s *TrackService) create(ctx context.Context, t domain.Track) (domain.Track, error) {
	if err := t.Validate(); err != nil {
		return domain.Track{}, err
	}
	saved, err := s.tracks.Create(ctx, t)
	if err != nil {
		return domain.Track{}, err
	}

	// Once saved is durable nothing else expands it, so the search outlives
	// a cancelled caller.
	ctx = context.WithoutCancel(ctx)
	composed, err := s.composer.Compose(ctx, saved)
	if err != nil {
		s.log.ErrorContext(ctx, "composition incomplete", "track", saved.ID, "composed", len(composed), "error", err)
		return saved, fmt.Errorf("compose from %s: %w", saved.ID, err)
	}
	s.log.InfoContext(ctx, "track created", "track", saved.ID, "transfers", saved.Transfers, "composed", len(composed))
	return saved, nil
}

// GetByID returns a single track.
func (s *TrackService) GetByID(ctx context.Context, id uuid.UUID) (domain.Track, error) {
	t, err := s.tracks.GetByID(ctx, id)
	if err != nil {
		return domain.Track{}, fmt.Errorf("service.TrackService.GetByID: %w", err)
	}
	return t, nil
}

// ForLeg returns the elementary track wrapping legID.
func (s *TrackService) ForLeg(ctx context.Context, legID uuid.UUID) (domain.Track, error) {
	t, err := s.tracks.GetByLegID(ctx, legID)
	if err != nil {
		return domain.Track{}, fmt.Errorf("service.TrackService.ForLeg: %w", err)
	}
	return t, nil
}

// ListPaged returns one page of tracks matching f and the total count.
// Always returns a non-nil slice.
func (s *TrackService) ListPaged(ctx context.Context, f domain.TrackFilter, p domain.PaginationParams) ([]domain.Track, int64, error) {
	tracks, total, err := s.tracks.ListPaged(ctx, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TrackService.ListPaged: %w", err)
	}
	if tracks == nil {
		tracks = []domain.Track{}
	}
	return tracks, total, nil
}

// LegsOf resolves a track's leg chain to legs in travel order, using one
// batched lookup. Returns domain.ErrMissingLeg if the chain is corrupt.
func (s *TrackService) LegsOf(ctx context.Context, id uuid.UUID) ([]domain.Leg, error) {
	t, err := s.tracks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.TrackService.LegsOf: %w", err)
	}
	legs, err := s.legs.GetByIDs(ctx, t.Legs)
	if err != nil {
		return nil, fmt.Errorf("service.TrackService.LegsOf: %w", err)
	}
	ordered, err := t.Legs.Order(legs)
	if err != nil {
		s.log.ErrorContext(ctx, "leg chain references a missing leg", "track", id, "error", err)
		return nil, fmt.Errorf("service.TrackService.LegsOf: %w", err)
	}
	return ordered, nil
}

// Delete removes a track and every composite that depends on it, directly or
// transitively, and returns how many tracks were removed.
//
// Dependents are deleted before the tracks they were built from, so at no
// point does a stored composite reference a deleted component.
func (s *TrackService) Delete(ctx context.Context, id uuid.UUID) (int, error) {
	if _, err := s.tracks.GetByID(ctx, id); err != nil {
		return 0, fmt.Errorf("service.TrackService.Delete: %w", err)
	}

	removed := 0
	for attempt := 1; ; attempt++ {
		order, err := s.cascadeOrder(ctx, id)
		if err != nil {
			return removed, fmt.Errorf("service.TrackService.Delete: dependents: %w", err)
		}

		n, err := s.deleteAll(ctx, id, order)
		removed += n
		if err == nil {
			s.log.InfoContext(ctx, "track deleted", "track", id, "removed", removed)
			return removed, nil
		}
		if !errors.Is(err, domain.ErrConflict) || attempt == maxCascadeAttempts {
			return removed, fmt.Errorf("service.TrackService.Delete: %w", err)
		}
		s.log.WarnContext(ctx, "new composite appeared during cascade; retrying", "track", id, "attempt", attempt)
	}
}

// cascadeOrder walks the reverse-dependency graph from root and returns the
// reachable tracks in post-order: every track comes after all of its dependents.
func (s *TrackService) cascadeOrder(ctx context.Context, root uuid.UUID) ([]uuid.UUID, error) {
	var (
		order   []uuid.UUID
		visited = map[uuid.UUID]bool{}
		visit   func(id uuid.UUID) error
	)
	visit = func(id uuid.UUID) error {
		if visited[id] {
			return nil
		}
		visited[id] = true

		deps, err := s.tracks.ListDependents(ctx, id)
		if err != nil {
			return err
		}
		for _, d := range deps {
			if err := visit(d.ID); err != nil {
				return err
			}
		}
		order = append(order, id)
		return nil
	}
	if err := visit(root); err != nil {
		return nil, err
	}
	return order, nil
}

// deleteAll deletes the tracks in order. Tracks already removed by a
// concurrent cascade are skipped.
func (s *TrackService) deleteAll(ctx context.Context, root uuid.UUID, order []uuid.UUID) (int, error) {
	removed := 0
	for _, id := range order {
		err := s.tracks.Delete(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, err
		}
		removed++

		reason := "cascade"
		if id == root {
			reason = "direct"
		}
		metrics.TracksDeleted.WithLabelValues(reason).Inc()
	}
	return removed, nil
}
