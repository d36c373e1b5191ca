package repo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
)

// MemoryStore keeps cities, legs and tracks in process memory behind a single
// lock. It enforces the same constraints as the Postgres schema (unique leg
// and component pair, restricted deletes) so services behave identically on
// either backend.
//
// Tracks reference their components by ID only. componentOf is the reverse
// index: for every track, the set of composites that use it as a component.
type MemoryStore struct {
	mu sync.RWMutex

	cities map[string]domain.City
	legs   map[uuid.UUID]domain.Leg
	tracks map[uuid.UUID]memTrack

	trackByLeg  map[uuid.UUID]uuid.UUID
	pairs       map[[2]uuid.UUID]uuid.UUID
	componentOf map[uuid.UUID]map[uuid.UUID]struct{}

	seq uint64
	now func() time.Time
}

type memTrack struct {
	track domain.Track
	seq   uint64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cities:      map[string]domain.City{},
		legs:        map[uuid.UUID]domain.Leg{},
		tracks:      map[uuid.UUID]memTrack{},
		trackByLeg:  map[uuid.UUID]uuid.UUID{},
		pairs:       map[[2]uuid.UUID]uuid.UUID{},
		componentOf: map[uuid.UUID]map[uuid.UUID]struct{}{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Cities returns a CityRepo view of the store.
func (s *MemoryStore) Cities() CityRepo { return memCityRepo{s} }

// Legs returns a LegRepo view of the store.
func (s *MemoryStore) Legs() LegRepo { return memLegRepo{s} }

// Tracks returns a TrackRepo view of the store.
func (s *MemoryStore) Tracks() TrackRepo { return memTrackRepo{s} }

// ---- cities ----------------------------------------------------------------

type memCityRepo struct{ s *MemoryStore }

func (r memCityRepo) Upsert(_ context.Context, code, name string) (domain.City, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c, ok := r.s.cities[code]; ok {
		return c, nil
	}
	c := domain.City{ID: uuid.New(), Code: code, Name: name, CreatedAt: r.s.now()}
	r.s.cities[code] = c
	return c, nil
}

func (r memCityRepo) GetByCode(_ context.Context, code string) (domain.City, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.cities[code]
	if !ok {
		return domain.City{}, fmt.Errorf("repo.CityRepo.GetByCode: %w", domain.ErrNotFound)
	}
	return c, nil
}

func (r memCityRepo) List(_ context.Context, prefix string) ([]domain.City, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.City{}
	for code, c := range r.s.cities {
		if strings.HasPrefix(code, prefix) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// ---- legs ------------------------------------------------------------------

type memLegRepo struct{ s *MemoryStore }

func (r memLegRepo) Create(_ context.Context, leg domain.Leg) (domain.Leg, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, code := range []string{leg.Origin, leg.Destination} {
		if _, ok := r.s.cities[code]; !ok {
			return domain.Leg{}, fmt.Errorf("repo.LegRepo.Create: city %q: %w", code, domain.ErrNotFound)
		}
	}
	leg.ID = uuid.New()
	leg.CreatedAt = r.s.now()
	r.s.legs[leg.ID] = leg
	return leg, nil
}

func (r memLegRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Leg, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.legs[id]
	if !ok {
		return domain.Leg{}, fmt.Errorf("repo.LegRepo.GetByID: %w", domain.ErrNotFound)
	}
	return l, nil
}

func (r memLegRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Leg, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Leg, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if l, ok := r.s.legs[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, l)
		}
	}
	return out, nil
}

func (r memLegRepo) ListPaged(_ context.Context, p domain.PaginationParams) ([]domain.Leg, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]domain.Leg, 0, len(r.s.legs))
	for _, l := range r.s.legs {
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Departure.Equal(all[j].Departure) {
			return all[i].Departure.Before(all[j].Departure)
		}
		return all[i].ID.String() < all[j].ID.String()
	})
	return page(all, p), int64(len(all)), nil
}

func (r memLegRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.legs[id]; !ok {
		return fmt.Errorf("repo.LegRepo.Delete: %w", domain.ErrNotFound)
	}
	if _, ok := r.s.trackByLeg[id]; ok {
		return fmt.Errorf("repo.LegRepo.Delete: %w: leg still has a track", domain.ErrConflict)
	}
	delete(r.s.legs, id)
	return nil
}

// ---- tracks ----------------------------------------------------------------

type memTrackRepo struct{ s *MemoryStore }

func (r memTrackRepo) Create(_ context.Context, t domain.Track) (domain.Track, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var pair [2]uuid.UUID
	if t.LegID != nil {
		if _, ok := r.s.legs[*t.LegID]; !ok {
			return domain.Track{}, fmt.Errorf("repo.TrackRepo.Create: leg %s: %w", *t.LegID, domain.ErrNotFound)
		}
		if _, ok := r.s.trackByLeg[*t.LegID]; ok {
			return domain.Track{}, fmt.Errorf("repo.TrackRepo.Create: %w: leg %s already has a track", domain.ErrConflict, *t.LegID)
		}
	} else {
		if t.LeftID == nil || t.RightID == nil {
			return domain.Track{}, fmt.Errorf("repo.TrackRepo.Create: %w: composite needs both components", domain.ErrInvariant)
		}
		for _, id := range []uuid.UUID{*t.LeftID, *t.RightID} {
			if _, ok := r.s.tracks[id]; !ok {
				return domain.Track{}, fmt.Errorf("repo.TrackRepo.Create: component %s: %w", id, domain.ErrNotFound)
			}
		}
		pair = [2]uuid.UUID{*t.LeftID, *t.RightID}
		if _, ok := r.s.pairs[pair]; ok {
			return domain.Track{}, fmt.Errorf("repo.TrackRepo.Create: %w: pair %s+%s", domain.ErrConflict, pair[0], pair[1])
		}
	}

	t.ID = uuid.New()
	t.CreatedAt = r.s.now()
	t.Legs = append(domain.LegChain(nil), t.Legs...)
	r.s.seq++
	r.s.tracks[t.ID] = memTrack{track: t, seq: r.s.seq}

	if t.LegID != nil {
		r.s.trackByLeg[*t.LegID] = t.ID
	} else {
		r.s.pairs[pair] = t.ID
		for _, c := range pair {
			if r.s.componentOf[c] == nil {
				r.s.componentOf[c] = map[uuid.UUID]struct{}{}
			}
			r.s.componentOf[c][t.ID] = struct{}{}
		}
	}
	return t, nil
}

func (r memTrackRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Track, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	mt, ok := r.s.tracks[id]
	if !ok {
		return domain.Track{}, fmt.Errorf("repo.TrackRepo.GetByID: %w", domain.ErrNotFound)
	}
	return mt.track, nil
}

func (r memTrackRepo) GetByLegID(_ context.Context, legID uuid.UUID) (domain.Track, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.trackByLeg[legID]
	if !ok {
		return domain.Track{}, fmt.Errorf("repo.TrackRepo.GetByLegID: %w", domain.ErrNotFound)
	}
	return r.s.tracks[id].track, nil
}

func (r memTrackRepo) Find(_ context.Context, q domain.TrackQuery) ([]domain.Track, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []memTrack{}
	for _, mt := range r.s.tracks {
		if q.Matches(mt.track) {
			matched = append(matched, mt)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]domain.Track, len(matched))
	for i, mt := range matched {
		out[i] = mt.track
	}
	return out, nil
}

// ListDependents reads the reverse index rather than scanning every track.
func (r memTrackRepo) ListDependents(_ context.Context, id uuid.UUID) ([]domain.Track, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Track{}
	for dep := range r.s.componentOf[id] {
		out = append(out, r.s.tracks[dep].track)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Transfers != out[j].Transfers {
			return out[i].Transfers > out[j].Transfers
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r memTrackRepo) ListPaged(_ context.Context, f domain.TrackFilter, p domain.PaginationParams) ([]domain.Track, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := []domain.Track{}
	for _, mt := range r.s.tracks {
		t := mt.track
		if f.Origin != "" && t.Origin != f.Origin {
			continue
		}
		if f.Destination != "" && t.Destination != f.Destination {
			continue
		}
		if f.MaxTransfers >= 0 && t.Transfers > f.MaxTransfers {
			continue
		}
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.Departure.Equal(b.Departure) {
			return a.Departure.Before(b.Departure)
		}
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		return a.ID.String() < b.ID.String()
	})
	return page(all, p), int64(len(all)), nil
}

func (r memTrackRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	mt, ok := r.s.tracks[id]
	if !ok {
		return fmt.Errorf("repo.TrackRepo.Delete: %w", domain.ErrNotFound)
	}
	if len(r.s.componentOf[id]) > 0 {
		return fmt.Errorf("repo.TrackRepo.Delete: %w: still referenced by %d composites", domain.ErrConflict, len(r.s.componentOf[id]))
	}

	t := mt.track
	delete(r.s.tracks, id)
	delete(r.s.componentOf, id)
	if t.LegID != nil {
		delete(r.s.trackByLeg, *t.LegID)
	}
	if t.LeftID != nil && t.RightID != nil {
		delete(r.s.pairs, [2]uuid.UUID{*t.LeftID, *t.RightID})
		for _, c := range []uuid.UUID{*t.LeftID, *t.RightID} {
			delete(r.s.componentOf[c], id)
		}
	}
	return nil
}

// page slices one page out of an already sorted result set.
func page[T any](all []T, p domain.PaginationParams) []T {
	start := p.Offset()
	if start >= len(all) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
