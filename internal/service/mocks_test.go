package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
	"github.com/pkordes/flight-tracks/backend/internal/repo"
)

// ---- mock repos ------------------------------------------------------------

// mockCityRepo is a hand-written test double for repo.CityRepo.
type mockCityRepo struct {
	upsert    func(ctx context.Context, code, name string) (domain.City, error)
	getByCode func(ctx context.Context, code string) (domain.City, error)
	list      func(ctx context.Context, prefix string) ([]domain.City, error)
}

func (m *mockCityRepo) Upsert(ctx context.Context, code, name string) (domain.City, error) {
	return m.upsert(ctx, code, name)
}
func (m *mockCityRepo) GetByCode(ctx context.Context, code string) (domain.City, error) {
	if m.getByCode != nil {
		return m.getByCode(ctx, code)
	}
	return domain.City{Code: code, Name: code}, nil
}
func (m *mockCityRepo) List(ctx context.Context, prefix string) ([]domain.City, error) {
	return m.list(ctx, prefix)
}

// mockLegRepo is a hand-written test double for repo.LegRepo.
type mockLegRepo struct {
	create    func(ctx context.Context, leg domain.Leg) (domain.Leg, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Leg, error)
	getByIDs  func(ctx context.Context, ids []uuid.UUID) ([]domain.Leg, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.Leg, int64, error)
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockLegRepo) Create(ctx context.Context, leg domain.Leg) (domain.Leg, error) {
	return m.create(ctx, leg)
}
func (m *mockLegRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Leg, error) {
	return m.getByID(ctx, id)
}
func (m *mockLegRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Leg, error) {
	return m.getByIDs(ctx, ids)
}
func (m *mockLegRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Leg, int64, error) {
	if m.listPaged != nil {
		return m.listPaged(ctx, p)
	}
	return nil, 0, nil
}
func (m *mockLegRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// mockTrackRepo is a hand-written test double for repo.TrackRepo.
// Find and ListDependents default to empty results so composition and
// cascades are no-ops unless a test overrides them.
type mockTrackRepo struct {
	create         func(ctx context.Context, t domain.Track) (domain.Track, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Track, error)
	getByLegID     func(ctx context.Context, legID uuid.UUID) (domain.Track, error)
	find           func(ctx context.Context, q domain.TrackQuery) ([]domain.Track, error)
	listDependents func(ctx context.Context, id uuid.UUID) ([]domain.Track, error)
	listPaged      func(ctx context.Context, f domain.TrackFilter, p domain.PaginationParams) ([]domain.Track, int64, error)
	delete         func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTrackRepo) Create(ctx context.Context, t domain.Track) (domain.Track, error) {
	return m.create(ctx, t)
}
func (m *mockTrackRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Track, error) {
	return m.getByID(ctx, id)
}
func (m *mockTrackRepo) GetByLegID(ctx context.Context, legID uuid.UUID) (domain.Track, error) {
	return m.getByLegID(ctx, legID)
}
func (m *mockTrackRepo) Find(ctx context.Context, q domain.TrackQuery) ([]domain.Track, error) {
	if m.find != nil {
		return m.find(ctx, q)
	}
	return nil, nil
}
func (m *mockTrackRepo) ListDependents(ctx context.Context, id uuid.UUID) ([]domain.Track, error) {
	if m.listDependents != nil {
		return m.listDependents(ctx, id)
	}
	return nil, nil
}
func (m *mockTrackRepo) ListPaged(ctx context.Context, f domain.TrackFilter, p domain.PaginationParams) ([]domain.Track, int64, error) {
	if m.listPaged != nil {
		return m.listPaged(ctx, f, p)
	}
	return nil, 0, nil
}
func (m *mockTrackRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time checks: mocks must satisfy the repo interfaces.
var (
	_ repo.CityRepo  = (*mockCityRepo)(nil)
	_ repo.LegRepo   = (*mockLegRepo)(nil)
	_ repo.TrackRepo = (*mockTrackRepo)(nil)
)
