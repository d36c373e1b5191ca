package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
	"github.com/pkordes/flight-tracks/backend/internal/handler"
)

// ---- mock services ---------------------------------------------------------
// Set only the method fields your test needs.

type mockCityServicer struct {
	upsert func(ctx context.Context, code, name string) (domain.City, error)
	list   func(ctx context.Context, prefix string) ([]domain.City, error)
}

func (m *mockCityServicer) Upsert(ctx context.Context, code, name string) (domain.City, error) {
	return m.upsert(ctx, code, name)
}
func (m *mockCityServicer) List(ctx context.Context, prefix string) ([]domain.City, error) {
	return m.list(ctx, prefix)
}

type mockLegServicer struct {
	create    func(ctx context.Context, leg domain.Leg) (domain.Leg, domain.Track, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Leg, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.Leg, int64, error)
	delete    func(ctx context.Context, id uuid.UUID) (int, error)
}

func (m *mockLegServicer) Create(ctx context.Context, leg domain.Leg) (domain.Leg, domain.Track, error) {
	return m.create(ctx, leg)
}
func (m *mockLegServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Leg, error) {
	return m.getByID(ctx, id)
}
func (m *mockLegServicer) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Leg, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockLegServicer) Delete(ctx context.Context, id uuid.UUID) (int, error) {
	return m.delete(ctx, id)
}

type mockTrackServicer struct {
	createComposite func(ctx context.Context, leftID, rightID uuid.UUID) (domain.Track, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Track, error)
	listPaged       func(ctx context.Context, f domain.TrackFilter, p domain.PaginationParams) ([]domain.Track, int64, error)
	legsOf          func(ctx context.Context, id uuid.UUID) ([]domain.Leg, error)
	delete          func(ctx context.Context, id uuid.UUID) (int, error)
}

func (m *mockTrackServicer) CreateComposite(ctx context.Context, leftID, rightID uuid.UUID) (domain.Track, error) {
	return m.createComposite(ctx, leftID, rightID)
}
func (m *mockTrackServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Track, error) {
	return m.getByID(ctx, id)
}
func (m *mockTrackServicer) ListPaged(ctx context.Context, f domain.TrackFilter, p domain.PaginationParams) ([]domain.Track, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockTrackServicer) LegsOf(ctx context.Context, id uuid.UUID) ([]domain.Leg, error) {
	return m.legsOf(ctx, id)
}
func (m *mockTrackServicer) Delete(ctx context.Context, id uuid.UUID) (int, error) {
	return m.delete(ctx, id)
}

// compile-time checks: mocks must satisfy the handler interfaces.
var (
	_ handler.CityServicer  = (*mockCityServicer)(nil)
	_ handler.LegServicer   = (*mockLegServicer)(nil)
	_ handler.TrackServicer = (*mockTrackServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// serve routes one request through Server.Routes, exactly as main.go mounts it.
func serve(srv *handler.Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// errorCode decodes an ErrorResponse and returns its code.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code
}
