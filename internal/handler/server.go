// Package handler implements the HTTP handlers for the flight tracks API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, city.go, leg.go, track.go) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
)

// CityServicer defines the business operations the city handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type CityServicer interface {
	Upsert(ctx context.Context, code, name string) (domain.City, error)
	List(ctx context.Context, prefix string) ([]domain.City, error)
}

// LegServicer defines the business operations the leg handlers depend on.
type LegServicer interface {
	Create(ctx context.Context, leg domain.Leg) (domain.Leg, domain.Track, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Leg, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Leg, int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int, error)
}

// TrackServicer defines the business operations the track handlers depend on.
type TrackServicer interface {
	CreateComposite(ctx context.Context, leftID, rightID uuid.UUID) (domain.Track, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Track, error)
	ListPaged(ctx context.Context, f domain.TrackFilter, p domain.PaginationParams) ([]domain.Track, int64, error)
	LegsOf(ctx context.Context, id uuid.UUID) ([]domain.Leg, error)
	Delete(ctx context.Context, id uuid.UUID) (int, error)
}

// Server holds the dependencies shared by every endpoint.
// Wire it in main.go by mounting Routes() on the root router.
type Server struct {
	cities CityServicer
	legs   LegServicer
	tracks TrackServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(cities CityServicer, legs LegServicer, tracks TrackServicer) *Server {
	return &Server{cities: cities, legs: legs, tracks: tracks}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes returns a chi router with every API endpoint registered.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/cities", func(r chi.Router) {
		r.Get("/", s.ListCities)
		r.Post("/", s.UpsertCity)
	})

	r.Route("/legs", func(r chi.Router) {
		r.Get("/", s.ListLegs)
		r.Post("/", s.CreateLeg)
		r.Get("/{id}", s.GetLeg)
		r.Delete("/{id}", s.DeleteLeg)
	})

	r.Route("/tracks", func(r chi.Router) {
		r.Get("/", s.ListTracks)
		r.Post("/", s.ComposeTrack)
		r.Get("/{id}", s.GetTrack)
		r.Get("/{id}/legs", s.GetTrackLegs)
		r.Delete("/{id}", s.DeleteTrack)
	})
	return r
}
