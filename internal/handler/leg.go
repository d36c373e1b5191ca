package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
)

// CreateLeg handles POST /legs.
// The leg's elementary track is created, and composed, before the response
// is written.
func (s *Server) CreateLeg(w http.ResponseWriter, r *http.Request) {
	var in LegInput
	if !decodeJSON(w, r, &in) {
		return
	}
	leg := domain.Leg{
		Origin:      in.Origin,
		Destination: in.Destination,
		Departure:   in.Departure,
		Arrival:     in.Arrival,
		Price:       in.Price,
	}

	created, track, err := s.legs.Create(r.Context(), leg)
	if err != nil && track.ID == uuid.Nil {
		serviceError(w, r, err, "city not found")
		return
	}
	// A stored leg whose composition partly failed is still created; the
	// failure has been logged by the service.
	writeJSON(w, http.StatusCreated, LegCreated{
		Leg:     legToResponse(created),
		TrackId: openapi_types.UUID(track.ID),
	})
}

// ListLegs handles GET /legs.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListLegs(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	legs, total, err := s.legs.ListPaged(r.Context(), params)
	if err != nil {
		serviceError(w, r, err, "leg not found")
		return
	}
	writeJSON(w, http.StatusOK, LegList{Data: legsToResponse(legs), Pagination: paginationOf(params, total)})
}

// GetLeg handles GET /legs/{id}.
func (s *Server) GetLeg(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	leg, err := s.legs.GetByID(r.Context(), id)
	if err != nil {
		serviceError(w, r, err, "leg not found")
		return
	}
	writeJSON(w, http.StatusOK, legToResponse(leg))
}

// DeleteLeg handles DELETE /legs/{id}. Every track that uses the leg is
// removed with it; the count is returned in X-Deleted-Count.
func (s *Server) DeleteLeg(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	removed, err := s.legs.Delete(r.Context(), id)
	if err != nil {
		serviceError(w, r, err, "leg not found")
		return
	}
	w.Header().Set("X-Deleted-Count", strconv.Itoa(removed))
	w.WriteHeader(http.StatusNoContent)
}

func legToResponse(l domain.Leg) Leg {
	return Leg{
		Id:          openapi_types.UUID(l.ID),
		Origin:      l.Origin,
		Destination: l.Destination,
		Departure:   l.Departure,
		Arrival:     l.Arrival,
		Price:       l.Price,
		CreatedAt:   l.CreatedAt,
	}
}

func legsToResponse(legs []domain.Leg) []Leg {
	out := make([]Leg, len(legs))
	for i, l := range legs {
		out[i] = legToResponse(l)
	}
	return out
}
