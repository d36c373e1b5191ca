package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
)

// ListCities handles GET /cities.
// Supports ?q= to filter by code prefix.
func (s *Server) ListCities(w http.ResponseWriter, r *http.Request) {
	var q *string
	if !queryParam(w, r, "q", &q) {
		return
	}
	prefix := ""
	if q != nil {
		prefix = *q
	}

	cities, err := s.cities.List(r.Context(), prefix)
	if err != nil {
		serviceError(w, r, err, "city not found")
		return
	}
	out := make([]City, len(cities))
	for i, c := range cities {
		out[i] = cityToResponse(c)
	}
	writeJSON(w, http.StatusOK, out)
}

// UpsertCity handles POST /cities. Returns the stored city; an existing code
// keeps its original name.
func (s *Server) UpsertCity(w http.ResponseWriter, r *http.Request) {
	var in CityInput
	if !decodeJSON(w, r, &in) {
		return
	}
	name := ""
	if in.Name != nil {
		name = *in.Name
	}

	c, err := s.cities.Upsert(r.Context(), in.Code, name)
	if err != nil {
		serviceError(w, r, err, "city not found")
		return
	}
	writeJSON(w, http.StatusOK, cityToResponse(c))
}

func cityToResponse(c domain.City) City {
	return City{
		Id:        openapi_types.UUID(c.ID),
		Code:      c.Code,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
}
