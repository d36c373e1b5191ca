package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
)

// ListTracks handles GET /tracks.
// Supports ?origin=, ?destination=, ?max_transfers= and pagination.
func (s *Server) ListTracks(w http.ResponseWriter, r *http.Request) {
	var (
		origin, destination *string
		maxTransfers        *int
	)
	if !queryParam(w, r, "origin", &origin) ||
		!queryParam(w, r, "destination", &destination) ||
		!queryParam(w, r, "max_transfers", &maxTransfers) {
		return
	}
	params, ok := pagination(w, r)
	if !ok {
		return
	}

	f := domain.TrackFilter{MaxTransfers: -1}
	if origin != nil {
		f.Origin = domain.NormalizeCityCode(*origin)
	}
	if destination != nil {
		f.Destination = domain.NormalizeCityCode(*destination)
	}
	if maxTransfers != nil {
		if *maxTransfers < 0 {
			badRequest(w, "max_transfers must not be negative")
			return
		}
		f.MaxTransfers = *maxTransfers
	}

	tracks, total, err := s.tracks.ListPaged(r.Context(), f, params)
	if err != nil {
		serviceError(w, r, err, "track not found")
		return
	}
	data := make([]Track, len(tracks))
	for i, t := range tracks {
		data[i] = trackToResponse(t)
	}
	writeJSON(w, http.StatusOK, TrackList{Data: data, Pagination: paginationOf(params, total)})
}

// GetTrack handles GET /tracks/{id}.
func (s *Server) GetTrack(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := s.tracks.GetByID(r.Context(), id)
	if err != nil {
		serviceError(w, r, err, "track not found")
		return
	}
	writeJSON(w, http.StatusOK, trackToResponse(t))
}

// GetTrackLegs handles GET /tracks/{id}/legs, returning the legs in travel order.
func (s *Server) GetTrackLegs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	legs, err := s.tracks.LegsOf(r.Context(), id)
	if err != nil {
		serviceError(w, r, err, "track not found")
		return
	}
	writeJSON(w, http.StatusOK, legsToResponse(legs))
}

// ComposeTrack handles POST /tracks, joining two stored tracks by hand.
// 409 if the pair is already composed, 422 if it cannot be joined.
func (s *Server) ComposeTrack(w http.ResponseWriter, r *http.Request) {
	var in ComposeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.LeftId == uuid.Nil || in.RightId == uuid.Nil {
		badRequest(w, "left_id and right_id are required")
		return
	}

	t, err := s.tracks.CreateComposite(r.Context(), in.LeftId, in.RightId)
	if err != nil && t.ID == uuid.Nil {
		serviceError(w, r, err, "component track not found")
		return
	}
	writeJSON(w, http.StatusCreated, trackToResponse(t))
}

// DeleteTrack handles DELETE /tracks/{id}. Composites built on the track are
// removed first; the total is returned in X-Deleted-Count.
func (s *Server) DeleteTrack(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	removed, err := s.tracks.Delete(r.Context(), id)
	if err != nil {
		serviceError(w, r, err, "track not found")
		return
	}
	w.Header().Set("X-Deleted-Count", strconv.Itoa(removed))
	w.WriteHeader(http.StatusNoContent)
}

func trackToResponse(t domain.Track) Track {
	ids := make([]openapi_types.UUID, len(t.Legs))
	for i, id := range t.Legs {
		ids[i] = openapi_types.UUID(id)
	}
	return Track{
		Id:          openapi_types.UUID(t.ID),
		LegId:       t.LegID,
		LeftId:      t.LeftID,
		RightId:     t.RightID,
		Origin:      t.Origin,
		Destination: t.Destination,
		Departure:   t.Departure,
		Arrival:     t.Arrival,
		Price:       t.Price,
		Transfers:   t.Transfers,
		LegIds:      ids,
		CreatedAt:   t.CreatedAt,
	}
}
