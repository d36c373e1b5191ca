package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// The types below are the wire shapes declared in spec/openapi.yaml, kept by
// hand. `go generate ./spec` writes the generated equivalents to
// spec/types.gen.go for comparison after a schema change.

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// City is a stop in the city directory.
type City struct {
	Id        openapi_types.UUID `json:"id"`
	Code      string             `json:"code"`
	Name      string             `json:"name"`
	CreatedAt time.Time          `json:"created_at"`
}

// CityInput is the body of POST /cities.
type CityInput struct {
	Code string  `json:"code"`
	Name *string `json:"name,omitempty"`
}

// Leg is a single flight.
type Leg struct {
	Id          openapi_types.UUID `json:"id"`
	Origin      string             `json:"origin"`
	Destination string             `json:"destination"`
	Departure   time.Time          `json:"departure"`
	Arrival     time.Time          `json:"arrival"`
	Price       int64              `json:"price"`
	CreatedAt   time.Time          `json:"created_at"`
}

// LegInput is the body of POST /legs.
type LegInput struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Departure   time.Time `json:"departure"`
	Arrival     time.Time `json:"arrival"`
	Price       int64     `json:"price"`
}

// LegCreated is returned by POST /legs.
type LegCreated struct {
	Leg     Leg                `json:"leg"`
	TrackId openapi_types.UUID `json:"track_id"`
}

// LegList is returned by GET /legs.
type LegList struct {
	Data       []Leg      `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Track is an itinerary of one or more legs.
type Track struct {
	Id          openapi_types.UUID   `json:"id"`
	LegId       *openapi_types.UUID  `json:"leg_id,omitempty"`
	LeftId      *openapi_types.UUID  `json:"left_id,omitempty"`
	RightId     *openapi_types.UUID  `json:"right_id,omitempty"`
	Origin      string               `json:"origin"`
	Destination string               `json:"destination"`
	Departure   time.Time            `json:"departure"`
	Arrival     time.Time            `json:"arrival"`
	Price       int64                `json:"price"`
	Transfers   int                  `json:"transfers"`
	LegIds      []openapi_types.UUID `json:"leg_ids"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ComposeInput is the body of POST /tracks.
type ComposeInput struct {
	LeftId  openapi_types.UUID `json:"left_id"`
	RightId openapi_types.UUID `json:"right_id"`
}

// TrackList is returned by GET /tracks.
type TrackList struct {
	Data       []Track    `json:"data"`
	Pagination Pagination `json:"pagination"`
}
