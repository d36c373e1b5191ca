package domain

import (
	"time"

	"github.com/google/uuid"
)

// Leg is a single non-stop flight between two cities.
// Price is in minor currency units.
type Leg struct {
	ID          uuid.UUID `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Departure   time.Time `json:"departure"`
	Arrival     time.Time `json:"arrival"`
	Price       int64     `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}
