package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// City is an entry in the location directory.
// Code is the identity used by legs and tracks; it is always upper case.
// Name preserves whatever the first writer supplied.
type City struct {
	ID        uuid.UUID
	Code      string
	Name      string
	CreatedAt time.Time
}

// NormalizeCityCode trims and upper-cases a location code so "waw " and
// "WAW" name the same city.
func NormalizeCityCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
