// Package domain contains the core data types and pure rules for the flight
// tracks service. It performs no I/O and is imported by every other internal
// package (repo, service, handler).
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Track is an itinerary: either a single leg (elementary) or the join of two
// earlier tracks at a shared city (composite).
//
// Elementary tracks have LegID set and no components. Composite tracks have
// LeftID and RightID set and no LegID. Components are referenced by ID only.
type Track struct {
	ID          uuid.UUID
	LegID       *uuid.UUID
	LeftID      *uuid.UUID
	RightID     *uuid.UUID
	Origin      string
	Destination string
	Departure   time.Time
	Arrival     time.Time
	Price       int64
	Transfers   int
	Legs        LegChain
	CreatedAt   time.Time
}

// IsElementary reports whether the track wraps exactly one leg.
func (t Track) IsElementary() bool {
	return t.LeftID == nil && t.RightID == nil
}

// ElementaryTrack builds the unsaved one-leg track for leg.
func ElementaryTrack(leg Leg) Track {
	legID := leg.ID
	return Track{
		LegID:       &legID,
		Origin:      leg.Origin,
		Destination: leg.Destination,
		Departure:   leg.Departure,
		Arrival:     leg.Arrival,
		Price:       leg.Price,
		Transfers:   0,
		Legs:        ChainOf(leg.ID),
	}
}

// Validate checks the invariants every track must hold on its own, without
// looking at its components.
func (t Track) Validate() error {
	if !t.Arrival.After(t.Departure) {
		return fmt.Errorf("%w: arrival %s is not after departure %s", ErrInvariant, t.Arrival, t.Departure)
	}
	if t.Price < 0 {
		return fmt.Errorf("%w: negative price %d", ErrInvariant, t.Price)
	}
	if t.Transfers < 0 {
		return fmt.Errorf("%w: negative transfer count %d", ErrInvariant, t.Transfers)
	}
	if len(t.Legs) != t.Transfers+1 {
		return fmt.Errorf("%w: chain has %d legs for %d transfers", ErrInvariant, len(t.Legs), t.Transfers)
	}
	if t.IsElementary() == (t.LegID == nil) {
		return fmt.Errorf("%w: track must reference either one leg or two components", ErrInvariant)
	}
	if (t.LeftID == nil) != (t.RightID == nil) {
		return fmt.Errorf("%w: composite needs both components", ErrInvariant)
	}
	return nil
}

// Join builds the composite of left followed by right. The result is not
// persisted; its ID and CreatedAt are zero.
//
// The head may carry the same number of transfers as the tail or one more,
// never fewer. Join refuses any pair that would break that rule or the
// transfer window, the transfer cap, or the shared city at the join point.
func Join(rules TransferRules, left, right Track) (Track, error) {
	if left.Destination != right.Origin {
		return Track{}, fmt.Errorf("%w: %s arrives at %s but %s departs from %s",
			ErrInvariant, left.ID, left.Destination, right.ID, right.Origin)
	}
	if gap := right.Departure.Sub(left.Arrival); !rules.GapAllowed(gap) {
		return Track{}, fmt.Errorf("%w: transfer gap %s outside [%s, %s]",
			ErrInvariant, gap, rules.MinTransfer, rules.MaxTransfer)
	}
	if d := left.Transfers - right.Transfers; d < 0 || d > 1 {
		return Track{}, fmt.Errorf("%w: unbalanced join %d+%d", ErrInvariant, left.Transfers, right.Transfers)
	}
	transfers := left.Transfers + right.Transfers + 1
	if transfers > rules.MaxTransfers {
		return Track{}, fmt.Errorf("%w: %d transfers exceeds cap %d", ErrInvariant, transfers, rules.MaxTransfers)
	}

	leftID, rightID := left.ID, right.ID
	return Track{
		LeftID:      &leftID,
		RightID:     &rightID,
		Origin:      left.Origin,
		Destination: right.Destination,
		Departure:   left.Departure,
		Arrival:     right.Arrival,
		Price:       left.Price + right.Price,
		Transfers:   transfers,
		Legs:        JoinChains(left.Legs, right.Legs),
	}, nil
}

// TrackQuery selects candidate partners for the composer.
// Empty strings and nil windows match anything; Transfers is always applied.
// Limit caps the result size, zero means no cap.
type TrackQuery struct {
	Origin      string
	Destination string
	Transfers   TransferRange
	Departure   *TimeWindow
	Arrival     *TimeWindow
	Limit       int
}

// Matches reports whether t satisfies every predicate in q.
func (q TrackQuery) Matches(t Track) bool {
	if q.Origin != "" && t.Origin != q.Origin {
		return false
	}
	if q.Destination != "" && t.Destination != q.Destination {
		return false
	}
	if !q.Transfers.Contains(t.Transfers) {
		return false
	}
	if q.Departure != nil && !q.Departure.Contains(t.Departure) {
		return false
	}
	if q.Arrival != nil && !q.Arrival.Contains(t.Arrival) {
		return false
	}
	return true
}

// TrackFilter narrows the public track listing.
// MaxTransfers < 0 disables the transfer filter.
type TrackFilter struct {
	Origin       string
	Destination  string
	MaxTransfers int
}
