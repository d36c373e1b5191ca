package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// LegChain is the ordered list of leg IDs a track resolves to, in travel
// order. It is computed once when the track is created and never changes.
type LegChain []uuid.UUID

// ChainOf returns the chain of an elementary track.
func ChainOf(legID uuid.UUID) LegChain {
	return LegChain{legID}
}

// JoinChains returns left followed by right in a fresh slice.
func JoinChains(left, right LegChain) LegChain {
	out := make(LegChain, 0, len(left)+len(right))
	out = append(out, left...)
	return append(out, right...)
}

// String encodes the chain as comma-separated IDs, the form stored in the
// tracks.leg_ids column.
func (c LegChain) String() string {
	parts := make([]string, len(c))
	for i, id := range c {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

// ParseLegChain decodes the output of LegChain.String.
func ParseLegChain(s string) (LegChain, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("parse leg chain: empty")
	}
	parts := strings.Split(s, ",")
	out := make(LegChain, len(parts))
	for i, p := range parts {
		id, err := uuid.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parse leg chain: element %d: %w", i, err)
		}
		out[i] = id
	}
	return out, nil
}

// Order arranges legs, fetched in any order, to follow the chain.
// Returns ErrMissingLeg if any ID in the chain has no matching leg.
func (c LegChain) Order(legs []Leg) ([]Leg, error) {
	byID := make(map[uuid.UUID]Leg, len(legs))
	for _, l := range legs {
		byID[l.ID] = l
	}
	out := make([]Leg, len(c))
	for i, id := range c {
		l, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingLeg, id)
		}
		out[i] = l
	}
	return out, nil
}
