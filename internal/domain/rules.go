package domain

import "time"

// Defaults for the transfer constraints. A deployment must use the same
// values everywhere, since stored composites were built under them.
const (
	DefaultMinTransfer  = 30 * time.Minute
	DefaultMaxTransfer  = 12 * time.Hour
	DefaultMaxTransfers = 3
)

// TransferRules bounds how tracks may be joined.
type TransferRules struct {
	// MinTransfer is the shortest allowed layover at a join point.
	MinTransfer time.Duration
	// MaxTransfer is the longest allowed layover at a join point.
	MaxTransfer time.Duration
	// MaxTransfers caps the number of join points in one track.
	MaxTransfers int
}

// DefaultTransferRules returns 30 minutes / 12 hours / 3 transfers.
func DefaultTransferRules() TransferRules {
	return TransferRules{
		MinTransfer:  DefaultMinTransfer,
		MaxTransfer:  DefaultMaxTransfer,
		MaxTransfers: DefaultMaxTransfers,
	}
}

// GapAllowed reports whether a layover of gap fits the window. Both ends are
// inclusive.
func (r TransferRules) GapAllowed(gap time.Duration) bool {
	return gap >= r.MinTransfer && gap <= r.MaxTransfer
}

// TransferRange is an inclusive range of transfer counts. Min == Max means
// exactly one admissible value.
type TransferRange struct {
	Min int
	Max int
}

// Exact reports whether the range admits a single value.
func (r TransferRange) Exact() bool { return r.Min == r.Max }

// Contains reports whether n lies within the range.
func (r TransferRange) Contains(n int) bool { return n >= r.Min && n <= r.Max }

// PartnerTransfers returns the transfer counts a partner of a track with
// current transfers may have. currentIsTrailing is true when the track will
// be the tail of the composite (we are searching for heads).
//
// The head may have the same number of transfers as the tail or one more.
// ok is false when no partner can keep the composite under MaxTransfers.
func (r TransferRules) PartnerTransfers(current int, currentIsTrailing bool) (rng TransferRange, ok bool) {
	limit := r.MaxTransfers - current - 1
	upper := current
	if currentIsTrailing {
		upper = current + 1
	}
	lower := upper
	if upper > 0 {
		lower = upper - 1
	}

	switch {
	case lower > limit:
		return TransferRange{}, false
	case lower == limit || lower == upper:
		return TransferRange{Min: lower, Max: lower}, true
	default:
		return TransferRange{Min: lower, Max: upper}, true
	}
}

// TimeWindow is an inclusive time interval.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t lies within the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// HeadArrivalWindow is the range in which a head must arrive to connect to a
// track departing at departure.
func (r TransferRules) HeadArrivalWindow(departure time.Time) TimeWindow {
	return TimeWindow{
		From: departure.Add(-r.MaxTransfer),
		To:   departure.Add(-r.MinTransfer),
	}
}

// TailDepartureWindow is the range in which a tail must depart to connect to
// a track arriving at arrival.
func (r TransferRules) TailDepartureWindow(arrival time.Time) TimeWindow {
	return TimeWindow{
		From: arrival.Add(r.MinTransfer),
		To:   arrival.Add(r.MaxTransfer),
	}
}
