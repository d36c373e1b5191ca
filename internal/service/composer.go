package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
	"github.com/pkordes/flight-tracks/backend/internal/metrics"
	"github.com/pkordes/flight-tracks/backend/internal/repo"
)

// ComposerOptions tunes how much work one composition run may do.
type ComposerOptions struct {
	// Workers is how many queued tracks are searched concurrently.
	// 1 processes the queue strictly in order.
	Workers int
	// MaxCandidates caps the partners returned by a single head or tail query.
	// Zero disables the cap.
	MaxCandidates int
}

// Composer materialises every composite a newly stored track makes possible.
//
// It keeps an explicit queue: the seed is searched for heads and tails, each
// composite that gets persisted is queued for its own search, and so on until
// the queue drains. Every join adds at least one transfer and the transfer
// count is capped, so the queue always drains.
type Composer struct {
	tracks repo.TrackRepo
	rules  domain.TransferRules
	opts   ComposerOptions
	log    *slog.Logger
}

// NewComposer constructs a Composer over the given TrackRepo.
func NewComposer(tracks repo.TrackRepo, rules domain.TransferRules, opts ComposerOptions, log *slog.Logger) *Composer {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Composer{tracks: tracks, rules: rules, opts: opts, log: log}
}

// Rules returns the transfer rules the composer joins under.
func (c *Composer) Rules() domain.TransferRules {
	return c.rules
}

// Compose runs the head and tail searches for seed and for every composite
// they produce, and returns the composites it persisted.
//
// Each match is an independent unit of work: a failed join is recorded and
// the remaining matches still run. All failures are returned joined; nothing
// already persisted is rolled back.
func (c *Composer) Compose(ctx context.Context, seed domain.Track) ([]domain.Track, error) {
	start := time.Now()
	defer func() { metrics.ComposeDuration.Observe(time.Since(start).Seconds()) }()

	var (
		mu      sync.Mutex
		created []domain.Track
		errs    []error
	)

	// Tracks in one frontier are expanded concurrently. The next frontier
	// starts only after every track of this one is stored, so two composites
	// born in the same round still see each other when they are expanded.
	frontier := []domain.Track{seed}
	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		var next []domain.Track
		var g errgroup.Group
		g.SetLimit(c.opts.Workers)
		for _, t := range frontier {
			g.Go(func() error {
				made, err := c.expand(ctx, t)
				mu.Lock()
				defer mu.Unlock()
				next = append(next, made...)
				if err != nil {
					errs = append(errs, err)
				}
				return nil
			})
		}
		_ = g.Wait()

		created = append(created, next...)
		frontier = next
	}

	c.log.DebugContext(ctx, "composition finished",
		"seed", seed.ID,
		"created", len(created),
		"failures", len(errs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return created, errors.Join(errs...)
}

// expand joins self with every head that can precede it and every tail that
// can follow it.
func (c *Composer) expand(ctx context.Context, self domain.Track) ([]domain.Track, error) {
	var (
		made []domain.Track
		errs []error
	)

	heads, err := c.findHeads(ctx, self)
	if err != nil {
		errs = append(errs, err)
	}
	for _, h := range heads {
		if t, ok, err := c.join(ctx, h, self); err != nil {
			errs = append(errs, err)
		} else if ok {
			made = append(made, t)
		}
	}

	tails, err := c.findTails(ctx, self)
	if err != nil {
		errs = append(errs, err)
	}
	for _, tl := range tails {
		if t, ok, err := c.join(ctx, self, tl); err != nil {
			errs = append(errs, err)
		} else if ok {
			made = append(made, t)
		}
	}

	return made, errors.Join(errs...)
}

// findHeads returns the tracks that arrive at self's origin within the
// transfer window before self departs, with a transfer count that keeps the
// composite balanced and under the cap.
func (c *Composer) findHeads(ctx context.Context, self domain.Track) ([]domain.Track, error) {
	transfers, ok := c.rules.PartnerTransfers(self.Transfers, true)
	if !ok {
		return nil, nil
	}
	window := c.rules.HeadArrivalWindow(self.Departure)
	return c.find(ctx, "heads", domain.TrackQuery{
		Destination: self.Origin,
		Transfers:   transfers,
		Arrival:     &window,
		Limit:       c.opts.MaxCandidates,
	})
}

// findTails returns the tracks that leave self's destination within the
// transfer window after self arrives.
func (c *Composer) findTails(ctx context.Context, self domain.Track) ([]domain.Track, error) {
	transfers, ok := c.rules.PartnerTransfers(self.Transfers, false)
	if !ok {
		return nil, nil
	}
	window := c.rules.TailDepartureWindow(self.Arrival)
	return c.find(ctx, "tails", domain.TrackQuery{
		Origin:    self.Destination,
		Transfers: transfers,
		Departure: &window,
		Limit:     c.opts.MaxCandidates,
	})
}

// find runs q. When q.Limit is set, one extra row is fetched so a cap hit
// is only reported when partners were actually skipped.
func (c *Composer) find(ctx context.Context, side string, q domain.TrackQuery) ([]domain.Track, error) {
	limit := q.Limit
	if limit > 0 {
		q.Limit = limit + 1
	}
	found, err := c.tracks.Find(ctx, q)
	if err != nil {
		metrics.ComposeFailures.WithLabelValues("query").Inc()
		return nil, fmt.Errorf("service.Composer.find %s: %w", side, err)
	}
	if limit > 0 && len(found) > limit {
		found = found[:limit]
		metrics.CandidateCapHits.Inc()
		c.log.WarnContext(ctx, "candidate cap reached; remaining partners skipped",
			"side", side,
			"origin", q.Origin,
			"destination", q.Destination,
			"cap", limit,
		)
	}
	metrics.ComposeCandidates.Observe(float64(len(found)))
	return found, nil
}

// join persists the composite of left followed by right. ok is false when
// the pair was already composed or a component disappeared meanwhile.
func (c *Composer) join(ctx context.Context, left, right domain.Track) (domain.Track, bool, error) {
	composite, err := domain.Join(c.rules, left, right)
	if err != nil {
		metrics.ComposeFailures.WithLabelValues("invariant").Inc()
		c.log.ErrorContext(ctx, "refusing invalid join", "left", left.ID, "right", right.ID, "error", err)
		return domain.Track{}, false, fmt.Errorf("service.Composer.join: %w", err)
	}

	saved, err := c.tracks.Create(ctx, composite)
	switch {
	case err == nil:
		metrics.TracksComposed.Inc()
		return saved, true, nil
	case errors.Is(err, domain.ErrConflict):
		metrics.ComposeFailures.WithLabelValues("duplicate").Inc()
		c.log.DebugContext(ctx, "pair already composed", "left", left.ID, "right", right.ID)
		return domain.Track{}, false, nil
	case errors.Is(err, domain.ErrNotFound):
		// A component was deleted after the search; its cascade owns cleanup.
		metrics.ComposeFailures.WithLabelValues("stale").Inc()
		c.log.InfoContext(ctx, "component vanished before join", "left", left.ID, "right", right.ID)
		return domain.Track{}, false, nil
	default:
		metrics.ComposeFailures.WithLabelValues("persist").Inc()
		c.log.ErrorContext(ctx, "persist composite", "left", left.ID, "right", right.ID, "error", err)
		return domain.Track{}, false, fmt.Errorf("service.Composer.join %s+%s: %w", left.ID, right.ID, err)
	}
}
