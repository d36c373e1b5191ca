// Package metrics declares the Prometheus collectors for the flight tracks
// service. Collectors register with the default registry at init time, so
// promhttp.Handler() in cmd/api exposes them without further wiring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TracksComposed counts composites persisted by the composer.
	TracksComposed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flight_tracks_composed_total",
		Help: "Composite tracks persisted by the composer",
	})

	// TracksDeleted counts removed tracks.
	// Labels: "direct" for the requested track, "cascade" for its dependents.
	TracksDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flight_tracks_deleted_total",
		Help: "Tracks removed, by reason",
	}, []string{"reason"})

	// ComposeFailures counts joins that did not produce a composite.
	// Labels: "duplicate", "stale", "invariant", "query", "persist".
	ComposeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flight_tracks_compose_failures_total",
		Help: "Joins that did not produce a composite, by kind",
	}, []string{"kind"})

	// CandidateCapHits counts partner queries that matched more tracks than
	// the candidate cap and were truncated.
	CandidateCapHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flight_tracks_compose_candidate_cap_hits_total",
		Help: "Partner queries truncated by the candidate cap",
	})

	ComposeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flight_tracks_compose_duration_seconds",
		Help:    "Wall time of one composition run, seed to empty queue",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	ComposeCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flight_tracks_compose_candidates",
		Help:    "Partners returned per head or tail query",
		Buckets: []float64{0, 1, 2, 5, 10, 50, 100, 500, 1000},
	})

	// HTTPRequests counts served requests by method and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flight_tracks_http_requests_total",
		Help: "HTTP requests served, by method and status",
	}, []string{"method", "status"})
)
