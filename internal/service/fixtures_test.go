package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
	"github.com/pkordes/flight-tracks/backend/internal/repo"
	"github.com/pkordes/flight-tracks/backend/internal/service"
)

// ---- in-memory wiring --------------------------------------------------------

// world is a fully wired service stack over a MemoryStore.
type world struct {
	store  *repo.MemoryStore
	cities *service.CityService
	legs   *service.LegService
	tracks *service.TrackService
}

func newWorld(t *testing.T, workers int) *world {
	t.Helper()
	store := repo.NewMemoryStore()
	composer := service.NewComposer(store.Tracks(), domain.DefaultTransferRules(),
		service.ComposerOptions{Workers: workers, MaxCandidates: 1000}, nil)
	tracks := service.NewTrackService(store.Tracks(), store.Legs(), composer, nil)
	w := &world{
		store:  store,
		cities: service.NewCityService(store.Cities()),
		legs:   service.NewLegService(store.Legs(), store.Cities(), tracks, nil),
		tracks: tracks,
	}
	for _, code := range []string{"XXX", "YYY", "ZZZ", "AAA", "BBB", "CCC", "DDD", "EEE", "FFF"} {
		_, err := w.cities.Upsert(context.Background(), code, "")
		require.NoError(t, err)
	}
	return w
}

// day is the fixed calendar day every scenario flies on.
var day = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

// addLeg stores a leg through LegService and returns it with its elementary track.
func (w *world) addLeg(t *testing.T, from, to string, dep, arr time.Time, price int64) (domain.Leg, domain.Track) {
	t.Helper()
	leg, track, err := w.legs.Create(context.Background(), domain.Leg{
		Origin: from, Destination: to, Departure: dep, Arrival: arr, Price: price,
	})
	require.NoError(t, err)
	return leg, track
}

// all returns every stored track.
func (w *world) all(t *testing.T) []domain.Track {
	t.Helper()
	got, _, err := w.tracks.ListPaged(context.Background(), domain.TrackFilter{MaxTransfers: -1},
		domain.PaginationParams{Page: 1, Limit: 10_000})
	require.NoError(t, err)
	return got
}

// byTransfers counts stored tracks per transfer count.
func (w *world) byTransfers(t *testing.T) map[int]int {
	t.Helper()
	out := map[int]int{}
	for _, tr := range w.all(t) {
		out[tr.Transfers]++
	}
	return out
}

// between returns the stored tracks from origin to destination.
func (w *world) between(t *testing.T, origin, destination string) []domain.Track {
	t.Helper()
	got, _, err := w.tracks.ListPaged(context.Background(),
		domain.TrackFilter{Origin: origin, Destination: destination, MaxTransfers: -1},
		domain.PaginationParams{Page: 1, Limit: 100})
	require.NoError(t, err)
	return got
}
