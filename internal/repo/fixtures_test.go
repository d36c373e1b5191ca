package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
	"github.com/pkordes/flight-tracks/backend/internal/repo"
	"github.com/pkordes/flight-tracks/backend/testutil"
)

// repos bundles the three repositories over one backend.
type repos struct {
	cities repo.CityRepo
	legs   repo.LegRepo
	tracks repo.TrackRepo
}

// newPGRepos opens a transaction against the test database and returns repos
// backed by it. The transaction is rolled back when the test finishes.
// Skips when TEST_DATABASE_URL is not set.
func newPGRepos(t *testing.T) repos {
	t.Helper()
	tx := testutil.NewTx(t)
	return repos{
		cities: repo.NewCityRepo(tx),
		legs:   repo.NewLegRepo(tx),
		tracks: repo.NewTrackRepo(tx),
	}
}

func newMemRepos() repos {
	s := repo.NewMemoryStore()
	return repos{cities: s.Cities(), legs: s.Legs(), tracks: s.Tracks()}
}

// backends runs fn once against the memory store and once against Postgres
// (the latter skipped without TEST_DATABASE_URL).
func backends(t *testing.T, fn func(t *testing.T, r repos)) {
	t.Run("memory", func(t *testing.T) { fn(t, newMemRepos()) })
	t.Run("postgres", func(t *testing.T) { fn(t, newPGRepos(t)) })
}

var base = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func hm(hour, minute int) time.Time {
	return base.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// mustLeg inserts the cities it needs and then the leg.
func mustLeg(t *testing.T, r repos, origin, dest string, dep, arr time.Time, price int64) domain.Leg {
	t.Helper()
	ctx := context.Background()
	for _, code := range []string{origin, dest} {
		_, err := r.cities.Upsert(ctx, code, code)
		require.NoError(t, err, "upsert city %s", code)
	}
	leg, err := r.legs.Create(ctx, domain.Leg{
		Origin:      origin,
		Destination: dest,
		Departure:   dep,
		Arrival:     arr,
		Price:       price,
	})
	require.NoError(t, err, "create leg")
	return leg
}

// mustElementary inserts a leg plus its one-leg track.
func mustElementary(t *testing.T, r repos, origin, dest string, dep, arr time.Time, price int64) domain.Track {
	t.Helper()
	leg := mustLeg(t, r, origin, dest, dep, arr, price)
	tr, err := r.tracks.Create(context.Background(), domain.ElementaryTrack(leg))
	require.NoError(t, err, "create elementary track")
	return tr
}

// mustJoin persists the composite of left and right.
func mustJoin(t *testing.T, r repos, left, right domain.Track) domain.Track {
	t.Helper()
	c, err := domain.Join(domain.DefaultTransferRules(), left, right)
	require.NoError(t, err, "join")
	saved, err := r.tracks.Create(context.Background(), c)
	require.NoError(t, err, "create composite")
	return saved
}
