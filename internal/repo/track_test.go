package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
)

func TestTrackRepo_CreateElementary(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		got := mustElementary(t, r, "XXX", "YYY", hm(10, 0), hm(12, 0), 100)

		assert.NotEqual(t, uuid.UUID{}, got.ID)
		require.NotNil(t, got.LegID)
		assert.Nil(t, got.LeftID)
		assert.Nil(t, got.RightID)
		assert.Equal(t, domain.LegChain{*got.LegID}, got.Legs)

		byLeg, err := r.tracks.GetByLegID(context.Background(), *got.LegID)
		require.NoError(t, err)
		assert.Equal(t, got.ID, byLeg.ID)
	})
}

func TestTrackRepo_CreateElementary_DuplicateLeg(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		leg := mustLeg(t, r, "XXX", "YYY", hm(10, 0), hm(12, 0), 100)
		_, err := r.tracks.Create(context.Background(), domain.ElementaryTrack(leg))
		require.NoError(t, err)

		_, err = r.tracks.Create(context.Background(), domain.ElementaryTrack(leg))

		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestTrackRepo_CreateComposite_RoundTripsChain(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		a := mustElementary(t, r, "XXX", "YYY", hm(10, 0), hm(12, 0), 100)
		b := mustElementary(t, r, "YYY", "ZZZ", hm(13, 0), hm(15, 0), 80)

		c := mustJoin(t, r, a, b)

		got, err := r.tracks.GetByID(context.Background(), c.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LegChain{*a.LegID, *b.LegID}, got.Legs)
		require.NotNil(t, got.LeftID)
		assert.Equal(t, a.ID, *got.LeftID)
		assert.Equal(t, b.ID, *got.RightID)
		assert.Equal(t, 1, got.Transfers)
		assert.EqualValues(t, 180, got.Price)
	})
}

func TestTrackRepo_CreateComposite_DuplicatePair(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		a := mustElementary(t, r, "XXX", "YYY", hm(10, 0), hm(12, 0), 100)
		b := mustElementary(t, r, "YYY", "ZZZ", hm(13, 0), hm(15, 0), 80)
		mustJoin(t, r, a, b)

		again, err := domain.Join(domain.DefaultTransferRules(), a, b)
		require.NoError(t, err)
		_, err = r.tracks.Create(context.Background(), again)

		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestTrackRepo_CreateComposite_MissingComponent(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		a := mustElementary(t, r, "XXX", "YYY", hm(10, 0), hm(12, 0), 100)
		ghost := a
		ghost.ID = uuid.New()
		ghost.Origin, ghost.Destination = "YYY", "ZZZ"
		ghost.Departure, ghost.Arrival = hm(13, 0), hm(14, 0)

		c, err := domain.Join(domain.DefaultTransferRules(), a, ghost)
		require.NoError(t, err)
		_, err = r.tracks.Create(context.Background(), c)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTrackRepo_Find_HeadQuery(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		rules := domain.DefaultTransferRules()
		inWindow := mustElementary(t, r, "AAA", "YYY", hm(8, 0), hm(12, 0), 1)
		mustElementary(t, r, "AAA", "YYY", hm(8, 0), hm(12, 50), 1) // gap too short
		mustElementary(t, r, "AAA", "QQQ", hm(8, 0), hm(12, 0), 1)  // wrong city

		window := rules.HeadArrivalWindow(hm(13, 0))
		got, err := r.tracks.Find(context.Background(), domain.TrackQuery{
			Destination: "YYY",
			Transfers:   domain.TransferRange{Min: 0, Max: 1},
			Arrival:     &window,
		})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, inWindow.ID, got[0].ID)
	})
}

func TestTrackRepo_Find_TailQueryInclusiveBounds(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		rules := domain.DefaultTransferRules()
		atMin := mustElementary(t, r, "YYY", "ZZZ", hm(12, 30), hm(14, 0), 1)
		atMax := mustElementary(t, r, "YYY", "ZZZ", hm(24, 0), hm(25, 0), 1)
		mustElementary(t, r, "YYY", "ZZZ", hm(24, 1), hm(25, 0), 1)

		window := rules.TailDepartureWindow(hm(12, 0))
		got, err := r.tracks.Find(context.Background(), domain.TrackQuery{
			Origin:    "YYY",
			Transfers: domain.TransferRange{Min: 0, Max: 0},
			Departure: &window,
		})

		require.NoError(t, err)
		ids := []uuid.UUID{}
		for _, tr := range got {
			ids = append(ids, tr.ID)
		}
		assert.ElementsMatch(t, []uuid.UUID{atMin.ID, atMax.ID}, ids)
	})
}

func TestTrackRepo_Find_Limit(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		for i := 0; i < 3; i++ {
			mustElementary(t, r, "AAA", "BBB", hm(i, 0), hm(i+1, 0), 1)
		}

		got, err := r.tracks.Find(context.Background(), domain.TrackQuery{Origin: "AAA", Limit: 2})

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestTrackRepo_ListDependents(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		a := mustElementary(t, r, "AAA", "BBB", hm(1, 0), hm(2, 0), 1)
		b := mustElementary(t, r, "BBB", "CCC", hm(3, 0), hm(4, 0), 1)
		c := mustElementary(t, r, "CCC", "DDD", hm(5, 0), hm(6, 0), 1)
		ab := mustJoin(t, r, a, b)
		bc := mustJoin(t, r, b, c)

		got, err := r.tracks.ListDependents(context.Background(), b.ID)

		require.NoError(t, err)
		ids := []uuid.UUID{}
		for _, tr := range got {
			ids = append(ids, tr.ID)
		}
		assert.ElementsMatch(t, []uuid.UUID{ab.ID, bc.ID}, ids)

		none, err := r.tracks.ListDependents(context.Background(), ab.ID)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestTrackRepo_Delete_RestrictedWhileReferenced(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		ctx := context.Background()
		a := mustElementary(t, r, "AAA", "BBB", hm(1, 0), hm(2, 0), 1)
		b := mustElementary(t, r, "BBB", "CCC", hm(3, 0), hm(4, 0), 1)
		ab := mustJoin(t, r, a, b)

		require.NoError(t, r.tracks.Delete(ctx, ab.ID))
		require.NoError(t, r.tracks.Delete(ctx, a.ID))

		_, err := r.tracks.GetByID(ctx, a.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, r.tracks.Delete(ctx, a.ID), domain.ErrNotFound)
	})
}

func TestTrackRepo_Delete_ComponentConflict(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		a := mustElementary(t, r, "AAA", "BBB", hm(1, 0), hm(2, 0), 1)
		b := mustElementary(t, r, "BBB", "CCC", hm(3, 0), hm(4, 0), 1)
		mustJoin(t, r, a, b)

		err := r.tracks.Delete(context.Background(), a.ID)

		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestTrackRepo_ListPaged_Filter(t *testing.T) {
	backends(t, func(t *testing.T, r repos) {
		a := mustElementary(t, r, "AAA", "BBB", hm(1, 0), hm(2, 0), 10)
		b := mustElementary(t, r, "BBB", "CCC", hm(3, 0), hm(4, 0), 20)
		ab := mustJoin(t, r, a, b)

		all, total, err := r.tracks.ListPaged(context.Background(),
			domain.TrackFilter{MaxTransfers: -1}, domain.PaginationParams{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, all, 3)

		fromA, total, err := r.tracks.ListPaged(context.Background(),
			domain.TrackFilter{Origin: "AAA", Destination: "CCC", MaxTransfers: 1}, domain.PaginationParams{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, fromA, 1)
		assert.Equal(t, ab.ID, fromA[0].ID)

		direct, _, err := r.tracks.ListPaged(context.Background(),
			domain.TrackFilter{Origin: "AAA", MaxTransfers: 0}, domain.PaginationParams{Page: 1, Limit: 10})
		require.NoError(t, err)
		require.Len(t, direct, 1)
		assert.Equal(t, a.ID, direct[0].ID)
	})
}
