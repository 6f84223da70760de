package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/exowars/exowars/internal/models"
)

// runRelationStoreSuite exercises the RelationStore contract. Both backends
// run the same assertions so paging and ordering semantics cannot drift.
func runRelationStoreSuite(t *testing.T, newStore func(t *testing.T) RelationStore) {
	t.Helper()

	seed := func(t *testing.T, s RelationStore, n int) {
		t.Helper()
		base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		for i := 0; i < n; i++ {
			id, err := s.Insert(context.Background(), &models.PlanetRelation{
				StarWarsPlanet: fmt.Sprintf("planet-%02d", i),
				Exoplanet:      fmt.Sprintf("exo-%02d", n-1-i),
				Description:    "seeded relation for paging assertions",
				CreatedAt:      base.Add(time.Duration(i) * time.Minute),
			})
			require.NoError(t, err)
			require.NotEmpty(t, id)
		}
	}

	t.Run("defaults to newest first", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, 3)

		page, err := s.List(context.Background(), ListOptions{})
		require.NoError(t, err)
		require.Equal(t, 1, page.Page)
		require.EqualValues(t, 3, page.Total)
		require.Len(t, page.Data, 3)
		require.Equal(t, "planet-02", page.Data[0].StarWarsPlanet)
		require.Equal(t, "planet-00", page.Data[2].StarWarsPlanet)
	})

	t.Run("second page of twelve rows", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, 12)

		page, err := s.List(context.Background(), ListOptions{Page: 2, PageSize: 5})
		require.NoError(t, err)
		require.Equal(t, 2, page.Page)
		require.EqualValues(t, 12, page.Total)
		require.Len(t, page.Data, 5)
		// Descending creation order: rows 11..0, page two holds 6..2.
		require.Equal(t, "planet-06", page.Data[0].StarWarsPlanet)
		require.Equal(t, "planet-02", page.Data[4].StarWarsPlanet)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, 3)

		page, err := s.List(context.Background(), ListOptions{Page: 5, PageSize: 10})
		require.NoError(t, err)
		require.EqualValues(t, 3, page.Total)
		require.Empty(t, page.Data)
	})

	t.Run("sort by exoplanet ascending", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, 4)

		page, err := s.List(context.Background(), ListOptions{SortBy: SortByExoplanet, Order: "asc"})
		require.NoError(t, err)
		require.Len(t, page.Data, 4)
		require.Equal(t, "exo-00", page.Data[0].Exoplanet)
		require.Equal(t, "exo-03", page.Data[3].Exoplanet)
	})

	t.Run("unknown sort column falls back to created_at", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, 3)

		page, err := s.List(context.Background(), ListOptions{SortBy: "description; DROP TABLE planet_relations"})
		require.NoError(t, err)
		require.Len(t, page.Data, 3)
		require.Equal(t, "planet-02", page.Data[0].StarWarsPlanet)
	})

	t.Run("clear removes everything", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, 5)

		require.NoError(t, s.Clear(context.Background()))

		page, err := s.List(context.Background(), ListOptions{})
		require.NoError(t, err)
		require.EqualValues(t, 0, page.Total)
		require.Empty(t, page.Data)
	})

	t.Run("insert assigns identifier when absent", func(t *testing.T) {
		s := newStore(t)

		relation := &models.PlanetRelation{
			StarWarsPlanet: "Tatooine",
			Exoplanet:      "Kepler-10b",
			Description:    "seeded relation for identifier assertions",
		}
		id, err := s.Insert(context.Background(), relation)
		require.NoError(t, err)
		require.NotEmpty(t, id)
		require.Equal(t, id, relation.ID)
	})
}

func TestListOptionsNormalise(t *testing.T) {
	opts := ListOptions{Page: 0, PageSize: -3, SortBy: "bogus", Order: "sideways"}
	opts.normalise()
	require.Equal(t, 1, opts.Page)
	require.Equal(t, defaultPageSize, opts.PageSize)
	require.Equal(t, SortByCreatedAt, opts.SortBy)
	require.Equal(t, "DESC", opts.Order)

	opts = ListOptions{SortBy: SortByStarWarsPlanet, Order: "asc"}
	opts.normalise()
	require.Equal(t, SortByStarWarsPlanet, opts.SortBy)
	require.Equal(t, "ASC", opts.Order)
}
