package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/exowars/exowars/internal/cache"
	"github.com/exowars/exowars/internal/models"
	"github.com/exowars/exowars/internal/sources"
	"github.com/exowars/exowars/internal/store"
	apperrors "github.com/exowars/exowars/pkg/errors"
)

type fakeStarWars struct {
	planets   []sources.Planet
	listErr   error
	listCalls int
}

func (f *fakeStarWars) ListPlanets(_ context.Context) ([]sources.Planet, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.planets, nil
}

func (f *fakeStarWars) FindPlanet(_ context.Context, name string) (*sources.Planet, error) {
	for i := range f.planets {
		if strings.EqualFold(f.planets[i].Name, name) {
			return &f.planets[i], nil
		}
	}
	return nil, nil
}

type fakeExoplanets struct {
	exoplanets []sources.Exoplanet
	images     []string
	listErr    error
	listCalls  int
}

func (f *fakeExoplanets) ListExoplanets(_ context.Context) ([]sources.Exoplanet, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.exoplanets, nil
}

func (f *fakeExoplanets) FindExoplanet(_ context.Context, name string) (*sources.Exoplanet, error) {
	for i := range f.exoplanets {
		if strings.EqualFold(f.exoplanets[i].Name, name) {
			return &f.exoplanets[i], nil
		}
	}
	return nil, nil
}

func (f *fakeExoplanets) FindImages(_ context.Context, _ string) []string {
	return f.images
}

type fakeRelationStore struct {
	inserted  []models.PlanetRelation
	insertErr error
	cleared   bool
	clearErr  error
}

func (f *fakeRelationStore) Init(_ context.Context) error { return nil }

func (f *fakeRelationStore) Insert(_ context.Context, relation *models.PlanetRelation) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	if relation.ID == "" {
		relation.ID = fmt.Sprintf("rel-%d", len(f.inserted)+1)
	}
	f.inserted = append(f.inserted, *relation)
	return relation.ID, nil
}

func (f *fakeRelationStore) List(_ context.Context, opts store.ListOptions) (*store.Page, error) {
	return &store.Page{Page: opts.Page, Total: int64(len(f.inserted)), Data: f.inserted}, nil
}

func (f *fakeRelationStore) Clear(_ context.Context) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = true
	f.inserted = nil
	return nil
}

func newTestService(t *testing.T, sw *fakeStarWars, exo *fakeExoplanets, rels *fakeRelationStore) (*FusionService, cache.Store) {
	t.Helper()
	cacheStore := cache.NewMemoryStore(time.Minute)
	svc, err := NewFusionService(sw, exo, cacheStore, rels)
	require.NoError(t, err)
	return svc, cacheStore
}

func hotPlanets(n int) []sources.Planet {
	planets := make([]sources.Planet, 0, n)
	for i := 0; i < n; i++ {
		planets = append(planets, sources.Planet{
			Name:    fmt.Sprintf("Planet-%02d", i),
			Climate: "hot, arid",
		})
	}
	return planets
}

func TestComputeFusedRelationsCapsResults(t *testing.T) {
	sw := &fakeStarWars{planets: hotPlanets(12)}
	exo := &fakeExoplanets{
		exoplanets: []sources.Exoplanet{
			{Name: "Scorch-1", Temperature: "410°C", DistanceFromEarth: "0.05 AU"},
		},
		images: []string{"https://img.test/scorch.jpg"},
	}
	rels := &fakeRelationStore{}
	svc, _ := newTestService(t, sw, exo, rels)

	fused, err := svc.ComputeFusedRelations(context.Background())
	require.NoError(t, err)
	require.Len(t, fused, 10)
	require.Len(t, rels.inserted, 10)

	first := fused[0]
	require.Equal(t, "Planet-00", first.StarWarsPlanet)
	require.Equal(t, "Scorch-1", first.Exoplanet)
	require.Equal(t, "https://img.test/scorch.jpg", first.ImageURL)
	require.Contains(t, first.Description, "scorching world")
}

func TestComputeFusedRelationsFirstMatchWins(t *testing.T) {
	sw := &fakeStarWars{planets: []sources.Planet{{Name: "Hoth", Climate: "frozen"}}}
	exo := &fakeExoplanets{exoplanets: []sources.Exoplanet{
		{Name: "Warm-1", Temperature: "120°C"},
		{Name: "Ice-1", Temperature: "-40°C"},
		{Name: "Ice-2", Temperature: "-80°C"},
	}}
	svc, _ := newTestService(t, sw, exo, &fakeRelationStore{})

	fused, err := svc.ComputeFusedRelations(context.Background())
	require.NoError(t, err)
	require.Len(t, fused, 1)
	require.Equal(t, "Ice-1", fused[0].Exoplanet)
}

func TestComputeFusedRelationsServedFromCache(t *testing.T) {
	sw := &fakeStarWars{planets: hotPlanets(1)}
	exo := &fakeExoplanets{exoplanets: []sources.Exoplanet{{Name: "Scorch-1", Temperature: "410°C"}}}
	svc, _ := newTestService(t, sw, exo, &fakeRelationStore{})

	first, err := svc.ComputeFusedRelations(context.Background())
	require.NoError(t, err)

	second, err := svc.ComputeFusedRelations(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, sw.listCalls)
	require.Equal(t, 1, exo.listCalls)
}

func TestComputeFusedRelationsCachesEmptyResult(t *testing.T) {
	sw := &fakeStarWars{planets: []sources.Planet{{Name: "Endor", Climate: "forests"}}}
	exo := &fakeExoplanets{exoplanets: []sources.Exoplanet{{Name: "Warm-1", Temperature: "120°C"}}}
	svc, _ := newTestService(t, sw, exo, &fakeRelationStore{})

	fused, err := svc.ComputeFusedRelations(context.Background())
	require.NoError(t, err)
	require.Empty(t, fused)

	// The empty list was cached; a second call must not refetch.
	_, err = svc.ComputeFusedRelations(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sw.listCalls)
	require.Equal(t, 1, exo.listCalls)
}

func TestComputeFusedRelationsUpstreamFailure(t *testing.T) {
	sw := &fakeStarWars{listErr: errors.New("boom")}
	exo := &fakeExoplanets{exoplanets: []sources.Exoplanet{{Name: "Scorch-1", Temperature: "410°C"}}}
	svc, cacheStore := newTestService(t, sw, exo, &fakeRelationStore{})

	_, err := svc.ComputeFusedRelations(context.Background())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.ErrUpstream.Code, appErr.Code)

	// A failed computation must not poison the cache.
	_, found, cacheErr := cacheStore.Get(context.Background(), FusedCacheKey)
	require.NoError(t, cacheErr)
	require.False(t, found)
}

func TestComputeFusedRelationsSurvivesPersistFailure(t *testing.T) {
	sw := &fakeStarWars{planets: hotPlanets(2)}
	exo := &fakeExoplanets{exoplanets: []sources.Exoplanet{{Name: "Scorch-1", Temperature: "410°C"}}}
	rels := &fakeRelationStore{insertErr: errors.New("disk full")}
	svc, _ := newTestService(t, sw, exo, rels)

	fused, err := svc.ComputeFusedRelations(context.Background())
	require.NoError(t, err)
	require.Len(t, fused, 2)
}

func TestSubmitRelationUnknownPlanet(t *testing.T) {
	sw := &fakeStarWars{planets: []sources.Planet{{Name: "Tatooine", Climate: "arid"}}}
	exo := &fakeExoplanets{exoplanets: []sources.Exoplanet{{Name: "Kepler-10b", Temperature: "410°C"}}}
	rels := &fakeRelationStore{}
	svc, _ := newTestService(t, sw, exo, rels)

	_, err := svc.SubmitRelation(context.Background(), SubmitRelationInput{
		StarWarsPlanet: "Alderaan II",
		Exoplanet:      "Kepler-10b",
		Description:    "definitely long enough",
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.ErrNotFound.Code, appErr.Code)
	require.Empty(t, rels.inserted)
}

func TestSubmitRelationUnknownExoplanet(t *testing.T) {
	sw := &fakeStarWars{planets: []sources.Planet{{Name: "Tatooine", Climate: "arid"}}}
	exo := &fakeExoplanets{}
	rels := &fakeRelationStore{}
	svc, _ := newTestService(t, sw, exo, rels)

	_, err := svc.SubmitRelation(context.Background(), SubmitRelationInput{
		StarWarsPlanet: "Tatooine",
		Exoplanet:      "Nonexistent b",
		Description:    "definitely long enough",
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.ErrNotFound.Code, appErr.Code)
	require.Empty(t, rels.inserted)
}

func TestSubmitRelationPersistsAndInvalidatesCache(t *testing.T) {
	sw := &fakeStarWars{planets: []sources.Planet{{Name: "Tatooine", Climate: "arid"}}}
	exo := &fakeExoplanets{
		exoplanets: []sources.Exoplanet{{Name: "Kepler-10b", Temperature: "410°C"}},
		images:     []string{"https://img.test/k10b.jpg"},
	}
	rels := &fakeRelationStore{}
	svc, cacheStore := newTestService(t, sw, exo, rels)

	// Prime the aggregate cache so invalidation is observable.
	require.NoError(t, cacheStore.Set(context.Background(), FusedCacheKey, []byte("[]"), time.Minute))

	relation, err := svc.SubmitRelation(context.Background(), SubmitRelationInput{
		StarWarsPlanet: "Tatooine",
		Exoplanet:      "Kepler-10b",
		Description:    "twin suns and molten rock",
	})
	require.NoError(t, err)
	require.NotEmpty(t, relation.ID)
	require.Equal(t, "https://img.test/k10b.jpg", relation.ImageURL)
	require.Len(t, rels.inserted, 1)

	_, found, err := cacheStore.Get(context.Background(), FusedCacheKey)
	require.NoError(t, err)
	require.False(t, found)
}

func TestSubmitRelationKeepsProvidedImage(t *testing.T) {
	sw := &fakeStarWars{planets: []sources.Planet{{Name: "Tatooine", Climate: "arid"}}}
	exo := &fakeExoplanets{
		exoplanets: []sources.Exoplanet{{Name: "Kepler-10b", Temperature: "410°C"}},
		images:     []string{"https://img.test/other.jpg"},
	}
	svc, _ := newTestService(t, sw, exo, &fakeRelationStore{})

	relation, err := svc.SubmitRelation(context.Background(), SubmitRelationInput{
		StarWarsPlanet: "Tatooine",
		Exoplanet:      "Kepler-10b",
		Description:    "twin suns and molten rock",
		ImageURL:       "https://img.test/mine.jpg",
	})
	require.NoError(t, err)
	require.Equal(t, "https://img.test/mine.jpg", relation.ImageURL)
}

func TestPurgeRelations(t *testing.T) {
	sw := &fakeStarWars{planets: hotPlanets(1)}
	exo := &fakeExoplanets{exoplanets: []sources.Exoplanet{{Name: "Scorch-1", Temperature: "410°C"}}}
	rels := &fakeRelationStore{}
	svc, cacheStore := newTestService(t, sw, exo, rels)

	_, err := svc.ComputeFusedRelations(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.PurgeRelations(context.Background()))
	require.True(t, rels.cleared)

	_, found, err := cacheStore.Get(context.Background(), FusedCacheKey)
	require.NoError(t, err)
	require.False(t, found)
}

func TestPurgeRelationsStoreFailure(t *testing.T) {
	sw := &fakeStarWars{planets: hotPlanets(1)}
	exo := &fakeExoplanets{exoplanets: []sources.Exoplanet{{Name: "Scorch-1", Temperature: "410°C"}}}
	rels := &fakeRelationStore{clearErr: errors.New("locked")}
	svc, _ := newTestService(t, sw, exo, rels)

	err := svc.PurgeRelations(context.Background())

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.ErrPersistence.Code, appErr.Code)
}
