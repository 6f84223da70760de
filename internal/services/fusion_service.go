package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/exowars/exowars/internal/cache"
	"github.com/exowars/exowars/internal/models"
	"github.com/exowars/exowars/internal/sources"
	"github.com/exowars/exowars/internal/store"
	apperrors "github.com/exowars/exowars/pkg/errors"
	"github.com/exowars/exowars/pkg/logger"
	"github.com/exowars/exowars/pkg/metrics"
)

const (
	// FusedCacheKey holds the aggregate fusion result.
	FusedCacheKey = "fused_relations"

	fusedCacheTTL   = 1800 * time.Second
	maxFusedResults = 10
)

// StarWarsSource is the Star Wars catalog contract consumed by the engine.
type StarWarsSource interface {
	ListPlanets(ctx context.Context) ([]sources.Planet, error)
	FindPlanet(ctx context.Context, name string) (*sources.Planet, error)
}

// ExoplanetSource is the NASA catalog contract consumed by the engine.
// FindImages never fails upward; lookup failures degrade to an empty list.
type ExoplanetSource interface {
	ListExoplanets(ctx context.Context) ([]sources.Exoplanet, error)
	FindExoplanet(ctx context.Context, name string) (*sources.Exoplanet, error)
	FindImages(ctx context.Context, name string) []string
}

// FusedRelation pairs one Star Wars planet with one exoplanet, carrying the
// generated description and the exoplanet's physical attributes.
type FusedRelation struct {
	StarWarsPlanet     string `json:"starwars_planet"`
	Exoplanet          string `json:"exoplanet"`
	Description        string `json:"description"`
	ImageURL           string `json:"image_url"`
	Temperature        string `json:"temperature"`
	DistanceFromEarth  string `json:"distance_from_earth"`
	StellarAge         string `json:"stellar_age,omitempty"`
	RightAscension     string `json:"right_ascension,omitempty"`
	Declination        string `json:"declination,omitempty"`
	DistanceLightYears string `json:"distance_light_years,omitempty"`
}

// SubmitRelationInput is a caller-supplied relation candidate. Field-level
// validation (required fields, description length 10-500) happens at the
// boundary before the engine is invoked.
type SubmitRelationInput struct {
	StarWarsPlanet string
	Exoplanet      string
	Description    string
	ImageURL       string
}

// FusionService is the data-fusion engine: it correlates the two catalogs,
// generates derived descriptions, persists pairings and coordinates the
// aggregate-result cache entry.
type FusionService struct {
	starwars  StarWarsSource
	exoplanet ExoplanetSource
	cache     cache.Store
	relations store.RelationStore
	log       *zap.Logger
}

// NewFusionService constructs the fusion engine.
func NewFusionService(starwars StarWarsSource, exoplanet ExoplanetSource, cacheStore cache.Store, relations store.RelationStore) (*FusionService, error) {
	if starwars == nil || exoplanet == nil {
		return nil, errors.New("fusion service: both source connectors are required")
	}
	if cacheStore == nil {
		return nil, errors.New("fusion service: cache store is required")
	}
	if relations == nil {
		return nil, errors.New("fusion service: relation store is required")
	}
	return &FusionService{
		starwars:  starwars,
		exoplanet: exoplanet,
		cache:     cacheStore,
		relations: relations,
		log:       logger.WithModule("fusion"),
	}, nil
}

// ComputeFusedRelations returns at most ten fused pairings, one exoplanet per
// Star Wars planet, selected first-match in catalog order. The result is
// served verbatim from cache within the TTL window; otherwise both catalogs
// are fetched concurrently and the freshly computed list is cached
// unconditionally, empty lists included.
func (s *FusionService) ComputeFusedRelations(ctx context.Context) ([]FusedRelation, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if cached, ok := s.cachedRelations(ctx); ok {
		s.log.Debug("fused relations served from cache", zap.Int("count", len(cached)))
		return cached, nil
	}

	var (
		planets    []sources.Planet
		exoplanets []sources.Exoplanet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		planets, err = s.starwars.ListPlanets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		exoplanets, err = s.exoplanet.ListExoplanets(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.ErrUpstream.WithInternal(err)
	}

	fused := make([]FusedRelation, 0, maxFusedResults)

	for _, planet := range planets {
		match, rule := firstMatch(planet, exoplanets)
		if match == nil {
			continue
		}

		description := describe(planet.Name, match.Name, planet.Climate, match.Temperature)

		imageURL := ""
		if images := s.exoplanet.FindImages(ctx, match.Name); len(images) > 0 {
			imageURL = images[0]
		}

		relation := FusedRelation{
			StarWarsPlanet:     planet.Name,
			Exoplanet:          match.Name,
			Description:        description,
			ImageURL:           imageURL,
			Temperature:        match.Temperature,
			DistanceFromEarth:  match.DistanceFromEarth,
			StellarAge:         match.StellarAge,
			RightAscension:     match.RightAscension,
			Declination:        match.Declination,
			DistanceLightYears: match.DistanceLightYears,
		}

		// Best-effort persistence: a store failure must not abort the
		// computation for other pairs or fail the request.
		s.persistFused(ctx, relation)

		metrics.FusionMatches.WithLabelValues(rule).Inc()
		fused = append(fused, relation)

		if len(fused) == maxFusedResults {
			break
		}
	}

	s.storeRelationsCache(ctx, fused)
	return fused, nil
}

// SubmitRelation validates a user-supplied pairing against both catalogs,
// resolves a missing image, persists it and invalidates the aggregate cache.
func (s *FusionService) SubmitRelation(ctx context.Context, input SubmitRelationInput) (*models.PlanetRelation, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	planet, err := s.starwars.FindPlanet(ctx, input.StarWarsPlanet)
	if err != nil {
		return nil, apperrors.ErrUpstream.WithInternal(err)
	}
	if planet == nil {
		return nil, apperrors.NewNotFound(fmt.Sprintf("planet %q absent from the Star Wars catalog", input.StarWarsPlanet))
	}

	exoplanet, err := s.exoplanet.FindExoplanet(ctx, input.Exoplanet)
	if err != nil {
		return nil, apperrors.ErrUpstream.WithInternal(err)
	}
	if exoplanet == nil {
		return nil, apperrors.NewNotFound(fmt.Sprintf("exoplanet %q absent from the NASA archive", input.Exoplanet))
	}

	imageURL := input.ImageURL
	if imageURL == "" {
		if images := s.exoplanet.FindImages(ctx, input.Exoplanet); len(images) > 0 {
			imageURL = images[0]
		}
	}

	relation := &models.PlanetRelation{
		StarWarsPlanet: input.StarWarsPlanet,
		Exoplanet:      input.Exoplanet,
		Description:    input.Description,
		ImageURL:       imageURL,
	}

	if _, err := s.relations.Insert(ctx, relation); err != nil {
		return nil, apperrors.ErrPersistence.WithInternal(err)
	}

	// The aggregate entry must never outlive a write that affects it.
	if err := s.cache.Delete(ctx, FusedCacheKey); err != nil {
		s.log.Warn("failed to invalidate fused relations cache", zap.Error(err))
	}

	return relation, nil
}

// PurgeRelations removes every stored relation and empties the cache.
func (s *FusionService) PurgeRelations(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.relations.Clear(ctx); err != nil {
		return apperrors.ErrPersistence.WithInternal(err)
	}

	if err := s.cache.Flush(ctx); err != nil {
		s.log.Warn("failed to flush cache", zap.Error(err))
	}
	return nil
}

// firstMatch scans exoplanets in catalog order and returns the first one the
// planet's climate rule accepts. First match wins; no scoring.
func firstMatch(planet sources.Planet, exoplanets []sources.Exoplanet) (*sources.Exoplanet, string) {
	for i := range exoplanets {
		if rule, ok := matchRule(planet.Climate, exoplanets[i].Temperature); ok {
			return &exoplanets[i], rule
		}
	}
	return nil, ""
}

func (s *FusionService) persistFused(ctx context.Context, relation FusedRelation) {
	_, err := s.relations.Insert(ctx, &models.PlanetRelation{
		StarWarsPlanet: relation.StarWarsPlanet,
		Exoplanet:      relation.Exoplanet,
		Description:    relation.Description,
		ImageURL:       relation.ImageURL,
	})
	if err != nil {
		s.log.Warn("failed to persist fused relation",
			zap.String("starwars_planet", relation.StarWarsPlanet),
			zap.String("exoplanet", relation.Exoplanet),
			zap.Error(err),
		)
	}
}

func (s *FusionService) cachedRelations(ctx context.Context) ([]FusedRelation, bool) {
	raw, found, err := s.cache.Get(ctx, FusedCacheKey)
	if err != nil || !found {
		metrics.CacheLookups.WithLabelValues(FusedCacheKey, "miss").Inc()
		return nil, false
	}

	var cached []FusedRelation
	if err := json.Unmarshal(raw, &cached); err != nil {
		metrics.CacheLookups.WithLabelValues(FusedCacheKey, "miss").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues(FusedCacheKey, "hit").Inc()
	return cached, true
}

func (s *FusionService) storeRelationsCache(ctx context.Context, fused []FusedRelation) {
	raw, err := json.Marshal(fused)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, FusedCacheKey, raw, fusedCacheTTL); err != nil {
		s.log.Warn("failed to cache fused relations", zap.Error(err))
	}
}
