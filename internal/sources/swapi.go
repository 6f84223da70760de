package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/exowars/exowars/internal/cache"
	"github.com/exowars/exowars/pkg/logger"
)

// Planet is a Star Wars catalog record, immutable once fetched.
type Planet struct {
	Name       string `json:"name"`
	Climate    string `json:"climate"`
	Terrain    string `json:"terrain"`
	Population string `json:"population"`
	Diameter   string `json:"diameter"`
}

// swapiMaxPages bounds catalog pagination so one slow upstream page chain
// cannot stall a fusion computation indefinitely.
const swapiMaxPages = 10

// SwapiClient fetches Star Wars planets from the public SWAPI catalog.
type SwapiClient struct {
	baseURL string
	http    *http.Client
	cache   cache.Store
	log     *zap.Logger
}

// SwapiConfig configures the SWAPI connector.
type SwapiConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewSwapiClient constructs a SWAPI connector caching results in store.
func NewSwapiClient(cfg SwapiConfig, store cache.Store) *SwapiClient {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://swapi.dev/api"
	}
	return &SwapiClient{
		baseURL: baseURL,
		http:    newHTTPClient(cfg.Timeout),
		cache:   store,
		log:     logger.WithModule("swapi"),
	}
}

type swapiPlanetPage struct {
	Next    *string `json:"next"`
	Results []struct {
		Name       string `json:"name"`
		Climate    string `json:"climate"`
		Terrain    string `json:"terrain"`
		Population string `json:"population"`
		Diameter   string `json:"diameter"`
	} `json:"results"`
}

// ListPlanets returns the full planet catalog, following pagination links.
func (c *SwapiClient) ListPlanets(ctx context.Context) ([]Planet, error) {
	const cacheKey = "swapi_planets"

	var cached []Planet
	if readCached(ctx, c.cache, cacheKey, &cached) {
		c.log.Debug("planet catalog served from cache", zap.Int("count", len(cached)))
		return cached, nil
	}

	var planets []Planet
	next := c.baseURL + "/planets/"

	for page := 1; next != "" && page <= swapiMaxPages; page++ {
		var body swapiPlanetPage
		if err := getJSON(ctx, c.http, "swapi", next, nil, &body); err != nil {
			return nil, fmt.Errorf("swapi: list planets: %w", err)
		}

		for _, item := range body.Results {
			planets = append(planets, Planet(item))
		}

		next = ""
		if body.Next != nil {
			next = *body.Next
		}
	}

	writeCached(ctx, c.cache, cacheKey, planets, catalogTTL)
	return planets, nil
}

// FindPlanet looks a planet up by name using SWAPI's substring search,
// returning nil when nothing matches.
func (c *SwapiClient) FindPlanet(ctx context.Context, name string) (*Planet, error) {
	cacheKey := "swapi_planet_" + strings.ToLower(name)

	var cached Planet
	if readCached(ctx, c.cache, cacheKey, &cached) {
		return &cached, nil
	}

	searchURL := fmt.Sprintf("%s/planets/?search=%s", c.baseURL, url.QueryEscape(name))

	var body swapiPlanetPage
	if err := getJSON(ctx, c.http, "swapi", searchURL, nil, &body); err != nil {
		return nil, fmt.Errorf("swapi: find planet %q: %w", name, err)
	}

	if len(body.Results) == 0 {
		return nil, nil
	}

	planet := Planet(body.Results[0])
	writeCached(ctx, c.cache, cacheKey, planet, catalogTTL)
	return &planet, nil
}
