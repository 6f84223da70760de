package sources

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/exowars/exowars/internal/cache"
	"github.com/exowars/exowars/pkg/logger"
)

// Exoplanet is a NASA exoplanet archive record with display-formatted fields.
// Numeric values the archive does not know render as "unknown".
type Exoplanet struct {
	Name               string `json:"name"`
	Temperature        string `json:"temperature"`
	DistanceFromEarth  string `json:"distance_from_earth"`
	Description        string `json:"description"`
	ImageURL           string `json:"image_url,omitempty"`
	StellarAge         string `json:"stellar_age,omitempty"`
	RightAscension     string `json:"right_ascension,omitempty"`
	Declination        string `json:"declination,omitempty"`
	DistanceLightYears string `json:"distance_light_years,omitempty"`
}

// UnknownValue marks numeric catalog fields the archive has no reading for.
const UnknownValue = "unknown"

const (
	tapColumns = "pl_name,pl_eqt,pl_orbsmax,disc_year,st_age,ra,dec,sy_dist"
	maxImages  = 5
)

// NasaClient fetches exoplanets from the NASA Exoplanet Archive TAP service
// and illustrative images from the NASA image library.
type NasaClient struct {
	exoplanetURL string
	imageURL     string
	apiKey       string
	http         *http.Client
	cache        cache.Store
	log          *zap.Logger
}

// NasaConfig configures the NASA connector.
type NasaConfig struct {
	ExoplanetURL string
	ImageURL     string
	APIKey       string
	Timeout      time.Duration
}

// NewNasaClient constructs a NASA connector caching results in store.
func NewNasaClient(cfg NasaConfig, store cache.Store) *NasaClient {
	exoplanetURL := strings.TrimSuffix(cfg.ExoplanetURL, "/")
	if exoplanetURL == "" {
		exoplanetURL = "https://exoplanetarchive.ipac.caltech.edu/TAP/sync"
	}
	imageURL := strings.TrimSuffix(cfg.ImageURL, "/")
	if imageURL == "" {
		imageURL = "https://images-api.nasa.gov"
	}
	return &NasaClient{
		exoplanetURL: exoplanetURL,
		imageURL:     imageURL,
		apiKey:       cfg.APIKey,
		http:         newHTTPClient(cfg.Timeout),
		cache:        store,
		log:          logger.WithModule("nasa"),
	}
}

type tapRow struct {
	Name           string   `json:"pl_name"`
	EquilibriumK   *float64 `json:"pl_eqt"`
	OrbitalAU      *float64 `json:"pl_orbsmax"`
	DiscoveryYear  *int     `json:"disc_year"`
	StellarAge     *float64 `json:"st_age"`
	RightAscension *float64 `json:"ra"`
	Declination    *float64 `json:"dec"`
	DistanceLY     *float64 `json:"sy_dist"`
}

// ListExoplanets returns nearby confirmed exoplanets (within 20 light-years).
func (c *NasaClient) ListExoplanets(ctx context.Context) ([]Exoplanet, error) {
	const cacheKey = "nasa_exoplanets"

	var cached []Exoplanet
	if readCached(ctx, c.cache, cacheKey, &cached) {
		c.log.Debug("exoplanet catalog served from cache", zap.Int("count", len(cached)))
		return cached, nil
	}

	query := fmt.Sprintf("SELECT %s FROM ps WHERE sy_dist>0 and sy_dist<20 and default_flag=1", tapColumns)

	var rows []tapRow
	if err := getJSON(ctx, c.http, "nasa_exoplanet", c.tapURL(query), c.headers(), &rows); err != nil {
		return nil, fmt.Errorf("nasa: list exoplanets: %w", err)
	}

	exoplanets := make([]Exoplanet, 0, len(rows))
	for _, row := range rows {
		exoplanets = append(exoplanets, row.toExoplanet())
	}

	writeCached(ctx, c.cache, cacheKey, exoplanets, catalogTTL)
	return exoplanets, nil
}

// FindExoplanet looks an exoplanet up by exact name, returning nil when the
// archive has no such planet.
func (c *NasaClient) FindExoplanet(ctx context.Context, name string) (*Exoplanet, error) {
	cacheKey := "nasa_exoplanet_" + strings.ToLower(name)

	var cached Exoplanet
	if readCached(ctx, c.cache, cacheKey, &cached) {
		return &cached, nil
	}

	escaped := strings.ReplaceAll(name, "'", "''")
	query := fmt.Sprintf("SELECT %s FROM ps WHERE pl_name like '%s' and default_flag=1", tapColumns, escaped)

	var rows []tapRow
	if err := getJSON(ctx, c.http, "nasa_exoplanet", c.tapURL(query), c.headers(), &rows); err != nil {
		return nil, fmt.Errorf("nasa: find exoplanet %q: %w", name, err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	exoplanet := rows[0].toExoplanet()
	if images := c.FindImages(ctx, exoplanet.Name); len(images) > 0 {
		exoplanet.ImageURL = images[0]
	}

	writeCached(ctx, c.cache, cacheKey, exoplanet, catalogTTL)
	return &exoplanet, nil
}

type imageSearchResult struct {
	Collection struct {
		Items []struct {
			Links []struct {
				Href string `json:"href"`
			} `json:"links"`
		} `json:"items"`
	} `json:"collection"`
}

// FindImages returns up to five illustrative image URLs for an exoplanet.
// Failures degrade to an empty list and are never propagated; when the named
// search finds nothing, a generic exoplanet search supplies stand-ins.
func (c *NasaClient) FindImages(ctx context.Context, name string) []string {
	cacheKey := "nasa_images_" + strings.ToLower(name)

	var cached []string
	if readCached(ctx, c.cache, cacheKey, &cached) {
		return cached
	}

	images := c.searchImages(ctx, name+" exoplanet")
	if len(images) == 0 {
		images = c.searchImages(ctx, "exoplanet")
	}
	if len(images) == 0 {
		return nil
	}

	writeCached(ctx, c.cache, cacheKey, images, imageTTL)
	return images
}

func (c *NasaClient) searchImages(ctx context.Context, term string) []string {
	searchURL := fmt.Sprintf("%s/search?q=%s&media_type=image", c.imageURL, url.QueryEscape(term))

	var body imageSearchResult
	if err := getJSON(ctx, c.http, "nasa_images", searchURL, nil, &body); err != nil {
		c.log.Warn("image search failed", zap.String("term", term), zap.Error(err))
		return nil
	}

	var images []string
	for _, item := range body.Collection.Items {
		if len(item.Links) == 0 || item.Links[0].Href == "" {
			continue
		}
		images = append(images, item.Links[0].Href)
		if len(images) == maxImages {
			break
		}
	}
	return images
}

func (c *NasaClient) tapURL(query string) string {
	return fmt.Sprintf("%s?query=%s&format=json", c.exoplanetURL, url.QueryEscape(query))
}

func (c *NasaClient) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"X-API-Key": c.apiKey}
}

// The archive encodes missing readings as JSON null or a literal zero; both
// render as "unknown".
func (r tapRow) toExoplanet() Exoplanet {
	discovery := "an unknown year"
	if r.DiscoveryYear != nil && *r.DiscoveryYear != 0 {
		discovery = strconv.Itoa(*r.DiscoveryYear)
	}

	return Exoplanet{
		Name:               r.Name,
		Temperature:        formatRounded(r.EquilibriumK, "°C"),
		DistanceFromEarth:  formatFloat(r.OrbitalAU, " AU"),
		Description:        fmt.Sprintf("Exoplanet discovered in %s", discovery),
		StellarAge:         formatFloat(r.StellarAge, " billion years"),
		RightAscension:     formatFloat(r.RightAscension, "°"),
		Declination:        formatFloat(r.Declination, "°"),
		DistanceLightYears: formatFloat(r.DistanceLY, " light-years"),
	}
}

func formatRounded(v *float64, unit string) string {
	if v == nil || *v == 0 {
		return UnknownValue
	}
	return strconv.Itoa(int(math.Round(*v))) + unit
}

func formatFloat(v *float64, unit string) string {
	if v == nil || *v == 0 {
		return UnknownValue
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + unit
}
