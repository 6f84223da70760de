package store

import (
	"context"
	"strings"

	"github.com/exowars/exowars/internal/models"
)

// Sortable columns accepted by List. Anything else silently falls back to
// created_at, which also guards the SQL backend against injection.
const (
	SortByStarWarsPlanet = "starwars_planet"
	SortByExoplanet      = "exoplanet"
	SortByCreatedAt      = "created_at"
)

// ListOptions controls pagination and ordering of relation history.
type ListOptions struct {
	Page     int    // 1-indexed
	PageSize int
	SortBy   string
	Order    string // ASC or DESC; defaults to DESC
}

// Page is one page of relation history.
type Page struct {
	Page  int                     `json:"page"`
	Total int64                   `json:"total"`
	Data  []models.PlanetRelation `json:"data"`
}

// RelationStore is the durable storage contract for planet relations. Both
// backends expose identical ordering and paging semantics.
type RelationStore interface {
	Init(ctx context.Context) error
	Insert(ctx context.Context, relation *models.PlanetRelation) (string, error)
	List(ctx context.Context, opts ListOptions) (*Page, error)
	Clear(ctx context.Context) error
}

const defaultPageSize = 10

func (o *ListOptions) normalise() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = defaultPageSize
	}

	switch o.SortBy {
	case SortByStarWarsPlanet, SortByExoplanet, SortByCreatedAt:
	default:
		o.SortBy = SortByCreatedAt
	}

	if !strings.EqualFold(o.Order, "ASC") {
		o.Order = "DESC"
	} else {
		o.Order = "ASC"
	}
}
