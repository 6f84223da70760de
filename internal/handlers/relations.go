package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/exowars/exowars/internal/services"
	"github.com/exowars/exowars/internal/store"
	"github.com/exowars/exowars/pkg/response"
)

const maxPageSize = 100

// RelationHandler serves relation submission, history and bulk clearing.
type RelationHandler struct {
	engine    FusionEngine
	relations store.RelationStore
}

// NewRelationHandler constructs a RelationHandler.
func NewRelationHandler(engine FusionEngine, relations store.RelationStore) *RelationHandler {
	return &RelationHandler{engine: engine, relations: relations}
}

type submitRelationRequest struct {
	StarWarsPlanet string `json:"starwars_planet" validate:"required"`
	Exoplanet      string `json:"exoplanet" validate:"required"`
	Description    string `json:"description" validate:"required,min=10,max=500"`
	ImageURL       string `json:"image_url" validate:"omitempty,url"`
}

// Create accepts a user-submitted relation candidate.
func (h *RelationHandler) Create(c *gin.Context) {
	var req submitRelationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	relation, err := h.engine.SubmitRelation(c.Request.Context(), services.SubmitRelationInput{
		StarWarsPlanet: req.StarWarsPlanet,
		Exoplanet:      req.Exoplanet,
		Description:    req.Description,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, relation)
}

// List returns one page of relation history.
func (h *RelationHandler) List(c *gin.Context) {
	opts := store.ListOptions{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 10),
		SortBy:   c.Query("sort_by"),
		Order:    c.Query("order"),
	}
	if opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}

	page, err := h.relations.List(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	totalPages := 0
	if page.Total > 0 {
		totalPages = int((page.Total + int64(opts.PageSize) - 1) / int64(opts.PageSize))
	}

	response.SuccessWithMeta(c, http.StatusOK, page.Data, &response.Meta{
		Page:       page.Page,
		PerPage:    opts.PageSize,
		Total:      page.Total,
		TotalPages: totalPages,
	})
}

// Purge removes every stored relation and empties the cache.
func (h *RelationHandler) Purge(c *gin.Context) {
	if err := h.engine.PurgeRelations(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
