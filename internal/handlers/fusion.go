package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/exowars/exowars/internal/models"
	"github.com/exowars/exowars/internal/services"
	"github.com/exowars/exowars/pkg/response"
)

// FusionEngine is the core contract the presentation layer consumes.
type FusionEngine interface {
	ComputeFusedRelations(ctx context.Context) ([]services.FusedRelation, error)
	SubmitRelation(ctx context.Context, input services.SubmitRelationInput) (*models.PlanetRelation, error)
	PurgeRelations(ctx context.Context) error
}

// FusionHandler serves the fused planet pairings.
type FusionHandler struct {
	engine FusionEngine
}

// NewFusionHandler constructs a FusionHandler.
func NewFusionHandler(engine FusionEngine) *FusionHandler {
	return &FusionHandler{engine: engine}
}

// List returns the current fused pairings, computed or cached.
func (h *FusionHandler) List(c *gin.Context) {
	fused, err := h.engine.ComputeFusedRelations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, fused)
}
