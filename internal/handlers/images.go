package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/exowars/exowars/pkg/errors"
	"github.com/exowars/exowars/pkg/response"
)

// ImageFinder resolves illustrative image URLs for an exoplanet name.
type ImageFinder interface {
	FindImages(ctx context.Context, name string) []string
}

// ImageHandler serves exoplanet image lookups.
type ImageHandler struct {
	finder ImageFinder
}

// NewImageHandler constructs an ImageHandler.
func NewImageHandler(finder ImageFinder) *ImageHandler {
	return &ImageHandler{finder: finder}
}

// Get returns image URLs for the named exoplanet. Lookup failures degrade to
// an empty list rather than an error.
func (h *ImageHandler) Get(c *gin.Context) {
	name := strings.TrimSpace(c.Param("exoplanet"))
	if name == "" {
		response.Error(c, apperrors.NewBadRequest("exoplanet name is required"))
		return
	}

	images := h.finder.FindImages(c.Request.Context(), name)
	if images == nil {
		images = []string{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"exoplanet": name,
		"images":    images,
	})
}
