package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	iauth "github.com/exowars/exowars/internal/auth"
	"github.com/exowars/exowars/internal/handlers"
	"github.com/exowars/exowars/internal/middleware"
	"github.com/exowars/exowars/internal/store"
)

// Deps bundles everything the router needs.
type Deps struct {
	Engine    handlers.FusionEngine
	Relations store.RelationStore
	Images    handlers.ImageFinder
	JWT       *iauth.JWTService
	Rate      middleware.RateStore
	APIRate   middleware.RateWindow
	Submit    middleware.RateWindow
	Version   string
}

// NewRouter wires middleware, handlers and routes into a gin engine.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS())

	router.NoRoute(middleware.NotFoundHandler)

	router.GET("/health", handlers.Health(deps.Version))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	fusionHandler := handlers.NewFusionHandler(deps.Engine)
	relationHandler := handlers.NewRelationHandler(deps.Engine, deps.Relations)
	imageHandler := handlers.NewImageHandler(deps.Images)
	authHandler := handlers.NewAuthHandler(deps.JWT)

	apiLimit := middleware.RateLimit(deps.Rate, deps.APIRate.Requests, deps.APIRate.Window)
	submitLimit := middleware.RateLimit(deps.Rate, deps.Submit.Requests, deps.Submit.Window)
	authRequired := middleware.Auth(deps.JWT)

	api := router.Group("/api")
	{
		api.POST("/auth/token", authHandler.Token)

		api.GET("/fused", apiLimit, fusionHandler.List)
		api.GET("/relations", apiLimit, relationHandler.List)
		api.GET("/images/:exoplanet", apiLimit, imageHandler.Get)

		api.POST("/relations", authRequired, submitLimit, relationHandler.Create)
		api.DELETE("/relations", authRequired, relationHandler.Purge)
	}

	return router
}
