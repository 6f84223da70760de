package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/exowars/exowars/internal/api"
	"github.com/exowars/exowars/internal/app"
	iauth "github.com/exowars/exowars/internal/auth"
	"github.com/exowars/exowars/internal/cache"
	"github.com/exowars/exowars/internal/database"
	"github.com/exowars/exowars/internal/middleware"
	"github.com/exowars/exowars/internal/services"
	"github.com/exowars/exowars/internal/sources"
	"github.com/exowars/exowars/internal/store"
	"github.com/exowars/exowars/pkg/logger"
)

const version = "1.0.0"

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Error("server exited", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(ctx context.Context) error {
	configPath := flag.String("config", "", "additional directory to search for config.yaml")
	flag.Parse()

	var searchPaths []string
	if *configPath != "" {
		searchPaths = append(searchPaths, *configPath)
	}

	cfg, err := app.LoadConfig(searchPaths...)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Options{Level: cfg.Server.LogLevel, Format: cfg.Server.LogFormat}); err != nil {
		return err
	}
	log := logger.WithModule("server")

	cacheStore := buildCache(cfg, log)

	relations, closeStore, err := buildRelationStore(cfg)
	if err != nil {
		return fmt.Errorf("open relation store: %w", err)
	}
	defer closeStore()

	if err := relations.Init(ctx); err != nil {
		return fmt.Errorf("init relation store: %w", err)
	}

	swapi := sources.NewSwapiClient(cfg.Sources.SwapiClientConfig(), cacheStore)
	nasa := sources.NewNasaClient(cfg.Sources.NasaClientConfig(), cacheStore)

	fusion, err := services.NewFusionService(swapi, nasa, cacheStore, relations)
	if err != nil {
		return err
	}

	jwtService, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Deps{
		Engine:    fusion,
		Relations: relations,
		Images:    nasa,
		JWT:       jwtService,
		Rate:      middleware.NewCacheRateStore(cacheStore),
		APIRate:   middleware.RateWindow{Requests: cfg.RateLimit.API.Requests, Window: cfg.RateLimit.API.Window},
		Submit:    middleware.RateWindow{Requests: cfg.RateLimit.Submit.Requests, Window: cfg.RateLimit.Submit.Window},
		Version:   version,
	})

	return serve(ctx, router, cfg.Server.Port, log)
}

// buildCache assembles the layered cache: Redis when enabled, always backed
// by the in-process fallback so a Redis outage degrades instead of failing.
func buildCache(cfg *app.Config, log *zap.Logger) cache.Store {
	local := cache.NewMemoryStore(cfg.Cache.LocalTTL)

	var primary cache.Store
	if cfg.Cache.Redis.Enabled {
		client, err := cache.NewRedisClient(cfg.Cache.RedisClientConfig())
		if err != nil {
			log.Warn("redis unavailable, using local cache only", zap.Error(err))
		} else {
			primary = client
		}
	}

	return cache.NewLayeredStore(primary, local, log)
}

func buildRelationStore(cfg *app.Config) (store.RelationStore, func(), error) {
	if cfg.Database.Driver == "leveldb" {
		level, err := store.OpenLevelStore(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return level, func() { _ = level.Close() }, nil
	}

	db, err := database.Open(cfg.Database.DatabaseOptions())
	if err != nil {
		return nil, nil, err
	}
	gormStore, err := store.NewGormStore(db)
	if err != nil {
		return nil, nil, err
	}
	return gormStore, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}

func serve(ctx context.Context, router *gin.Engine, port int, log *zap.Logger) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
