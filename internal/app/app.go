package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hirehub/core/internal/config"
	"github.com/hirehub/core/internal/database"
	"github.com/hirehub/core/internal/middleware"
	"github.com/hirehub/core/internal/models"
	pkgredis "github.com/hirehub/core/internal/pkg/redis"
	"github.com/hirehub/core/internal/pkg/storage"
	"github.com/hirehub/core/internal/serializer"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	db      *gorm.DB
	redis   *pkgredis.Client
	store   storage.Backend
	engine  *serializer.Engine
	logger  *zap.Logger
	started time.Time
}

// New initializes the application: config → DB → Redis → storage → routes.
// Redis is optional; without it idempotence and rate limiting are off.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg, logger); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg, cfg.IsDev())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	var rc *pkgredis.Client
	if cfg.Redis.Enabled() {
		rc, err = pkgredis.Connect(cfg.Redis.URLValue())
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	} else {
		logger.Warn("redis is not configured, idempotence and rate limiting are disabled")
	}

	a, err := build(logger, cfg, db, rc)
	if err != nil {
		if rc != nil {
			_ = rc.Close()
		}
		return nil, err
	}
	return a, nil
}

// build wires an App around already opened connections.
func build(logger *zap.Logger, cfg *config.AppConfig, db *gorm.DB, rc *pkgredis.Client) (*App, error) {
	store, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	registry, err := models.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	engine := &serializer.Engine{
		Registry: registry,
		DB:       db,
		Files:    storage.URLer{Backend: store},
		Log:      logger.Named("serializer"),
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))

	if local, ok := store.(*storage.Local); ok {
		if base := strings.TrimSpace(cfg.Storage.Local.BaseURL); strings.HasPrefix(base, "/") {
			router.Static(strings.TrimRight(base, "/"), local.Dir())
		}
	}

	a := &App{
		cfg:     cfg,
		router:  router,
		db:      db,
		redis:   rc,
		store:   store,
		engine:  engine,
		logger:  logger,
		started: time.Now(),
	}
	a.registerRoutes()
	return a, nil
}

func corsConfig(cfg *config.AppConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Idempotence-Key"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		c.AllowOriginFunc = func(origin string) bool { return originAllowed(patterns, origin) }
	} else {
		c.AllowOriginFunc = func(string) bool { return true }
	}
	return c
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown releases the connections opened by New.
func (a *App) Shutdown() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.logger.Warn("close database", zap.Error(err))
		}
	}
}
