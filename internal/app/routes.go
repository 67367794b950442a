package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hirehub/core/internal/middleware"
	"github.com/hirehub/core/internal/modules/access"
	"github.com/hirehub/core/internal/modules/common"
	"github.com/hirehub/core/internal/modules/upload"
	"github.com/hirehub/core/internal/pkg/response"
)

const (
	apiPrefix = "/api/v1"

	anonymousRateLimit  = 120
	anonymousRateWindow = time.Minute
)

func (a *App) registerRoutes() {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":    "hirehub-core",
		"version": "1.0.0",
	}

	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth(a.db))
	if a.redis != nil {
		api.Use(middleware.RateLimit(a.redis, anonymousRateLimit, anonymousRateWindow, a.logger))
		api.Use(middleware.Idempotence(a.redis, apiPrefix+"/auth/token/"))
	}

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		up := time.Since(a.started)
		c.JSON(http.StatusOK, gin.H{
			"timestamp": up.Milliseconds(),
			"humanize":  humanizeDuration(up),
		})
	})
	api.GET("/health", a.health)

	// OptionalAuth already runs on the whole group.
	guards := common.Guards{Auth: middleware.Auth(a.db)}
	views := common.NewViews(a.engine, a.logger.Named("views"))

	tokenTTL := time.Duration(a.cfg.TokenTTLHours) * time.Hour
	access.NewHandler(access.NewService(a.db), views, tokenTTL).RegisterRoutes(api, guards)
	upload.NewHandler(views, a.store, a.cfg.Uploads, a.logger.Named("upload")).RegisterRoutes(api, guards)
}

func (a *App) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"database": "ok", "storage": a.store.Name()}

	if sqlDB, err := a.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if a.redis == nil {
		checks["redis"] = "disabled"
	} else if err := a.redis.Raw().Ping(ctx).Err(); err != nil {
		checks["redis"] = "unavailable"
		status = http.StatusServiceUnavailable
	} else {
		checks["redis"] = "ok"
	}
	c.JSON(status, checks)
}
