package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bookmeta/api/handler"
	"github.com/use-agent/bookmeta/api/middleware"
	"github.com/use-agent/bookmeta/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → CORS
//	API:     Auth (if enabled) → RateLimit
//
// / and /health sit outside auth so health checks always work.
// ctx bounds the rate limiter's background cleanup.
func NewRouter(ctx context.Context, finder handler.BookFinder, stats handler.PoolStatsFunc, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	r.GET("/", handler.Home(finder))
	r.GET("/health", handler.Health(finder, stats, startTime))

	api := r.Group("/api")
	if cfg.Auth.Enabled {
		api.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	api.Use(middleware.RateLimit(ctx, cfg.RateLimit))

	search := handler.Search(finder)
	api.GET("/search", search)
	api.POST("/search", search)

	api.GET("/cover/:isbn", handler.Cover(finder))
	api.GET("/cover-base64/:isbn", handler.CoverBase64(finder))

	return r
}
