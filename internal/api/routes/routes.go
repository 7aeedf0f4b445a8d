package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"jobsonar/internal/api/handlers"
	"jobsonar/internal/api/middleware"
	"jobsonar/internal/config"
	"jobsonar/internal/pipeline"
	"jobsonar/internal/store"
	"jobsonar/pkg/utils"
)

// Deps carries the runtime state the HTTP surface reads from
type Deps struct {
	Store    *store.Store
	Pipeline *pipeline.Pipeline
	Pool     *pipeline.Pool
	Cache    *utils.RedisClient

	Paused     func() bool
	HasProfile func() bool
	Threshold  func() int
}

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, deps Deps) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	// Posting tests may scrape application pages, give them longer
	e.Use(middleware.SelectiveTimeoutConfig(cfg.Server.ReadTimeout, 2*time.Minute))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(deps.Store, deps.Cache))
		health.GET("/live", handlers.LivenessHandler)
	}

	// Status route
	e.GET("/status", handlers.StatsHandler(deps.Store, deps.Threshold, deps.Paused, deps.HasProfile))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		postings := v1.Group("/postings")
		{
			postings.POST("/test", handlers.TestPostingHandler(deps.Pipeline))
		}

		v1.GET("/matches/recent", handlers.RecentMatchesHandler(deps.Store))
		v1.GET("/stats", handlers.StatsHandler(deps.Store, deps.Threshold, deps.Paused, deps.HasProfile))

		channels := v1.Group("/channels")
		{
			channels.GET("", handlers.ListChannelsHandler(deps.Store))
			channels.POST("", handlers.AddChannelHandler(deps.Store))
			channels.DELETE("/:id", handlers.RemoveChannelHandler(deps.Store))
		}

		filters := v1.Group("/filters")
		{
			filters.GET("", handlers.ListFiltersHandler(deps.Store))
			filters.POST("", handlers.AddFilterHandler(deps.Store))
			filters.DELETE("/:id", handlers.RemoveFilterHandler(deps.Store))
		}

		v1.GET("/pool/stats", handlers.PoolStatsHandler(deps.Pool))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "JobSonar",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
