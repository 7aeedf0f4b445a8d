package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobsonar/internal/pipeline"
)

// PoolStatsHandler exposes the processing pool counters
func PoolStatsHandler(pool *pipeline.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats := pool.Stats()
		return c.JSON(http.StatusOK, map[string]interface{}{
			"running":   pool.IsRunning(),
			"queued":    stats.Queued,
			"processed": stats.Processed,
			"alerted":   stats.Alerted,
			"skipped":   stats.Skipped,
			"failed":    stats.Failed,
			"timestamp": time.Now(),
		})
	}
}
