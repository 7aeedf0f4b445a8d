package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobsonar/internal/logging"
	"jobsonar/internal/store"
	"jobsonar/pkg/models"
	"jobsonar/pkg/utils"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	requestID := utils.GenerateRequestID()
	logger := logging.GetGlobalLogger()

	logger.Debug("Health check requested", map[string]interface{}{"request_id": requestID})

	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   version,
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	}

	return c.JSON(http.StatusOK, response)
}

// ReadinessHandler handles readiness probe requests. Ready means the
// store answers queries.
func ReadinessHandler(st *store.Store, cache *utils.RedisClient) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := map[string]string{"api": "ok"}
		status := "ready"
		code := http.StatusOK

		if err := st.Ping(c.Request().Context()); err != nil {
			checks["store"] = err.Error()
			status = "not_ready"
			code = http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}

		// The hash cache is an accelerator, a failure degrades but does
		// not block readiness
		if cache != nil {
			if err := cache.IsHealthy(c.Request().Context()); err != nil {
				checks["redis"] = "degraded"
			} else {
				checks["redis"] = "ok"
			}
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   version,
		Uptime:    time.Since(startTime),
	})
}
