package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"jobsonar/internal/store"
	"jobsonar/pkg/models"
	"jobsonar/pkg/utils"
)

const defaultMatchesLimit = 10

// RecentMatchesHandler lists the newest matched jobs
func RecentMatchesHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := defaultMatchesLimit
		if raw := c.QueryParam("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
				limit = parsed
			}
		}

		matches, err := st.RecentMatches(c.Request().Context(), limit)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "store_error",
				Message:   err.Error(),
				RequestID: utils.GenerateRequestID(),
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, models.MatchesResponse{
			Matches: matches,
			Count:   len(matches),
		})
	}
}

// StatsHandler returns aggregate pipeline counters
func StatsHandler(st *store.Store, threshold func() int, paused func() bool, hasProfile func() bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		status, err := st.Stats(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "store_error",
				Message:   err.Error(),
				RequestID: utils.GenerateRequestID(),
				Timestamp: time.Now(),
			})
		}

		status.IsRunning = true
		status.IsPaused = paused()
		status.HasProfile = hasProfile()
		status.MatchThreshold = threshold()

		return c.JSON(http.StatusOK, models.StatsResponse{
			Status:    status,
			Timestamp: time.Now(),
		})
	}
}
