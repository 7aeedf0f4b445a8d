package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"jobsonar/internal/logging"
	"jobsonar/internal/pipeline"
	"jobsonar/pkg/models"
	"jobsonar/pkg/utils"
)

var validate = validator.New()

// TestPostingHandler runs a posting through the pipeline without
// persistence or alerting and returns the full evaluation
func TestPostingHandler(pl *pipeline.Pipeline) echo.HandlerFunc {
	return func(c echo.Context) error {
		startTime := time.Now()
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()

		var req models.TestPostingRequest
		if err := c.Bind(&req); err != nil {
			logger.Warn("Failed to bind test posting request", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid request format",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		if err := validate.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		channelID := req.ChannelID
		if channelID == "" {
			channelID = "test"
		}
		posting := &models.Posting{
			ChannelID: channelID,
			MessageID: 0,
			Text:      req.Text,
			Date:      time.Now(),
		}

		opts := pipeline.Options{Test: true}
		if req.Options != nil {
			opts.SkipScrape = req.Options.SkipScrape
			opts.Threshold = req.Options.Threshold
		}

		outcome, err := pl.Process(c.Request().Context(), posting, opts)
		if err != nil {
			logger.Error("Test posting run failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "processing_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		response := models.TestPostingResponse{
			Success:        true,
			IsJob:          outcome.IsJob,
			KeywordCount:   outcome.KeywordCount,
			Fields:         outcome.Fields,
			Result:         outcome.Result,
			WouldAlert:     outcome.WouldAlert,
			ProcessingTime: time.Since(startTime),
			RequestID:      requestID,
		}
		if outcome.Skipped == pipeline.SkipNoProfile {
			response.Error = "no profile uploaded"
		}

		logger.Info("Test posting evaluated", map[string]interface{}{
			"request_id": requestID,
			"is_job":     outcome.IsJob,
			"alert":      outcome.WouldAlert,
		})
		return c.JSON(http.StatusOK, response)
	}
}
