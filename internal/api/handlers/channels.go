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

// ListChannelsHandler lists monitored channels. ?all=true includes
// deactivated ones.
func ListChannelsHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		all := c.QueryParam("all") == "true"
		channels, err := st.ListChannels(c.Request().Context(), all)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "store_error",
				Message:   err.Error(),
				RequestID: utils.GenerateRequestID(),
				Timestamp: time.Now(),
			})
		}
		return c.JSON(http.StatusOK, models.ChannelsResponse{
			Channels: channels,
			Count:    len(channels),
		})
	}
}

// AddChannelHandler registers a channel for monitoring
func AddChannelHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()

		var req models.ChannelRequest
		if err := c.Bind(&req); err != nil {
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

		added, err := st.AddChannel(c.Request().Context(), req.ChannelID, req.ChannelName)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "store_error",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}
		if !added {
			return c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:     "already_monitored",
				Message:   "Channel is already monitored",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("Channel added via API", map[string]interface{}{
			"request_id": requestID,
			"channel_id": req.ChannelID,
		})
		return c.JSON(http.StatusCreated, models.Channel{
			ChannelID:   req.ChannelID,
			ChannelName: req.ChannelName,
			IsActive:    true,
		})
	}
}

// RemoveChannelHandler deactivates a monitored channel
func RemoveChannelHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		channelID := c.Param("id")

		removed, err := st.RemoveChannel(c.Request().Context(), channelID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "store_error",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}
		if !removed {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "not_found",
				Message:   "Channel is not monitored",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}
		return c.NoContent(http.StatusNoContent)
	}
}
