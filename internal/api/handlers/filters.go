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

// ListFiltersHandler returns the raw filter rows plus the folded set
// the matcher consumes
func ListFiltersHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		filters, err := st.ListFilters(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "store_error",
				Message:   err.Error(),
				RequestID: utils.GenerateRequestID(),
				Timestamp: time.Now(),
			})
		}
		set, err := st.FilterSet(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "store_error",
				Message:   err.Error(),
				RequestID: utils.GenerateRequestID(),
				Timestamp: time.Now(),
			})
		}
		return c.JSON(http.StatusOK, models.FiltersResponse{
			Filters: filters,
			Set:     set,
		})
	}
}

// AddFilterHandler stores a filter rule
func AddFilterHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		var req models.FilterRequest
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

		kind, ok := models.ParseFilterKind(req.Kind)
		if !ok {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_filter_kind",
				Message:   "Unknown filter kind: " + req.Kind,
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		id, err := st.AddFilter(c.Request().Context(), kind, req.Value)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "store_error",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}
		return c.JSON(http.StatusCreated, models.Filter{
			ID:       id,
			Kind:     kind,
			Value:    req.Value,
			IsActive: true,
		})
	}
}

// RemoveFilterHandler deletes a filter rule by id
func RemoveFilterHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Filter id must be numeric",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		removed, err := st.RemoveFilter(c.Request().Context(), id)
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
				Message:   "No such filter",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}
		return c.NoContent(http.StatusNoContent)
	}
}
