package handlers

import (
	"errors"
	"net/http"

	"meal_care_backend/internal/services"
	"meal_care_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// Request bodies carrying keys outside the DTO are rejected by bindJSON.
func init() {
	binding.EnableDecoderDisallowUnknownFields = true
}

// respondServiceError maps the service error taxonomy to an APIError.
// failure is the message used for unexpected errors, e.g. "Failed to create order."
func respondServiceError(c *gin.Context, err error, failure string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed.", err.Error()))
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Resource not found.", err.Error()))
	case errors.Is(err, services.ErrConflict):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Request conflicts with the current state.", err.Error()))
	case errors.Is(err, services.ErrUnauthorized):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Unauthorized.", err.Error()))
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Forbidden.", err.Error()))
	default:
		utils.LogError(err, failure)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, failure, "Internal error"))
	}
}

// bindJSON binds the request body, rejecting unknown keys, and answers 400 on failure.
func bindJSON(c *gin.Context, req interface{}, op string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.LogError(err, op+": Failed to bind JSON")
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}

// bindQuery binds list filters from the query string.
func bindQuery(c *gin.Context, filters interface{}, op string) bool {
	if err := c.ShouldBindQuery(filters); err != nil {
		utils.LogError(err, op+": Failed to bind query")
		utils.RespondValidationFailed(c, "Invalid query parameters: "+err.Error())
		return false
	}
	return true
}

// idParam parses a positive int64 path parameter.
func idParam(c *gin.Context, name, label string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+label+" ID format.", c.Param(name)))
		return 0, false
	}
	return id, true
}

func respondList(c *gin.Context, data interface{}, total, page, pageSize int) {
	page, pageSize = services.NormalizePage(page, pageSize)
	c.JSON(http.StatusOK, gin.H{
		"data":      data,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
