package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/domain"
	"stockbook/internal/services/user"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

type listMeta struct {
	Total int `json:"total"`
}

// --- Helper for handling service errors ---
func handleServiceError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case domain.IsInsufficientStock(err):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, user.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse(err.Error()))
	default:
		log.Printf("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, errorResponse("Internal server error"))
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
}

func parseIntQuery(c *gin.Context, param string, fallback int) int {
	str := c.Query(param)
	if str == "" {
		return fallback
	}
	val, err := strconv.Atoi(str)
	if err != nil || val < 0 {
		return fallback
	}
	return val
}

// parseDateQuery accepts YYYY-MM-DD or RFC 3339. Missing values are the
// zero time.
func parseDateQuery(c *gin.Context, param string) (time.Time, error) {
	str := c.Query(param)
	if str == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", str); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return time.Time{}, domain.NewValidationError(param, "must be YYYY-MM-DD or RFC 3339", str)
	}
	return t.UTC(), nil
}

func parseWindow(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := parseDateQuery(c, "from")
	if err != nil {
		handleServiceError(c, err)
		return time.Time{}, time.Time{}, false
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		handleServiceError(c, err)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
