package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/gateway/middleware"
	"stockbook/internal/services/user"
)

type UserHTTPHandler struct {
	users *user.Service
}

func NewUserHTTPHandler(users *user.Service) *UserHTTPHandler {
	return &UserHTTPHandler{
		users: users,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := h.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("login successful", res))
}

// Me returns the user resolved from the bearer token.
func (h *UserHTTPHandler) Me(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, errorResponse("not authenticated"))
		return
	}
	c.JSON(http.StatusOK, successResponse("User retrieved successfully", u))
}
