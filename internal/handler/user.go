package handler

import (
	"net/http"

	"filterchat/internal/service"
	"filterchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
	log         logger.Logger
}

func NewUserHandler(userService service.UserService, log logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log,
	}
}

func (h *UserHandler) ListFilters(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	filters, err := h.userService.ListAddedFilters(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, filters)
}

type AddFilterRequest struct {
	FilterID string `json:"filter_id" binding:"required"`
}

func (h *UserHandler) AddFilter(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	var req AddFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filters, err := h.userService.AddFilter(c.Request.Context(), userID, req.FilterID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, filters)
}
