package handler

import (
	"fmt"
	"net/http"

	"filterchat/internal/domain"
	"filterchat/internal/service"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type FilterHandler struct {
	registry service.FilterRegistry
	log      logger.Logger
}

func NewFilterHandler(registry service.FilterRegistry, log logger.Logger) *FilterHandler {
	return &FilterHandler{
		registry: registry,
		log:      log,
	}
}

func (h *FilterHandler) List(c *gin.Context) {
	filters, err := h.registry.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, filters)
}

type SearchFiltersRequest struct {
	Type string `json:"type" binding:"required"`
}

// Search - фильтры, принимающие значения данного типа
func (h *FilterHandler) Search(c *gin.Context) {
	var req SearchFiltersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	valueType, err := domain.ParseValueType(req.Type)
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: %w", apperrors.ErrBadRequest, err))
		return
	}

	filters, err := h.registry.ListByInputType(c.Request.Context(), valueType)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, filters)
}
