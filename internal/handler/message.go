package handler

import (
	"net/http"

	"filterchat/internal/service"
	"filterchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService service.MessageService
	log            logger.Logger
}

func NewMessageHandler(messageService service.MessageService, log logger.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		log:            log,
	}
}

type ApplyFilterRequest struct {
	FilterID string `json:"filter_id" binding:"required"`
}

// ApplyFilter применяет добавленный фильтр к последнему значению сообщения получателя
func (h *MessageHandler) ApplyFilter(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	var req ApplyFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	value, err := h.messageService.ApplyFilter(c.Request.Context(), c.Param("id"), req.FilterID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, NewValueResponse(value))
}

func (h *MessageHandler) ListFilters(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	filters, err := h.messageService.ListApplicableFilters(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, filters)
}
