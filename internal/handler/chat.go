package handler

import (
	"fmt"
	"net/http"
	"time"

	"filterchat/internal/domain"
	"filterchat/internal/service"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	messageService service.MessageService
	log            logger.Logger
}

func NewChatHandler(messageService service.MessageService, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		messageService: messageService,
		log:            log,
	}
}

type MessageResponse struct {
	MessageID  string          `json:"message_id"`
	ChatID     string          `json:"chat_id"`
	SenderID   string          `json:"sender_id"`
	ReceiverID string          `json:"receiver_id"`
	CreatedAt  time.Time       `json:"created_at"`
	FilterIDs  []string        `json:"filter_ids"`
	Values     []ValueResponse `json:"values"`
	Latest     ValueResponse   `json:"latest"`
}

func NewMessageResponse(view *domain.MessageView) MessageResponse {
	resp := MessageResponse{
		MessageID:  view.MessageID,
		ChatID:     view.ChatID,
		SenderID:   view.SenderID,
		ReceiverID: view.ReceiverID,
		CreatedAt:  view.CreatedAt,
		FilterIDs:  view.FilterIDs,
		Values:     make([]ValueResponse, 0, len(view.Values)),
	}
	for _, v := range view.Values {
		resp.Values = append(resp.Values, NewValueResponse(v))
	}
	if n := len(resp.Values); n > 0 {
		resp.Latest = resp.Values[n-1]
	}
	return resp
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	views, err := h.messageService.ListChatMessages(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	messages := make([]MessageResponse, 0, len(views))
	for _, v := range views {
		messages = append(messages, NewMessageResponse(v))
	}
	c.JSON(http.StatusOK, messages)
}

type SendMessageRequest struct {
	Type  string `json:"type" binding:"required"`
	Value string `json:"value"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	valueType, err := domain.ParseValueType(req.Type)
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: %w", apperrors.ErrBadRequest, err))
		return
	}
	content, err := decodeValue(valueType, req.Value)
	if err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.messageService.SendMessage(c.Request.Context(), c.Param("id"), userID, valueType, content)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
