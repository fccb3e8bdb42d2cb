package handler

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"filterchat/internal/domain"
	"filterchat/internal/middleware"
	"filterchat/internal/service"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health  *HealthHandler
	Filter  *FilterHandler
	User    *UserHandler
	Chat    *ChatHandler
	Message *MessageHandler
}

func NewHandlers(services *service.Services, log logger.Logger) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(),
		Filter:  NewFilterHandler(services.Filters, log),
		User:    NewUserHandler(services.User, log),
		Chat:    NewChatHandler(services.Message, log),
		Message: NewMessageHandler(services.Message, log),
	}
}

// ValueResponse - значение в JSON: текст как есть, image/audio в base64
type ValueResponse struct {
	ID    string           `json:"id"`
	Type  domain.ValueType `json:"type"`
	Value string           `json:"value"`
}

func NewValueResponse(v *domain.Value) ValueResponse {
	resp := ValueResponse{ID: v.ID, Type: v.Type}
	if v.Type.IsBinary() {
		resp.Value = base64.StdEncoding.EncodeToString(v.Content)
	} else {
		resp.Value = v.Text()
	}
	return resp
}

// decodeValue - обратное преобразование для входящих значений
func decodeValue(valueType domain.ValueType, value string) ([]byte, error) {
	if !valueType.IsBinary() {
		return []byte(value), nil
	}
	content, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%s value must be base64: %w", valueType, apperrors.ErrBadRequest)
	}
	return content, nil
}

func requesterID(c *gin.Context) (string, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
	}
	return userID, ok
}
