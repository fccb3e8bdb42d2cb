package middleware

import (
	"net/http"

	"filterchat/pkg/errors"
	"filterchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()

		statusCode := errors.HTTPStatusFromError(err.Err)
		if statusCode >= 500 {
			log.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err.Err)
		}

		// Ответ уже мог быть записан обработчиком
		if c.Writer.Written() {
			return
		}
		c.JSON(statusCode, gin.H{
			"error": publicMessage(statusCode, err.Err),
		})
	}
}

// publicMessage скрывает цепочку причин у 5xx: она есть только в логе
func publicMessage(statusCode int, err error) string {
	switch {
	case statusCode < 500:
		return err.Error()
	case statusCode == http.StatusBadGateway:
		return errors.ErrUpstream.Error()
	default:
		return errors.ErrInternalServer.Error()
	}
}
