package middleware

import (
	"net/http"
	"strconv"
	"time"

	"filterchat/internal/service"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type RateLimitMiddleware struct {
	rateLimitService service.RateLimitService
	log              logger.Logger
}

func NewRateLimitMiddleware(rateLimitService service.RateLimitService, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		log:              log,
	}
}

// Limit ограничивает запросы одного пользователя (без авторизации - одного IP) в окне window
func (m *RateLimitMiddleware) Limit(scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := UserID(c)
		if !ok {
			subject = c.ClientIP()
		}
		key := scope + ":" + subject

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))

		remaining, err := m.rateLimitService.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrRateLimited) {
				c.Header("X-RateLimit-Remaining", "0")
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
				c.Abort()
				return
			}
			m.log.Error("Rate limit check failed", "key", key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}
