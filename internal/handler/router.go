package handler

import (
	"filterchat/internal/config"
	"filterchat/internal/middleware"
	"filterchat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	handlers *Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))

	router.GET("/health", handlers.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.RequireAuth())
	{
		filters := v1.Group("/filters")
		{
			filters.GET("", handlers.Filter.List)
			filters.POST("/search", handlers.Filter.Search)
		}

		users := v1.Group("/users/me")
		{
			users.GET("/filters", handlers.User.ListFilters)
			users.POST("/filters", handlers.User.AddFilter)
		}

		chats := v1.Group("/chats/:id")
		{
			chats.GET("/messages", handlers.Chat.ListMessages)
			chats.POST("/messages", handlers.Chat.SendMessage)
		}

		messages := v1.Group("/messages/:id")
		{
			messages.POST("/apply_filter",
				rateLimitMiddleware.Limit("apply_filter", cfg.RateLimit.ApplyFilterLimit, cfg.RateLimit.Window),
				handlers.Message.ApplyFilter)
			messages.GET("/filters", handlers.Message.ListFilters)
		}
	}

	return router
}
