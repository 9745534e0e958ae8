package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/buseagkoc/construction-chatbot/internal/middleware"
)

type RouterDeps struct {
	Documents     *DocumentHandler
	Chat          *ChatHandler
	ChatRateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/documents/upload", deps.Documents.Upload)
	api.GET("/documents/search", deps.Documents.Search)
	api.DELETE("/documents/:id", deps.Documents.Delete)
	api.GET("/stats", deps.Documents.Stats)

	chatGroup := api.Group("")
	chatGroup.Use(middleware.RateLimit(deps.ChatRateLimit))
	chatGroup.POST("/chat", deps.Chat.Chat)
}
