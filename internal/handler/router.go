package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ragchat/internal/config"
	"ragchat/internal/middleware"
	"ragchat/internal/session"
)

// New builds the HTTP engine: session lifecycle, document upload, and the
// streaming chat endpoint.
func New(ctrl *session.Controller, cfg config.ServerConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS(cfg.CORSOrigins))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	chat := NewChatHandler(ctrl)
	api := engine.Group("/api")
	api.POST("/sessions", chat.CreateSession)
	api.GET("/sessions/:id", chat.GetSession)
	api.DELETE("/sessions/:id", chat.DeleteSession)
	api.GET("/sessions/:id/history", chat.History)
	api.POST("/sessions/:id/document", chat.UploadDocument)
	api.POST("/sessions/:id/chat", chat.Chat)
	return engine
}
