package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tinashelorenzi/grease-monkey/internal/adapter/api/handler"
	"github.com/tinashelorenzi/grease-monkey/internal/adapter/api/middleware"
)

// SetupChatRouter sets up all chat-related routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	chatGroup := e.Group("/v1/chats")
	chatGroup.Use(authMiddleware.Authenticate) // All chat endpoints require authentication

	// Session management
	chatGroup.POST("/sessions", chatHandler.CreateSession)                           // find-or-create the session for a request
	chatGroup.GET("/sessions/by-request/:requestId", chatHandler.GetSessionByRequest) // lookup without creating

	// Message management
	chatGroup.POST("/sessions/:id/messages", chatHandler.SendMessage)
	chatGroup.GET("/sessions/:id/messages", chatHandler.GetMessages)
	chatGroup.PUT("/sessions/:id/read", chatHandler.MarkRead)
}
