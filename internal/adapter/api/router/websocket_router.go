package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tinashelorenzi/grease-monkey/internal/adapter/api/handler"
)

// SetupWebSocketRouter sets up WebSocket routes
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	// No auth middleware here: the handler authenticates itself so it can
	// accept the token as a query parameter on the upgrade request.
	e.GET("/ws/requests/:requestId", wsHandler.WatchRequest)
	e.GET("/ws/chats/:id", wsHandler.ListenSession)
}
