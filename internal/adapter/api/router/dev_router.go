package router

import (
	"github.com/tinashelorenzi/grease-monkey/internal/adapter/api/handler"
	"github.com/tinashelorenzi/grease-monkey/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupDevRouter(e *echo.Echo, environment string, authMiddleware *middleware.AuthMiddleware) {
	if environment != "development" {
		return
	}
	devRequestHandler := handler.GetDevRequestHandler()

	dev := e.Group("/_dev")
	dev.Use(authMiddleware.Authenticate)
	dev.POST("/requests/:requestId/status", devRequestHandler.ForceStatus)
}
