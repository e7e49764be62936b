package router

import (
	"github.com/tinashelorenzi/grease-monkey/internal/adapter/api/handler"
	"github.com/tinashelorenzi/grease-monkey/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupMechanicRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	mechanicHandler := handler.GetMechanicHandler()

	mechanics := e.Group("/v1/mechanics")
	mechanics.Use(authMiddleware.Authenticate)
	mechanics.GET("/nearby", mechanicHandler.FindNearby)
	mechanics.GET("/:id", mechanicHandler.GetMechanic)
}
