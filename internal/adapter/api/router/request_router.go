package router

import (
	"github.com/tinashelorenzi/grease-monkey/internal/adapter/api/handler"
	"github.com/tinashelorenzi/grease-monkey/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupRequestRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	requestHandler := handler.GetRequestHandler()

	requests := e.Group("/v1/requests")
	requests.Use(authMiddleware.Authenticate)
	requests.POST("", requestHandler.CreateRequest)
	requests.GET("/:requestId", requestHandler.GetRequest)
	requests.DELETE("/:requestId", requestHandler.CancelRequest)
}
