package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/tinashelorenzi/grease-monkey/internal/usecase"
	"github.com/tinashelorenzi/grease-monkey/pkg/response"
)

// DevRequestHandler simulates the mechanics app in development. Real status
// transitions are written by mechanics from their own app; this handler only
// exists so a request lifecycle can be driven end to end without one.
type DevRequestHandler struct {
	requestUseCase *usecase.RequestUseCase
}

var devRequestHandler *DevRequestHandler

func NewDevRequestHandler(requestUseCase *usecase.RequestUseCase) *DevRequestHandler {
	return &DevRequestHandler{
		requestUseCase: requestUseCase,
	}
}

func SetupDevRequestHandler(requestUseCase *usecase.RequestUseCase) {
	devRequestHandler = NewDevRequestHandler(requestUseCase)
}

func GetDevRequestHandler() *DevRequestHandler {
	return devRequestHandler
}

type forceStatusRequest struct {
	Status           string  `json:"status" validate:"required"`
	QuoteAmount      float64 `json:"quote_amount"`
	QuoteDescription string  `json:"quote_description"`
}

func (h *DevRequestHandler) ForceStatus(c echo.Context) error {
	var req forceStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	err := h.requestUseCase.ForceStatus(
		c.Request().Context(),
		c.Param("requestId"),
		req.Status,
		req.QuoteAmount,
		req.QuoteDescription,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": req.Status})
}
