package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/tinashelorenzi/grease-monkey/internal/domain/entity"
	"github.com/tinashelorenzi/grease-monkey/internal/usecase"
	"github.com/tinashelorenzi/grease-monkey/pkg/response"
)

type RequestHandler struct {
	requestUseCase *usecase.RequestUseCase
}

func NewRequestHandler(requestUseCase *usecase.RequestUseCase) *RequestHandler {
	return &RequestHandler{
		requestUseCase: requestUseCase,
	}
}

type createRequestRequest struct {
	MechanicID  string  `json:"mechanic_id" validate:"required"`
	ServiceType string  `json:"service_type" validate:"required"`
	Latitude    float64 `json:"latitude" validate:"required,latitude"`
	Longitude   float64 `json:"longitude" validate:"required,longitude"`
	Accuracy    float64 `json:"accuracy"`
	Address     string  `json:"address"`
	Description string  `json:"description"`
}

func (h *RequestHandler) CreateRequest(c echo.Context) error {
	var req createRequestRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	customerID := c.Get("uid").(string)

	request, err := h.requestUseCase.CreateRequest(c.Request().Context(), customerID, usecase.CreateRequestInput{
		MechanicID:  req.MechanicID,
		ServiceType: req.ServiceType,
		Location: entity.Location{
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Accuracy:  req.Accuracy,
		},
		Address:     req.Address,
		Description: req.Description,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, request)
}

func (h *RequestHandler) GetRequest(c echo.Context) error {
	customerID := c.Get("uid").(string)

	request, err := h.requestUseCase.GetRequest(c.Request().Context(), customerID, c.Param("requestId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, request)
}

// CancelRequest deletes both physical copies of the request. mechanicId is
// only needed when the request itself is already unreadable.
func (h *RequestHandler) CancelRequest(c echo.Context) error {
	customerID := c.Get("uid").(string)

	err := h.requestUseCase.CancelRequest(
		c.Request().Context(),
		customerID,
		c.Param("requestId"),
		c.QueryParam("mechanicId"),
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "cancelled"})
}
