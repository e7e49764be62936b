package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tinashelorenzi/grease-monkey/internal/domain/entity"
	"github.com/tinashelorenzi/grease-monkey/internal/usecase"
	"github.com/tinashelorenzi/grease-monkey/pkg/errors"
	"github.com/tinashelorenzi/grease-monkey/pkg/response"
)

type MechanicHandler struct {
	matchingUseCase *usecase.MatchingUseCase
}

func NewMechanicHandler(matchingUseCase *usecase.MatchingUseCase) *MechanicHandler {
	return &MechanicHandler{
		matchingUseCase: matchingUseCase,
	}
}

// FindNearby returns the ranked list of mechanics around the customer's
// position. lat and lng are required; radius defaults server-side.
func (h *MechanicHandler) FindNearby(c echo.Context) error {
	lat, latErr := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if latErr != nil || lngErr != nil {
		return response.Error(c, errors.BadRequest("lat and lng query parameters are required", nil))
	}

	var radius float64
	if radiusStr := c.QueryParam("radius"); radiusStr != "" {
		parsed, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || parsed <= 0 {
			return response.Error(c, errors.BadRequest("radius must be a positive number of kilometers", err))
		}
		radius = parsed
	}

	serviceType := c.QueryParam("serviceType")

	mechanics, err := h.matchingUseCase.FindNearby(c.Request().Context(), entity.Location{
		Latitude:  lat,
		Longitude: lng,
	}, serviceType, radius)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, mechanics)
}

func (h *MechanicHandler) GetMechanic(c echo.Context) error {
	mechanic, err := h.matchingUseCase.GetMechanic(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, mechanic)
}
