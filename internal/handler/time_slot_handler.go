package handler

import (
	"net/http"
	"net/url"

	"github.com/Eursukkul/gym-reservation/internal/dto"
	"github.com/Eursukkul/gym-reservation/internal/middleware"
	"github.com/Eursukkul/gym-reservation/internal/service"
	"github.com/labstack/echo/v4"
)

const msgCapacityRequired = "La capacidad máxima es obligatoria."

type TimeSlotHandler struct {
	svc service.TimeSlotService
}

func NewTimeSlotHandler(svc service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{svc: svc}
}

func (h *TimeSlotHandler) RegisterRoutes(e *echo.Echo, authMw echo.MiddlewareFunc) {
	e.GET("/api/v1/timeslots", h.ListTimeSlots)
	e.PUT("/api/v1/timeslots/:time", h.SetCapacity, authMw, middleware.RequireAdmin)
}

func (h *TimeSlotHandler) ListTimeSlots(c echo.Context) error {
	slots, err := h.svc.ListTimeSlots(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *TimeSlotHandler) SetCapacity(c echo.Context) error {
	var req dto.UpsertTimeSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}
	if req.MaxCapacity == nil {
		return &service.ValidationError{Fields: map[string]string{"max_capacity": msgCapacityRequired}}
	}

	slot, err := url.PathUnescape(c.Param("time"))
	if err != nil {
		slot = c.Param("time")
	}

	ts, err := h.svc.SetCapacity(c.Request().Context(), slot, *req.MaxCapacity)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, ts)
}
