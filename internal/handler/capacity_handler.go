package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/Eursukkul/gym-reservation/internal/dto"
	"github.com/Eursukkul/gym-reservation/internal/models"
	"github.com/Eursukkul/gym-reservation/internal/service"
	"github.com/labstack/echo/v4"
)

type CapacityHandler struct {
	svc service.CapacityService
	loc *time.Location
	now func() time.Time
}

func NewCapacityHandler(svc service.CapacityService, loc *time.Location) *CapacityHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &CapacityHandler{svc: svc, loc: loc, now: time.Now}
}

func (h *CapacityHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.GET("/slots", h.ListSlots)
	api.GET("/availability", h.GetAvailability)
	api.GET("/availability/slots", h.ListAvailableSlots)
	api.GET("/occupancy", h.GetOccupancy)
}

func (h *CapacityHandler) ListSlots(c echo.Context) error {
	return c.JSON(http.StatusOK, models.SlotLabels)
}

func (h *CapacityHandler) GetAvailability(c echo.Context) error {
	date := h.dateParam(c)

	view, err := h.svc.Availability(c.Request().Context(), date)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.AvailabilityResponse{Date: date, Slots: view})
}

func (h *CapacityHandler) ListAvailableSlots(c echo.Context) error {
	date := h.dateParam(c)

	seq, err := h.svc.AvailableSlots(c.Request().Context(), date)
	if err != nil {
		return toHTTPError(err)
	}

	slots := slices.Collect(seq)
	if slots == nil {
		slots = []string{}
	}
	return c.JSON(http.StatusOK, dto.AvailableSlotsResponse{Date: date, Slots: slots})
}

// GetOccupancy summarizes booked guests per date and slot from today onwards.
func (h *CapacityHandler) GetOccupancy(c echo.Context) error {
	summary, err := h.svc.OccupancySummary(c.Request().Context(), h.now().In(h.loc))
	if err != nil {
		return toHTTPError(err)
	}
	if summary == nil {
		summary = []models.SlotOccupancy{}
	}
	return c.JSON(http.StatusOK, summary)
}

// dateParam defaults to today when the query omits the date.
func (h *CapacityHandler) dateParam(c echo.Context) string {
	if d := c.QueryParam("date"); d != "" {
		return d
	}
	return h.now().In(h.loc).Format(models.DateLayout)
}
