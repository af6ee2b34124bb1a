package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Eursukkul/gym-reservation/internal/dto"
	"github.com/Eursukkul/gym-reservation/internal/service"
	"github.com/labstack/echo/v4"
)

type ReservationHandler struct {
	svc service.ReservationService
	loc *time.Location
	now func() time.Time
}

func NewReservationHandler(svc service.ReservationService, loc *time.Location) *ReservationHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReservationHandler{svc: svc, loc: loc, now: time.Now}
}

func (h *ReservationHandler) RegisterRoutes(e *echo.Echo, authMw echo.MiddlewareFunc) {
	g := e.Group("/api/v1/reservations", authMw)
	g.GET("", h.ListReservations)
	g.POST("", h.CreateReservation)
	g.GET("/:id", h.GetReservation)
	g.DELETE("/:id", h.DeleteReservation)
}

func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req dto.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}
	if req.Guests.Set && !req.Guests.Valid {
		return &service.ValidationError{Fields: map[string]string{"guests": msgGuestsNotInteger}}
	}

	reservation, err := h.svc.CreateReservation(c.Request().Context(), service.CreateReservationInput{
		Date:   req.Date,
		Time:   req.Time,
		Guests: req.Guests.Value,
		UserID: p.UserID,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.CreateReservationResponse{
		Message:     dto.MsgReservationCreated,
		Reservation: dto.ToReservationResponse(reservation),
	})
}

func (h *ReservationHandler) DeleteReservation(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidID)
	}

	if _, err := h.svc.DeleteReservation(c.Request().Context(), uint(id), p); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: dto.MsgReservationDeleted})
}

func (h *ReservationHandler) GetReservation(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidID)
	}

	reservation, err := h.svc.GetReservation(c.Request().Context(), uint(id), p)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

// ListReservations returns the caller's reservations from today onwards.
func (h *ReservationHandler) ListReservations(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	list, err := h.svc.ListReservations(c.Request().Context(), service.ListFilter{
		UserID: p.UserID,
		AsOf:   h.now().In(h.loc),
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToReservationResponses(list))
}
