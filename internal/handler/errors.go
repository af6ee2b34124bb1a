package handler

import (
	"errors"
	"net/http"

	"github.com/Eursukkul/gym-reservation/internal/auth"
	"github.com/Eursukkul/gym-reservation/internal/middleware"
	"github.com/Eursukkul/gym-reservation/internal/service"
	"github.com/labstack/echo/v4"
)

const (
	msgCapacityExceeded    = "La capacidad máxima ha sido excedida para este horario."
	msgReservationNotFound = "Reserva no encontrada."
	msgForbidden           = "No tienes permiso para acceder a esta reserva."
	msgInvalidID           = "El identificador de la reserva no es válido."
	msgInvalidBody         = "El cuerpo de la solicitud no es válido."
	msgGuestsNotInteger    = "El número de personas debe ser un número entero."
)

// toHTTPError maps service errors onto HTTP errors. Validation errors pass through untouched so
// the central error handler can render their fields.
func toHTTPError(err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return err
	case errors.Is(err, service.ErrCapacityExceeded):
		return echo.NewHTTPError(http.StatusConflict, msgCapacityExceeded)
	case errors.Is(err, service.ErrReservationNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msgReservationNotFound)
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, msgForbidden)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
	}
}

func principal(c echo.Context) (auth.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return auth.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}
	return p, nil
}
