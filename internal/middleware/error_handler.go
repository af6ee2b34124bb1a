package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/Eursukkul/gym-reservation/internal/dto"
	"github.com/Eursukkul/gym-reservation/internal/service"
	"github.com/labstack/echo/v4"
)

const msgValidationFailed = "Los datos enviados no son válidos."

// ErrorHandler renders every error as {"error": ..., "fields": ...}. Errors that are not
// HTTP or validation errors are logged and reported as a bare 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	resp := dto.ErrorResponse{Error: http.StatusText(code)}

	var verr *service.ValidationError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &verr):
		code = http.StatusUnprocessableEntity
		resp = dto.ErrorResponse{Error: msgValidationFailed, Fields: verr.Fields}
	case errors.As(err, &he):
		code = he.Code
		if m, ok := he.Message.(string); ok {
			resp.Error = m
		} else {
			resp.Error = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, resp)
}
