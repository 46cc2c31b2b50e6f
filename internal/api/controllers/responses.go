package controllers

import (
	"net/http"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/domain"
	"github.com/labstack/echo/v5"
)

// statusFor maps a result onto the HTTP status of the response carrying it.
func statusFor(res domain.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.Kind {
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindAuthFailure:
		return http.StatusUnauthorized
	case domain.KindBusy:
		return http.StatusServiceUnavailable
	case domain.KindConnectTimeout, domain.KindReadTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func respond(c *echo.Context, res domain.Result) error {
	return c.JSON(statusFor(res), res)
}
