package http

import (
	"errors"
	"net/http"

	"p2p-lending/internal/domain/loan"
	"p2p-lending/internal/domain/session"
	"p2p-lending/internal/domain/user"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// StatusFor maps domain errors to HTTP codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrUnauthenticated),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, user.ErrForbiddenRole):
		return http.StatusForbidden
	case errors.Is(err, loan.ErrNotFound), errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrOverFunding), errors.Is(err, loan.ErrNotFundable):
		return http.StatusConflict
	case errors.Is(err, loan.ErrInvalidAmount),
		errors.Is(err, loan.ErrInvalidDuration),
		errors.Is(err, loan.ErrInvalidPurpose),
		errors.Is(err, user.ErrInvalidRole):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(c echo.Context, log *logrus.Logger, err error) error {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Path()).Error("http: request failed")
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

// bind writes the 400/422 response itself and reports whether the handler
// should go on.
func bind(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
