package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sportify/camp-server/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

// statusFor lists domain errors in match order. Wrapped errors match through
// errors.Is, so the first sentinel in the chain that appears here wins.
var statusFor = []struct {
	err  error
	code int
}{
	{domain.ErrUnauthenticated, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},

	{domain.ErrIdentityExists, http.StatusConflict},
	{domain.ErrSelectionExists, http.StatusConflict},
	{domain.ErrAlreadyEnrolled, http.StatusConflict},
	{domain.ErrCommitInProgress, http.StatusConflict},
	{domain.ErrClassFull, http.StatusConflict},

	{domain.ErrIdentityNotFound, http.StatusNotFound},
	{domain.ErrClassNotFound, http.StatusNotFound},
	{domain.ErrSelectionNotFound, http.StatusNotFound},
	{domain.ErrPaymentNotFound, http.StatusNotFound},

	{domain.ErrInvalidTransition, http.StatusUnprocessableEntity},
	{domain.ErrInvalidAmount, http.StatusUnprocessableEntity},
	{domain.ErrSelectionMismatch, http.StatusUnprocessableEntity},
	{domain.ErrClassNotOpen, http.StatusUnprocessableEntity},
	{domain.ErrInvalidRole, http.StatusUnprocessableEntity},
	{domain.ErrInvalidInput, http.StatusUnprocessableEntity},
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// A decline is the only failure the client should simply retry.
	if errors.Is(err, domain.ErrPaymentDeclined) {
		return http.StatusPaymentRequired, errorResponse{Error: domain.ErrPaymentDeclined.Error(), Retryable: true}
	}

	for _, m := range statusFor {
		if errors.Is(err, m.err) {
			if m.code == http.StatusUnauthorized {
				return m.code, errorResponse{Error: "unauthorized access"}
			}
			return m.code, errorResponse{Error: m.err.Error()}
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
