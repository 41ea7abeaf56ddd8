package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/safecity/incident-dashboard/internal/api/handler"
	"github.com/safecity/incident-dashboard/internal/core/domain"
)

// invalidCredentialsMessage is the copy clients match on to localise the
// login failure.
const invalidCredentialsMessage = "The provided credentials are incorrect."

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": "...", "errors": {...}}.
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

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	// Validation failures carry per-field messages.
	var fe handler.FieldErrors
	if errors.As(err, &fe) {
		return http.StatusUnprocessableEntity, handler.ErrorResponse{Message: fe.First(), Errors: fe}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorResponse{Message: fmt.Sprintf("%v", he.Message)}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, handler.ErrorResponse{
			Message: invalidCredentialsMessage,
			Errors:  handler.FieldErrors{"email": {invalidCredentialsMessage}},
		}
	case errors.Is(err, domain.ErrTokenRevoked):
		return http.StatusUnauthorized, handler.ErrorResponse{Message: "Unauthenticated."}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, handler.ErrorResponse{Message: "This action is unauthorized."}
	case errors.Is(err, domain.ErrIncidentNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Message: "incident not found"}
	case errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Message: "category not found"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Message: "user not found"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, handler.ErrorResponse{
			Message: "The email has already been taken.",
			Errors:  handler.FieldErrors{"email": {"The email has already been taken."}},
		}
	case errors.Is(err, domain.ErrCategoryExists):
		return http.StatusConflict, handler.ErrorResponse{
			Message: "The name has already been taken.",
			Errors:  handler.FieldErrors{"name": {"The name has already been taken."}},
		}
	case errors.Is(err, domain.ErrCategoryInUse):
		return http.StatusConflict, handler.ErrorResponse{Message: "category has incidents and cannot be deleted"}
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, handler.ErrorResponse{
			Message: err.Error(),
			Errors:  handler.FieldErrors{"status": {err.Error()}},
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorResponse{Message: "internal server error"}
}
