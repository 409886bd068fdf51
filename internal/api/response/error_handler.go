package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userdesk/user-management/internal/core/domain"
)

const (
	MsgUnauthorized       = "Unauthorized"
	MsgForbidden          = "Forbidden - Admin access required"
	MsgInvalidCredentials = "Invalid credentials"
	MsgValidationFailed   = "Validation failed"
	MsgUserNotFound       = "User not found"
	MsgInternal           = "internal server error"
)

// NewHTTPErrorHandler maps domain errors to status codes and renders them
// in the error envelope. Unknown errors are logged and reported as 500
// without leaking the cause.
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

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, Envelope) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, Envelope{Status: StatusError, Message: MsgValidationFailed, Data: ve.Fields}
	}

	switch {
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusUnprocessableEntity, Envelope{
			Status:  StatusError,
			Message: MsgValidationFailed,
			Data:    map[string][]string{"email": {"email has already been taken"}},
		}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorBody(MsgUnauthorized)
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorBody(MsgForbidden)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorBody(MsgInvalidCredentials)
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorBody(MsgUserNotFound)
	}

	// Bind failures, unknown routes, method mismatches.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logUnhandled(log, c, err)
			return he.Code, errorBody(MsgInternal)
		}
		return he.Code, errorBody(fmt.Sprintf("%v", he.Message))
	}

	logUnhandled(log, c, err)
	return http.StatusInternalServerError, errorBody(MsgInternal)
}

func errorBody(msg string) Envelope {
	return Envelope{Status: StatusError, Message: msg}
}

func logUnhandled(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")
}
