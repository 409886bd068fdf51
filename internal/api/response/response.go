// Package response holds the JSON envelope shared by every endpoint and the
// Echo error handler that renders domain errors into it.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the body of every API response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
}

func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Data: data})
}

func Message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Message: msg})
}

func DataMessage(c echo.Context, code int, data any, msg string) error {
	return c.JSON(code, Envelope{Status: StatusSuccess, Data: data, Message: msg})
}

func WithToken(c echo.Context, data any, token, msg string) error {
	return c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Data: data, Token: token, Message: msg})
}
