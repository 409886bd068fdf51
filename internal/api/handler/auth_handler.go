package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userdesk/user-management/internal/api/metrics"
	"github.com/userdesk/user-management/internal/api/middleware"
	"github.com/userdesk/user-management/internal/api/response"
	"github.com/userdesk/user-management/internal/core/domain"
	"github.com/userdesk/user-management/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a regular account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      200   {object}  authEnvelope
// @Failure      400   {object}  errorEnvelope
// @Failure      422   {object}  errorEnvelope
// @Failure      500   {object}  errorEnvelope
// @Router       /api/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		countAuth("register", err)
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	countAuth("register", err)
	if err != nil {
		return err
	}
	return response.WithToken(c, res.User, res.Token, "User registered successfully")
}

// Login exchanges credentials for a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authEnvelope
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      422   {object}  errorEnvelope
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		countAuth("login", err)
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	countAuth("login", err)
	if err != nil {
		return err
	}
	return response.WithToken(c, res.User, res.Token, "Login successful")
}

// Logout revokes the token used for this request.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageEnvelope
// @Failure      401  {object}  errorEnvelope
// @Router       /api/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		return domain.ErrUnauthenticated
	}
	err := h.authService.Logout(c.Request().Context(), session)
	countAuth("logout", err)
	if err != nil {
		return err
	}
	return response.Message(c, "Logged out successfully")
}

// bindAndValidate decodes the JSON body into req and runs the struct rules.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

func countAuth(operation string, err error) {
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidCredentials):
		result = "invalid_credentials"
	case errors.Is(err, domain.ErrValidation):
		result = "validation_failed"
	default:
		result = "error"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(operation, result).Inc()
}
