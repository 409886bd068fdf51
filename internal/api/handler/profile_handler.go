package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userdesk/user-management/internal/api/metrics"
	"github.com/userdesk/user-management/internal/api/middleware"
	"github.com/userdesk/user-management/internal/api/response"
	"github.com/userdesk/user-management/internal/core/domain"
	"github.com/userdesk/user-management/internal/core/ports"
)

// ProfileHandler serves the authenticated user's own account.
type ProfileHandler struct {
	users ports.UserService
}

func NewProfileHandler(users ports.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// Me returns the caller's account.
//
// @Summary      Current user
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userEnvelope
// @Failure      401  {object}  errorEnvelope
// @Router       /api/me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return response.OK(c, user)
}

// UpdateMe changes the caller's name, email or password. The role cannot be
// changed here.
//
// @Summary      Update current user
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  userEnvelope
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      422   {object}  errorEnvelope
// @Router       /api/me [put]
func (h *ProfileHandler) UpdateMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.users.UpdateSelf(c.Request().Context(), user.ID, ports.UpdateSelfInput{
		Name:                 req.Name,
		Email:                req.Email,
		CurrentPassword:      req.CurrentPassword,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		return err
	}
	metrics.UserMutationsTotal.WithLabelValues("update_self").Inc()
	return response.DataMessage(c, http.StatusOK, updated, "Profile updated successfully")
}

func currentUser(c echo.Context) (*domain.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}
