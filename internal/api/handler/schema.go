package handler

import "github.com/userdesk/user-management/internal/core/domain"

// --- Request / Response types ---

type registerRequest struct {
	Name                 string `json:"name"                  validate:"required,max=255"`
	Email                string `json:"email"                 validate:"required,email,max=255"`
	Password             string `json:"password"              validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// updateProfileRequest has no role field; a role sent by the caller is
// dropped during binding.
type updateProfileRequest struct {
	Name                 *string `json:"name"                  validate:"omitempty,max=255"`
	Email                *string `json:"email"                 validate:"omitempty,email,max=255"`
	CurrentPassword      *string `json:"current_password"`
	Password             *string `json:"password"              validate:"omitempty,min=8,max=72"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

type createUserRequest struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=admin user"`
}

type updateUserRequest struct {
	Name  *string `json:"name"  validate:"omitempty,max=255"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
	Role  *string `json:"role"  validate:"omitempty,oneof=admin user"`
}

// Documentation-only shapes for the OpenAPI generator.

type userEnvelope struct {
	Status  string       `json:"status" example:"success"`
	Message string       `json:"message,omitempty"`
	Data    *domain.User `json:"data"`
}

type userListEnvelope struct {
	Status string         `json:"status" example:"success"`
	Data   []*domain.User `json:"data"`
}

type authEnvelope struct {
	Status  string       `json:"status" example:"success"`
	Message string       `json:"message"`
	Data    *domain.User `json:"data"`
	Token   string       `json:"token"`
}

type messageEnvelope struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Status  string              `json:"status" example:"error"`
	Message string              `json:"message"`
	Data    map[string][]string `json:"data,omitempty"`
}
