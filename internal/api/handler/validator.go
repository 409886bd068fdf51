package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/userdesk/user-management/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field errors are keyed by the request's JSON names.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Failures come back as a
// *domain.ValidationError.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return err
	}
	ve := &domain.ValidationError{}
	for _, fe := range fes {
		field, msg := fieldError(fe)
		ve.Add(field, msg)
	}
	return ve
}

// fieldError converts a single FieldError into the field key and a
// human-readable message.
func fieldError(fe validator.FieldError) (string, string) {
	field := fe.Field()
	label := strings.ReplaceAll(field, "_", " ")
	switch fe.Tag() {
	case "required":
		return field, label + " is required"
	case "email":
		return field, label + " must be a valid email address"
	case "min":
		return field, fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return field, fmt.Sprintf("%s may not be greater than %s characters", label, fe.Param())
	case "oneof":
		return field, fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	case "eqfield":
		// Reported against the confirmed field.
		return strings.ToLower(fe.Param()), strings.ToLower(fe.Param()) + " confirmation does not match"
	default:
		return field, fmt.Sprintf("%s failed validation (%s)", label, fe.Tag())
	}
}
