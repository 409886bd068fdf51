package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userdesk/user-management/internal/core/domain"
)

func render(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec.Code, body
}

func TestHTTPErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, MsgUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, MsgForbidden},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, MsgInvalidCredentials},
		{"not found wrapped", fmt.Errorf("get user: %w", domain.ErrUserNotFound), http.StatusNotFound, MsgUserNotFound},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, MsgInternal},
		{"bind", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := render(t, tc.err)
			if code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, code)
			}
			if body["status"] != StatusError || body["message"] != tc.msg {
				t.Fatalf("unexpected body: %+v", body)
			}
		})
	}
}

func TestHTTPErrorHandler_ValidationFields(t *testing.T) {
	ve := domain.NewValidationError("email", "email has already been taken")
	ve.Add("password", "password must be at least 8 characters")

	code, body := render(t, ve)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	if body["message"] != MsgValidationFailed {
		t.Fatalf("unexpected message %v", body["message"])
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected field map, got %+v", body["data"])
	}
	emailMsgs, _ := data["email"].([]any)
	if len(emailMsgs) != 1 || emailMsgs[0] != "email has already been taken" {
		t.Fatalf("unexpected email messages: %+v", data["email"])
	}
	if _, ok := data["password"]; !ok {
		t.Fatalf("missing password messages: %+v", data)
	}
}

func TestHTTPErrorHandler_CommittedResponseUntouched(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was overwritten: %d %q", rec.Code, rec.Body.String())
	}
}
