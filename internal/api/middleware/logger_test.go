package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userdesk/user-management/internal/api/response"
	"github.com/userdesk/user-management/internal/core/domain"
)

func TestRequestLogger_WritesEntry(t *testing.T) {
	var buf bytes.Buffer
	e := newEcho()
	e.Use(RequestLogger(zerolog.New(&buf)))
	e.GET("/me", func(c echo.Context) error {
		c.Set(userKey, &domain.User{ID: 42})
		return domain.ErrForbidden
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry %q: %v", buf.String(), err)
	}
	if entry["status"] != float64(http.StatusForbidden) {
		t.Fatalf("unexpected status field: %v", entry["status"])
	}
	if entry["user_id"] != float64(42) {
		t.Fatalf("unexpected user_id field: %v", entry["user_id"])
	}
	if entry["level"] != "warn" {
		t.Fatalf("unexpected level: %v", entry["level"])
	}
}

func TestRequestLogger_ServerErrorLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	e := echo.New()
	e.HTTPErrorHandler = response.NewHTTPErrorHandler(log)
	e.Use(RequestLogger(log))
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("disk on fire")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if n := strings.Count(buf.String(), "disk on fire"); n != 1 {
		t.Fatalf("expected cause logged once, got %d in %q", n, buf.String())
	}
	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Fatalf("expected request and error entries, got %q", buf.String())
	}
}
