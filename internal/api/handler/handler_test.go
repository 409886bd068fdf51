package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userdesk/user-management/internal/api/middleware"
	"github.com/userdesk/user-management/internal/api/response"
	"github.com/userdesk/user-management/internal/core/domain"
	"github.com/userdesk/user-management/internal/core/ports"
)

type stubAuthService struct {
	registerFn     func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn        func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	logoutFn       func(ctx context.Context, s domain.Session) error
	authenticateFn func(ctx context.Context, token string) (*domain.User, domain.Session, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, session domain.Session) error {
	return s.logoutFn(ctx, session)
}

func (s *stubAuthService) Authenticate(ctx context.Context, token string) (*domain.User, domain.Session, error) {
	return s.authenticateFn(ctx, token)
}

// actingAs returns an auth stub that resolves any token to user.
func actingAs(user *domain.User) *stubAuthService {
	return &stubAuthService{
		authenticateFn: func(context.Context, string) (*domain.User, domain.Session, error) {
			return user, domain.Session{TokenID: "jti-1", UserID: user.ID, Role: user.Role, ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
}

type stubUserService struct {
	getSelfFn    func(ctx context.Context, id int64) (*domain.User, error)
	updateSelfFn func(ctx context.Context, id int64, in ports.UpdateSelfInput) (*domain.User, error)
	listFn       func(ctx context.Context) ([]*domain.User, error)
	createFn     func(ctx context.Context, actorID int64, in ports.CreateUserInput) (*domain.User, error)
	getFn        func(ctx context.Context, id int64) (*domain.User, error)
	updateFn     func(ctx context.Context, actorID, id int64, in ports.UpdateUserInput) (*domain.User, error)
	deleteFn     func(ctx context.Context, actorID, id int64) error
}

func (s *stubUserService) GetSelf(ctx context.Context, id int64) (*domain.User, error) {
	return s.getSelfFn(ctx, id)
}

func (s *stubUserService) UpdateSelf(ctx context.Context, id int64, in ports.UpdateSelfInput) (*domain.User, error) {
	return s.updateSelfFn(ctx, id, in)
}

func (s *stubUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) CreateUser(ctx context.Context, actorID int64, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, actorID, in)
}

func (s *stubUserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) UpdateUser(ctx context.Context, actorID, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, actorID, id, in)
}

func (s *stubUserService) DeleteUser(ctx context.Context, actorID, id int64) error {
	return s.deleteFn(ctx, actorID, id)
}

var (
	admin   = &domain.User{ID: 1, Name: "Admin User", Email: "admin@example.com", Role: domain.RoleAdmin}
	regular = &domain.User{ID: 2, Name: "Test User", Email: "user@example.com", Role: domain.RoleUser}
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = response.NewHTTPErrorHandler(zerolog.Nop())
	return e
}

func do(e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

// --- Auth ---

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Name != "Alice" || in.Email != "alice@example.com" || in.PasswordConfirmation != "secret123" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{
				User:  &domain.User{ID: 3, Name: in.Name, Email: in.Email, Role: domain.RoleUser},
				Token: "token123",
			}, nil
		},
	}
	e.POST("/register", NewAuthHandler(stub).Register)

	rec, resp := do(e, http.MethodPost, "/register",
		`{"name":"Alice","email":"alice@example.com","password":"secret123","password_confirmation":"secret123"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp["token"] != "token123" || resp["message"] != "User registered successfully" {
		t.Fatalf("unexpected body: %+v", resp)
	}
	user, ok := resp["data"].(map[string]any)
	if !ok || user["role"] != "user" || user["email"] != "alice@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp["data"])
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash leaked")
	}
}

func TestAuthHandler_Register_ValidationErrors(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	e.POST("/register", NewAuthHandler(stub).Register)

	rec, resp := do(e, http.MethodPost, "/register",
		`{"name":"","email":"not-an-email","password":"short","password_confirmation":"other"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	fields, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected field errors, got %+v", resp)
	}
	for _, f := range []string{"name", "email", "password"} {
		if _, ok := fields[f]; !ok {
			t.Fatalf("missing %s error in %+v", f, fields)
		}
	}
	msgs, _ := fields["password"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected length and confirmation errors, got %+v", msgs)
	}
}

func TestAuthHandler_Register_PasswordTooLong(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	e.POST("/register", NewAuthHandler(stub).Register)

	long := strings.Repeat("a", 80)
	rec, resp := do(e, http.MethodPost, "/register",
		`{"name":"Long","email":"long@x.com","password":"`+long+`","password_confirmation":"`+long+`"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	fields, _ := resp["data"].(map[string]any)
	msgs, _ := fields["password"].([]any)
	if len(msgs) != 1 || msgs[0] != "password may not be greater than 72 characters" {
		t.Fatalf("unexpected password errors: %+v", fields)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	e.POST("/register", NewAuthHandler(stub).Register)

	rec, resp := do(e, http.MethodPost, "/register", "not-json")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp["message"] != "invalid payload" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.NewValidationError("email", "email has already been taken")
		},
	}
	e.POST("/register", NewAuthHandler(stub).Register)

	rec, _ := do(e, http.MethodPost, "/register",
		`{"name":"Bob","email":"bob@example.com","password":"secret123","password_confirmation":"secret123"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "alice@example.com" || password != "secret123" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.AuthResult{User: admin, Token: "token123"}, nil
		},
	}
	e.POST("/login", NewAuthHandler(stub).Login)

	rec, resp := do(e, http.MethodPost, "/login", `{"email":"alice@example.com","password":"secret123"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp["token"] != "token123" || resp["message"] != "Login successful" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	e.POST("/login", NewAuthHandler(stub).Login)

	rec, resp := do(e, http.MethodPost, "/login", `{"email":"alice@example.com","password":"wrong"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if resp["message"] != "Invalid credentials" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestAuthHandler_Logout_RevokesCurrentSession(t *testing.T) {
	e := newEcho()
	stub := actingAs(regular)
	var revoked string
	stub.logoutFn = func(_ context.Context, s domain.Session) error {
		revoked = s.TokenID
		return nil
	}
	e.POST("/logout", NewAuthHandler(stub).Logout, middleware.Authenticate(stub))

	rec, resp := do(e, http.MethodPost, "/logout", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if revoked != "jti-1" {
		t.Fatalf("expected session jti-1 revoked, got %q", revoked)
	}
	if resp["message"] != "Logged out successfully" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

// --- Profile ---

func TestProfileHandler_Me(t *testing.T) {
	e := newEcho()
	auth := actingAs(regular)
	e.GET("/me", NewProfileHandler(&stubUserService{}).Me, middleware.Authenticate(auth))

	rec, resp := do(e, http.MethodGet, "/me", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	user, _ := resp["data"].(map[string]any)
	if user["email"] != regular.Email {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
}

func TestProfileHandler_UpdateMe_IgnoresRole(t *testing.T) {
	e := newEcho()
	auth := actingAs(regular)
	users := &stubUserService{
		updateSelfFn: func(_ context.Context, id int64, in ports.UpdateSelfInput) (*domain.User, error) {
			if id != regular.ID {
				t.Fatalf("unexpected id %d", id)
			}
			if in.Name == nil || *in.Name != "Renamed" || in.Email != nil || in.Password != nil {
				t.Fatalf("unexpected input: %+v", in)
			}
			u := *regular
			u.Name = *in.Name
			return &u, nil
		},
	}
	e.PUT("/me", NewProfileHandler(users).UpdateMe, middleware.Authenticate(auth))

	rec, resp := do(e, http.MethodPut, "/me", `{"name":"Renamed","role":"admin"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	user, _ := resp["data"].(map[string]any)
	if user["role"] != "user" || user["name"] != "Renamed" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if resp["message"] != "Profile updated successfully" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
}

func TestProfileHandler_UpdateMe_ShortPassword(t *testing.T) {
	e := newEcho()
	auth := actingAs(regular)
	users := &stubUserService{
		updateSelfFn: func(context.Context, int64, ports.UpdateSelfInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	e.PUT("/me", NewProfileHandler(users).UpdateMe, middleware.Authenticate(auth))

	rec, _ := do(e, http.MethodPut, "/me", `{"password":"short","password_confirmation":"short"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

// --- Admin ---

func TestUserHandler_Create(t *testing.T) {
	e := newEcho()
	auth := actingAs(admin)
	users := &stubUserService{
		createFn: func(_ context.Context, actorID int64, in ports.CreateUserInput) (*domain.User, error) {
			if actorID != admin.ID || in.Role != "admin" {
				t.Fatalf("unexpected call: actor=%d in=%+v", actorID, in)
			}
			return &domain.User{ID: 9, Name: in.Name, Email: in.Email, Role: domain.RoleAdmin}, nil
		},
	}
	e.POST("/users", NewUserHandler(users).Create, middleware.Authenticate(auth))

	rec, resp := do(e, http.MethodPost, "/users",
		`{"name":"Carol","email":"carol@example.com","password":"secret123","role":"admin"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp["message"] != "User created successfully" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestUserHandler_Create_RejectsUnknownRole(t *testing.T) {
	e := newEcho()
	auth := actingAs(admin)
	e.POST("/users", NewUserHandler(&stubUserService{}).Create, middleware.Authenticate(auth))

	rec, resp := do(e, http.MethodPost, "/users",
		`{"name":"Carol","email":"carol@example.com","password":"secret123","role":"owner"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	fields, _ := resp["data"].(map[string]any)
	if _, ok := fields["role"]; !ok {
		t.Fatalf("expected role error, got %+v", resp)
	}
}

func TestUserHandler_List_EmptyIsArray(t *testing.T) {
	e := newEcho()
	users := &stubUserService{
		listFn: func(context.Context) ([]*domain.User, error) { return nil, nil },
	}
	e.GET("/users", NewUserHandler(users).List)

	rec, _ := do(e, http.MethodGet, "/users", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestUserHandler_Get_BadIDIsNotFound(t *testing.T) {
	e := newEcho()
	users := &stubUserService{
		getFn: func(context.Context, int64) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	e.GET("/users/:id", NewUserHandler(users).Get)

	for _, id := range []string{"abc", "0", "-4"} {
		rec, _ := do(e, http.MethodGet, "/users/"+id, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("id %q: expected 404, got %d", id, rec.Code)
		}
	}
}

func TestUserHandler_Update(t *testing.T) {
	e := newEcho()
	auth := actingAs(admin)
	users := &stubUserService{
		updateFn: func(_ context.Context, actorID, id int64, in ports.UpdateUserInput) (*domain.User, error) {
			if id != 2 || in.Role == nil || *in.Role != "admin" {
				t.Fatalf("unexpected call: id=%d in=%+v", id, in)
			}
			u := *regular
			u.Role = domain.RoleAdmin
			return &u, nil
		},
	}
	e.PUT("/users/:id", NewUserHandler(users).Update, middleware.Authenticate(auth))

	rec, resp := do(e, http.MethodPut, "/users/2", `{"role":"admin"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp["message"] != "User updated successfully" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestUserHandler_Delete(t *testing.T) {
	e := newEcho()
	auth := actingAs(admin)
	deleted := int64(0)
	users := &stubUserService{
		deleteFn: func(_ context.Context, _, id int64) error {
			deleted = id
			return nil
		},
	}
	e.DELETE("/users/:id", NewUserHandler(users).Delete, middleware.Authenticate(auth))

	rec, resp := do(e, http.MethodDelete, "/users/2", "")

	if rec.Code != http.StatusOK || deleted != 2 {
		t.Fatalf("expected 200 and deletion of 2, got %d / %d", rec.Code, deleted)
	}
	if resp["message"] != "User deleted successfully" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestUserHandler_Delete_NotFound(t *testing.T) {
	e := newEcho()
	auth := actingAs(admin)
	users := &stubUserService{
		deleteFn: func(context.Context, int64, int64) error { return domain.ErrUserNotFound },
	}
	e.DELETE("/users/:id", NewUserHandler(users).Delete, middleware.Authenticate(auth))

	rec, _ := do(e, http.MethodDelete, "/users/99", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

// --- Health ---

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadiness(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	e := newEcho()
	e.GET("/ready", NewReadinessHandler(map[string]Pinger{"database": ok, "redis": ok}).Readiness)
	e.GET("/degraded", NewReadinessHandler(map[string]Pinger{"database": ok, "redis": down}).Readiness)

	rec, resp := do(e, http.MethodGet, "/ready", "")
	if rec.Code != http.StatusOK || resp["status"] != "ok" {
		t.Fatalf("expected ready, got %d %+v", rec.Code, resp)
	}

	rec, resp = do(e, http.MethodGet, "/degraded", "")
	if rec.Code != http.StatusServiceUnavailable || resp["status"] != "degraded" {
		t.Fatalf("expected degraded, got %d %+v", rec.Code, resp)
	}
	deps, _ := resp["dependencies"].(map[string]any)
	redis, _ := deps["redis"].(map[string]any)
	if redis["status"] != "unhealthy" {
		t.Fatalf("unexpected redis status: %+v", deps)
	}
}
