package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/userdesk/user-management/docs"
	"github.com/userdesk/user-management/internal/api/handler"
	"github.com/userdesk/user-management/internal/api/middleware"
	"github.com/userdesk/user-management/internal/api/response"
	"github.com/userdesk/user-management/internal/core/domain"
	"github.com/userdesk/user-management/internal/core/ports"
)

// Dependencies is everything the HTTP layer needs from the rest of the
// process.
type Dependencies struct {
	Log         zerolog.Logger
	AuthService ports.AuthService
	UserService ports.UserService

	// Readiness maps dependency names to their health checks.
	Readiness map[string]handler.Pinger

	// APIPrefix is prepended to every account route, e.g. "/api".
	APIPrefix   string
	CORSOrigins []string

	// Registry receives the HTTP request metrics. Defaults to the global
	// Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = response.NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.BodyLimit("1M"))
	if len(deps.CORSOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins: deps.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	promCfg := echoprometheus.MiddlewareConfig{Namespace: "usermgmt"}
	var metricsHandler echo.HandlerFunc
	if deps.Registry != nil {
		promCfg.Registerer = deps.Registry
		metricsHandler = echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Registry})
	} else {
		metricsHandler = echoprometheus.NewHandler()
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(promCfg))

	// --- Operational routes ---
	e.GET("/metrics", metricsHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(deps.Readiness).Readiness)

	authHandler := handler.NewAuthHandler(deps.AuthService)
	profileHandler := handler.NewProfileHandler(deps.UserService)
	userHandler := handler.NewUserHandler(deps.UserService)

	api := e.Group(deps.APIPrefix)

	// --- Public ---
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	// Auth middleware is attached per route. A group with middleware gets
	// catch-all routes, which would turn unknown paths into 401s.
	authn := middleware.Authenticate(deps.AuthService)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Any authenticated user ---
	api.POST("/logout", authHandler.Logout, authn)
	api.GET("/me", profileHandler.Me, authn)
	api.PUT("/me", profileHandler.UpdateMe, authn)

	// --- Admin only ---
	api.GET("/users", userHandler.List, authn, adminOnly)
	api.POST("/users", userHandler.Create, authn, adminOnly)
	api.GET("/users/:id", userHandler.Get, authn, adminOnly)
	api.PUT("/users/:id", userHandler.Update, authn, adminOnly)
	api.DELETE("/users/:id", userHandler.Delete, authn, adminOnly)

	return e
}
