package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/userdesk/user-management/internal/api/metrics"
	"github.com/userdesk/user-management/internal/core/domain"
	"github.com/userdesk/user-management/internal/core/ports"
)

const (
	userKey    = "user"
	sessionKey = "session"
)

// Authenticate resolves the bearer token to the current user and stores it
// and its session on the context. Any failure short-circuits with
// domain.ErrUnauthenticated, except store outages which pass through as-is.
func Authenticate(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.GateDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}

			user, session, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					metrics.GateDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				} else {
					metrics.GateDecisionsTotal.WithLabelValues("error").Inc()
				}
				return err
			}

			metrics.GateDecisionsTotal.WithLabelValues("authenticated").Inc()
			c.Set(userKey, user)
			c.Set(sessionKey, session)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CurrentUser returns the user stored by Authenticate, or nil.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(userKey).(*domain.User)
	return u
}

// CurrentSession returns the session stored by Authenticate.
func CurrentSession(c echo.Context) (domain.Session, bool) {
	s, ok := c.Get(sessionKey).(domain.Session)
	return s, ok
}
