package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/userdesk/user-management/internal/api/metrics"
	"github.com/userdesk/user-management/internal/core/domain"
)

// RequireRole lets the request through only when the authenticated user
// holds one of the given roles. It must run after Authenticate.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				metrics.GateDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[user.Role]; !ok {
				metrics.GateDecisionsTotal.WithLabelValues("forbidden").Inc()
				return domain.ErrForbidden
			}
			metrics.GateDecisionsTotal.WithLabelValues("allowed").Inc()
			return next(c)
		}
	}
}
