package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// RequireRole lets the request through when the caller holds one of roles.
// Plan tiers are not roles; credit checks live in the services.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextKeyUserRole).(string)
			switch {
			case role == "":
				return deny(c, http.StatusForbidden, "missing role")
			case !slices.Contains(roles, role):
				return deny(c, http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
