package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

// RBAC admits only the listed roles, as set by Auth. Rejections are returned
// as domain.ErrForbidden for the central error handler to render.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if _, ok := allowed[role]; !ok {
				return fmt.Errorf("%w: role %q on %s", domain.ErrForbidden, role, c.Path())
			}
			return next(c)
		}
	}
}
