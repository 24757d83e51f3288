package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/core/ports"
)

// RequireRole enforces role-based access control against the role currently
// stored for the caller, so a promotion or demotion applies on the next
// request without reissuing the credential. Must run after Auth.
func RequireRole(authz ports.RoleAuthorizer, roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email, _ := c.Get("email").(string)
			if email == "" {
				return domain.ErrForbidden
			}
			if err := authz.Authorize(c.Request().Context(), email, roles...); err != nil {
				return err
			}
			return next(c)
		}
	}
}
