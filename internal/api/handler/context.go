package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/core/ports"
)

// ctxEmail extracts the subject email injected by the Auth middleware. An
// empty value means the middleware did not run, which is treated as 401.
func ctxEmail(c echo.Context) (string, error) {
	email, _ := c.Get("email").(string)
	if email == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return email, nil
}

// requireSelfOrAdmin lets the caller through when they address their own
// resources, otherwise only a currently stored admin role passes.
func requireSelfOrAdmin(ctx context.Context, authz ports.RoleAuthorizer, caller, target string) error {
	if domain.NormalizeEmail(target) == caller {
		return nil
	}
	return authz.Authorize(ctx, caller, domain.RoleAdmin)
}
