package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sportify/camp-server/internal/core/ports"
)

// Auth verifies the bearer credential and injects the subject email into the
// context under "email". Every rejection looks the same to the client.
func Auth(authenticator ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email, err := authenticator.Authenticate(c.Request().Header.Get("Authorization"))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized access")
			}

			c.Set("email", email)
			return next(c)
		}
	}
}
