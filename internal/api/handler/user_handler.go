package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/core/ports"
)

// UserHandler serves identity administration.
type UserHandler struct {
	users ports.UserService
	authz ports.RoleAuthorizer
}

func NewUserHandler(users ports.UserService, authz ports.RoleAuthorizer) *UserHandler {
	return &UserHandler{users: users, authz: authz}
}

// List handles GET /users.
//
// @Summary      List identities
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Identity
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	identities, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identities)
}

// Role handles GET /users/role/:email.
//
// @Summary      Get the stored role of an identity
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Identity email"
// @Success      200    {object}  roleResponse
// @Failure      403    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /users/role/{email} [get]
func (h *UserHandler) Role(c echo.Context) error {
	caller, err := ctxEmail(c)
	if err != nil {
		return err
	}
	target := c.Param("email")
	ctx := c.Request().Context()
	if err := requireSelfOrAdmin(ctx, h.authz, caller, target); err != nil {
		return err
	}

	role, err := h.users.Role(ctx, target)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleResponse{Email: domain.NormalizeEmail(target), Role: role})
}

// PromoteAdmin handles PATCH /users/admin/:id.
//
// @Summary      Promote an identity to admin
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Identity id"
// @Success      200  {object}  domain.Identity
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/admin/{id} [patch]
func (h *UserHandler) PromoteAdmin(c echo.Context) error {
	return h.promote(c, domain.RoleAdmin)
}

// PromoteInstructor handles PATCH /users/instructor/:id.
//
// @Summary      Promote an identity to instructor
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Identity id"
// @Success      200  {object}  domain.Identity
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/instructor/{id} [patch]
func (h *UserHandler) PromoteInstructor(c echo.Context) error {
	return h.promote(c, domain.RoleInstructor)
}

func (h *UserHandler) promote(c echo.Context, role domain.Role) error {
	actor, err := ctxEmail(c)
	if err != nil {
		return err
	}
	identity, err := h.users.Promote(c.Request().Context(), actor, c.Param("id"), role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}
