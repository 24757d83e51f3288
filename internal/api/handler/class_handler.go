package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sportify/camp-server/internal/core/ports"
)

// ClassHandler serves class offerings and their review.
type ClassHandler struct {
	classes ports.ClassService
	authz   ports.RoleAuthorizer
}

func NewClassHandler(classes ports.ClassService, authz ports.RoleAuthorizer) *ClassHandler {
	return &ClassHandler{classes: classes, authz: authz}
}

// ListAll handles GET /class, the admin review queue.
//
// @Summary      List all classes
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.ClassOffering
// @Failure      403  {object}  map[string]string
// @Router       /class [get]
func (h *ClassHandler) ListAll(c echo.Context) error {
	classes, err := h.classes.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, classes)
}

// ListApproved handles GET /class/approved.
//
// @Summary      List classes open for enrollment
// @Tags         classes
// @Produce      json
// @Success      200  {array}  domain.ClassOffering
// @Router       /class/approved [get]
func (h *ClassHandler) ListApproved(c echo.Context) error {
	classes, err := h.classes.ListApproved(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, classes)
}

// ListByInstructor handles GET /class/instructor/:email.
//
// @Summary      List an instructor's classes
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Instructor email"
// @Success      200    {array}   domain.ClassOffering
// @Failure      403    {object}  map[string]string
// @Router       /class/instructor/{email} [get]
func (h *ClassHandler) ListByInstructor(c echo.Context) error {
	caller, err := ctxEmail(c)
	if err != nil {
		return err
	}
	target := c.Param("email")
	ctx := c.Request().Context()
	if err := requireSelfOrAdmin(ctx, h.authz, caller, target); err != nil {
		return err
	}

	classes, err := h.classes.ListByInstructor(ctx, target)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, classes)
}

// Get handles GET /class/:id.
//
// @Summary      Get a class
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Class id"
// @Success      200  {object}  domain.ClassOffering
// @Failure      404  {object}  map[string]string
// @Router       /class/{id} [get]
func (h *ClassHandler) Get(c echo.Context) error {
	class, err := h.classes.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, class)
}

// Create handles POST /class. The class starts pending and belongs to the
// caller.
//
// @Summary      Propose a class
// @Tags         classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createClassRequest  true  "Class proposal"
// @Success      201   {object}  domain.ClassOffering
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /class [post]
func (h *ClassHandler) Create(c echo.Context) error {
	email, err := ctxEmail(c)
	if err != nil {
		return err
	}
	var req createClassRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	class, err := h.classes.Create(c.Request().Context(), ports.CreateClassInput{
		Name:            req.Name,
		ImageURL:        req.ImageURL,
		InstructorName:  req.InstructorName,
		InstructorEmail: email,
		Price:           req.Price,
		Seats:           req.Seats,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, class)
}

// Update handles PUT /class/:id.
//
// @Summary      Edit a pending class
// @Tags         classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Class id"
// @Param        body  body      updateClassRequest  true  "New values"
// @Success      200   {object}  domain.ClassOffering
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /class/{id} [put]
func (h *ClassHandler) Update(c echo.Context) error {
	email, err := ctxEmail(c)
	if err != nil {
		return err
	}
	var req updateClassRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	class, err := h.classes.Update(c.Request().Context(), c.Param("id"), email, ports.ClassPatch{
		Name:     req.Name,
		ImageURL: req.ImageURL,
		Price:    req.Price,
		Seats:    req.Seats,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, class)
}

// Approve handles PATCH /class/approve/:id.
//
// @Summary      Approve a pending class
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Class id"
// @Success      200  {object}  domain.ClassOffering
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /class/approve/{id} [patch]
func (h *ClassHandler) Approve(c echo.Context) error {
	admin, err := ctxEmail(c)
	if err != nil {
		return err
	}
	class, err := h.classes.Approve(c.Request().Context(), admin, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, class)
}

// Deny handles PATCH /class/deny/:id.
//
// @Summary      Deny a pending class with feedback
// @Tags         classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Class id"
// @Param        body  body      denyRequest  true  "Feedback for the instructor"
// @Success      200   {object}  domain.ClassOffering
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /class/deny/{id} [patch]
func (h *ClassHandler) Deny(c echo.Context) error {
	admin, err := ctxEmail(c)
	if err != nil {
		return err
	}
	var req denyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	class, err := h.classes.Deny(c.Request().Context(), admin, c.Param("id"), req.Feedback)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, class)
}
