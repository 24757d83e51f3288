package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/core/ports"
)

// EnrollmentHandler serves selections, payment intents and commits.
type EnrollmentHandler struct {
	selections  ports.SelectionService
	enrollments ports.EnrollmentService
	authz       ports.RoleAuthorizer
}

func NewEnrollmentHandler(selections ports.SelectionService, enrollments ports.EnrollmentService, authz ports.RoleAuthorizer) *EnrollmentHandler {
	return &EnrollmentHandler{selections: selections, enrollments: enrollments, authz: authz}
}

// Select handles POST /student/class/select.
//
// @Summary      Select a class
// @Tags         enrollment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      selectRequest  true  "Class to select"
// @Success      201   {object}  domain.SelectionRequest
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /student/class/select [post]
func (h *EnrollmentHandler) Select(c echo.Context) error {
	email, err := ctxEmail(c)
	if err != nil {
		return err
	}
	var req selectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	sel, err := h.selections.Select(c.Request().Context(), email, req.ClassID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sel)
}

// ListSelections handles GET /student/class/select/:email.
//
// @Summary      List a student's selections
// @Tags         enrollment
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Student email"
// @Success      200    {array}   domain.SelectionRequest
// @Failure      403    {object}  map[string]string
// @Router       /student/class/select/{email} [get]
func (h *EnrollmentHandler) ListSelections(c echo.Context) error {
	email, err := ctxEmail(c)
	if err != nil {
		return err
	}
	if domain.NormalizeEmail(c.Param("email")) != email {
		return domain.ErrForbidden
	}

	sels, err := h.selections.ListByStudent(c.Request().Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sels)
}

// CancelSelection handles DELETE /student/class/select/:id.
//
// @Summary      Cancel a selection
// @Tags         enrollment
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Selection id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /student/class/select/{id} [delete]
func (h *EnrollmentHandler) CancelSelection(c echo.Context) error {
	email, err := ctxEmail(c)
	if err != nil {
		return err
	}
	if err := h.selections.Cancel(c.Request().Context(), email, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "selection cancelled"})
}

// CreatePaymentIntent handles POST /create-payment-intent.
//
// @Summary      Authorize a payment amount
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      paymentIntentRequest  true  "Amount to authorize"
// @Success      200   {object}  paymentIntentResponse
// @Failure      402   {object}  map[string]any
// @Failure      422   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /create-payment-intent [post]
func (h *EnrollmentHandler) CreatePaymentIntent(c echo.Context) error {
	var req paymentIntentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	auth, err := h.enrollments.CreatePaymentIntent(c.Request().Context(), req.Price)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paymentIntentResponse{
		ClientSecret: auth.ClientSecret,
		PaymentRef:   auth.Ref,
		Amount:       auth.Amount,
		Currency:     auth.Currency,
	})
}

// Commit handles POST /payment. A replay of an already committed selection
// answers 200 with the original record instead of 201.
//
// @Summary      Pay for a selection and enroll
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string         false  "Must equal selection_id when sent"
// @Param        body             body      commitRequest  true   "Selection to commit"
// @Success      200              {object}  commitResponse
// @Success      201              {object}  commitResponse
// @Failure      402              {object}  map[string]any
// @Failure      403              {object}  map[string]string
// @Failure      404              {object}  map[string]string
// @Failure      409              {object}  map[string]string
// @Failure      422              {object}  map[string]string
// @Router       /payment [post]
func (h *EnrollmentHandler) Commit(c echo.Context) error {
	email, err := ctxEmail(c)
	if err != nil {
		return err
	}
	var req commitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if key := c.Request().Header.Get("Idempotency-Key"); key != "" && key != req.SelectionID {
		return domain.ErrSelectionMismatch
	}

	res, err := h.enrollments.Commit(c.Request().Context(), ports.CommitInput{
		SelectionID:  req.SelectionID,
		StudentEmail: email,
		ClassID:      req.ClassID,
		Price:        req.Price,
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.AlreadyCommitted {
		status = http.StatusOK
	}
	return c.JSON(status, commitResponse{
		Payment:          res.Payment,
		Enrolled:         res.Enrolled,
		AlreadyCommitted: res.AlreadyCommitted,
	})
}

// ListPayments handles GET /payment/:email.
//
// @Summary      List a student's payments
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Student email"
// @Success      200    {array}   domain.PaymentRecord
// @Failure      403    {object}  map[string]string
// @Router       /payment/{email} [get]
func (h *EnrollmentHandler) ListPayments(c echo.Context) error {
	caller, err := ctxEmail(c)
	if err != nil {
		return err
	}
	target := c.Param("email")
	ctx := c.Request().Context()
	if err := requireSelfOrAdmin(ctx, h.authz, caller, target); err != nil {
		return err
	}

	payments, err := h.enrollments.ListPayments(ctx, target)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}
