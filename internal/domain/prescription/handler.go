package prescription

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsys/medsys/internal/domain/access"
	"github.com/medsys/medsys/internal/domain/identity"
	"github.com/medsys/medsys/internal/platform/auth"
)

// Guard scopes the per-patient prescription listing.
type Guard interface {
	CanViewPatient(ctx context.Context, actor access.Actor, patientID uuid.UUID) error
}

type Handler struct {
	svc   *Service
	guard Guard
}

func NewHandler(svc *Service, guard Guard) *Handler {
	return &Handler{svc: svc, guard: guard}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	staff := e.Group("", auth.RequireRole("staff"))
	staff.GET("/staff/", h.Dashboard)
	staff.POST("/add-prescription/", h.Write)
	staff.GET("/add-prescription/choices", h.FormChoices)

	e.GET("/patient/:id/prescriptions", h.ListByPatient)
}

func (h *Handler) Dashboard(c echo.Context) error {
	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}

	groups, err := h.svc.StaffDashboard(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"patients": groups})
}

func (h *Handler) Write(c echo.Context) error {
	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	var req WriteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.svc.Write(c.Request().Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrNotAssigned) {
			return echo.NewHTTPError(http.StatusBadRequest, ErrNotAssigned.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) FormChoices(c echo.Context) error {
	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}

	choices, err := h.svc.FormChoices(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, choices)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	actor := access.Actor{UserID: userID, Role: identity.Role(auth.RoleFromContext(ctx))}
	if err := h.guard.CanViewPatient(ctx, actor, patientID); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}

	prescriptions, err := h.svc.ListByPatient(ctx, patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"prescriptions": prescriptions})
}
