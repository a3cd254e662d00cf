package patient

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsys/medsys/internal/domain/access"
	"github.com/medsys/medsys/internal/domain/identity"
	"github.com/medsys/medsys/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// View scoping is enforced by the access scoper, which returns the
	// uniform 403 the route contract requires.
	e.GET("/patient/:id/", h.GetPatient)
	e.POST("/patients/:id/edit/", h.EditPatient, auth.RequireRole("doctor"))
}

func actorFromContext(c echo.Context) (access.Actor, error) {
	ctx := c.Request().Context()
	userID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return access.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	return access.Actor{UserID: userID, Role: identity.Role(auth.RoleFromContext(ctx))}, nil
}

func (h *Handler) GetPatient(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	detail, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		if errors.Is(err, access.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) EditPatient(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.svc.Update(c.Request().Context(), actor, id, req)
	if err != nil {
		if errors.Is(err, access.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}
