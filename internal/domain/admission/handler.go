package admission

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

// Guard scopes the per-patient admission listing.
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
	doctor := e.Group("", auth.RequireRole("doctor"))
	doctor.GET("/doctor/dashboard", h.DoctorDashboard)
	doctor.POST("/add-patient/", h.Intake)
	doctor.GET("/rooms/available", h.AvailableRooms)
	doctor.POST("/admissions/:id/assistant", h.AssignAssistant)
	doctor.POST("/admissions/:id/discharge", h.Discharge)

	e.GET("/patient/:id/admissions", h.ListByPatient)
}

func (h *Handler) DoctorDashboard(c echo.Context) error {
	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}

	entries, err := h.svc.DoctorDashboard(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"admissions": entries})
}

func (h *Handler) Intake(c echo.Context) error {
	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	var req IntakeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	a, err := h.svc.Intake(c.Request().Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrRoomOccupied) {
			return echo.NewHTTPError(http.StatusBadRequest, "room is occupied")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) AvailableRooms(c echo.Context) error {
	var exclude *uuid.UUID
	if raw := c.QueryParam("admission_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid admission_id")
		}
		exclude = &id
	}

	rooms, err := h.svc.AvailableRooms(c.Request().Context(), exclude)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "admission not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"rooms": rooms})
}

func (h *Handler) AssignAssistant(c echo.Context) error {
	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	admissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		AssistantDoctorID uuid.UUID `json:"assistant_doctor_id"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.AssistantDoctorID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "assistant_doctor_id is required")
	}

	a, err := h.svc.AssignAssistant(c.Request().Context(), userID, admissionID, body.AssistantDoctorID)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "admission not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Discharge(c echo.Context) error {
	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	admissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Summary string `json:"summary"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	a, err := h.svc.Discharge(c.Request().Context(), userID, admissionID, body.Summary)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "admission not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, a)
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

	records, err := h.svc.ListByPatient(ctx, patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"admissions": records})
}
