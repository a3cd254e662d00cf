package identity

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsys/medsys/internal/platform/auth"
	"github.com/medsys/medsys/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/login", h.Login)
	e.POST("/auth/logout", h.Logout)
	e.POST("/auth/signup", h.Signup)
	e.GET("/redirect/", h.Redirect)

	e.GET("/staff/directory", h.StaffDirectory, auth.RequireRole("doctor", "staff", "inventory"))
	e.POST("/admin/staff", h.RegisterStaff, auth.RequireRole("admin"))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a session token with the role's
// dashboard destination. A failed attempt echoes the submitted username so
// the client can re-render the form with it.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error":    "wrong password",
				"username": req.Username,
			})
		}
		if errors.Is(err, ErrNoPatientProfile) {
			return echo.NewHTTPError(http.StatusNotFound, "patient record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	return c.JSON(http.StatusOK, session)
}

// Logout acknowledges the end of a session. Tokens are stateless, so the
// client discards its copy; nothing is revoked server-side.
func (h *Handler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":      "logged out",
		"destination": "/auth/login",
	})
}

func (h *Handler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.svc.Signup(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return echo.NewHTTPError(http.StatusBadRequest, "username already taken")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, session)
}

// Redirect resolves the authenticated user's dashboard destination. The role
// in the token was resolved once at login, so repeated calls in the same
// session return the same destination.
func (h *Handler) Redirect(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	role := Role(auth.RoleFromContext(ctx))

	dest, err := h.svc.LandingFor(ctx, role, userID)
	if err != nil {
		if errors.Is(err, ErrNoPatientProfile) {
			return echo.NewHTTPError(http.StatusNotFound, "patient record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "redirect failed")
	}

	return c.JSON(http.StatusOK, map[string]string{"destination": dest})
}

// StaffDirectory lists active staff profiles for clinical users.
func (h *Handler) StaffDirectory(c echo.Context) error {
	p := pagination.FromContext(c)

	staff, total, err := h.svc.ListStaff(c.Request().Context(), true, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "listing staff failed")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(staff, total, p.Limit, p.Offset))
}

// RegisterStaff provisions a clinical account: user, membership, and staff
// profile in one transaction.
func (h *Handler) RegisterStaff(c echo.Context) error {
	var req StaffSignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	member, err := h.svc.RegisterStaff(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return echo.NewHTTPError(http.StatusBadRequest, "username already taken")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, member)
}
