package patient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsys/medsys/internal/domain/identity"
	"github.com/medsys/medsys/internal/platform/auth"
)

func newRequestContext(method, target string, userID, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID)
	ctx = context.WithValue(ctx, auth.UserRoleKey, role)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGetPatientHandler_ForbiddenForOtherPatient(t *testing.T) {
	svc, repo, guard := newTestService()
	h := NewHandler(svc)
	mine := seedPatient(t, repo, guard)
	other := seedPatient(t, repo, guard)

	c, _ := newRequestContext(http.MethodGet, "/", mine.UserID.String(), string(identity.RolePatient))
	c.SetParamNames("id")
	c.SetParamValues(other.ID.String())

	err := h.GetPatient(c)
	if err == nil {
		t.Fatal("expected error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}

func TestGetPatientHandler_OwnRecord(t *testing.T) {
	svc, repo, guard := newTestService()
	h := NewHandler(svc)
	mine := seedPatient(t, repo, guard)

	c, rec := newRequestContext(http.MethodGet, "/", mine.UserID.String(), string(identity.RolePatient))
	c.SetParamNames("id")
	c.SetParamValues(mine.ID.String())

	if err := h.GetPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestGetPatientHandler_InvalidID(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)

	c, _ := newRequestContext(http.MethodGet, "/", "not-a-uuid", string(identity.RoleDoctor))
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := h.GetPatient(c)
	if err == nil {
		t.Fatal("expected error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for malformed session, got %d", httpErr.Code)
	}
}

func TestGetPatientHandler_UnknownPatientIs404(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)

	c, _ := newRequestContext(http.MethodGet, "/", uuid.NewString(), string(identity.RoleDoctor))
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.GetPatient(c)
	if err == nil {
		t.Fatal("expected error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}
