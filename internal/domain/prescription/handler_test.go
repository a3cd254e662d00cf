package prescription

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsys/medsys/internal/domain/access"
	"github.com/medsys/medsys/internal/domain/identity"
	"github.com/medsys/medsys/internal/platform/auth"
)

type allowAllGuard struct{}

func (allowAllGuard) CanViewPatient(context.Context, access.Actor, uuid.UUID) error { return nil }

type denyGuard struct{}

func (denyGuard) CanViewPatient(context.Context, access.Actor, uuid.UUID) error {
	return access.ErrForbidden
}

func newRequestContext(method, target, body, userID, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID)
	ctx = context.WithValue(ctx, auth.UserRoleKey, role)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWriteHandler_UnassignedPatientIs400(t *testing.T) {
	svc, repo, _, staff, _ := newTestService()
	_, userID := addStaff(staff)
	patientID := repo.addPatient("Pat", "Doe")
	h := NewHandler(svc, allowAllGuard{})

	body := fmt.Sprintf(`{"patient_id":%q,"medicine_id":%q,"dosage":"500mg","frequency":"daily","duration_days":5}`,
		patientID, uuid.New())
	c, _ := newRequestContext(http.MethodPost, "/add-prescription/", body, userID.String(), string(identity.RoleStaff))

	err := h.Write(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
	if httpErr.Message != ErrNotAssigned.Error() {
		t.Errorf("unexpected message: %v", httpErr.Message)
	}
}

func TestWriteHandler_Created(t *testing.T) {
	svc, repo, authz, staff, _ := newTestService()
	_, userID := addStaff(staff)
	patientID := repo.addPatient("Pat", "Doe")
	authz.assigned[userID] = []uuid.UUID{patientID}
	h := NewHandler(svc, allowAllGuard{})

	body := fmt.Sprintf(`{"patient_id":%q,"medicine_id":%q,"dosage":"500mg","frequency":"daily","duration_days":5}`,
		patientID, uuid.New())
	c, rec := newRequestContext(http.MethodPost, "/add-prescription/", body, userID.String(), string(identity.RoleStaff))

	if err := h.Write(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestDashboardHandler(t *testing.T) {
	svc, repo, authz, staff, _ := newTestService()
	_, userID := addStaff(staff)
	p := repo.addPatient("Alpha", "One")
	authz.assigned[userID] = []uuid.UUID{p}
	h := NewHandler(svc, allowAllGuard{})

	c, rec := newRequestContext(http.MethodGet, "/staff/", "", userID.String(), string(identity.RoleStaff))
	if err := h.Dashboard(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Alpha") {
		t.Error("expected assigned patient in dashboard payload")
	}
}

func TestFormChoicesHandler(t *testing.T) {
	svc, repo, authz, staff, catalog := newTestService()
	_, userID := addStaff(staff)
	p := repo.addPatient("Alpha", "One")
	authz.assigned[userID] = []uuid.UUID{p}
	catalog.medicines = []MedicineChoice{{ID: uuid.New(), Name: "Amoxicillin"}}
	h := NewHandler(svc, allowAllGuard{})

	c, rec := newRequestContext(http.MethodGet, "/add-prescription/choices", "", userID.String(), string(identity.RoleStaff))
	if err := h.FormChoices(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Amoxicillin") {
		t.Error("expected medicines in choices payload")
	}
}

func TestListByPatientHandler_GuardDenies(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	p := repo.addPatient("Pat", "Doe")
	h := NewHandler(svc, denyGuard{})

	c, _ := newRequestContext(http.MethodGet, "/", "", uuid.NewString(), string(identity.RolePatient))
	c.SetParamNames("id")
	c.SetParamValues(p.String())

	err := h.ListByPatient(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}
