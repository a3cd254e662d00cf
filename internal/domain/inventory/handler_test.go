package inventory

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsys/medsys/internal/domain/identity"
	"github.com/medsys/medsys/internal/platform/auth"
)

func newRequestContext(method, target, body, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), auth.UserIDKey, uuid.NewString())
	ctx = context.WithValue(ctx, auth.UserRoleKey, role)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateMedicineHandler(t *testing.T) {
	svc, _ := newTestService()
	category, err := svc.CreateCategory(context.Background(), "Antibiotics", "")
	if err != nil {
		t.Fatalf("creating category: %v", err)
	}
	h := NewHandler(svc)

	body := fmt.Sprintf(`{"name":"Amoxicillin","category_id":%q,"min_stock_level":5,"current_stock":20,"unit_price":2.5}`, category.ID)
	c, rec := newRequestContext(http.MethodPost, "/inventory/medicines", body, string(identity.RoleInventoryHead))

	if err := h.CreateMedicine(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestCreateMedicineHandler_DuplicateIs409(t *testing.T) {
	svc, _ := newTestService()
	m := seedMedicine(t, svc, "Amoxicillin", 10)
	h := NewHandler(svc)

	body := fmt.Sprintf(`{"name":"Amoxicillin","category_id":%q}`, m.CategoryID)
	c, _ := newRequestContext(http.MethodPost, "/inventory/medicines", body, string(identity.RoleInventoryHead))

	err := h.CreateMedicine(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", httpErr.Code)
	}
}

func TestDashboardHandler_FlagsLowStock(t *testing.T) {
	svc, _ := newTestService()
	seedMedicine(t, svc, "Plenty", 50)
	seedMedicine(t, svc, "Scarce", 2)
	h := NewHandler(svc)

	c, rec := newRequestContext(http.MethodGet, "/inventory/", "", string(identity.RoleInventoryHead))
	if err := h.Dashboard(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := rec.Body.String()
	lowStart := strings.Index(payload, `"low_stock"`)
	if lowStart < 0 {
		t.Fatal("no low_stock section in payload")
	}
	if !strings.Contains(payload[lowStart:], "Scarce") {
		t.Error("expected Scarce in the low stock list")
	}
	if strings.Contains(payload[lowStart:], "Plenty") {
		t.Error("well-stocked medicine flagged as low")
	}
}

func TestAdjustStockHandler_ConflictIs409(t *testing.T) {
	svc, _ := newTestService()
	m := seedMedicine(t, svc, "Amoxicillin", 2)
	h := NewHandler(svc)

	c, _ := newRequestContext(http.MethodPost, "/", `{"delta":-10}`, string(identity.RoleInventoryHead))
	c.SetParamNames("id")
	c.SetParamValues(m.ID.String())

	err := h.AdjustStock(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", httpErr.Code)
	}
}

func TestDispenseUnitHandler_DoubleDispenseIs409(t *testing.T) {
	svc, _ := newTestService()
	m := seedMedicine(t, svc, "Amoxicillin", 10)
	if _, err := svc.RegisterUnit(context.Background(), UnitRequest{Barcode: "BC-001", MedicineID: m.ID}); err != nil {
		t.Fatalf("registering unit: %v", err)
	}
	h := NewHandler(svc)

	c, rec := newRequestContext(http.MethodPost, "/", "", string(identity.RoleInventoryHead))
	c.SetParamNames("barcode")
	c.SetParamValues("BC-001")
	if err := h.DispenseUnit(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	c2, _ := newRequestContext(http.MethodPost, "/", "", string(identity.RoleInventoryHead))
	c2.SetParamNames("barcode")
	c2.SetParamValues("BC-001")
	err := h.DispenseUnit(c2)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", httpErr.Code)
	}
}

func TestGetMedicineHandler_UnknownIs404(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)

	c, _ := newRequestContext(http.MethodGet, "/", "", string(identity.RoleDoctor))
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.GetMedicine(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}
