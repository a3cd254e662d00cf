package inventory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	categories map[uuid.UUID]*Category
	medicines  map[uuid.UUID]*Medicine
	units      map[string]*Unit
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		categories: make(map[uuid.UUID]*Category),
		medicines:  make(map[uuid.UUID]*Medicine),
		units:      make(map[string]*Unit),
	}
}

func (m *mockRepo) CreateCategory(_ context.Context, c *Category) error {
	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return fmt.Errorf("category %q: %w", c.Name, ErrDuplicateName)
		}
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	m.categories[c.ID] = c
	return nil
}

func (m *mockRepo) ListCategories(context.Context) ([]*Category, error) {
	var out []*Category
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockRepo) CreateMedicine(_ context.Context, med *Medicine) error {
	for _, existing := range m.medicines {
		if existing.Name == med.Name {
			return fmt.Errorf("medicine %q: %w", med.Name, ErrDuplicateName)
		}
	}
	med.ID = uuid.New()
	med.CreatedAt = time.Now()
	m.medicines[med.ID] = med
	return nil
}

func (m *mockRepo) GetMedicine(_ context.Context, id uuid.UUID) (*Medicine, error) {
	med, ok := m.medicines[id]
	if !ok {
		return nil, ErrNotFound
	}
	return med, nil
}

func (m *mockRepo) UpdateMedicine(_ context.Context, med *Medicine) error {
	m.medicines[med.ID] = med
	return nil
}

func (m *mockRepo) ListMedicines(_ context.Context, activeOnly bool) ([]*Medicine, error) {
	var out []*Medicine
	for _, med := range m.medicines {
		if activeOnly && !med.Active {
			continue
		}
		out = append(out, med)
	}
	return out, nil
}

func (m *mockRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int) (*Medicine, error) {
	med, ok := m.medicines[id]
	if !ok || med.CurrentStock+delta < 0 {
		return nil, ErrStockConflict
	}
	med.CurrentStock += delta
	return med, nil
}

func (m *mockRepo) CreateUnit(_ context.Context, u *Unit) error {
	if _, ok := m.units[u.Barcode]; ok {
		return fmt.Errorf("barcode %q: %w", u.Barcode, ErrBarcodeTaken)
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	m.units[u.Barcode] = u
	return nil
}

func (m *mockRepo) GetUnitByBarcode(_ context.Context, barcode string) (*Unit, error) {
	u, ok := m.units[barcode]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) ListUnits(_ context.Context, medicineID uuid.UUID) ([]*Unit, error) {
	var out []*Unit
	for _, u := range m.units {
		if u.MedicineID == medicineID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockRepo) MarkDispensed(_ context.Context, barcode string) (*Unit, error) {
	u, ok := m.units[barcode]
	if !ok || u.Dispensed {
		return nil, ErrAlreadyDispensed
	}
	u.Dispensed = true
	return u, nil
}

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, passthroughTx{}), repo
}

func seedMedicine(t *testing.T, svc *Service, name string, stock int) *Medicine {
	t.Helper()
	category, err := svc.CreateCategory(context.Background(), "Antibiotics "+name, "")
	if err != nil {
		t.Fatalf("creating category: %v", err)
	}
	m, err := svc.CreateMedicine(context.Background(), MedicineRequest{
		Name:          name,
		CategoryID:    category.ID,
		MinStockLevel: 5,
		CurrentStock:  stock,
		UnitPrice:     2.50,
	})
	if err != nil {
		t.Fatalf("creating medicine: %v", err)
	}
	return m
}

func TestCreateMedicine_Defaults(t *testing.T) {
	svc, _ := newTestService()
	m := seedMedicine(t, svc, "Amoxicillin", 10)

	if !m.Active {
		t.Error("new medicine should default to active")
	}
}

func TestCreateMedicine_DuplicateName(t *testing.T) {
	svc, _ := newTestService()
	m := seedMedicine(t, svc, "Amoxicillin", 10)

	_, err := svc.CreateMedicine(context.Background(), MedicineRequest{
		Name:       "Amoxicillin",
		CategoryID: m.CategoryID,
	})
	if err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestCreateMedicine_Validation(t *testing.T) {
	svc, _ := newTestService()

	cases := map[string]MedicineRequest{
		"no name":              {CategoryID: uuid.New()},
		"no category":          {Name: "X"},
		"negative stock level": {Name: "X", CategoryID: uuid.New(), MinStockLevel: -1},
		"negative price":       {Name: "X", CategoryID: uuid.New(), UnitPrice: -0.5},
		"negative stock":       {Name: "X", CategoryID: uuid.New(), CurrentStock: -3},
	}
	for name, req := range cases {
		if _, err := svc.CreateMedicine(context.Background(), req); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestAdjustStock(t *testing.T) {
	svc, _ := newTestService()
	m := seedMedicine(t, svc, "Amoxicillin", 10)

	updated, err := svc.AdjustStock(context.Background(), m.ID, -4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.CurrentStock != 6 {
		t.Errorf("expected stock 6, got %d", updated.CurrentStock)
	}

	if _, err := svc.AdjustStock(context.Background(), m.ID, -100); err != ErrStockConflict {
		t.Errorf("expected ErrStockConflict driving stock negative, got %v", err)
	}
	if _, err := svc.AdjustStock(context.Background(), m.ID, 0); err == nil {
		t.Error("expected error for zero delta")
	}
}

func TestLowStock(t *testing.T) {
	svc, _ := newTestService()
	m := seedMedicine(t, svc, "Amoxicillin", 3) // min level is 5

	if !m.LowStock() {
		t.Error("expected low stock below the minimum level")
	}

	if _, err := svc.AdjustStock(context.Background(), m.ID, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.LowStock() {
		t.Error("stock above minimum still reported low")
	}
}

func TestRegisterUnit_BumpsStock(t *testing.T) {
	svc, _ := newTestService()
	m := seedMedicine(t, svc, "Amoxicillin", 10)

	u, err := svc.RegisterUnit(context.Background(), UnitRequest{
		Barcode:    "BC-001",
		MedicineID: m.ID,
		Batch:      "B42",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Dispensed {
		t.Error("new unit should not be dispensed")
	}
	if m.CurrentStock != 11 {
		t.Errorf("expected stock 11 after registering a unit, got %d", m.CurrentStock)
	}
}

func TestRegisterUnit_DuplicateBarcode(t *testing.T) {
	svc, _ := newTestService()
	m := seedMedicine(t, svc, "Amoxicillin", 10)

	req := UnitRequest{Barcode: "BC-001", MedicineID: m.ID}
	if _, err := svc.RegisterUnit(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.RegisterUnit(context.Background(), req); err == nil {
		t.Fatal("expected duplicate barcode error")
	}
	if m.CurrentStock != 11 {
		t.Errorf("failed registration changed stock: %d", m.CurrentStock)
	}
}

func TestDispenseUnit(t *testing.T) {
	svc, _ := newTestService()
	m := seedMedicine(t, svc, "Amoxicillin", 10)
	if _, err := svc.RegisterUnit(context.Background(), UnitRequest{Barcode: "BC-001", MedicineID: m.ID}); err != nil {
		t.Fatalf("registering unit: %v", err)
	}

	u, err := svc.DispenseUnit(context.Background(), "BC-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !u.Dispensed {
		t.Error("unit not marked dispensed")
	}
	if m.CurrentStock != 10 {
		t.Errorf("expected stock back to 10, got %d", m.CurrentStock)
	}

	if _, err := svc.DispenseUnit(context.Background(), "BC-001"); err != ErrAlreadyDispensed {
		t.Errorf("expected ErrAlreadyDispensed on double dispense, got %v", err)
	}
	if _, err := svc.DispenseUnit(context.Background(), "BC-404"); err != ErrAlreadyDispensed {
		t.Errorf("expected ErrAlreadyDispensed for unknown barcode, got %v", err)
	}
}

func TestListChoices_ActiveOnly(t *testing.T) {
	svc, _ := newTestService()
	seedMedicine(t, svc, "Amoxicillin", 10)
	inactive := seedMedicine(t, svc, "Retired", 0)
	no := false
	if _, err := svc.UpdateMedicine(context.Background(), inactive.ID, MedicineRequest{
		Name:       inactive.Name,
		CategoryID: inactive.CategoryID,
		Active:     &no,
	}); err != nil {
		t.Fatalf("deactivating: %v", err)
	}

	choices, err := svc.ListChoices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(choices) != 1 || choices[0].Name != "Amoxicillin" {
		t.Errorf("expected only the active medicine, got %d entries", len(choices))
	}
}
