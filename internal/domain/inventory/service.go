package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medsys/medsys/internal/platform/db"
)

var (
	ErrDuplicateName = errors.New("name already in use")
	ErrBarcodeTaken  = errors.New("barcode already registered")
	// ErrStockConflict covers both an unknown medicine and an adjustment
	// that would drive stock negative.
	ErrStockConflict = errors.New("stock adjustment rejected")
	// ErrAlreadyDispensed covers an unknown barcode and a double dispense.
	ErrAlreadyDispensed = errors.New("unit unknown or already dispensed")

	// ErrNotFound reports a catalog id or barcode with no row behind it.
	ErrNotFound = errors.New("not found")
)

type Service struct {
	repo Repository
	tx   db.TxRunner
}

func NewService(repo Repository, tx db.TxRunner) *Service {
	return &Service{repo: repo, tx: tx}
}

func (s *Service) CreateCategory(ctx context.Context, name, description string) (*Category, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	c := &Category{Name: name, Description: description}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

type MedicineRequest struct {
	Name          string    `json:"name"`
	CategoryID    uuid.UUID `json:"category_id"`
	Manufacturer  string    `json:"manufacturer"`
	MinStockLevel int       `json:"min_stock_level"`
	CurrentStock  int       `json:"current_stock"`
	UnitPrice     float64   `json:"unit_price"`
	Active        *bool     `json:"active"`
}

func (r MedicineRequest) validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.CategoryID == uuid.Nil {
		return fmt.Errorf("category_id is required")
	}
	if r.MinStockLevel < 0 || r.CurrentStock < 0 {
		return fmt.Errorf("stock levels must be non-negative")
	}
	if r.UnitPrice < 0 {
		return fmt.Errorf("unit_price must be non-negative")
	}
	return nil
}

func (s *Service) CreateMedicine(ctx context.Context, req MedicineRequest) (*Medicine, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	m := &Medicine{
		Name:          req.Name,
		CategoryID:    req.CategoryID,
		Manufacturer:  req.Manufacturer,
		MinStockLevel: req.MinStockLevel,
		CurrentStock:  req.CurrentStock,
		UnitPrice:     req.UnitPrice,
		Active:        true,
	}
	if req.Active != nil {
		m.Active = *req.Active
	}
	if err := s.repo.CreateMedicine(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) GetMedicine(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	m, err := s.repo.GetMedicine(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load medicine: %w", err)
	}
	return m, nil
}

func (s *Service) UpdateMedicine(ctx context.Context, id uuid.UUID, req MedicineRequest) (*Medicine, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	m, err := s.repo.GetMedicine(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load medicine: %w", err)
	}
	m.Name = req.Name
	m.CategoryID = req.CategoryID
	m.Manufacturer = req.Manufacturer
	m.MinStockLevel = req.MinStockLevel
	m.UnitPrice = req.UnitPrice
	if req.Active != nil {
		m.Active = *req.Active
	}
	if err := s.repo.UpdateMedicine(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) ListMedicines(ctx context.Context, activeOnly bool) ([]*Medicine, error) {
	return s.repo.ListMedicines(ctx, activeOnly)
}

// AdjustStock moves current_stock by delta. Negative results are rejected at
// the storage layer.
func (s *Service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Medicine, error) {
	if delta == 0 {
		return nil, fmt.Errorf("delta must be non-zero")
	}
	return s.repo.AdjustStock(ctx, id, delta)
}

type UnitRequest struct {
	Barcode           string     `json:"barcode"`
	MedicineID        uuid.UUID  `json:"medicine_id"`
	Batch             string     `json:"batch"`
	ManufacturingDate *time.Time `json:"manufacturing_date"`
	ExpiryDate        *time.Time `json:"expiry_date"`
}

// RegisterUnit records one physical unit and bumps the medicine's stock,
// both or neither.
func (s *Service) RegisterUnit(ctx context.Context, req UnitRequest) (*Unit, error) {
	if req.Barcode == "" {
		return nil, fmt.Errorf("barcode is required")
	}
	if req.MedicineID == uuid.Nil {
		return nil, fmt.Errorf("medicine_id is required")
	}
	if _, err := s.repo.GetMedicine(ctx, req.MedicineID); err != nil {
		return nil, fmt.Errorf("load medicine: %w", err)
	}

	u := &Unit{
		Barcode:           req.Barcode,
		MedicineID:        req.MedicineID,
		Batch:             req.Batch,
		ManufacturingDate: req.ManufacturingDate,
		ExpiryDate:        req.ExpiryDate,
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateUnit(ctx, u); err != nil {
			return err
		}
		_, err := s.repo.AdjustStock(ctx, req.MedicineID, 1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) ListUnits(ctx context.Context, medicineID uuid.UUID) ([]*Unit, error) {
	return s.repo.ListUnits(ctx, medicineID)
}

// DispenseUnit hands a unit out by barcode and decrements the medicine's
// stock.
func (s *Service) DispenseUnit(ctx context.Context, barcode string) (*Unit, error) {
	var u *Unit
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.repo.MarkDispensed(ctx, barcode)
		if err != nil {
			return err
		}
		_, err = s.repo.AdjustStock(ctx, u.MedicineID, -1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ListChoices exposes the active catalog as prescription form options.
func (s *Service) ListChoices(ctx context.Context) ([]*Medicine, error) {
	return s.repo.ListMedicines(ctx, true)
}
