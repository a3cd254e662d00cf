package inventory

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context) ([]*Category, error)

	CreateMedicine(ctx context.Context, m *Medicine) error
	GetMedicine(ctx context.Context, id uuid.UUID) (*Medicine, error)
	UpdateMedicine(ctx context.Context, m *Medicine) error
	ListMedicines(ctx context.Context, activeOnly bool) ([]*Medicine, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Medicine, error)

	CreateUnit(ctx context.Context, u *Unit) error
	GetUnitByBarcode(ctx context.Context, barcode string) (*Unit, error)
	ListUnits(ctx context.Context, medicineID uuid.UUID) ([]*Unit, error)
	MarkDispensed(ctx context.Context, barcode string) (*Unit, error)
}
