package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Category groups medicines in the catalog.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Medicine is a catalog entry. CurrentStock counts undispensed units.
type Medicine struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	CategoryID    uuid.UUID `json:"category_id"`
	Manufacturer  string    `json:"manufacturer,omitempty"`
	MinStockLevel int       `json:"min_stock_level"`
	CurrentStock  int       `json:"current_stock"`
	UnitPrice     float64   `json:"unit_price"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// LowStock reports whether the medicine has fallen below its minimum level.
func (m *Medicine) LowStock() bool {
	return m.CurrentStock < m.MinStockLevel
}

// Unit is a single physical item tracked by barcode.
type Unit struct {
	ID                uuid.UUID  `json:"id"`
	Barcode           string     `json:"barcode"`
	MedicineID        uuid.UUID  `json:"medicine_id"`
	Batch             string     `json:"batch,omitempty"`
	ManufacturingDate *time.Time `json:"manufacturing_date,omitempty"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
	Dispensed         bool       `json:"dispensed"`
	CreatedAt         time.Time  `json:"created_at"`
}
