package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medsys/medsys/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) CreateCategory(ctx context.Context, c *Category) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medicine_category (id, name, description) VALUES ($1,$2,$3)`,
		c.ID, c.Name, c.Description,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", c.Name, ErrDuplicateName)
	}
	return err
}

func (r *repoPG) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, name, description, created_at
		FROM medicine_category ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

const medicineCols = `id, name, category_id, manufacturer, min_stock_level, current_stock,
	unit_price, active, created_at`

func (r *repoPG) CreateMedicine(ctx context.Context, m *Medicine) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medicine (id, name, category_id, manufacturer, min_stock_level,
			current_stock, unit_price, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.Name, m.CategoryID, m.Manufacturer, m.MinStockLevel,
		m.CurrentStock, m.UnitPrice, m.Active,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("medicine %q: %w", m.Name, ErrDuplicateName)
	}
	return err
}

func (r *repoPG) GetMedicine(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return scanMedicine(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medicineCols+` FROM medicine WHERE id = $1`, id))
}

func (r *repoPG) UpdateMedicine(ctx context.Context, m *Medicine) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medicine
		SET name = $2, category_id = $3, manufacturer = $4, min_stock_level = $5,
			unit_price = $6, active = $7
		WHERE id = $1`,
		m.ID, m.Name, m.CategoryID, m.Manufacturer, m.MinStockLevel,
		m.UnitPrice, m.Active,
	)
	return err
}

func (r *repoPG) ListMedicines(ctx context.Context, activeOnly bool) ([]*Medicine, error) {
	q := `SELECT ` + medicineCols + ` FROM medicine`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY name`

	rows, err := r.conn(ctx).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repoPG) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Medicine, error) {
	m, err := scanMedicine(r.conn(ctx).QueryRow(ctx, `
		UPDATE medicine
		SET current_stock = current_stock + $2
		WHERE id = $1 AND current_stock + $2 >= 0
		RETURNING `+medicineCols, id, delta))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrStockConflict
	}
	return m, err
}

const unitCols = `id, barcode, medicine_id, batch, manufacturing_date, expiry_date, dispensed, created_at`

func (r *repoPG) CreateUnit(ctx context.Context, u *Unit) error {
	u.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medicine_unit (id, barcode, medicine_id, batch, manufacturing_date, expiry_date)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Barcode, u.MedicineID, u.Batch, u.ManufacturingDate, u.ExpiryDate,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("barcode %q: %w", u.Barcode, ErrBarcodeTaken)
	}
	return err
}

func (r *repoPG) GetUnitByBarcode(ctx context.Context, barcode string) (*Unit, error) {
	return scanUnit(r.conn(ctx).QueryRow(ctx,
		`SELECT `+unitCols+` FROM medicine_unit WHERE barcode = $1`, barcode))
}

func (r *repoPG) ListUnits(ctx context.Context, medicineID uuid.UUID) ([]*Unit, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+unitCols+`
		FROM medicine_unit
		WHERE medicine_id = $1
		ORDER BY expiry_date NULLS LAST, created_at`, medicineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repoPG) MarkDispensed(ctx context.Context, barcode string) (*Unit, error) {
	u, err := scanUnit(r.conn(ctx).QueryRow(ctx, `
		UPDATE medicine_unit
		SET dispensed = true
		WHERE barcode = $1 AND NOT dispensed
		RETURNING `+unitCols, barcode))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrAlreadyDispensed
	}
	return u, err
}

func scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	err := row.Scan(
		&m.ID, &m.Name, &m.CategoryID, &m.Manufacturer, &m.MinStockLevel,
		&m.CurrentStock, &m.UnitPrice, &m.Active, &m.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanUnit(row pgx.Row) (*Unit, error) {
	var u Unit
	err := row.Scan(
		&u.ID, &u.Barcode, &u.MedicineID, &u.Batch, &u.ManufacturingDate,
		&u.ExpiryDate, &u.Dispensed, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
