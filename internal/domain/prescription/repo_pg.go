package prescription

import (
	"context"

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

const prescriptionCols = `id, patient_id, staff_id, medicine_id, dosage, frequency,
	duration_days, instructions, created_at`

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescription (
			id, patient_id, staff_id, medicine_id, dosage, frequency,
			duration_days, instructions
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.PatientID, p.StaffID, p.MedicineID, p.Dosage, p.Frequency,
		p.DurationDays, p.Instructions,
	)
	return err
}

func (r *repoPG) ListByStaff(ctx context.Context, staffID uuid.UUID) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+prescriptionCols+`
		FROM prescription
		WHERE staff_id = $1
		ORDER BY created_at ASC`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPrescriptions(rows)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+prescriptionCols+`
		FROM prescription
		WHERE patient_id = $1
		ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPrescriptions(rows)
}

func (r *repoPG) PatientRefs(ctx context.Context, ids []uuid.UUID) ([]PatientRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, first_name, last_name
		FROM patient
		WHERE id = ANY($1)
		ORDER BY last_name, first_name`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []PatientRef
	for rows.Next() {
		var ref PatientRef
		if err := rows.Scan(&ref.ID, &ref.FirstName, &ref.LastName); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func scanPrescriptions(rows pgx.Rows) ([]*Prescription, error) {
	var out []*Prescription
	for rows.Next() {
		var p Prescription
		if err := rows.Scan(
			&p.ID, &p.PatientID, &p.StaffID, &p.MedicineID, &p.Dosage, &p.Frequency,
			&p.DurationDays, &p.Instructions, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
