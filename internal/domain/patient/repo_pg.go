package patient

import (
	"context"
	"errors"

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

const patientCols = `id, user_id, first_name, last_name, date_of_birth, gender, blood_group,
	phone, email, address, emergency_contact, emergency_phone,
	insurance_provider, insurance_id, created_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (
			id, user_id, first_name, last_name, date_of_birth, gender, blood_group,
			phone, email, address, emergency_contact, emergency_phone,
			insurance_provider, insurance_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.UserID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.BloodGroup,
		p.Phone, p.Email, p.Address, p.EmergencyContact, p.EmergencyPhone,
		p.InsuranceProvider, p.InsuranceID,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE user_id = $1`, userID))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			first_name=$2, last_name=$3, date_of_birth=$4, gender=$5, blood_group=$6,
			phone=$7, email=$8, address=$9, emergency_contact=$10, emergency_phone=$11,
			insurance_provider=$12, insurance_id=$13
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.BloodGroup,
		p.Phone, p.Email, p.Address, p.EmergencyContact, p.EmergencyPhone,
		p.InsuranceProvider, p.InsuranceID,
	)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient ORDER BY last_name, first_name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender, &p.BloodGroup,
			&p.Phone, &p.Email, &p.Address, &p.EmergencyContact, &p.EmergencyPhone,
			&p.InsuranceProvider, &p.InsuranceID, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		patients = append(patients, &p)
	}
	return patients, total, rows.Err()
}

func (r *repoPG) AddHistory(ctx context.Context, h *MedicalHistory) error {
	h.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_history (id, patient_id, condition_name, diagnosis_date, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		h.ID, h.PatientID, h.ConditionName, h.DiagnosisDate, h.Status, h.Notes,
	)
	return err
}

func (r *repoPG) Histories(ctx context.Context, patientID uuid.UUID) ([]*MedicalHistory, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, condition_name, diagnosis_date, status, notes, created_at
		FROM medical_history WHERE patient_id = $1 ORDER BY diagnosis_date DESC, created_at DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var histories []*MedicalHistory
	for rows.Next() {
		var h MedicalHistory
		if err := rows.Scan(&h.ID, &h.PatientID, &h.ConditionName, &h.DiagnosisDate, &h.Status, &h.Notes, &h.CreatedAt); err != nil {
			return nil, err
		}
		histories = append(histories, &h)
	}
	return histories, rows.Err()
}

func (r *repoPG) UpdateHistory(ctx context.Context, h *MedicalHistory) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_history SET condition_name=$2, diagnosis_date=$3, status=$4, notes=$5
		WHERE id = $1`,
		h.ID, h.ConditionName, h.DiagnosisDate, h.Status, h.Notes,
	)
	return err
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender, &p.BloodGroup,
		&p.Phone, &p.Email, &p.Address, &p.EmergencyContact, &p.EmergencyPhone,
		&p.InsuranceProvider, &p.InsuranceID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
