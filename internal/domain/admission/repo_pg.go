package admission

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

const admissionCols = `id, patient_id, admission_date, discharge_date, room_number,
	primary_doctor_id, assistant_doctor_id, admission_reason, discharge_summary, status, created_at`

func (r *repoPG) Create(ctx context.Context, a *AdmissionRecord) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO admission_record (
			id, patient_id, admission_date, discharge_date, room_number,
			primary_doctor_id, assistant_doctor_id, admission_reason, discharge_summary, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		a.ID, a.PatientID, a.AdmissionDate, a.DischargeDate, a.RoomNumber,
		a.PrimaryDoctorID, a.AssistantDoctorID, a.AdmissionReason, a.DischargeSummary, a.Status,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: the open_room partial unique index caught a double booking.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("room %d: %w", a.RoomNumber, ErrRoomOccupied)
		}
		return err
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*AdmissionRecord, error) {
	return scanAdmission(r.conn(ctx).QueryRow(ctx,
		`SELECT `+admissionCols+` FROM admission_record WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *AdmissionRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE admission_record SET
			admission_date=$2, discharge_date=$3, room_number=$4,
			primary_doctor_id=$5, assistant_doctor_id=$6,
			admission_reason=$7, discharge_summary=$8, status=$9
		WHERE id = $1`,
		a.ID, a.AdmissionDate, a.DischargeDate, a.RoomNumber,
		a.PrimaryDoctorID, a.AssistantDoctorID,
		a.AdmissionReason, a.DischargeSummary, a.Status,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("room %d: %w", a.RoomNumber, ErrRoomOccupied)
		}
	}
	return err
}

func (r *repoPG) OccupiedRooms(ctx context.Context) ([]int, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT room_number FROM admission_record WHERE discharge_date IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []int
	for rows.Next() {
		var room int
		if err := rows.Scan(&room); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *repoPG) ListByPrimaryDoctor(ctx context.Context, staffID uuid.UUID) ([]*DashboardEntry, error) {
	// Inner join: only admissions with a linked patient are listed.
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.id, a.patient_id, a.admission_date, a.discharge_date, a.room_number,
			a.primary_doctor_id, a.assistant_doctor_id, a.admission_reason,
			a.discharge_summary, a.status, a.created_at,
			p.id, p.first_name, p.last_name
		FROM admission_record a
		JOIN patient p ON p.id = a.patient_id
		WHERE a.primary_doctor_id = $1
		ORDER BY a.admission_date DESC, a.created_at DESC`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*DashboardEntry
	for rows.Next() {
		var a AdmissionRecord
		var e DashboardEntry
		if err := rows.Scan(&a.ID, &a.PatientID, &a.AdmissionDate, &a.DischargeDate, &a.RoomNumber,
			&a.PrimaryDoctorID, &a.AssistantDoctorID, &a.AdmissionReason,
			&a.DischargeSummary, &a.Status, &a.CreatedAt,
			&e.PatientID, &e.PatientFirstName, &e.PatientLastName); err != nil {
			return nil, err
		}
		e.Admission = &a
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*AdmissionRecord, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+admissionCols+` FROM admission_record
		WHERE patient_id = $1 ORDER BY admission_date DESC, created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*AdmissionRecord
	for rows.Next() {
		var a AdmissionRecord
		if err := rows.Scan(&a.ID, &a.PatientID, &a.AdmissionDate, &a.DischargeDate, &a.RoomNumber,
			&a.PrimaryDoctorID, &a.AssistantDoctorID, &a.AdmissionReason,
			&a.DischargeSummary, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, &a)
	}
	return records, rows.Err()
}

func scanAdmission(row pgx.Row) (*AdmissionRecord, error) {
	var a AdmissionRecord
	err := row.Scan(&a.ID, &a.PatientID, &a.AdmissionDate, &a.DischargeDate, &a.RoomNumber,
		&a.PrimaryDoctorID, &a.AssistantDoctorID, &a.AdmissionReason,
		&a.DischargeSummary, &a.Status, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
