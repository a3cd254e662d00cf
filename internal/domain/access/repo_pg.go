package access

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

func (r *repoPG) PatientUserID(ctx context.Context, patientID uuid.UUID) (uuid.UUID, error) {
	var userID uuid.UUID
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT user_id FROM patient WHERE id = $1`, patientID).Scan(&userID)
	if err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}

func (r *repoPG) StaffIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var staffID uuid.UUID
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id FROM staff WHERE user_id = $1`, userID).Scan(&staffID)
	if err != nil {
		return uuid.Nil, err
	}
	return staffID, nil
}

func (r *repoPG) IsPrimaryDoctor(ctx context.Context, staffID, patientID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM admission_record
			WHERE patient_id = $1 AND primary_doctor_id = $2
		)`, patientID, staffID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *repoPG) AssignedPatientIDs(ctx context.Context, staffID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT patient_id FROM admission_record
		WHERE assistant_doctor_id = $1`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repoPG) LatestAssistant(ctx context.Context, patientID uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	var staffID *uuid.UUID
	var userID *uuid.UUID
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT a.assistant_doctor_id, s.user_id
		FROM admission_record a
		LEFT JOIN staff s ON s.id = a.assistant_doctor_id
		WHERE a.patient_id = $1
		ORDER BY a.admission_date DESC, a.created_at DESC
		LIMIT 1`, patientID).Scan(&staffID, &userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if staffID == nil || userID == nil {
		return uuid.Nil, uuid.Nil, nil
	}
	return *staffID, *userID, nil
}
