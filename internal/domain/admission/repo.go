package admission

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *AdmissionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*AdmissionRecord, error)
	Update(ctx context.Context, a *AdmissionRecord) error

	// OccupiedRooms returns the room numbers of all open admissions
	// (discharge_date is null).
	OccupiedRooms(ctx context.Context) ([]int, error)

	// ListByPrimaryDoctor returns admissions where the staff member is the
	// primary doctor, joined with the patient, newest first.
	ListByPrimaryDoctor(ctx context.Context, staffID uuid.UUID) ([]*DashboardEntry, error)

	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*AdmissionRecord, error)
}
