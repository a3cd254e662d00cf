package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	// ListByStaff returns the staff member's prescriptions in authoring
	// order (created_at ascending).
	ListByStaff(ctx context.Context, staffID uuid.UUID) ([]*Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error)
	PatientRefs(ctx context.Context, ids []uuid.UUID) ([]PatientRef, error)
}
