package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)

	// Medical histories
	AddHistory(ctx context.Context, h *MedicalHistory) error
	Histories(ctx context.Context, patientID uuid.UUID) ([]*MedicalHistory, error)
	UpdateHistory(ctx context.Context, h *MedicalHistory) error
}
