package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medsys/medsys/internal/domain/access"
)

// ErrNotFound reports a patient id with no profile behind it.
var ErrNotFound = errors.New("patient not found")

// Guard is the slice of the access scoper this service consults.
type Guard interface {
	CanViewPatient(ctx context.Context, actor access.Actor, patientID uuid.UUID) error
	CanEditPatient(ctx context.Context, actor access.Actor, patientID uuid.UUID) error
}

type Service struct {
	repo  Repository
	guard Guard
}

func NewService(repo Repository, guard Guard) *Service {
	return &Service{repo: repo, guard: guard}
}

// Create registers a new patient profile. Callers are trusted: profile
// creation happens inside signup and doctor intake, which carry their own
// authorization.
func (s *Service) Create(ctx context.Context, p *Patient) error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	return s.repo.Create(ctx, p)
}

// Get returns the scoped patient record view: the profile and its medical
// histories. A denied actor gets access.ErrForbidden regardless of whether
// the record exists.
func (s *Service) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*Detail, error) {
	if err := s.guard.CanViewPatient(ctx, actor, id); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	histories, err := s.repo.Histories(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading histories: %w", err)
	}
	return &Detail{Patient: p, Histories: histories}, nil
}

// GetByUserID returns the profile behind a user account, the 1:1 relation
// used for dashboard routing.
func (s *Service) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// UpdateRequest carries the editable demographic fields.
type UpdateRequest struct {
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	Gender            string  `json:"gender"`
	BloodGroup        string  `json:"blood_group"`
	Phone             *string `json:"phone"`
	Email             *string `json:"email"`
	Address           *string `json:"address"`
	EmergencyContact  *string `json:"emergency_contact"`
	EmergencyPhone    *string `json:"emergency_phone"`
	InsuranceProvider *string `json:"insurance_provider"`
	InsuranceID       *string `json:"insurance_id"`
}

// Update applies demographic edits. Only the primary doctor on the
// patient's admission may edit.
func (s *Service) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req UpdateRequest) (*Patient, error) {
	if err := s.guard.CanEditPatient(ctx, actor, id); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if req.FirstName == "" || req.LastName == "" {
		return nil, fmt.Errorf("first_name and last_name are required")
	}

	p.FirstName = req.FirstName
	p.LastName = req.LastName
	p.Gender = req.Gender
	p.BloodGroup = req.BloodGroup
	p.Phone = req.Phone
	p.Email = req.Email
	p.Address = req.Address
	p.EmergencyContact = req.EmergencyContact
	p.EmergencyPhone = req.EmergencyPhone
	p.InsuranceProvider = req.InsuranceProvider
	p.InsuranceID = req.InsuranceID

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddHistory appends a medical history entry during intake or follow-up.
func (s *Service) AddHistory(ctx context.Context, h *MedicalHistory) error {
	if h.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if h.ConditionName == "" {
		return fmt.Errorf("condition_name is required")
	}
	if h.Status == "" {
		h.Status = "Active"
	}
	if !validHistoryStatuses[h.Status] {
		return fmt.Errorf("invalid history status: %s", h.Status)
	}
	return s.repo.AddHistory(ctx, h)
}

// List pages through all patients. Clinical listing, not patient-facing.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}
