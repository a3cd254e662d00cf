package prescription

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotAssigned means the target patient is outside the staff member's
// assigned set. This is a validation failure, not an authorization one: the
// form simply never offers that patient.
var ErrNotAssigned = errors.New("patient is not in your assigned list")

// Authorizer narrows prescription authoring to the staff member's assigned
// patients.
type Authorizer interface {
	CanPrescribe(ctx context.Context, staffUserID, patientID uuid.UUID) (bool, error)
	AssignedPatients(ctx context.Context, staffUserID uuid.UUID) ([]uuid.UUID, error)
}

// StaffDirectory resolves a user account to its staff profile.
type StaffDirectory interface {
	StaffIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// MedicineCatalog supplies the selectable medicines for the authoring form.
type MedicineCatalog interface {
	ListChoices(ctx context.Context) ([]MedicineChoice, error)
}

type Service struct {
	repo      Repository
	authz     Authorizer
	staff     StaffDirectory
	medicines MedicineCatalog
}

func NewService(repo Repository, authz Authorizer, staff StaffDirectory, medicines MedicineCatalog) *Service {
	return &Service{repo: repo, authz: authz, staff: staff, medicines: medicines}
}

type WriteRequest struct {
	PatientID    uuid.UUID `json:"patient_id"`
	MedicineID   uuid.UUID `json:"medicine_id"`
	Dosage       string    `json:"dosage"`
	Frequency    string    `json:"frequency"`
	DurationDays int       `json:"duration_days"`
	Instructions string    `json:"instructions"`
}

// Write records a prescription. The patient must be in the requesting staff
// member's assigned set.
func (s *Service) Write(ctx context.Context, staffUserID uuid.UUID, req WriteRequest) (*Prescription, error) {
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if req.MedicineID == uuid.Nil {
		return nil, fmt.Errorf("medicine_id is required")
	}
	if req.Dosage == "" || req.Frequency == "" {
		return nil, fmt.Errorf("dosage and frequency are required")
	}
	if req.DurationDays <= 0 {
		return nil, fmt.Errorf("duration_days must be positive")
	}

	ok, err := s.authz.CanPrescribe(ctx, staffUserID, req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("checking assignment: %w", err)
	}
	if !ok {
		return nil, ErrNotAssigned
	}

	staffID, err := s.staff.StaffIDByUser(ctx, staffUserID)
	if err != nil {
		return nil, fmt.Errorf("no staff profile for requesting user: %w", err)
	}

	p := &Prescription{
		PatientID:    req.PatientID,
		StaffID:      staffID,
		MedicineID:   req.MedicineID,
		Dosage:       req.Dosage,
		Frequency:    req.Frequency,
		DurationDays: req.DurationDays,
		Instructions: req.Instructions,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// StaffDashboard groups the staff member's prescriptions by patient. Group
// order follows the first prescription written for each patient, and
// prescriptions keep their authoring order inside a group. Assigned patients
// without prescriptions yet appear as empty groups so the dashboard shows the
// full assignment.
func (s *Service) StaffDashboard(ctx context.Context, staffUserID uuid.UUID) ([]*DashboardGroup, error) {
	staffID, err := s.staff.StaffIDByUser(ctx, staffUserID)
	if err != nil {
		return nil, fmt.Errorf("no staff profile for requesting user: %w", err)
	}

	prescriptions, err := s.repo.ListByStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}

	byPatient := make(map[uuid.UUID]*DashboardGroup)
	var order []uuid.UUID
	for _, p := range prescriptions {
		g, ok := byPatient[p.PatientID]
		if !ok {
			g = &DashboardGroup{Patient: PatientRef{ID: p.PatientID}}
			byPatient[p.PatientID] = g
			order = append(order, p.PatientID)
		}
		g.Prescriptions = append(g.Prescriptions, p)
	}

	assigned, err := s.authz.AssignedPatients(ctx, staffUserID)
	if err != nil {
		return nil, err
	}
	for _, id := range assigned {
		if _, ok := byPatient[id]; !ok {
			byPatient[id] = &DashboardGroup{Patient: PatientRef{ID: id}}
			order = append(order, id)
		}
	}

	refs, err := s.repo.PatientRefs(ctx, order)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]PatientRef, len(refs))
	for _, ref := range refs {
		names[ref.ID] = ref
	}

	groups := make([]*DashboardGroup, 0, len(order))
	for _, id := range order {
		g := byPatient[id]
		if ref, ok := names[id]; ok {
			g.Patient = ref
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// FormChoices returns the authoring form's option sets.
func (s *Service) FormChoices(ctx context.Context, staffUserID uuid.UUID) (*Choices, error) {
	assigned, err := s.authz.AssignedPatients(ctx, staffUserID)
	if err != nil {
		return nil, err
	}
	patients, err := s.repo.PatientRefs(ctx, assigned)
	if err != nil {
		return nil, err
	}
	medicines, err := s.medicines.ListChoices(ctx)
	if err != nil {
		return nil, err
	}
	return &Choices{Patients: patients, Medicines: medicines}, nil
}

// ListByPatient returns a patient's prescriptions, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
