package access

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medsys/medsys/internal/domain/identity"
)

var (
	// ErrForbidden is deliberately terse: permission failures carry no
	// detail about why, and patient lookups that fail the ownership check
	// return it uniformly instead of distinguishing existence.
	ErrForbidden = errors.New("forbidden")

	// ErrNoAssignedDoctor means the patient has no admission, or their
	// latest admission has no assistant doctor to receive messages.
	ErrNoAssignedDoctor = errors.New("no assigned doctor")
)

// Actor is the authenticated principal a scoping decision is made for.
type Actor struct {
	UserID uuid.UUID
	Role   identity.Role
}

// Repository is the read surface the scoper needs over patients, staff, and
// admissions. All scoping truth derives from the admission_record table.
type Repository interface {
	// PatientUserID returns the user behind a patient profile.
	PatientUserID(ctx context.Context, patientID uuid.UUID) (uuid.UUID, error)
	// StaffIDByUser returns the staff profile behind a user account.
	StaffIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	// IsPrimaryDoctor reports whether the staff member is the primary
	// doctor on any of the patient's admissions.
	IsPrimaryDoctor(ctx context.Context, staffID, patientID uuid.UUID) (bool, error)
	// AssignedPatientIDs returns the distinct patients from admissions
	// where the staff member is the assistant doctor.
	AssignedPatientIDs(ctx context.Context, staffID uuid.UUID) ([]uuid.UUID, error)
	// LatestAssistant returns the assistant doctor's staff and user IDs
	// from the patient's most recent admission (greatest admission_date).
	LatestAssistant(ctx context.Context, patientID uuid.UUID) (staffID, userID uuid.UUID, err error)
}

// Scoper is the single authorization component consulted by every route
// that touches patient-linked records.
type Scoper struct {
	repo Repository
}

func NewScoper(repo Repository) *Scoper {
	return &Scoper{repo: repo}
}

// CanViewPatient decides whether the actor may view the patient record.
// Clinical staff see every record; patients see only their own. The answer
// for a denied patient is always ErrForbidden, never not-found.
func (s *Scoper) CanViewPatient(ctx context.Context, actor Actor, patientID uuid.UUID) error {
	switch actor.Role {
	case identity.RoleAdmin, identity.RoleDoctor, identity.RoleStaff:
		return nil
	case identity.RolePatient:
		ownerID, err := s.repo.PatientUserID(ctx, patientID)
		if err != nil {
			return ErrForbidden
		}
		if ownerID != actor.UserID {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}

// CanEditPatient restricts patient edits to the primary doctor on that
// patient's admission. Admins bypass the ownership check.
func (s *Scoper) CanEditPatient(ctx context.Context, actor Actor, patientID uuid.UUID) error {
	if actor.Role == identity.RoleAdmin {
		return nil
	}
	if actor.Role != identity.RoleDoctor {
		return ErrForbidden
	}
	staffID, err := s.repo.StaffIDByUser(ctx, actor.UserID)
	if err != nil {
		return ErrForbidden
	}
	ok, err := s.repo.IsPrimaryDoctor(ctx, staffID, patientID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// AssignedPatients returns the distinct patients the staff user may write
// prescriptions for: those from admissions naming them assistant doctor.
func (s *Scoper) AssignedPatients(ctx context.Context, staffUserID uuid.UUID) ([]uuid.UUID, error) {
	staffID, err := s.repo.StaffIDByUser(ctx, staffUserID)
	if err != nil {
		return nil, ErrForbidden
	}
	return s.repo.AssignedPatientIDs(ctx, staffID)
}

// CanPrescribe reports whether the target patient is in the staff user's
// assigned set. A miss is a validation failure on the caller's side, not an
// authorization error: the candidate list simply never contained the patient.
func (s *Scoper) CanPrescribe(ctx context.Context, staffUserID, patientID uuid.UUID) (bool, error) {
	assigned, err := s.AssignedPatients(ctx, staffUserID)
	if err != nil {
		return false, err
	}
	for _, id := range assigned {
		if id == patientID {
			return true, nil
		}
	}
	return false, nil
}

// MessageRecipient resolves who a patient's messages go to: the assistant
// doctor on their latest admission. Resolved server-side at send time —
// client-supplied recipients are never trusted.
func (s *Scoper) MessageRecipient(ctx context.Context, patientID uuid.UUID) (staffID, userID uuid.UUID, err error) {
	staffID, userID, err = s.repo.LatestAssistant(ctx, patientID)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrNoAssignedDoctor
	}
	if staffID == uuid.Nil || userID == uuid.Nil {
		return uuid.Nil, uuid.Nil, ErrNoAssignedDoctor
	}
	return staffID, userID, nil
}
