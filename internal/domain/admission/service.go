package admission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medsys/medsys/internal/platform/db"
)

var (
	// ErrRoomOccupied surfaces the storage-level double-booking guard as a
	// validation failure.
	ErrRoomOccupied = errors.New("room is occupied")

	ErrForbidden = errors.New("forbidden")

	// ErrNotFound reports an admission id with no record behind it.
	ErrNotFound = errors.New("admission not found")
)

// StaffDirectory resolves the staff profile behind an authenticated user.
// Wired via an adapter over the identity service in main.
type StaffDirectory interface {
	StaffIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// HistoryEntry is the medical history part of a patient intake.
type HistoryEntry struct {
	ConditionName string    `json:"condition_name"`
	DiagnosisDate time.Time `json:"diagnosis_date"`
	Status        string    `json:"status"`
	Notes         *string   `json:"notes"`
}

// HistoryRecorder persists the history half of an intake. Wired via an
// adapter over the patient service in main.
type HistoryRecorder interface {
	RecordHistory(ctx context.Context, patientID uuid.UUID, e HistoryEntry) error
}

type Service struct {
	repo      Repository
	staff     StaffDirectory
	histories HistoryRecorder
	tx        db.TxRunner
	roomFirst int
	roomLast  int
}

func NewService(repo Repository, staff StaffDirectory, histories HistoryRecorder, tx db.TxRunner, roomFirst, roomLast int) *Service {
	return &Service{
		repo:      repo,
		staff:     staff,
		histories: histories,
		tx:        tx,
		roomFirst: roomFirst,
		roomLast:  roomLast,
	}
}

// AvailableRooms computes the offered room choices: the configured range
// minus rooms held by open admissions. When editing an existing admission,
// its own room stays in the list so the edit form does not lose it. The
// result is ascending. This is a point-in-time view — the insert itself is
// protected by the open-room unique constraint.
func (s *Service) AvailableRooms(ctx context.Context, excludeAdmissionID *uuid.UUID) ([]int, error) {
	occupied, err := s.repo.OccupiedRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading occupied rooms: %w", err)
	}

	taken := make(map[int]bool, len(occupied))
	for _, room := range occupied {
		taken[room] = true
	}

	if excludeAdmissionID != nil {
		a, err := s.repo.GetByID(ctx, *excludeAdmissionID)
		if err != nil {
			return nil, fmt.Errorf("load admission: %w", err)
		}
		delete(taken, a.RoomNumber)
	}

	rooms := make([]int, 0, s.roomLast-s.roomFirst+1)
	for room := s.roomFirst; room <= s.roomLast; room++ {
		if !taken[room] {
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}

// IntakeRequest is a doctor's patient intake: one medical history entry and
// one admission, persisted together.
type IntakeRequest struct {
	PatientID         uuid.UUID    `json:"patient_id"`
	History           HistoryEntry `json:"history"`
	RoomNumber        int          `json:"room_number"`
	AssistantDoctorID *uuid.UUID   `json:"assistant_doctor_id"`
	AdmissionReason   string       `json:"admission_reason"`
	AdmissionDate     time.Time    `json:"admission_date"`
}

// Intake creates the medical history entry and the admission record as one
// transaction: both validate before either is persisted, and a failure in
// either leaves no orphaned row. The requesting doctor becomes the
// admission's primary doctor.
func (s *Service) Intake(ctx context.Context, doctorUserID uuid.UUID, req IntakeRequest) (*AdmissionRecord, error) {
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if req.History.ConditionName == "" {
		return nil, fmt.Errorf("condition_name is required")
	}
	if req.AdmissionReason == "" {
		return nil, fmt.Errorf("admission_reason is required")
	}
	if req.RoomNumber < s.roomFirst || req.RoomNumber > s.roomLast {
		return nil, fmt.Errorf("room_number must be between %d and %d", s.roomFirst, s.roomLast)
	}

	staffID, err := s.staff.StaffIDByUser(ctx, doctorUserID)
	if err != nil {
		return nil, fmt.Errorf("no staff profile for requesting doctor: %w", err)
	}

	a := &AdmissionRecord{
		PatientID:         req.PatientID,
		AdmissionDate:     req.AdmissionDate,
		RoomNumber:        req.RoomNumber,
		PrimaryDoctorID:   staffID,
		AssistantDoctorID: req.AssistantDoctorID,
		AdmissionReason:   req.AdmissionReason,
		Status:            StatusAdmitted,
	}
	if a.AdmissionDate.IsZero() {
		a.AdmissionDate = time.Now().UTC()
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.histories.RecordHistory(ctx, req.PatientID, req.History); err != nil {
			return fmt.Errorf("recording history: %w", err)
		}
		if err := s.repo.Create(ctx, a); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// DoctorDashboard lists the requesting doctor's admissions with their
// patients: exactly those where they are the primary doctor.
func (s *Service) DoctorDashboard(ctx context.Context, doctorUserID uuid.UUID) ([]*DashboardEntry, error) {
	staffID, err := s.staff.StaffIDByUser(ctx, doctorUserID)
	if err != nil {
		return nil, fmt.Errorf("no staff profile for requesting doctor: %w", err)
	}
	return s.repo.ListByPrimaryDoctor(ctx, staffID)
}

// AssignAssistant sets the assistant doctor on an admission. Only the
// primary doctor may change the assignment.
func (s *Service) AssignAssistant(ctx context.Context, doctorUserID, admissionID, assistantStaffID uuid.UUID) (*AdmissionRecord, error) {
	staffID, err := s.staff.StaffIDByUser(ctx, doctorUserID)
	if err != nil {
		return nil, ErrForbidden
	}
	a, err := s.repo.GetByID(ctx, admissionID)
	if err != nil {
		return nil, fmt.Errorf("load admission: %w", err)
	}
	if a.PrimaryDoctorID != staffID {
		return nil, ErrForbidden
	}
	a.AssistantDoctorID = &assistantStaffID
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Discharge closes an open admission, freeing its room. Only the primary
// doctor may discharge.
func (s *Service) Discharge(ctx context.Context, doctorUserID, admissionID uuid.UUID, summary string) (*AdmissionRecord, error) {
	staffID, err := s.staff.StaffIDByUser(ctx, doctorUserID)
	if err != nil {
		return nil, ErrForbidden
	}
	a, err := s.repo.GetByID(ctx, admissionID)
	if err != nil {
		return nil, fmt.Errorf("load admission: %w", err)
	}
	if a.PrimaryDoctorID != staffID {
		return nil, ErrForbidden
	}
	if !a.Open() {
		return nil, fmt.Errorf("admission already discharged")
	}

	now := time.Now().UTC()
	a.DischargeDate = &now
	a.Status = StatusDischarged
	if summary != "" {
		a.DischargeSummary = &summary
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByPatient returns a patient's admissions, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*AdmissionRecord, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
