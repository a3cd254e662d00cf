package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Prescription is a medication order written by a staff member for a patient
// in their assigned set.
type Prescription struct {
	ID           uuid.UUID `json:"id"`
	PatientID    uuid.UUID `json:"patient_id"`
	StaffID      uuid.UUID `json:"staff_id"`
	MedicineID   uuid.UUID `json:"medicine_id"`
	Dosage       string    `json:"dosage"`
	Frequency    string    `json:"frequency"`
	DurationDays int       `json:"duration_days"`
	Instructions string    `json:"instructions,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PatientRef is the minimal patient identity carried on dashboards and
// choice lists.
type PatientRef struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// DashboardGroup is one patient's prescriptions on the staff dashboard.
// Prescriptions keep their authoring order inside the group.
type DashboardGroup struct {
	Patient       PatientRef      `json:"patient"`
	Prescriptions []*Prescription `json:"prescriptions"`
}

// MedicineChoice is a selectable medicine on the authoring form.
type MedicineChoice struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Choices is the authoring form's option sets: the staff member's assigned
// patients and the active medicine catalog.
type Choices struct {
	Patients  []PatientRef     `json:"patients"`
	Medicines []MedicineChoice `json:"medicines"`
}
