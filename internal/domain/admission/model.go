package admission

import (
	"time"

	"github.com/google/uuid"
)

// Admission statuses.
const (
	StatusAdmitted    = "Admitted"
	StatusDischarged  = "Discharged"
	StatusTransferred = "Transferred"
)

var validStatuses = map[string]bool{
	StatusAdmitted:    true,
	StatusDischarged:  true,
	StatusTransferred: true,
}

// AdmissionRecord maps to the admission_record table. It spans a patient's
// stay from admission to discharge and is the single source of truth for
// room occupancy and staff assignment: both the primary-doctor and the
// assistant-doctor scoping rules derive from it.
type AdmissionRecord struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	PatientID         uuid.UUID  `db:"patient_id" json:"patient_id"`
	AdmissionDate     time.Time  `db:"admission_date" json:"admission_date"`
	DischargeDate     *time.Time `db:"discharge_date" json:"discharge_date,omitempty"`
	RoomNumber        int        `db:"room_number" json:"room_number"`
	PrimaryDoctorID   uuid.UUID  `db:"primary_doctor_id" json:"primary_doctor_id"`
	AssistantDoctorID *uuid.UUID `db:"assistant_doctor_id" json:"assistant_doctor_id,omitempty"`
	AdmissionReason   string     `db:"admission_reason" json:"admission_reason"`
	DischargeSummary  *string    `db:"discharge_summary" json:"discharge_summary,omitempty"`
	Status            string     `db:"status" json:"status"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// Open reports whether the stay is still occupying its room.
func (a *AdmissionRecord) Open() bool {
	return a.DischargeDate == nil
}

// DashboardEntry is one row of the doctor dashboard: an admission joined
// with its patient.
type DashboardEntry struct {
	Admission        *AdmissionRecord `json:"admission"`
	PatientID        uuid.UUID        `json:"patient_id"`
	PatientFirstName string           `json:"patient_first_name"`
	PatientLastName  string           `json:"patient_last_name"`
}
