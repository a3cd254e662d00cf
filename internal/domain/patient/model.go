package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table: the demographic profile, 1:1 with a
// user account.
type Patient struct {
	ID                uuid.UUID `db:"id" json:"id"`
	UserID            uuid.UUID `db:"user_id" json:"user_id"`
	FirstName         string    `db:"first_name" json:"first_name"`
	LastName          string    `db:"last_name" json:"last_name"`
	DateOfBirth       time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender            string    `db:"gender" json:"gender"`
	BloodGroup        string    `db:"blood_group" json:"blood_group"`
	Phone             *string   `db:"phone" json:"phone,omitempty"`
	Email             *string   `db:"email" json:"email,omitempty"`
	Address           *string   `db:"address" json:"address,omitempty"`
	EmergencyContact  *string   `db:"emergency_contact" json:"emergency_contact,omitempty"`
	EmergencyPhone    *string   `db:"emergency_phone" json:"emergency_phone,omitempty"`
	InsuranceProvider *string   `db:"insurance_provider" json:"insurance_provider,omitempty"`
	InsuranceID       *string   `db:"insurance_id" json:"insurance_id,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// FullName returns the patient's display name.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// MedicalHistory maps to the medical_history table: one free-text
// condition entry, created during intake and optionally edited later.
type MedicalHistory struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	ConditionName string    `db:"condition_name" json:"condition_name"`
	DiagnosisDate time.Time `db:"diagnosis_date" json:"diagnosis_date"`
	Status        string    `db:"status" json:"status"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Valid medical history statuses.
var validHistoryStatuses = map[string]bool{
	"Active":   true,
	"Resolved": true,
	"Chronic":  true,
}

// Detail is the patient record view: the profile plus its history entries.
type Detail struct {
	Patient   *Patient          `json:"patient"`
	Histories []*MedicalHistory `json:"histories"`
}
