package appointment

import (
	"time"

	"github.com/google/uuid"
)

// DefaultReason is recorded when a visit is created without a stated reason.
const DefaultReason = "General Checkup"

// Appointment maps to the appointment table. PrescriptionID is set after the
// fact, once a prescription written during the visit has been stored.
type Appointment struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patientId"`
	DoctorID        string     `db:"doctor_id" json:"doctorId"`
	AppointmentDate time.Time  `db:"appointment_date" json:"appointmentDate"`
	ReasonForVisit  string     `db:"reason_for_visit" json:"reasonForVisit"`
	SpecialNotes    string     `db:"special_notes" json:"specialNotes,omitempty"`
	PrescriptionID  *uuid.UUID `db:"prescription_id" json:"prescriptionId,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}
