package billing

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses. A record starts pending and ends paid or cancelled.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// MedicationCost is one charged line of a bill.
type MedicationCost struct {
	MedicineID uuid.UUID `db:"medicine_id" json:"medicineId"`
	Cost       float64   `db:"cost" json:"cost"`
}

// Billing maps to the billing table plus its charged lines. TotalAmount is
// always computed server side from the fee and the lines.
type Billing struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	PatientID       uuid.UUID        `db:"patient_id" json:"patientId"`
	AppointmentID   uuid.UUID        `db:"appointment_id" json:"appointmentId"`
	ConsultationFee float64          `db:"consultation_fee" json:"consultationFee"`
	MedicationCosts []MedicationCost `json:"medicationCosts"`
	TotalAmount     float64          `db:"total_amount" json:"totalAmount"`
	PaymentStatus   string           `db:"payment_status" json:"paymentStatus"`
	DateIssued      time.Time        `db:"date_issued" json:"dateIssued"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updatedAt"`
}

// ComputeTotal is the consultation fee plus every medication line.
func (b *Billing) ComputeTotal() float64 {
	total := b.ConsultationFee
	for _, mc := range b.MedicationCosts {
		total += mc.Cost
	}
	return total
}
