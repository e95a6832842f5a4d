package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	FirstName      string      `db:"first_name" json:"firstName"`
	LastName       string      `db:"last_name" json:"lastName"`
	ContactNumber  string      `db:"contact_number" json:"contactNumber"`
	Age            int         `db:"age" json:"age"`
	Gender         string      `db:"gender" json:"gender"`
	Address        string      `db:"address" json:"address"`
	Allergies      []string    `db:"allergies" json:"allergies"`
	MedicalHistory []uuid.UUID `db:"medical_history" json:"medicalHistory"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updatedAt"`
}

// FullName is the display name used in search results and invoices.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
