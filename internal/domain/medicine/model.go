package medicine

import (
	"time"

	"github.com/google/uuid"
)

// Medicine maps to the medicine table (drug catalog + inventory).
type Medicine struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	DosageForm       string    `db:"dosage_form" json:"dosageForm"`
	Strength         string    `db:"strength" json:"strength"`
	UnitMeasurement  string    `db:"unit_measurement" json:"unitMeasurement"`
	CurrentStock     int       `db:"current_stock" json:"currentStock"`
	ReorderThreshold int       `db:"reorder_threshold" json:"reorderThreshold"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// LowStock reports whether the stock level has fallen to the reorder
// threshold or below.
func (m *Medicine) LowStock() bool {
	return m.CurrentStock <= m.ReorderThreshold
}

// Detail is the display-ready shape used when a prescribed line expands its
// medicine reference.
type Detail struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	DosageForm      string    `json:"dosageForm"`
	Strength        string    `json:"strength"`
	UnitMeasurement string    `json:"unitMeasurement"`
}

func (m *Medicine) ToDetail() *Detail {
	return &Detail{
		ID:              m.ID,
		Name:            m.Name,
		DosageForm:      m.DosageForm,
		Strength:        m.Strength,
		UnitMeasurement: m.UnitMeasurement,
	}
}

// Fixed option sets offered by the inventory form.
var (
	DosageForms = []string{
		"Tablet", "Capsule", "Liquid", "Injection", "Cream", "Ointment",
		"Gel", "Patch", "Inhaler", "Suppository", "Nasal Spray", "Eye Drop",
	}

	Strengths = []string{
		"5 mg", "10 mg", "50 mg", "100 mg", "500 mg", "1 g",
		"125 mg/5 mL", "250 mg/5 mL", "1 mg/mL", "10 mg/mL", "50 mg/mL",
		"0.1%", "1%", "2.5%",
	}

	UnitMeasurements = []string{"mg", "g", "mL", "%", "µg/actuation", "µg/spray"}
)
