package prescription

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Frequency is a dosing schedule code.
type Frequency string

const (
	FreqOD   Frequency = "OD"   // once daily
	FreqBID  Frequency = "BID"  // twice daily
	FreqTID  Frequency = "TID"  // three times daily
	FreqQID  Frequency = "QID"  // four times daily
	FreqQHS  Frequency = "QHS"  // at bedtime
	FreqQ6H  Frequency = "Q6H"  // every six hours
	FreqSOS  Frequency = "SOS"  // as needed
	FreqSTAT Frequency = "STAT" // immediately, once
)

var frequencyLabels = map[Frequency]string{
	FreqOD:   "Once daily",
	FreqBID:  "Twice daily",
	FreqTID:  "Three times daily",
	FreqQID:  "Four times daily",
	FreqQHS:  "At bedtime",
	FreqQ6H:  "Every 6 hours",
	FreqSOS:  "As needed",
	FreqSTAT: "Immediately",
}

// Frequencies lists the selectable codes in form order.
var Frequencies = []Frequency{
	FreqOD, FreqBID, FreqTID, FreqQID, FreqQHS, FreqQ6H, FreqSOS, FreqSTAT,
}

func (f Frequency) Valid() bool {
	_, ok := frequencyLabels[f]
	return ok
}

func (f Frequency) Label() string {
	return frequencyLabels[f]
}

// ParseFrequency accepts a code in any case and returns the canonical form.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("unknown frequency %q", s)
	}
	return f, nil
}

// DurationDays is a course length in whole days. On the wire it reads and
// writes the display form "7 days" but also accepts a bare number.
type DurationDays int

func (d DurationDays) String() string {
	if d == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", int(d))
}

func (d DurationDays) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DurationDays) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*d = DurationDays(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid duration: %s", data)
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, " days")
	s = strings.TrimSuffix(s, " day")
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	*d = DurationDays(n)
	return nil
}

// PrescribedMedicine is one line of a prescription.
type PrescribedMedicine struct {
	MedicineID uuid.UUID    `db:"medicine_id" json:"medicineId"`
	Frequency  Frequency    `db:"frequency" json:"frequency"`
	Duration   DurationDays `db:"duration_days" json:"duration"`
}

// Prescription maps to the prescription table plus its ordered lines.
type Prescription struct {
	ID            uuid.UUID            `db:"id" json:"id"`
	AppointmentID uuid.UUID            `db:"appointment_id" json:"appointmentId"`
	Medicines     []PrescribedMedicine `json:"medicines"`
	Instructions  string               `db:"instructions" json:"instructions"`
	CreatedAt     time.Time            `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time            `db:"updated_at" json:"updatedAt"`
}
