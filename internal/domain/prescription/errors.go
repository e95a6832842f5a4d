package prescription

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrEmptyPrescription rejects a submit with no prescribed lines.
	ErrEmptyPrescription = errors.New("prescription has no medicines")

	// ErrSubmitInFlight rejects a second submit while one is running.
	ErrSubmitInFlight = errors.New("submit already in progress")
)

// ValidationError reports the fields a line or submission is missing or has
// bad values for.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid fields: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

// OrphanedAppointmentError is returned when the visit was recorded but
// storing the prescription failed. The appointment survives without a
// prescription reference and the caller must surface that.
type OrphanedAppointmentError struct {
	AppointmentID uuid.UUID
	Err           error
}

func (e *OrphanedAppointmentError) Error() string {
	return fmt.Sprintf("prescription not saved, appointment %s recorded without one: %v",
		e.AppointmentID, e.Err)
}

func (e *OrphanedAppointmentError) Unwrap() error { return e.Err }
