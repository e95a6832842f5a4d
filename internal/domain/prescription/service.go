package prescription

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// AppointmentLinker writes the prescription back-reference onto the visit.
// The appointment service satisfies this.
type AppointmentLinker interface {
	SetPrescription(ctx context.Context, appointmentID, prescriptionID uuid.UUID) error
}

// TxRunner runs fn inside a storage transaction. Repositories called through
// the fn context join that transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// NoTx runs fn directly, for stores without transactions and for tests.
func NoTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	prescriptions Repository
	appointments  AppointmentLinker
	inTx          TxRunner
}

func NewService(prescriptions Repository, appointments AppointmentLinker, inTx TxRunner) *Service {
	if inTx == nil {
		inTx = NoTx
	}
	return &Service{prescriptions: prescriptions, appointments: appointments, inTx: inTx}
}

// ValidateLine checks one prescribed line. Returned errors carry the field
// names the form should highlight.
func ValidateLine(line PrescribedMedicine) error {
	var missing []string
	if line.MedicineID == uuid.Nil {
		missing = append(missing, "medicineId")
	}
	if line.Frequency == "" {
		missing = append(missing, "frequency")
	}
	if line.Duration <= 0 {
		missing = append(missing, "duration")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	if !line.Frequency.Valid() {
		return &ValidationError{Invalid: []string{"frequency"}}
	}
	return nil
}

func (s *Service) validate(p *Prescription) error {
	if p.AppointmentID == uuid.Nil {
		return &ValidationError{Missing: []string{"appointmentId"}}
	}
	if len(p.Medicines) == 0 {
		return ErrEmptyPrescription
	}
	if strings.TrimSpace(p.Instructions) == "" {
		return &ValidationError{Missing: []string{"instructions"}}
	}
	for _, line := range p.Medicines {
		if err := ValidateLine(line); err != nil {
			return err
		}
	}
	return nil
}

// Create stores the prescription and links it to its visit. Both writes run
// in one transaction so a stored prescription is never left unreferenced.
func (s *Service) Create(ctx context.Context, p *Prescription) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.inTx(ctx, func(ctx context.Context) error {
		if err := s.prescriptions.Create(ctx, p); err != nil {
			return err
		}
		return s.appointments.SetPrescription(ctx, p.AppointmentID, p.ID)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

func (s *Service) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetByAppointment(ctx, appointmentID)
}
