package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PatientHistory appends a visit reference to a patient's medical history.
// The patient repository satisfies this.
type PatientHistory interface {
	AppendHistory(ctx context.Context, patientID, appointmentID uuid.UUID) error
}

type Service struct {
	appointments Repository
	history      PatientHistory
}

func NewService(appointments Repository, history PatientHistory) *Service {
	return &Service{appointments: appointments, history: history}
}

// Create records a visit. A blank reason is stored as the default checkup
// reason, a zero date as the current time. The new visit is also appended to
// the patient's medical history.
func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patientId is required")
	}
	if strings.TrimSpace(a.DoctorID) == "" {
		return fmt.Errorf("doctorId is required")
	}
	if strings.TrimSpace(a.ReasonForVisit) == "" {
		a.ReasonForVisit = DefaultReason
	}
	if a.AppointmentDate.IsZero() {
		a.AppointmentDate = time.Now().UTC()
	}

	if err := s.appointments.Create(ctx, a); err != nil {
		return err
	}
	return s.history.AppendHistory(ctx, a.PatientID, a.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// SetPrescription links a stored prescription back to its visit.
func (s *Service) SetPrescription(ctx context.Context, id, prescriptionID uuid.UUID) error {
	if _, err := s.appointments.GetByID(ctx, id); err != nil {
		return fmt.Errorf("appointment not found: %w", err)
	}
	return s.appointments.SetPrescription(ctx, id, prescriptionID)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return s.appointments.ListByPatient(ctx, patientID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, limit, offset)
}
