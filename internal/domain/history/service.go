package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/internal/domain/medicine"
	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/prescription"
)

// The aggregator reads from the other domains through these narrow views.
// The corresponding services satisfy them.
type (
	PatientSource interface {
		Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	}
	AppointmentSource interface {
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error)
	}
	PrescriptionSource interface {
		Get(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error)
	}
	MedicineSource interface {
		Get(ctx context.Context, id uuid.UUID) (*medicine.Medicine, error)
	}
)

// Line is a prescribed medicine expanded with its catalog details.
// MedicineDetails is null when the medicine has since been deleted; the line
// itself still shows what was prescribed.
type Line struct {
	MedicineID      uuid.UUID                 `json:"medicineId"`
	Frequency       prescription.Frequency    `json:"frequency"`
	Duration        prescription.DurationDays `json:"duration"`
	MedicineDetails *medicine.Detail          `json:"medicineDetails"`
}

// PrescriptionView is a stored prescription with its lines expanded.
type PrescriptionView struct {
	ID           uuid.UUID `json:"id"`
	Instructions string    `json:"instructions"`
	Medicines    []Line    `json:"medicines"`
}

// Visit is one appointment with its prescription, if any.
type Visit struct {
	ID              uuid.UUID         `json:"id"`
	AppointmentDate time.Time         `json:"appointmentDate"`
	ReasonForVisit  string            `json:"reasonForVisit"`
	DoctorID        string            `json:"doctorId"`
	Prescription    *PrescriptionView `json:"prescription"`
}

// History is a patient's full visit record, newest visit first.
type History struct {
	Patient *patient.Patient `json:"patient"`
	Visits  []Visit          `json:"visits"`
}

// ErrPatientNotFound means the history subject does not exist.
var ErrPatientNotFound = errors.New("patient not found")

type Service struct {
	patients      PatientSource
	appointments  AppointmentSource
	prescriptions PrescriptionSource
	medicines     MedicineSource
	log           zerolog.Logger
}

func NewService(patients PatientSource, appointments AppointmentSource,
	prescriptions PrescriptionSource, medicines MedicineSource,
	log zerolog.Logger) *Service {
	return &Service{
		patients:      patients,
		appointments:  appointments,
		prescriptions: prescriptions,
		medicines:     medicines,
		log:           log,
	}
}

// GetHistory assembles the patient's visit record. Visits come back newest
// first. A visit whose prescription or medicines can no longer be resolved
// still appears, with the unresolvable parts null.
func (s *Service) GetHistory(ctx context.Context, patientID uuid.UUID) (*History, error) {
	p, err := s.patients.Get(ctx, patientID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading patient: %w", err)
	}

	appts, err := s.appointments.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	// Medicines repeat across prescriptions, so resolve each once.
	medCache := make(map[uuid.UUID]*medicine.Detail)

	visits := make([]Visit, 0, len(appts))
	for _, a := range appts {
		v := Visit{
			ID:              a.ID,
			AppointmentDate: a.AppointmentDate,
			ReasonForVisit:  a.ReasonForVisit,
			DoctorID:        a.DoctorID,
		}
		if a.PrescriptionID != nil {
			v.Prescription = s.resolvePrescription(ctx, *a.PrescriptionID, medCache)
		}
		visits = append(visits, v)
	}

	return &History{Patient: p, Visits: visits}, nil
}

func (s *Service) resolvePrescription(ctx context.Context, id uuid.UUID,
	medCache map[uuid.UUID]*medicine.Detail) *PrescriptionView {

	rx, err := s.prescriptions.Get(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("prescription_id", id.String()).
			Msg("prescription referenced by appointment could not be loaded")
		return nil
	}

	view := &PrescriptionView{
		ID:           rx.ID,
		Instructions: rx.Instructions,
		Medicines:    make([]Line, 0, len(rx.Medicines)),
	}
	for _, pm := range rx.Medicines {
		line := Line{
			MedicineID: pm.MedicineID,
			Frequency:  pm.Frequency,
			Duration:   pm.Duration,
		}
		line.MedicineDetails = s.resolveMedicine(ctx, pm.MedicineID, medCache)
		view.Medicines = append(view.Medicines, line)
	}
	return view
}

func (s *Service) resolveMedicine(ctx context.Context, id uuid.UUID,
	cache map[uuid.UUID]*medicine.Detail) *medicine.Detail {

	if d, ok := cache[id]; ok {
		return d
	}
	m, err := s.medicines.Get(ctx, id)
	if err != nil {
		s.log.Debug().Str("medicine_id", id.String()).
			Msg("prescribed medicine no longer in catalog")
		cache[id] = nil
		return nil
	}
	d := m.ToDetail()
	cache[id] = d
	return d
}
