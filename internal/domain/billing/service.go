package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/medicine"
	"github.com/clinic/clinic/internal/domain/patient"
)

// PatientSource and MedicineSource resolve display names for invoices.
type (
	PatientSource interface {
		Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	}
	MedicineSource interface {
		Get(ctx context.Context, id uuid.UUID) (*medicine.Medicine, error)
	}
)

// InvoiceLine is one charged medication with its resolved name. The name is
// empty when the medicine has since been deleted.
type InvoiceLine struct {
	MedicineID uuid.UUID `json:"medicineId"`
	Name       string    `json:"name"`
	Cost       float64   `json:"cost"`
}

// Invoice is a bill assembled for display.
type Invoice struct {
	Billing       *Billing      `json:"billing"`
	PatientName   string        `json:"patientName"`
	ContactNumber string        `json:"contactNumber"`
	Lines         []InvoiceLine `json:"lines"`
}

type Service struct {
	bills      Repository
	patients   PatientSource
	medicines  MedicineSource
	defaultFee float64
}

func NewService(bills Repository, patients PatientSource, medicines MedicineSource,
	defaultFee float64) *Service {
	return &Service{bills: bills, patients: patients, medicines: medicines,
		defaultFee: defaultFee}
}

// Create stores a bill. A zero consultation fee takes the clinic's
// configured default. The total is always recomputed from the fee and the
// lines, ignoring whatever the caller sent. New bills start pending.
func (s *Service) Create(ctx context.Context, b *Billing) error {
	if b.PatientID == uuid.Nil {
		return fmt.Errorf("patientId is required")
	}
	if b.AppointmentID == uuid.Nil {
		return fmt.Errorf("appointmentId is required")
	}
	if b.ConsultationFee < 0 {
		return fmt.Errorf("consultationFee must not be negative")
	}
	for _, mc := range b.MedicationCosts {
		if mc.Cost < 0 {
			return fmt.Errorf("medication cost must not be negative")
		}
	}

	if b.ConsultationFee == 0 {
		b.ConsultationFee = s.defaultFee
	}
	b.TotalAmount = b.ComputeTotal()
	b.PaymentStatus = StatusPending
	if b.DateIssued.IsZero() {
		b.DateIssued = time.Now().UTC()
	}
	return s.bills.Create(ctx, b)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Billing, error) {
	return s.bills.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Billing, int, error) {
	return s.bills.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Billing, error) {
	return s.bills.ListByPatient(ctx, patientID)
}

// UpdateStatus moves a pending bill to paid or cancelled. Settled bills
// cannot change again.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status != StatusPaid && status != StatusCancelled {
		return fmt.Errorf("invalid payment status %q", status)
	}
	b, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b.PaymentStatus != StatusPending {
		return fmt.Errorf("bill is already %s", b.PaymentStatus)
	}
	return s.bills.SetStatus(ctx, id, status)
}

// Invoice assembles a bill with the patient's name and each medication's
// catalog name for printing.
func (s *Service) Invoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	b, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{Billing: b, Lines: make([]InvoiceLine, 0, len(b.MedicationCosts))}
	if p, err := s.patients.Get(ctx, b.PatientID); err == nil {
		inv.PatientName = p.FullName()
		inv.ContactNumber = p.ContactNumber
	}
	for _, mc := range b.MedicationCosts {
		line := InvoiceLine{MedicineID: mc.MedicineID, Cost: mc.Cost}
		if m, err := s.medicines.Get(ctx, mc.MedicineID); err == nil {
			line.Name = m.Name
		}
		inv.Lines = append(inv.Lines, line)
	}
	return inv, nil
}
