package prescription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/internal/domain/medicine"
)

type stubSearcher struct {
	mu       sync.Mutex
	calls    []string
	catalog  []*medicine.Medicine
	failWith error
}

func (s *stubSearcher) Search(_ context.Context, query string) ([]*medicine.Medicine, error) {
	s.mu.Lock()
	s.calls = append(s.calls, query)
	s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []*medicine.Medicine
	for _, m := range s.catalog {
		if strings.Contains(strings.ToLower(m.Name), strings.ToLower(query)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubSearcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type stubAppointments struct {
	created  []*appointment.Appointment
	failWith error
}

func (s *stubAppointments) Create(_ context.Context, a *appointment.Appointment) error {
	if s.failWith != nil {
		return s.failWith
	}
	a.ID = uuid.New()
	s.created = append(s.created, a)
	return nil
}

type stubPrescriptions struct {
	created  []*Prescription
	failWith error
	block    chan struct{}
}

func (s *stubPrescriptions) Create(_ context.Context, p *Prescription) error {
	if s.block != nil {
		<-s.block
	}
	if s.failWith != nil {
		return s.failWith
	}
	p.ID = uuid.New()
	s.created = append(s.created, p)
	return nil
}

func testCatalog() []*medicine.Medicine {
	return []*medicine.Medicine{
		{ID: uuid.New(), Name: "Amoxicillin"},
		{ID: uuid.New(), Name: "Amlodipine"},
		{ID: uuid.New(), Name: "Paracetamol"},
	}
}

func newTestComposer(searcher *stubSearcher, appts *stubAppointments,
	rxs *stubPrescriptions) *Composer {
	return NewComposer(uuid.New(), "doc-1", searcher, appts, rxs,
		WithDebounce(5*time.Millisecond))
}

func TestComposerStartsIdle(t *testing.T) {
	c := newTestComposer(&stubSearcher{}, &stubAppointments{}, &stubPrescriptions{})
	if got := c.State(); got != StateIdle {
		t.Errorf("state = %q, want %q", got, StateIdle)
	}
}

func TestComposerDebouncedSearch(t *testing.T) {
	searcher := &stubSearcher{catalog: testCatalog()}
	c := newTestComposer(searcher, &stubAppointments{}, &stubPrescriptions{})

	// Rapid keystrokes: only the last one should reach the store.
	c.SetQuery(context.Background(), "a")
	c.SetQuery(context.Background(), "am")
	c.SetQuery(context.Background(), "amo")

	deadline := time.Now().Add(time.Second)
	for searcher.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)

	if got := searcher.callCount(); got != 1 {
		t.Errorf("store queried %d times, want 1", got)
	}
	results := c.Results()
	if len(results) != 1 || results[0].Name != "Amoxicillin" {
		t.Errorf("results = %v", results)
	}
	if got := c.State(); got != StateMedicineSelecting {
		t.Errorf("state = %q, want %q", got, StateMedicineSelecting)
	}
}

func TestComposerBlankQueryClearsWithoutSearch(t *testing.T) {
	searcher := &stubSearcher{catalog: testCatalog()}
	c := newTestComposer(searcher, &stubAppointments{}, &stubPrescriptions{})

	c.SetQuery(context.Background(), "   ")
	time.Sleep(20 * time.Millisecond)

	if got := searcher.callCount(); got != 0 {
		t.Errorf("store queried %d times for a blank query", got)
	}
	if got := c.Results(); got != nil {
		t.Errorf("results = %v, want nil", got)
	}
}

func TestComposerStaleResultsDropped(t *testing.T) {
	// A huge debounce keeps the real timer out of the way so the race can
	// be replayed deterministically.
	c := NewComposer(uuid.New(), "doc-1", &stubSearcher{}, &stubAppointments{},
		&stubPrescriptions{}, WithDebounce(time.Hour))

	// First keystroke, then a second one before the first search lands.
	c.SetQuery(context.Background(), "amo")
	staleSeq := c.seq
	c.SetQuery(context.Background(), "para")

	stale := []*medicine.Medicine{{ID: uuid.New(), Name: "Amoxicillin"}}
	fresh := []*medicine.Medicine{{ID: uuid.New(), Name: "Paracetamol"}}

	// Fresh results land first, then the slow stale search completes.
	c.applyResults(c.seq, fresh)
	c.applyResults(staleSeq, stale)

	results := c.Results()
	if len(results) != 1 || results[0].Name != "Paracetamol" {
		t.Errorf("stale results overwrote fresh ones: %v", results)
	}
}

func TestComposerSelectInvalidatesPendingSearch(t *testing.T) {
	c := NewComposer(uuid.New(), "doc-1", &stubSearcher{}, &stubAppointments{},
		&stubPrescriptions{}, WithDebounce(time.Hour))
	med := &medicine.Medicine{ID: uuid.New(), Name: "Amoxicillin"}

	c.SetQuery(context.Background(), "amo")
	pendingSeq := c.seq
	if err := c.SelectMedicine(med); err != nil {
		t.Fatalf("SelectMedicine failed: %v", err)
	}

	c.applyResults(pendingSeq, []*medicine.Medicine{{Name: "Late"}})
	if got := c.Results(); got != nil {
		t.Errorf("late results installed after selection: %v", got)
	}
	if got := c.State(); got != StateLineDetailEntry {
		t.Errorf("state = %q, want %q", got, StateLineDetailEntry)
	}
}

func TestComposerAddLine(t *testing.T) {
	c := newTestComposer(&stubSearcher{}, &stubAppointments{}, &stubPrescriptions{})
	med := &medicine.Medicine{ID: uuid.New(), Name: "Amoxicillin"}

	if err := c.SelectMedicine(med); err != nil {
		t.Fatalf("SelectMedicine failed: %v", err)
	}
	if err := c.AddLine(FreqTID, 7); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	if got := c.State(); got != StateLineAdded {
		t.Errorf("state = %q, want %q", got, StateLineAdded)
	}
	lines := c.Lines()
	if len(lines) != 1 || lines[0].MedicineID != med.ID ||
		lines[0].Frequency != FreqTID || lines[0].Duration != 7 {
		t.Errorf("lines = %+v", lines)
	}
}

func TestComposerAddLineValidation(t *testing.T) {
	c := newTestComposer(&stubSearcher{}, &stubAppointments{}, &stubPrescriptions{})
	med := &medicine.Medicine{ID: uuid.New(), Name: "Amoxicillin"}

	if err := c.AddLine(FreqOD, 5); err == nil {
		t.Error("expected error when no medicine is selected")
	}

	c.SelectMedicine(med)
	err := c.AddLine("", 0)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Missing) != 2 {
		t.Errorf("missing = %v, want frequency and duration", verr.Missing)
	}
	// Still on detail entry; fixing the details succeeds.
	if got := c.State(); got != StateLineDetailEntry {
		t.Errorf("state = %q, want %q", got, StateLineDetailEntry)
	}
	if err := c.AddLine(FreqOD, 5); err != nil {
		t.Errorf("AddLine after fixing details failed: %v", err)
	}
}

func TestComposerAddLineUnknownFrequency(t *testing.T) {
	c := newTestComposer(&stubSearcher{}, &stubAppointments{}, &stubPrescriptions{})
	c.SelectMedicine(&medicine.Medicine{ID: uuid.New()})

	err := c.AddLine("HOURLY", 3)
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Invalid) != 1 {
		t.Errorf("expected invalid frequency error, got %v", err)
	}
}

func TestComposerRemoveLine(t *testing.T) {
	c := newTestComposer(&stubSearcher{}, &stubAppointments{}, &stubPrescriptions{})
	c.SelectMedicine(&medicine.Medicine{ID: uuid.New()})
	c.AddLine(FreqOD, 5)

	if err := c.RemoveLine(1); err == nil {
		t.Error("expected error for out of range line")
	}
	if err := c.RemoveLine(0); err != nil {
		t.Fatalf("RemoveLine failed: %v", err)
	}
	if got := len(c.Lines()); got != 0 {
		t.Errorf("lines = %d, want 0", got)
	}
}

func TestComposerSubmit(t *testing.T) {
	appts := &stubAppointments{}
	rxs := &stubPrescriptions{}
	c := newTestComposer(&stubSearcher{}, appts, rxs)

	c.SelectMedicine(&medicine.Medicine{ID: uuid.New()})
	c.AddLine(FreqBID, 7)
	c.SetReason("Sore throat")
	c.SetNotes("Allergic to penicillin, avoid beta-lactams")
	c.SetInstructions("Take after meals")

	rx, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := c.State(); got != StateSubmitted {
		t.Errorf("state = %q, want %q", got, StateSubmitted)
	}
	if len(appts.created) != 1 {
		t.Fatalf("appointments created = %d, want 1", len(appts.created))
	}
	if rx.AppointmentID != appts.created[0].ID {
		t.Error("prescription not linked to the recorded appointment")
	}
	if appts.created[0].ReasonForVisit != "Sore throat" {
		t.Errorf("reason = %q", appts.created[0].ReasonForVisit)
	}
	if appts.created[0].SpecialNotes != "Allergic to penicillin, avoid beta-lactams" {
		t.Errorf("specialNotes = %q, want the composer's notes", appts.created[0].SpecialNotes)
	}
}

func TestComposerSubmitEmpty(t *testing.T) {
	c := newTestComposer(&stubSearcher{}, &stubAppointments{}, &stubPrescriptions{})
	c.SetInstructions("Take after meals")

	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrEmptyPrescription) {
		t.Errorf("err = %v, want ErrEmptyPrescription", err)
	}
}

func TestComposerSubmitRequiresInstructions(t *testing.T) {
	c := newTestComposer(&stubSearcher{}, &stubAppointments{}, &stubPrescriptions{})
	c.SelectMedicine(&medicine.Medicine{ID: uuid.New()})
	c.AddLine(FreqOD, 3)

	_, err := c.Submit(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Missing) != 1 || verr.Missing[0] != "instructions" {
		t.Errorf("missing = %v", verr.Missing)
	}
}

func TestComposerSubmitAppointmentFailure(t *testing.T) {
	appts := &stubAppointments{failWith: fmt.Errorf("store down")}
	c := newTestComposer(&stubSearcher{}, appts, &stubPrescriptions{})
	c.SelectMedicine(&medicine.Medicine{ID: uuid.New()})
	c.AddLine(FreqOD, 3)
	c.SetInstructions("x")

	if _, err := c.Submit(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := c.State(); got != StateFailed {
		t.Errorf("state = %q, want %q", got, StateFailed)
	}
}

func TestComposerSubmitOrphanedAppointment(t *testing.T) {
	appts := &stubAppointments{}
	rxs := &stubPrescriptions{failWith: fmt.Errorf("store down")}
	c := newTestComposer(&stubSearcher{}, appts, rxs)
	c.SelectMedicine(&medicine.Medicine{ID: uuid.New()})
	c.AddLine(FreqOD, 3)
	c.SetInstructions("x")

	_, err := c.Submit(context.Background())
	var orphan *OrphanedAppointmentError
	if !errors.As(err, &orphan) {
		t.Fatalf("expected OrphanedAppointmentError, got %v", err)
	}
	if len(appts.created) != 1 || orphan.AppointmentID != appts.created[0].ID {
		t.Error("orphan error does not name the recorded appointment")
	}
	if got := c.State(); got != StateFailed {
		t.Errorf("state = %q, want %q", got, StateFailed)
	}
}

func TestComposerSubmitRetryAfterFailure(t *testing.T) {
	appts := &stubAppointments{failWith: fmt.Errorf("store down")}
	rxs := &stubPrescriptions{}
	c := newTestComposer(&stubSearcher{}, appts, rxs)
	c.SelectMedicine(&medicine.Medicine{ID: uuid.New()})
	c.AddLine(FreqOD, 3)
	c.SetInstructions("x")

	if _, err := c.Submit(context.Background()); err == nil {
		t.Fatal("expected first submit to fail")
	}

	appts.failWith = nil
	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if got := c.State(); got != StateSubmitted {
		t.Errorf("state = %q, want %q", got, StateSubmitted)
	}
}

func TestComposerSubmitInFlightGuard(t *testing.T) {
	appts := &stubAppointments{}
	rxs := &stubPrescriptions{block: make(chan struct{})}
	c := newTestComposer(&stubSearcher{}, appts, rxs)
	c.SelectMedicine(&medicine.Medicine{ID: uuid.New()})
	c.AddLine(FreqOD, 3)
	c.SetInstructions("x")

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		done <- err
	}()

	deadline := time.Now().Add(time.Second)
	for c.State() != StateSubmitting && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("err = %v, want ErrSubmitInFlight", err)
	}

	close(rxs.block)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	if _, err := c.Submit(context.Background()); err == nil {
		t.Error("expected error submitting an already submitted prescription")
	}
}
