package prescription

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/internal/domain/medicine"
)

// State names one step of the prescription writing flow.
type State string

const (
	StateIdle              State = "idle"
	StateMedicineSelecting State = "medicine_selecting"
	StateLineDetailEntry   State = "line_detail_entry"
	StateLineAdded         State = "line_added"
	StateReasonNotesEntry  State = "reason_notes_entry"
	StateSubmitting        State = "submitting"
	StateSubmitted         State = "submitted"
	StateFailed            State = "failed"
)

// DefaultDebounce is how long the composer waits after the last keystroke
// before running a catalog search.
const DefaultDebounce = 300 * time.Millisecond

// MedicineSearcher looks up catalog candidates for a partial name.
type MedicineSearcher interface {
	Search(ctx context.Context, query string) ([]*medicine.Medicine, error)
}

// AppointmentCreator records the visit a prescription belongs to.
type AppointmentCreator interface {
	Create(ctx context.Context, a *appointment.Appointment) error
}

// PrescriptionCreator stores a finished prescription.
type PrescriptionCreator interface {
	Create(ctx context.Context, p *Prescription) error
}

// Composer drives one prescription writing session for one patient. Searches
// are debounced and sequence-numbered so a slow lookup can never overwrite
// the results of a later keystroke. Submit runs a two-step saga: record the
// visit, then store the prescription against it. If the second step fails
// the visit stays recorded without a prescription and the error says so.
type Composer struct {
	searcher      MedicineSearcher
	appointments  AppointmentCreator
	prescriptions PrescriptionCreator
	log           zerolog.Logger
	debounce      time.Duration

	mu           sync.Mutex
	state        State
	patientID    uuid.UUID
	doctorID     string
	reason       string
	notes        string
	instructions string
	selected     *medicine.Medicine
	lines        []PrescribedMedicine

	seq     uint64
	timer   *time.Timer
	results []*medicine.Medicine
}

type ComposerOption func(*Composer)

// WithDebounce overrides the search debounce interval.
func WithDebounce(d time.Duration) ComposerOption {
	return func(c *Composer) { c.debounce = d }
}

func WithLogger(log zerolog.Logger) ComposerOption {
	return func(c *Composer) { c.log = log }
}

func NewComposer(patientID uuid.UUID, doctorID string,
	searcher MedicineSearcher, appointments AppointmentCreator,
	prescriptions PrescriptionCreator, opts ...ComposerOption) *Composer {

	c := &Composer{
		searcher:      searcher,
		appointments:  appointments,
		prescriptions: prescriptions,
		log:           zerolog.Nop(),
		debounce:      DefaultDebounce,
		state:         StateIdle,
		patientID:     patientID,
		doctorID:      doctorID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Composer) Lines() []PrescribedMedicine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]PrescribedMedicine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Results returns the candidates of the most recent completed search that
// was still current when it finished.
func (c *Composer) Results() []*medicine.Medicine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

// SetQuery records a keystroke in the medicine search box. The actual lookup
// runs only after the debounce interval passes with no further keystrokes.
// A blank query clears the candidates without touching the store.
func (c *Composer) SetQuery(ctx context.Context, query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle, StateMedicineSelecting, StateLineAdded, StateReasonNotesEntry:
		c.state = StateMedicineSelecting
	default:
		return
	}

	c.seq++
	seq := c.seq
	if c.timer != nil {
		c.timer.Stop()
	}

	if strings.TrimSpace(query) == "" {
		c.results = nil
		return
	}

	c.timer = time.AfterFunc(c.debounce, func() {
		c.runSearch(ctx, seq, query)
	})
}

func (c *Composer) runSearch(ctx context.Context, seq uint64, query string) {
	items, err := c.searcher.Search(ctx, query)
	if err != nil {
		c.log.Warn().Err(err).Str("query", query).Msg("medicine search failed")
		return
	}
	c.applyResults(seq, items)
}

// applyResults installs search results unless a later keystroke has since
// bumped the sequence number, in which case they are stale and dropped.
func (c *Composer) applyResults(seq uint64, items []*medicine.Medicine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return
	}
	c.results = items
}

// SelectMedicine picks a candidate and moves to detail entry. Any in-flight
// search is invalidated.
func (c *Composer) SelectMedicine(m *medicine.Medicine) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle, StateMedicineSelecting, StateLineAdded, StateReasonNotesEntry:
	default:
		return fmt.Errorf("cannot select a medicine while %s", c.state)
	}

	c.seq++
	if c.timer != nil {
		c.timer.Stop()
	}
	c.selected = m
	c.results = nil
	c.state = StateLineDetailEntry
	return nil
}

// AddLine finishes the current line with its dosing details. Missing or
// invalid details keep the composer in detail entry and return a
// ValidationError naming the fields.
func (c *Composer) AddLine(freq Frequency, duration DurationDays) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateLineDetailEntry || c.selected == nil {
		return fmt.Errorf("no medicine selected")
	}

	var missing []string
	if freq == "" {
		missing = append(missing, "frequency")
	}
	if duration <= 0 {
		missing = append(missing, "duration")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	if !freq.Valid() {
		return &ValidationError{Invalid: []string{"frequency"}}
	}

	c.lines = append(c.lines, PrescribedMedicine{
		MedicineID: c.selected.ID,
		Frequency:  freq,
		Duration:   duration,
	})
	c.selected = nil
	c.state = StateLineAdded
	return nil
}

func (c *Composer) RemoveLine(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.lines) {
		return fmt.Errorf("no line at position %d", i)
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// SetReason records the reason for the visit.
func (c *Composer) SetReason(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reason = reason
}

// SetNotes records optional free-text notes carried onto the visit record.
func (c *Composer) SetNotes(notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = notes
}

// SetInstructions moves to the notes step and records the instructions text.
func (c *Composer) SetInstructions(instructions string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instructions = instructions
	switch c.state {
	case StateLineAdded, StateReasonNotesEntry:
		c.state = StateReasonNotesEntry
	}
}

// Submit runs the two-step saga. Step one records the visit; step two stores
// the prescription and links it back. A step-two failure leaves the visit
// recorded without a prescription, reported as an OrphanedAppointmentError.
// A failed submit may be retried.
func (c *Composer) Submit(ctx context.Context) (*Prescription, error) {
	c.mu.Lock()
	switch c.state {
	case StateSubmitting:
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	case StateSubmitted:
		c.mu.Unlock()
		return nil, fmt.Errorf("prescription already submitted")
	}
	if len(c.lines) == 0 {
		c.mu.Unlock()
		return nil, ErrEmptyPrescription
	}
	if strings.TrimSpace(c.instructions) == "" {
		c.mu.Unlock()
		return nil, &ValidationError{Missing: []string{"instructions"}}
	}
	c.state = StateSubmitting
	appt := &appointment.Appointment{
		PatientID:      c.patientID,
		DoctorID:       c.doctorID,
		ReasonForVisit: c.reason,
		SpecialNotes:   c.notes,
	}
	rx := &Prescription{
		Medicines:    append([]PrescribedMedicine(nil), c.lines...),
		Instructions: c.instructions,
	}
	c.mu.Unlock()

	if err := c.appointments.Create(ctx, appt); err != nil {
		c.fail()
		return nil, fmt.Errorf("recording appointment: %w", err)
	}

	rx.AppointmentID = appt.ID
	if err := c.prescriptions.Create(ctx, rx); err != nil {
		c.fail()
		c.log.Error().Err(err).
			Str("appointment_id", appt.ID.String()).
			Msg("prescription not saved, appointment left without one")
		return nil, &OrphanedAppointmentError{AppointmentID: appt.ID, Err: err}
	}

	c.mu.Lock()
	c.state = StateSubmitted
	c.mu.Unlock()
	return rx, nil
}

func (c *Composer) fail() {
	c.mu.Lock()
	c.state = StateFailed
	c.mu.Unlock()
}
