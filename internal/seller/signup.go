package seller

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrWrongStep        = errors.New("signup step out of order")
	ErrAlreadySubmitted = errors.New("signup already submitted")
)

// MissingFieldsError lists the required fields a step was sent without.
type MissingFieldsError struct {
	Step   Step
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("step %d: missing required fields: %s", e.Step, strings.Join(e.Fields, ", "))
}

// ErrMissingFields matches any *MissingFieldsError with errors.Is.
var ErrMissingFields = errors.New("missing required fields")

func (e *MissingFieldsError) Is(target error) bool { return target == ErrMissingFields }

type Step int

const (
	StepProfile Step = iota + 1
	StepBank
	StepDocuments
)

var (
	stepFields = map[Step][]string{
		StepProfile:   {"sellerName", "companyName", "gstNumber", "msmeNumber", "fssaiNumber", "email", "phone", "address"},
		StepBank:      {"accountNumber", "ifsc", "bankName"},
		StepDocuments: {"gstCertificate", "msmeCertificate", "fssaiCertificate", "cancelledCheque", "addressProof"},
	}
	requiredFields = map[Step][]string{
		StepProfile:   {"sellerName", "companyName", "gstNumber", "email", "phone"},
		StepBank:      {"accountNumber", "ifsc", "bankName"},
		StepDocuments: {"gstCertificate", "cancelledCheque"},
	}
)

const StatusUnderReview = "under_review"

type Application struct {
	ID          string            `json:"id"`
	Profile     map[string]string `json:"profile"`
	Bank        map[string]string `json:"bank"`
	Documents   map[string]string `json:"documents"`
	Status      string            `json:"status"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

// SignupWizard collects a seller registration over three steps. Each step
// must be completed before the next one is accepted.
type SignupWizard struct {
	step   Step
	values map[Step]map[string]string
	app    *Application
	now    func() time.Time
}

func NewSignupWizard() *SignupWizard {
	return &SignupWizard{
		step:   StepProfile,
		values: make(map[Step]map[string]string),
		now:    time.Now,
	}
}

func (w *SignupWizard) Step() Step { return w.step }

// Next validates fields for the current step and moves to the following
// one. Unknown keys are ignored.
func (w *SignupWizard) Next(fields map[string]string) (Step, error) {
	if w.app != nil {
		return w.step, ErrAlreadySubmitted
	}
	if w.step == StepDocuments {
		return w.step, fmt.Errorf("%w: documents are the last step, submit instead", ErrWrongStep)
	}
	if err := w.record(fields); err != nil {
		return w.step, err
	}
	w.step++
	return w.step, nil
}

// Back returns to the previous step, keeping what was entered.
func (w *SignupWizard) Back() Step {
	if w.app == nil && w.step > StepProfile {
		w.step--
	}
	return w.step
}

// Submit takes the document references and files the application.
func (w *SignupWizard) Submit(documents map[string]string) (Application, error) {
	if w.app != nil {
		return Application{}, ErrAlreadySubmitted
	}
	if w.step != StepDocuments {
		return Application{}, fmt.Errorf("%w: at step %d", ErrWrongStep, w.step)
	}
	if err := w.record(documents); err != nil {
		return Application{}, err
	}

	w.app = &Application{
		ID:          uuid.NewString(),
		Profile:     w.values[StepProfile],
		Bank:        w.values[StepBank],
		Documents:   w.values[StepDocuments],
		Status:      StatusUnderReview,
		SubmittedAt: w.now(),
	}
	return *w.app, nil
}

func (w *SignupWizard) record(fields map[string]string) error {
	var missing []string
	for _, name := range requiredFields[w.step] {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Step: w.step, Fields: missing}
	}

	kept := make(map[string]string)
	for _, name := range stepFields[w.step] {
		if v := strings.TrimSpace(fields[name]); v != "" {
			kept[name] = v
		}
	}
	w.values[w.step] = kept
	return nil
}

// SignupResult is what one wizard call produced: the step to fill next, or
// the filed application after the last step.
type SignupResult struct {
	NextStep    Step         `json:"next_step,omitempty"`
	Application *Application `json:"application,omitempty"`
}

// DefaultSignupIdleTTL matches the customer session idle timeout.
const DefaultSignupIdleTTL = 30 * time.Minute

type signupEntry struct {
	wizard   *SignupWizard
	lastSeen time.Time
}

// Signups keeps one wizard per session. A wizard left untouched for longer
// than the idle TTL is dropped and the session starts over.
type Signups struct {
	mu      sync.Mutex
	wizards map[string]*signupEntry
	idleTTL time.Duration
	now     func() time.Time
}

type SignupOption func(*Signups)

func WithIdleTTL(d time.Duration) SignupOption {
	return func(s *Signups) { s.idleTTL = d }
}

func WithClock(now func() time.Time) SignupOption {
	return func(s *Signups) { s.now = now }
}

func NewSignups(opts ...SignupOption) *Signups {
	s := &Signups{
		wizards: make(map[string]*signupEntry),
		idleTTL: DefaultSignupIdleTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EvictIdle drops wizards idle longer than the TTL and returns how many
// were dropped.
func (s *Signups) EvictIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictIdleLocked()
}

func (s *Signups) evictIdleLocked() int {
	cutoff := s.now().Add(-s.idleTTL)
	n := 0
	for id, e := range s.wizards {
		if e.lastSeen.Before(cutoff) {
			delete(s.wizards, id)
			n++
		}
	}
	return n
}

// Len reports how many wizards are held.
func (s *Signups) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.wizards)
}

// Apply feeds one step of the wizard belonging to sessionID. The step must
// match where that wizard currently is.
func (s *Signups) Apply(sessionID string, step Step, fields map[string]string) (SignupResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictIdleLocked()
	e, ok := s.wizards[sessionID]
	if !ok {
		w := NewSignupWizard()
		w.now = s.now
		e = &signupEntry{wizard: w}
		s.wizards[sessionID] = e
	}
	e.lastSeen = s.now()
	w := e.wizard

	if w.app != nil {
		return SignupResult{Application: w.app}, ErrAlreadySubmitted
	}
	// going back to an earlier step is allowed, skipping ahead is not
	for step >= StepProfile && step < w.Step() {
		w.Back()
	}
	if step != w.Step() {
		return SignupResult{NextStep: w.Step()}, fmt.Errorf("%w: expected step %d, got %d", ErrWrongStep, w.Step(), step)
	}

	if step == StepDocuments {
		app, err := w.Submit(fields)
		if err != nil {
			return SignupResult{NextStep: w.Step()}, err
		}
		return SignupResult{Application: &app}, nil
	}

	next, err := w.Next(fields)
	if err != nil {
		return SignupResult{NextStep: w.Step()}, err
	}
	return SignupResult{NextStep: next}, nil
}
