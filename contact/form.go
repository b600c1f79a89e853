package contact

import (
	"context"
	"sync"
	"sync/atomic"
)

// Status is the outcome of the latest submit attempt.
type Status int

const (
	StatusIdle Status = iota
	StatusInvalid
	StatusSent
	StatusFailed
	StatusBusy
)

func (s Status) String() string {
	switch s {
	case StatusInvalid:
		return "invalid"
	case StatusSent:
		return "sent"
	case StatusFailed:
		return "failed"
	case StatusBusy:
		return "busy"
	default:
		return "idle"
	}
}

// State is a snapshot of a Form.
type State struct {
	Values Submission
	Errors FieldErrors
	Status Status
	Err    error
}

// Form is one visitor's contact form. Submit never sends twice concurrently:
// a call made while another is in flight returns StatusBusy untouched.
type Form struct {
	rules      Rules
	submitting atomic.Bool

	mu    sync.Mutex
	state State
}

// NewForm returns an empty form validated with rules.
func NewForm(rules Rules) *Form {
	return &Form{rules: rules}
}

// Set replaces the field values, as typing into the form would.
func (f *Form) Set(s Submission) {
	f.mu.Lock()
	f.state.Values = s
	f.mu.Unlock()
}

// State returns a copy of the current form state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submitting reports whether a send is in flight.
func (f *Form) Submitting() bool {
	return f.submitting.Load()
}

// Submit validates the current values and, when they pass, calls sender
// exactly once. Invalid input never reaches sender. On success the form is
// cleared; on failure the values are kept so the visitor can retry.
func (f *Form) Submit(ctx context.Context, sender Sender) Status {
	if !f.submitting.CompareAndSwap(false, true) {
		return StatusBusy
	}
	defer f.submitting.Store(false)

	f.mu.Lock()
	values := f.state.Values.Trimmed()
	if errs := f.rules.Validate(values); errs != nil {
		f.state.Errors = errs
		f.state.Status = StatusInvalid
		f.state.Err = nil
		f.mu.Unlock()
		return StatusInvalid
	}
	f.state.Errors = nil
	f.mu.Unlock()

	err := sender.Send(ctx, values)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state.Status = StatusFailed
		f.state.Err = err
		return StatusFailed
	}
	f.state = State{Status: StatusSent}
	return StatusSent
}

// Guard tracks in-flight submissions per visitor so a double click that
// arrives as two requests only sends once.
type Guard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewGuard returns an empty Guard.
func NewGuard() *Guard {
	return &Guard{active: make(map[string]struct{})}
}

// Acquire claims key. It returns false when key already has a submission in
// flight; otherwise the caller must call release when done.
func (g *Guard) Acquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[key]; busy {
		return nil, false
	}
	g.active[key] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.active, key)
		g.mu.Unlock()
	}, true
}
