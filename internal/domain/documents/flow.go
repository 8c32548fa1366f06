package documents

import (
	"sync"

	"inventra/internal/core/apperror"
)

// FlowState is the position of a form in its creation flow.
type FlowState string

const (
	StateEditing         FlowState = "editing"
	StateSubmitting      FlowState = "submitting"
	StateAwaitingPayment FlowState = "awaiting_payment"
	StateConfirmed       FlowState = "confirmed"
	StateFailed          FlowState = "failed"
)

// allowed lists the legal transitions out of each state.
var allowed = map[FlowState][]FlowState{
	StateEditing:         {StateSubmitting},
	StateSubmitting:      {StateAwaitingPayment, StateConfirmed, StateFailed},
	StateAwaitingPayment: {StateConfirmed, StateFailed},
	StateFailed:          {StateSubmitting, StateEditing},
	StateConfirmed:       {StateEditing},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to FlowState) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Flow is a guarded creation state machine. The zero value is in Editing.
type Flow struct {
	mu    sync.Mutex
	state FlowState
}

// State returns the current state.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current()
}

func (f *Flow) current() FlowState {
	if f.state == "" {
		return StateEditing
	}
	return f.state
}

// Transition moves to the next state or returns INVALID_STATE_TRANSITION.
func (f *Flow) Transition(to FlowState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	from := f.current()
	if !CanTransition(from, to) {
		return apperror.NewInvalidTransition(string(from), string(to))
	}
	f.state = to
	return nil
}

// Editable moves a failed flow back to Editing and reports whether edits are allowed.
func (f *Flow) Editable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.current() {
	case StateEditing:
		return true
	case StateFailed:
		f.state = StateEditing
		return true
	}
	return false
}

// Restart returns the flow to Editing unconditionally.
func (f *Flow) Restart() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateEditing
}
