// Package apply drives one posting through the multi-step quick-apply form.
//
// Valid state graph:
//
//	IDLE ──► APPLYING ──► SUBMITTED
//	  │          ├──────► MANUAL_INPUT_REQUIRED
//	  │          └──────► DISCARDED
//	  └──► DISCARDED (navigation failed, already applied, no control, no modal)
//
// SUBMITTED, MANUAL_INPUT_REQUIRED and DISCARDED are terminal states.
package apply

import "fmt"

// State is the progress of a single application attempt.
type State string

const (
	StateIdle                State = "IDLE"
	StateApplying            State = "APPLYING"
	StateSubmitted           State = "SUBMITTED"
	StateManualInputRequired State = "MANUAL_INPUT_REQUIRED"
	StateDiscarded           State = "DISCARDED"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[State][]State{
	StateIdle:     {StateApplying, StateDiscarded},
	StateApplying: {StateSubmitted, StateManualInputRequired, StateDiscarded},
	// SUBMITTED, MANUAL_INPUT_REQUIRED and DISCARDED are terminal
}

// ParseState converts a raw string to a State, returning an error for
// unknown values.
func ParseState(s string) (State, error) {
	st := State(s)
	switch st {
	case StateIdle, StateApplying, StateSubmitted, StateManualInputRequired, StateDiscarded:
		return st, nil
	}
	return "", fmt.Errorf("unknown apply state %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted.
func IsTransitionAllowed(from, to State) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s ends an attempt.
func IsTerminal(s State) bool {
	switch s {
	case StateSubmitted, StateManualInputRequired, StateDiscarded:
		return true
	}
	return false
}

// IsSubmitted returns true when the application went through.
func IsSubmitted(s State) bool { return s == StateSubmitted }
