// Package session authenticates a browser session against the site.
//
// Valid state graph:
//
//	ANONYMOUS ──► CREDENTIALS_SUBMITTED ──► AUTHENTICATED
//	    │                    │
//	    │                    └──────────────► FAILED
//	    └──► AUTHENTICATED (already signed in)
//
// AUTHENTICATED and FAILED are terminal states.
package session

import "fmt"

// State is the authentication state of a session.
type State string

const (
	StateAnonymous            State = "ANONYMOUS"
	StateCredentialsSubmitted State = "CREDENTIALS_SUBMITTED"
	StateAuthenticated        State = "AUTHENTICATED"
	StateFailed               State = "FAILED"
)

var validTransitions = map[State][]State{
	StateAnonymous:            {StateCredentialsSubmitted, StateAuthenticated, StateFailed},
	StateCredentialsSubmitted: {StateAuthenticated, StateFailed},
}

// ParseState converts a raw string to a State.
func ParseState(s string) (State, error) {
	st := State(s)
	switch st {
	case StateAnonymous, StateCredentialsSubmitted, StateAuthenticated, StateFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown session state %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted.
func IsTransitionAllowed(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s State) bool { return len(validTransitions[s]) == 0 }
