package apply_test

import (
	"testing"

	"jobmate/apply-service/internal/apply"
)

var allStates = []apply.State{
	apply.StateIdle,
	apply.StateApplying,
	apply.StateSubmitted,
	apply.StateManualInputRequired,
	apply.StateDiscarded,
}

// ── ParseState ─────────────────────────────────────────────────────────────

func TestParseState_AllConstantsRoundTrip(t *testing.T) {
	for _, s := range allStates {
		got, err := apply.ParseState(string(s))
		if err != nil {
			t.Errorf("ParseState(%q) unexpected error: %v", s, err)
		}
		if got != s {
			t.Errorf("ParseState(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseState_Invalid(t *testing.T) {
	for _, s := range []string{"", "submitted", " IDLE", "DONE"} {
		if _, err := apply.ParseState(s); err == nil {
			t.Errorf("ParseState(%q) expected error, got nil", s)
		}
	}
}

// ── IsTransitionAllowed: valid transitions ────────────────────────────────

func TestIsTransitionAllowed_Valid(t *testing.T) {
	cases := []struct {
		from apply.State
		to   apply.State
	}{
		{apply.StateIdle, apply.StateApplying},
		{apply.StateIdle, apply.StateDiscarded},
		{apply.StateApplying, apply.StateSubmitted},
		{apply.StateApplying, apply.StateManualInputRequired},
		{apply.StateApplying, apply.StateDiscarded},
	}
	for _, c := range cases {
		if !apply.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

// ── IsTransitionAllowed: forbidden transitions ────────────────────────────

func TestIsTransitionAllowed_Forbidden(t *testing.T) {
	cases := []struct {
		from apply.State
		to   apply.State
	}{
		{apply.StateIdle, apply.StateSubmitted},            // must go through the form
		{apply.StateIdle, apply.StateManualInputRequired},  // no form seen yet
		{apply.StateIdle, apply.StateIdle},                 // self-loop
		{apply.StateApplying, apply.StateIdle},             // backwards
		{apply.StateApplying, apply.StateApplying},         // self-loop
	}
	for _, c := range cases {
		if apply.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false", c.from, c.to)
		}
	}
}

// ── Terminal states have no outgoing transitions ───────────────────────────

func TestIsTransitionAllowed_FromTerminal(t *testing.T) {
	for _, from := range allStates {
		if !apply.IsTerminal(from) {
			continue
		}
		for _, to := range allStates {
			if apply.IsTransitionAllowed(from, to) {
				t.Errorf("IsTransitionAllowed(%s → %s) must be false: %s is terminal", from, to, from)
			}
		}
	}
}

func TestIsSubmitted(t *testing.T) {
	for _, s := range allStates {
		if got, want := apply.IsSubmitted(s), s == apply.StateSubmitted; got != want {
			t.Errorf("IsSubmitted(%s) = %v, want %v", s, got, want)
		}
	}
}
