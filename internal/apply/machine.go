package apply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jobmate/apply-service/internal/browser"
	"jobmate/apply-service/internal/model"
)

// Outcome errors. Their text is what lands in CandidaturaResult.Error.
var (
	ErrAlreadyApplied   = errors.New("already applied")
	ErrNoApplyControl   = errors.New("no apply control")
	ErrModalNotOpened   = errors.New("modal did not open")
	ErrManualInput      = errors.New("manual input required")
	ErrExceededAttempts = errors.New("exceeded attempts")
)

// Options bounds the form walk.
type Options struct {
	MaxAttempts   int           // Next/Submit iterations per posting
	StepDelay     time.Duration // settle time after each click
	DiscardRounds int
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 8
	}
	if o.StepDelay == 0 {
		o.StepDelay = 900 * time.Millisecond
	}
	if o.DiscardRounds <= 0 {
		o.DiscardRounds = 3
	}
	return o
}

// Machine applies to postings one at a time on a single page.
type Machine struct {
	page browser.Page
	opts Options
	log  *slog.Logger
}

// New returns a Machine driving page.
func New(page browser.Page, opts Options, log *slog.Logger) *Machine {
	if log == nil {
		log = slog.Default()
	}
	return &Machine{page: page, opts: opts.withDefaults(), log: log.With("component", "apply")}
}

// attempt tracks the state of one posting and rejects illegal moves.
type attempt struct {
	state State
	log   *slog.Logger
}

func (a *attempt) to(s State) {
	if !IsTransitionAllowed(a.state, s) {
		a.log.Error("illegal apply transition ignored", "from", a.state, "to", s)
		return
	}
	a.state = s
}

// formControl reports whether c can be clicked inside the open form. Page
// controls behind the modal (pagination, other postings) never qualify.
func formControl(c *browser.Control) bool {
	return c.Actionable() && c.InModal
}

// Apply walks p through the quick-apply flow. Whatever the outcome, no modal
// is left open when it returns.
func (m *Machine) Apply(ctx context.Context, p model.JobPosting) (model.CandidaturaResult, State) {
	res := model.NewResult(p)
	a := &attempt{state: StateIdle, log: m.log}

	err := m.run(ctx, p, a)
	m.closeModal(ctx)

	res.Applied = a.state == StateSubmitted
	if err != nil {
		res.Error = err.Error()
	}
	m.log.Info("posting done", "job_url", p.URL, "state", a.state, "err", res.Error)
	return res, a.state
}

func (m *Machine) pause(ctx context.Context) { _ = browser.Sleep(ctx, m.opts.StepDelay) }

func (m *Machine) run(ctx context.Context, p model.JobPosting, a *attempt) error {
	if err := m.page.Navigate(ctx, p.URL); err != nil {
		a.to(StateDiscarded)
		return fmt.Errorf("navigation failed: %w", err)
	}
	m.pause(ctx)

	// The filter keeps postings it could not check; look again.
	if applied, err := browser.ShowsApplied(ctx, m.page); err == nil && applied {
		a.to(StateDiscarded)
		return ErrAlreadyApplied
	}

	btn := m.page.FindByIntent(ctx, browser.IntentQuickApply)
	if !btn.Actionable() {
		m.page.Snapshot(ctx, "no-apply-button")
		a.to(StateDiscarded)
		return ErrNoApplyControl
	}
	m.page.ClickWithFallback(ctx, btn)
	m.pause(ctx)
	if !m.page.HasOpenModal(ctx) {
		m.page.Snapshot(ctx, "apply-error")
		a.to(StateDiscarded)
		return ErrModalNotOpened
	}
	a.to(StateApplying)

	for step := 0; step < m.opts.MaxAttempts; step++ {
		if sub := m.page.FindByIntent(ctx, browser.IntentSubmit); formControl(sub) {
			hadEmpty := m.page.HasEmptyFreeTextInput(ctx)
			if m.page.ClickWithFallback(ctx, sub) {
				m.pause(ctx)
				if m.submitted(ctx) {
					a.to(StateSubmitted)
					return nil
				}
				if hadEmpty && m.page.HasEmptyFreeTextInput(ctx) {
					return m.manualInput(ctx, a)
				}
			}
			continue
		}

		if next := m.page.FindByIntent(ctx, browser.IntentNext); formControl(next) {
			hadEmpty := m.page.HasEmptyFreeTextInput(ctx)
			m.page.ClickWithFallback(ctx, next)
			m.pause(ctx)
			// The form refused to advance past an empty free-text answer.
			if hadEmpty && m.page.HasEmptyFreeTextInput(ctx) {
				return m.manualInput(ctx, a)
			}
			continue
		}

		if m.page.HasEmptyFreeTextInput(ctx) {
			return m.manualInput(ctx, a)
		}
		if !m.page.HasInteractiveForm(ctx) {
			a.to(StateSubmitted)
			return nil
		}
		break
	}

	m.log.Warn("form not completed", "job_url", p.URL, "max_attempts", m.opts.MaxAttempts)
	m.Discard(ctx)
	a.to(StateDiscarded)
	return ErrExceededAttempts
}

func (m *Machine) submitted(ctx context.Context) bool {
	if c := m.page.FindByIntent(ctx, browser.IntentSuccessBanner); c != nil && c.Visible {
		return true
	}
	return !m.page.HasOpenModal(ctx)
}

// manualInput abandons a form that asks for free-text answers.
func (m *Machine) manualInput(ctx context.Context, a *attempt) error {
	m.page.Snapshot(ctx, "complex-form")
	m.Discard(ctx)
	a.to(StateManualInputRequired)
	return ErrManualInput
}

// closeModal dismisses whatever is left open: the post-submit notice on
// success, or a form a failed path did not close.
func (m *Machine) closeModal(ctx context.Context) {
	if !m.page.HasOpenModal(ctx) {
		return
	}
	if done := m.page.FindByIntent(ctx, browser.IntentDone); done.Actionable() {
		m.page.ClickWithFallback(ctx, done)
		m.pause(ctx)
	}
	m.Discard(ctx)
}
