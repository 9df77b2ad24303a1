// Package runner sequences a full apply run: login, search, filter, then one
// posting at a time through the apply state machine until the budget is spent.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"jobmate/apply-service/internal/apply"
	"jobmate/apply-service/internal/browser"
	"jobmate/apply-service/internal/discovery"
	"jobmate/apply-service/internal/events"
	"jobmate/apply-service/internal/filter"
	"jobmate/apply-service/internal/ledger"
	"jobmate/apply-service/internal/model"
	"jobmate/apply-service/internal/session"
)

// Options configures every run of a Coordinator.
type Options struct {
	BaseURL string
	Session session.Options
	Apply   apply.Options

	// Pause between two postings, drawn uniformly from [PaceMin, PaceMax].
	PaceMin time.Duration
	PaceMax time.Duration
}

// Coordinator runs apply runs. It holds no per-run state and may serve
// concurrent runs; each run launches its own browser session.
type Coordinator struct {
	launcher browser.Launcher
	ledger   ledger.Ledger
	events   events.Publisher
	opts     Options
	log      *slog.Logger
	now      func() time.Time
}

// New returns a Coordinator. A nil publisher drops events.
func New(launcher browser.Launcher, l ledger.Ledger, pub events.Publisher, opts Options, log *slog.Logger) *Coordinator {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	if opts.Session.BaseURL == "" {
		opts.Session.BaseURL = opts.BaseURL
	}
	return &Coordinator{
		launcher: launcher,
		ledger:   l,
		events:   pub,
		opts:     opts,
		log:      log.With("component", "runner"),
		now:      time.Now,
	}
}

// Run executes one run for cfg and always returns a RunResult. Success is
// false only when the run never reached the site: invalid config, a browser
// that would not start, or a failed login. Cancelling ctx stops the run
// between postings; an in-flight posting is finished.
func (c *Coordinator) Run(ctx context.Context, cfg model.RunConfig) model.RunResult {
	res := model.RunResult{StartedAt: c.now().UTC(), Results: []model.CandidaturaResult{}}
	log := c.log.With("profile_id", cfg.ProfileID, "keyword", cfg.Keyword)

	fail := func(msg string) model.RunResult {
		res.Success = false
		res.Message = msg
		res.FinishedAt = c.now().UTC()
		log.Warn("run failed", "reason", msg)
		return res
	}

	if err := cfg.Validate(); err != nil {
		return fail("invalid run config: " + err.Error())
	}
	budget := cfg.Budget()

	// Browser work is not interrupted mid-step; ctx is consulted between postings.
	bctx := context.WithoutCancel(ctx)

	sess, err := c.launcher.Launch(bctx, cfg.ProfileID)
	if err != nil {
		return fail(fmt.Sprintf("launch browser: %v", err))
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn("browser close failed", "err", err)
		}
	}()
	page := sess.Page()

	if err := session.New(page, c.opts.Session, log).Login(bctx, cfg.Credentials); err != nil {
		return fail(fmt.Sprintf("login: %v", err))
	}

	// A failed search is an empty run, not a failed one.
	postings, err := discovery.New(page, c.opts.BaseURL, log).Search(bctx, cfg.Keyword, budget)
	if err != nil {
		log.Warn("search failed", "err", err)
		return c.finish(log, res, budget, fmt.Sprintf("search failed: %v", err))
	}
	res.Discovered = len(postings)

	store := ledger.NewRunStore(c.ledger, log)
	survivors, stats := filter.New(page, store, log).Filter(bctx, postings, cfg, budget)
	res.Filtered = stats.Rejected()
	log.Info("postings selected", "discovered", res.Discovered, "survivors", len(survivors), "filtered", res.Filtered)

	machine := apply.New(page, c.opts.Apply, log)
	cancelled := false
	for i, p := range survivors {
		if res.AppliedCount >= budget {
			break
		}
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		if i > 0 {
			if err := c.pace(ctx); err != nil {
				cancelled = true
				break
			}
		}

		r, state := c.applyOne(bctx, page, machine, p)
		res.Attempted++
		res.Results = append(res.Results, r)
		if !apply.IsSubmitted(state) {
			continue
		}

		res.AppliedCount++
		if err := store.Record(bctx, cfg.ProfileID, p); err != nil {
			log.Error("ledger write failed, posting may be re-applied by a later run", "job_url", p.URL, "err", err)
		}
		c.events.Publish(bctx, events.ChannelJobApplied, events.NewJobApplied(cfg.ProfileID, r))
	}

	note := ""
	if cancelled {
		note = "stopped early: cancelled"
	}
	return c.finish(log, res, budget, note)
}

// finish completes a run that got past login. note, when set, is appended
// to the summary.
func (c *Coordinator) finish(log *slog.Logger, res model.RunResult, budget int, note string) model.RunResult {
	res.Success = true
	res.Message = res.Summary()
	if note != "" {
		res.Message += "; " + note
	}
	res.FinishedAt = c.now().UTC()
	log.Info("run finished", "applied", res.AppliedCount, "attempted", res.Attempted, "budget", budget)
	return res
}

// applyOne isolates a posting: a panic becomes a failed result and the page
// is cleaned up on a best-effort basis.
func (c *Coordinator) applyOne(ctx context.Context, page browser.Page, m *apply.Machine, p model.JobPosting) (r model.CandidaturaResult, state apply.State) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		c.log.Error("posting panicked", "job_url", p.URL, "panic", rec)
		r = model.NewResult(p)
		r.Error = fmt.Sprintf("unexpected error: %v", rec)
		state = apply.StateDiscarded
		c.cleanup(ctx, page, m)
	}()
	return m.Apply(ctx, p)
}

func (c *Coordinator) cleanup(ctx context.Context, page browser.Page, m *apply.Machine) {
	defer func() {
		if rec := recover(); rec != nil {
			c.log.Error("cleanup after panic failed", "panic", rec)
		}
	}()
	page.Snapshot(ctx, "apply-error")
	m.Discard(ctx)
}

// pace sleeps a random duration in [PaceMin, PaceMax] unless ctx ends first.
func (c *Coordinator) pace(ctx context.Context) error {
	d := c.opts.PaceMin
	if span := c.opts.PaceMax - c.opts.PaceMin; span > 0 {
		d += rand.N(span + 1)
	}
	return browser.Sleep(ctx, d)
}
