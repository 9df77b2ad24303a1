package filter

import (
	"context"
	"log/slog"

	"jobmate/apply-service/internal/browser"
	"jobmate/apply-service/internal/model"
)

// AppliedChecker answers whether a posting was already applied to.
// ledger.RunStore satisfies it.
type AppliedChecker interface {
	HasApplied(ctx context.Context, jobURL string) (bool, error)
}

// Stats counts why postings were dropped.
type Stats struct {
	Examined       int
	Blocked        int
	Duplicate      int
	AlreadyApplied int
	BelowSalary    int
	Uncertain      int // kept although a check could not complete
}

// Rejected is the number of postings the filter removed.
func (s Stats) Rejected() int {
	return s.Blocked + s.Duplicate + s.AlreadyApplied + s.BelowSalary
}

// Filter runs the cheap checks first and navigates only for survivors.
type Filter struct {
	page  browser.Page
	store AppliedChecker
	log   *slog.Logger
}

// New returns a Filter using page for on-page checks.
func New(page browser.Page, store AppliedChecker, log *slog.Logger) *Filter {
	if log == nil {
		log = slog.Default()
	}
	return &Filter{page: page, store: store, log: log.With("component", "filter")}
}

// Filter returns, in discovery order, at most maxNeeded postings that are not
// from a blocked employer, not in the run store and not marked as applied on
// their page. A posting whose check fails with an error is kept.
func (f *Filter) Filter(ctx context.Context, postings []model.JobPosting, cfg model.RunConfig, maxNeeded int) ([]model.JobPosting, Stats) {
	var (
		out   []model.JobPosting
		stats Stats
	)
	for _, p := range postings {
		if len(out) >= maxNeeded || ctx.Err() != nil {
			break
		}
		stats.Examined++

		if IsBlocked(p.Company, cfg.BlockedEmployers) {
			stats.Blocked++
			f.log.Info("skip blocked employer", "job_url", p.URL, "company", p.Company)
			continue
		}

		applied, err := f.store.HasApplied(ctx, p.URL)
		if err != nil {
			stats.Uncertain++
			f.log.Warn("ledger lookup failed, keeping posting", "job_url", p.URL, "err", err)
		} else if applied {
			stats.Duplicate++
			f.log.Info("skip already applied (ledger)", "job_url", p.URL)
			continue
		}

		switch f.checkPage(ctx, p, cfg) {
		case verdictApplied:
			stats.AlreadyApplied++
			continue
		case verdictBelowSalary:
			stats.BelowSalary++
			continue
		case verdictUncertain:
			stats.Uncertain++
		}
		out = append(out, p)
	}
	return out, stats
}

type verdict int

const (
	verdictKeep verdict = iota
	verdictApplied
	verdictBelowSalary
	verdictUncertain
)

func (f *Filter) checkPage(ctx context.Context, p model.JobPosting, cfg model.RunConfig) verdict {
	if err := f.page.Navigate(ctx, p.URL); err != nil {
		f.log.Warn("posting navigation failed, keeping posting", "job_url", p.URL, "err", err)
		return verdictUncertain
	}

	applied, err := browser.ShowsApplied(ctx, f.page)
	if err != nil {
		f.log.Warn("applied check failed, keeping posting", "job_url", p.URL, "err", err)
		return verdictUncertain
	}
	if applied {
		f.log.Info("skip already applied (page)", "job_url", p.URL)
		return verdictApplied
	}

	if cfg.HasSalaryFloor() {
		body, err := f.page.ReadBodyText(ctx)
		if err != nil {
			return verdictUncertain
		}
		contractor := IsContractor(body)
		floor := cfg.SalaryFloor(contractor)
		if salary, ok := FindSalary(body); ok && floor > 0 && salary < floor {
			f.log.Info("skip below salary floor", "job_url", p.URL, "salary", salary, "floor", floor, "contractor", contractor)
			return verdictBelowSalary
		}
	}
	return verdictKeep
}
