// Package model defines the data structures shared by the apply engine.
package model

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Bounds applied to RunConfig.MaxApplications.
const (
	MinApplications     = 1
	MaxApplicationsCap  = 50
	DefaultApplications = 5
)

// Credentials are the site login of the candidate. They are opaque to the
// engine and every textual rendering is redacted.
type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) String() string   { return "[redacted]" }
func (c Credentials) GoString() string { return "model.Credentials{[redacted]}" }

// LogValue keeps credentials out of structured logs.
func (c Credentials) LogValue() slog.Value { return slog.StringValue("[redacted]") }

// RunConfig is everything a single run needs. It is not mutated once a run
// has started.
type RunConfig struct {
	Credentials      Credentials `json:"-"`
	Keyword          string      `json:"keyword"`
	BlockedEmployers []string    `json:"blockedEmployers"`
	MaxApplications  int         `json:"maxApplications"`
	ProfileID        string      `json:"profileId"`
	MinSalary        float64     `json:"minSalary,omitempty"` // 0 disables the salary floor

	// MinSalaryContractor is the floor for contractor (PJ) postings. 0 falls
	// back to MinSalary.
	MinSalaryContractor float64 `json:"minSalaryContractor,omitempty"`
}

// Validate reports the first missing required field.
func (c RunConfig) Validate() error {
	switch {
	case strings.TrimSpace(c.ProfileID) == "":
		return &ValidationError{Msg: "profileId is required"}
	case strings.TrimSpace(c.Keyword) == "":
		return &ValidationError{Msg: "keyword is required"}
	case c.Credentials.Email == "" || c.Credentials.Password == "":
		return &ValidationError{Msg: "credentials are required"}
	case c.MinSalary < 0:
		return &ValidationError{Msg: "minSalary must not be negative"}
	case c.MinSalaryContractor < 0:
		return &ValidationError{Msg: "minSalaryContractor must not be negative"}
	}
	return nil
}

// SalaryFloor returns the floor for an employee or a contractor posting.
// 0 means no floor.
func (c RunConfig) SalaryFloor(contractor bool) float64 {
	if contractor && c.MinSalaryContractor > 0 {
		return c.MinSalaryContractor
	}
	return c.MinSalary
}

// HasSalaryFloor reports whether any salary floor is set.
func (c RunConfig) HasSalaryFloor() bool {
	return c.MinSalary > 0 || c.MinSalaryContractor > 0
}

// Budget returns MaxApplications clamped to [MinApplications, MaxApplicationsCap].
// Zero means "not set" and yields DefaultApplications.
func (c RunConfig) Budget() int {
	n := c.MaxApplications
	if n == 0 {
		n = DefaultApplications
	}
	return max(MinApplications, min(MaxApplicationsCap, n))
}

// JobPosting is a single listing found by search. URL is the natural key.
type JobPosting struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Company string `json:"company"`
}

// AppliedJobRecord is one row of the applied-jobs ledger.
type AppliedJobRecord struct {
	ID        uuid.UUID `json:"id"`
	ProfileID string    `json:"profileId"`
	JobURL    string    `json:"jobUrl"`
	JobTitle  string    `json:"jobTitle"`
	Company   string    `json:"company"`
	AppliedAt time.Time `json:"appliedAt"`
}

// NewAppliedJobRecord builds the ledger row for a successful application.
func NewAppliedJobRecord(profileID string, p JobPosting, at time.Time) AppliedJobRecord {
	return AppliedJobRecord{
		ID:        uuid.New(),
		ProfileID: profileID,
		JobURL:    p.URL,
		JobTitle:  p.Title,
		Company:   p.Company,
		AppliedAt: at.UTC(),
	}
}

// CandidaturaResult is the outcome of one attempted posting.
type CandidaturaResult struct {
	JobTitle  string    `json:"jobTitle"`
	Company   string    `json:"company"`
	JobURL    string    `json:"jobUrl"`
	Applied   bool      `json:"applied"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewResult starts a not-applied result for p.
func NewResult(p JobPosting) CandidaturaResult {
	return CandidaturaResult{
		JobTitle:  p.Title,
		Company:   p.Company,
		JobURL:    p.URL,
		Timestamp: time.Now().UTC(),
	}
}

// RunResult is what a run hands back to its caller. Postings removed by the
// filter only show up in the aggregate counters.
type RunResult struct {
	Success      bool                `json:"success"`
	Results      []CandidaturaResult `json:"results"`
	AppliedCount int                 `json:"appliedCount"`
	Discovered   int                 `json:"discovered"`
	Filtered     int                 `json:"filtered"`
	Attempted    int                 `json:"attempted"`
	Message      string              `json:"message"`
	StartedAt    time.Time           `json:"startedAt"`
	FinishedAt   time.Time           `json:"finishedAt"`
}

// Summary renders the human-readable message of a finished run.
func (r RunResult) Summary() string {
	return fmt.Sprintf("attempted %d, applied %d (discovered %d, filtered %d)",
		r.Attempted, r.AppliedCount, r.Discovered, r.Filtered)
}

// NormalizeURL reduces a posting link to scheme, host and path so that
// tracking parameters do not defeat deduplication.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
