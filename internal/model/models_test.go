package model_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/apply-service/internal/model"
)

func validConfig() model.RunConfig {
	return model.RunConfig{
		Credentials: model.Credentials{Email: "ana@example.com", Password: "s3cret"},
		Keyword:     "golang",
		ProfileID:   "p-1",
	}
}

// ── Validate / Budget ──────────────────────────────────────────────────────

func TestRunConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.RunConfig)
		want   string
	}{
		{"valid", func(*model.RunConfig) {}, ""},
		{"no profile", func(c *model.RunConfig) { c.ProfileID = " " }, "profileId is required"},
		{"no keyword", func(c *model.RunConfig) { c.Keyword = "" }, "keyword is required"},
		{"no email", func(c *model.RunConfig) { c.Credentials.Email = "" }, "credentials are required"},
		{"no password", func(c *model.RunConfig) { c.Credentials.Password = "" }, "credentials are required"},
		{"negative salary", func(c *model.RunConfig) { c.MinSalary = -1 }, "minSalary must not be negative"},
		{"negative contractor salary", func(c *model.RunConfig) { c.MinSalaryContractor = -1 }, "minSalaryContractor must not be negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			var verr *model.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.want, verr.Msg)
		})
	}
}

func TestRunConfig_Budget(t *testing.T) {
	cases := map[int]int{0: 5, -3: 1, 1: 1, 7: 7, 50: 50, 51: 50, 1000: 50}
	for in, want := range cases {
		cfg := validConfig()
		cfg.MaxApplications = in
		assert.Equal(t, want, cfg.Budget(), "MaxApplications=%d", in)
	}
}

// ── Credentials never leak ─────────────────────────────────────────────────

func TestCredentials_Redacted(t *testing.T) {
	cfg := validConfig()

	assert.NotContains(t, fmt.Sprintf("%v %+v %#v %s", cfg, cfg, cfg, cfg.Credentials), "s3cret")

	raw, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "s3cret")
	assert.NotContains(t, string(raw), "ana@example.com")

	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("run", "creds", cfg.Credentials)
	assert.NotContains(t, buf.String(), "s3cret")
}

// ── Results ────────────────────────────────────────────────────────────────

func TestNewAppliedJobRecord(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	p := model.JobPosting{URL: "https://jobs.example.test/jobs/view/1", Title: "Go Engineer", Company: "Acme"}

	rec := model.NewAppliedJobRecord("p-1", p, at)

	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, p.URL, rec.JobURL)
	assert.Equal(t, time.UTC, rec.AppliedAt.Location())
	assert.True(t, rec.AppliedAt.Equal(at))
}

func TestRunResult_Summary(t *testing.T) {
	r := model.RunResult{Attempted: 4, AppliedCount: 2, Discovered: 9, Filtered: 3}
	assert.Equal(t, "attempted 4, applied 2 (discovered 9, filtered 3)", r.Summary())
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://www.linkedin.com/jobs/view/123/?refId=abc&trk=x", "https://www.linkedin.com/jobs/view/123"},
		{"  https://WWW.LinkedIn.com/jobs/view/123#top ", "https://www.linkedin.com/jobs/view/123"},
		{"https://www.linkedin.com/jobs/view/123", "https://www.linkedin.com/jobs/view/123"},
		{"/jobs/view/123", "/jobs/view/123"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, model.NormalizeURL(tc.in), tc.in)
	}
}

func TestRunConfig_SalaryFloor(t *testing.T) {
	cases := []struct {
		name       string
		employee   float64
		contractor float64
		isPJ       bool
		want       float64
	}{
		{"no floors", 0, 0, false, 0},
		{"employee posting", 5000, 9000, false, 5000},
		{"contractor posting", 5000, 9000, true, 9000},
		{"contractor falls back", 5000, 0, true, 5000},
		{"contractor floor only", 0, 9000, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := model.RunConfig{MinSalary: tc.employee, MinSalaryContractor: tc.contractor}
			assert.Equal(t, tc.want, cfg.SalaryFloor(tc.isPJ))
			assert.Equal(t, tc.employee > 0 || tc.contractor > 0, cfg.HasSalaryFloor())
		})
	}
}
