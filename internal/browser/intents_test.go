package browser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/apply-service/internal/browser"
)

func visible(ref, text string) browser.Control {
	return browser.Control{Ref: ref, Text: text, Visible: true}
}

// ── Attribute matching ───────────────────────────────────────────────────────

func TestIntent_MatchesAnyAttributeCaseInsensitive(t *testing.T) {
	cases := []struct {
		name string
		c    browser.Control
		want bool
	}{
		{"text", browser.Control{Text: "Easy Apply"}, true},
		{"aria label", browser.Control{Label: "EASY APPLY to Backend Engineer"}, true},
		{"title", browser.Control{Title: "Candidatura simplificada"}, true},
		{"value", browser.Control{Value: "candidatar-se"}, true},
		{"collapsed whitespace", browser.Control{Text: "Easy\n   Apply"}, true},
		{"title containing applied", browser.Control{Text: "Easy Apply", Label: "Easy Apply to Applied Scientist at Globex"}, true},
		{"similar-job card link", browser.Control{Text: "Staff Go Engineer Easy Apply", Href: "https://www.linkedin.com/jobs/view/42/"}, false},
		{"unrelated", browser.Control{Text: "Save job"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, browser.IntentQuickApply.Matches(&tc.c))
		})
	}
}

// ── Match preference ─────────────────────────────────────────────────────────

func TestMatch_NoneFound(t *testing.T) {
	assert.Nil(t, browser.Match(browser.IntentSubmit, nil))
	assert.Nil(t, browser.Match(browser.IntentSubmit, []browser.Control{visible("1", "Next")}))
}

func TestMatch_ModalSearchedFirst(t *testing.T) {
	controls := []browser.Control{
		visible("page", "Dismiss"),
		{Ref: "modal", Label: "Dismiss", Visible: true, InModal: true},
	}
	got := browser.Match(browser.IntentDismiss, controls)
	require.NotNil(t, got)
	assert.Equal(t, "modal", got.Ref)
}

func TestMatch_FallsBackToPageWhenModalHasNoMatch(t *testing.T) {
	controls := []browser.Control{
		visible("page", "Submit application"),
		{Ref: "modal", Text: "Next", Visible: true, InModal: true},
	}
	got := browser.Match(browser.IntentSubmit, controls)
	require.NotNil(t, got)
	assert.Equal(t, "page", got.Ref)
}

func TestMatch_EarlierSynonymWins(t *testing.T) {
	controls := []browser.Control{
		visible("generic", "Submit"),
		visible("specific", "Submit application"),
	}
	got := browser.Match(browser.IntentSubmit, controls)
	require.NotNil(t, got)
	assert.Equal(t, "specific", got.Ref)
}

func TestMatch_ActionablePreferredOverDisabled(t *testing.T) {
	controls := []browser.Control{
		{Ref: "disabled", Text: "Next", Visible: true, Disabled: true},
		visible("enabled", "Next"),
	}
	got := browser.Match(browser.IntentNext, controls)
	require.NotNil(t, got)
	assert.Equal(t, "enabled", got.Ref)
	assert.True(t, got.Actionable())
}

func TestMatch_ReturnsDisabledWhenOnlyOption(t *testing.T) {
	controls := []browser.Control{{Ref: "d", Text: "Submit application", Visible: true, Disabled: true}}
	got := browser.Match(browser.IntentSubmit, controls)
	require.NotNil(t, got)
	assert.False(t, got.Actionable())
}

func TestActionable_NilControl(t *testing.T) {
	var c *browser.Control
	assert.False(t, c.Actionable())
}

// ── Applied status label ─────────────────────────────────────────────────────

func TestIntentAppliedLabel(t *testing.T) {
	cases := []struct {
		name string
		c    browser.Control
		want bool
	}{
		{"bare status", browser.Control{Text: "Applied"}, true},
		{"status with age", browser.Control{Text: "Applied 3 days ago"}, true},
		{"status with date", browser.Control{Text: "Applied on 12/03/2026"}, true},
		{"portuguese status", browser.Control{Text: "Candidatou-se há 2 dias"}, true},
		{"quick apply for an applied-science title", browser.Control{Text: "Easy Apply", Label: "Easy Apply to Applied Scientist at Globex"}, false},
		{"title text", browser.Control{Text: "Applied AI Engineer"}, false},
		{"label only", browser.Control{Label: "Applied"}, false},
		{"applied jobs nav", browser.Control{Text: "Applied jobs"}, false},
		{"card of another posting", browser.Control{Text: "Applied 3 days ago", Href: "https://www.linkedin.com/jobs/view/77/"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, browser.IntentAppliedLabel.Matches(&tc.c))
		})
	}
}
