package browser_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/apply-service/internal/browser"
)

// staticPage serves a fixed control list and body text.
type staticPage struct {
	browser.Page
	controls []browser.Control
	body     string
	bodyErr  error
}

func (p *staticPage) FindByIntent(_ context.Context, in browser.Intent) *browser.Control {
	return browser.Match(in, p.controls)
}

func (p *staticPage) ReadBodyText(context.Context) (string, error) { return p.body, p.bodyErr }

func TestShowsApplied(t *testing.T) {
	quickApply := browser.Control{Ref: "apply", Text: "Easy Apply", Label: "Easy Apply to Applied Scientist at Globex", Visible: true}
	similarCard := browser.Control{Ref: "card", Text: "Staff Go Engineer Initech Applied 3 days ago", Href: "https://www.linkedin.com/jobs/view/99/", Visible: true}

	cases := []struct {
		name     string
		controls []browser.Control
		body     string
		want     bool
	}{
		{"open posting with applied-science title", []browser.Control{quickApply}, "Applied Scientist at Globex", false},
		{"similar job already applied to", []browser.Control{quickApply, similarCard}, "", false},
		{"applied status label", []browser.Control{{Ref: "s", Text: "Applied 2 weeks ago", Visible: true}}, "", true},
		{"disabled quick apply", []browser.Control{{Ref: "a", Text: "Easy Apply", Visible: true, Disabled: true}}, "", true},
		{"success banner", []browser.Control{{Ref: "b", Text: "Your application was sent", Visible: true}}, "", true},
		{"body marker", []browser.Control{quickApply}, "You applied 3 days ago", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := browser.ShowsApplied(context.Background(), &staticPage{controls: tc.controls, body: tc.body})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestShowsApplied_QuickApplyStillFound(t *testing.T) {
	p := &staticPage{controls: []browser.Control{
		{Ref: "card", Text: "Easy Apply", Href: "https://www.linkedin.com/jobs/view/99/", Visible: true},
		{Ref: "apply", Text: "Easy Apply", Label: "Easy Apply to Applied Scientist at Globex", Visible: true},
	}}
	c := p.FindByIntent(context.Background(), browser.IntentQuickApply)
	require.NotNil(t, c)
	assert.Equal(t, "apply", c.Ref)
}

func TestShowsApplied_BodyReadError(t *testing.T) {
	_, err := browser.ShowsApplied(context.Background(), &staticPage{bodyErr: errors.New("detached")})
	assert.Error(t, err)
}
