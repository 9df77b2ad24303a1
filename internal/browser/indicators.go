package browser

import (
	"context"
	"strings"
)

// appliedTextMarkers are body-text phrases shown on a posting the candidate
// has already applied to.
var appliedTextMarkers = []string{
	"you applied",
	"applied on ",
	"application submitted",
	"candidatura enviada",
	"você se candidatou",
	"candidatou-se",
}

// ShowsApplied reports whether the current page carries an already-applied
// indicator: a success banner, an "applied" label, a disabled quick-apply
// control, or a body text marker. The error is non-nil only when the body
// could not be read and no control-based indicator was found.
func ShowsApplied(ctx context.Context, p Page) (bool, error) {
	if c := p.FindByIntent(ctx, IntentSuccessBanner); c != nil && c.Visible {
		return true, nil
	}
	if c := p.FindByIntent(ctx, IntentAppliedLabel); c != nil {
		return true, nil
	}
	if c := p.FindByIntent(ctx, IntentQuickApply); c != nil && c.Disabled {
		return true, nil
	}

	body, err := p.ReadBodyText(ctx)
	if err != nil {
		return false, err
	}
	return HasAppliedMarker(body), nil
}

// HasAppliedMarker scans page text for an already-applied phrase.
func HasAppliedMarker(body string) bool {
	body = strings.ToLower(body)
	for _, m := range appliedTextMarkers {
		if strings.Contains(body, m) {
			return true
		}
	}
	return false
}
