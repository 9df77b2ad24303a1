package apply

import (
	"context"

	"jobmate/apply-service/internal/browser"
)

// Discard closes an open application modal without submitting it: dismiss
// and confirm when the site asks, otherwise Escape and a click outside. Only
// controls inside the modal are clicked. When
// a bounded number of rounds does not close it, the page is left for
// about:blank.
func (m *Machine) Discard(ctx context.Context) {
	for round := 0; round < m.opts.DiscardRounds && m.page.HasOpenModal(ctx); round++ {
		if c := m.page.FindByIntent(ctx, browser.IntentDismiss); formControl(c) && m.page.ClickWithFallback(ctx, c) {
			m.pause(ctx)
			m.confirmDiscard(ctx)
			continue
		}
		m.page.PressEscape(ctx)
		m.pause(ctx)
		m.confirmDiscard(ctx)
		if m.page.HasOpenModal(ctx) {
			m.page.ClickOutsideModal(ctx)
			m.pause(ctx)
		}
	}

	if m.page.HasOpenModal(ctx) {
		m.log.Warn("modal would not close, leaving page")
		if err := m.page.Navigate(ctx, "about:blank"); err != nil {
			m.log.Warn("leave page failed", "err", err)
		}
	}
}

func (m *Machine) confirmDiscard(ctx context.Context) {
	if c := m.page.FindByIntent(ctx, browser.IntentConfirmDiscard); formControl(c) {
		m.page.ClickWithFallback(ctx, c)
		m.pause(ctx)
	}
}
