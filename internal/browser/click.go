package browser

import (
	"context"
	"log/slog"
	"time"
)

// ClickStep is one way of activating a control.
type ClickStep struct {
	Name string
	Do   func(ctx context.Context, c *Control) error
}

// ClickChain tries its steps in order and stops at the first one that works.
type ClickChain []ClickStep

// Click returns the name of the step that succeeded and true, or "" and false
// once every step has failed.
func (ch ClickChain) Click(ctx context.Context, c *Control, log *slog.Logger) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, step := range ch {
		if ctx.Err() != nil {
			return "", false
		}
		err := step.Do(ctx, c)
		if err == nil {
			return step.Name, true
		}
		if log != nil {
			log.Debug("click step failed", "step", step.Name, "ref", c.Ref, "err", err)
		}
	}
	return "", false
}

// Sleep pauses for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
