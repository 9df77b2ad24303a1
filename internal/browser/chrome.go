package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// Options configures the Chrome launcher and the pages it hands out.
type Options struct {
	Headless   bool
	ProfileDir string // parent of per-profile user-data dirs; empty = temporary profile

	ActionTimeout   time.Duration
	NavigateTimeout time.Duration
	ScrollStep      int
	ScrollDelay     time.Duration

	WindowWidth  int
	WindowHeight int

	Snapshots *Snapshots // nil disables debug captures
}

func (o Options) withDefaults() Options {
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = 10 * time.Second
	}
	if o.NavigateTimeout <= 0 {
		o.NavigateTimeout = 3 * o.ActionTimeout
	}
	if o.ScrollStep <= 0 {
		o.ScrollStep = 500
	}
	if o.ScrollDelay <= 0 {
		o.ScrollDelay = 300 * time.Millisecond
	}
	if o.WindowWidth <= 0 || o.WindowHeight <= 0 {
		o.WindowWidth, o.WindowHeight = 1200, 900
	}
	return o
}

// ChromeLauncher starts one Chrome process per session through chromedp.
type ChromeLauncher struct {
	opts Options
	log  *slog.Logger
}

// NewChromeLauncher returns a launcher with opts completed by defaults.
func NewChromeLauncher(opts Options, log *slog.Logger) *ChromeLauncher {
	if log == nil {
		log = slog.Default()
	}
	return &ChromeLauncher{opts: opts.withDefaults(), log: log.With("component", "browser")}
}

var unsafeDirChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Launch starts an isolated browser for profileID. The browser outlives ctx;
// it is released by Session.Close.
func (l *ChromeLauncher) Launch(ctx context.Context, profileID string) (Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.opts.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.NoSandbox,
		chromedp.WindowSize(l.opts.WindowWidth, l.opts.WindowHeight),
		chromedp.WSURLReadTimeout(l.opts.NavigateTimeout),
	)
	if l.opts.ProfileDir != "" {
		dir := filepath.Join(l.opts.ProfileDir, unsafeDirChars.ReplaceAllString(profileID, "_"))
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create profile dir: %w", err)
		}
		allocOpts = append(allocOpts, chromedp.UserDataDir(dir))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	log := l.log.With("profile_id", profileID)
	tab, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		}),
	)

	// Leaving a half-filled form raises beforeunload; accept it so
	// navigation never hangs on a dialog.
	chromedp.ListenTarget(tab, func(ev any) {
		if _, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			go func() {
				_ = chromedp.Run(tab, page.HandleJavaScriptDialog(true))
			}()
		}
	})

	// The first Run allocates the browser on tab, so it must not carry a
	// deadline of its own: cancelling that context kills Chrome. Startup is
	// bounded by a watchdog instead.
	abort := func() {
		cancelTab()
		cancelAlloc()
	}
	watchdog := time.AfterFunc(l.opts.NavigateTimeout, abort)
	stop := context.AfterFunc(ctx, abort)
	err := chromedp.Run(tab)
	timedOut := !watchdog.Stop()
	cancelled := !stop()
	if err != nil || timedOut || cancelled {
		abort()
		switch {
		case timedOut:
			return nil, fmt.Errorf("start browser: %w", ErrTimeout)
		case err == nil:
			return nil, fmt.Errorf("start browser: %w", context.Cause(ctx))
		}
		return nil, fmt.Errorf("start browser: %w", err)
	}

	log.Info("browser session started", "headless", l.opts.Headless)
	return &chromeSession{
		page: &ChromePage{tab: tab, opts: l.opts, log: log},
		close: func() error {
			err := chromedp.Cancel(tab)
			cancelTab()
			cancelAlloc()
			return err
		},
	}, nil
}

type chromeSession struct {
	page  *ChromePage
	close func() error
}

func (s *chromeSession) Page() Page { return s.page }

func (s *chromeSession) Close() error {
	if err := s.close(); err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

// ChromePage implements Page on a chromedp tab.
type ChromePage struct {
	tab  context.Context
	opts Options
	log  *slog.Logger
}

func (p *ChromePage) runTimeout(ctx context.Context, op string, d time.Duration, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(p.tab, d)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(opCtx, actions...); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(opCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", op, ErrTimeout)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p *ChromePage) run(ctx context.Context, op string, actions ...chromedp.Action) error {
	return p.runTimeout(ctx, op, p.opts.ActionTimeout, actions...)
}

func (p *ChromePage) eval(ctx context.Context, op, expr string, res any) error {
	return p.run(ctx, op, chromedp.Evaluate(expr, res))
}

func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	return p.runTimeout(ctx, "navigate", p.opts.NavigateTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *ChromePage) CurrentURL(ctx context.Context) (string, error) {
	var u string
	if err := p.run(ctx, "location", chromedp.Location(&u)); err != nil {
		return "", err
	}
	return u, nil
}

func (p *ChromePage) controls(ctx context.Context) ([]Control, error) {
	var cs []Control
	if err := p.eval(ctx, "collect controls", jsCollectControls, &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func (p *ChromePage) FindByIntent(ctx context.Context, in Intent) *Control {
	cs, err := p.controls(ctx)
	if err != nil {
		p.log.Debug("control lookup failed", "intent", in.Name, "err", err)
		return nil
	}
	return Match(in, cs)
}

func (p *ChromePage) ClickWithFallback(ctx context.Context, c *Control) bool {
	name, ok := p.clickChain().Click(ctx, c, p.log)
	if ok {
		p.log.Debug("clicked", "ref", c.Ref, "step", name)
	}
	return ok
}

func refSelector(ref string) string { return fmt.Sprintf(`[data-aa-ref=%q]`, ref) }

// clickChain is direct click, script click, coordinate click, Enter, Space.
func (p *ChromePage) clickChain() ClickChain {
	focusAndPress := func(key string) func(ctx context.Context, c *Control) error {
		return func(ctx context.Context, c *Control) error {
			return p.run(ctx, "key click",
				chromedp.Focus(refSelector(c.Ref), chromedp.ByQuery),
				chromedp.KeyEvent(key),
			)
		}
	}
	return ClickChain{
		{Name: "direct", Do: func(ctx context.Context, c *Control) error {
			return p.run(ctx, "direct click",
				chromedp.ScrollIntoView(refSelector(c.Ref), chromedp.ByQuery),
				chromedp.Click(refSelector(c.Ref), chromedp.ByQuery),
			)
		}},
		{Name: "script", Do: func(ctx context.Context, c *Control) error {
			var ok bool
			if err := p.eval(ctx, "script click", fmt.Sprintf(jsClickRef, c.Ref), &ok); err != nil {
				return err
			}
			if !ok {
				return errors.New("element detached")
			}
			return nil
		}},
		{Name: "coordinates", Do: func(ctx context.Context, c *Control) error {
			var pt *struct{ X, Y float64 }
			if err := p.eval(ctx, "locate", fmt.Sprintf(jsRectRef, c.Ref), &pt); err != nil {
				return err
			}
			if pt == nil {
				return errors.New("element detached")
			}
			return p.run(ctx, "coordinate click", chromedp.MouseClickXY(pt.X, pt.Y))
		}},
		{Name: "enter", Do: focusAndPress(kb.Enter)},
		{Name: "space", Do: focusAndPress(" ")},
	}
}

func (p *ChromePage) ReadBodyText(ctx context.Context) (string, error) {
	var s string
	if err := p.eval(ctx, "read body", jsBodyText, &s); err != nil {
		return "", err
	}
	return s, nil
}

func (p *ChromePage) HasOpenModal(ctx context.Context) bool {
	var open bool
	if err := p.eval(ctx, "modal check", jsHasOpenModal, &open); err != nil {
		p.log.Debug("modal check failed", "err", err)
		return false
	}
	return open
}

func (p *ChromePage) PressEscape(ctx context.Context) {
	if err := p.run(ctx, "escape", chromedp.KeyEvent(kb.Escape)); err != nil {
		p.log.Debug("escape failed", "err", err)
	}
}

func (p *ChromePage) ClickOutsideModal(ctx context.Context) {
	if err := p.run(ctx, "click outside", chromedp.MouseClickXY(5, 5)); err != nil {
		p.log.Debug("click outside failed", "err", err)
	}
}

func (p *ChromePage) ScrollToBottomBounded(ctx context.Context, maxDistance int) {
	for done := 0; done < maxDistance; done += p.opts.ScrollStep {
		var ok bool
		if err := p.eval(ctx, "scroll", fmt.Sprintf(jsScrollStep, p.opts.ScrollStep), &ok); err != nil {
			p.log.Debug("scroll failed", "err", err)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.opts.ScrollDelay):
		}
	}
}

func (p *ChromePage) Exists(ctx context.Context, selector string) bool {
	var ok bool
	if err := p.eval(ctx, "exists", fmt.Sprintf(jsExists, selector), &ok); err != nil {
		return false
	}
	return ok
}

func (p *ChromePage) Fill(ctx context.Context, selector, value string) error {
	return p.run(ctx, "fill "+selector,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SetValue(selector, "", chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

func (p *ChromePage) CollectPostings(ctx context.Context, selectors []string) ([]RawPosting, error) {
	arg, err := json.Marshal(selectors)
	if err != nil {
		return nil, fmt.Errorf("encode selectors: %w", err)
	}
	var out []RawPosting
	if err := p.eval(ctx, "collect postings", fmt.Sprintf(jsCollectPostings, arg), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *ChromePage) HasEmptyFreeTextInput(ctx context.Context) bool {
	var ok bool
	if err := p.eval(ctx, "free text check", jsHasEmptyFreeText, &ok); err != nil {
		p.log.Debug("free text check failed", "err", err)
		return false
	}
	return ok
}

func (p *ChromePage) HasInteractiveForm(ctx context.Context) bool {
	var ok bool
	if err := p.eval(ctx, "form check", jsHasInteractiveForm, &ok); err != nil {
		p.log.Debug("form check failed", "err", err)
		return false
	}
	return ok
}

// Snapshot captures a full-page PNG and the page HTML. Failures are logged.
func (p *ChromePage) Snapshot(ctx context.Context, name string) {
	if p.opts.Snapshots == nil {
		return
	}
	var (
		png  []byte
		html string
	)
	if err := p.run(ctx, "snapshot",
		chromedp.FullScreenshot(&png, 80),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		p.log.Warn("snapshot capture failed", "name", name, "err", err)
		return
	}
	if base, err := p.opts.Snapshots.Save(name, png, html, time.Now()); err != nil {
		p.log.Warn("snapshot write failed", "name", name, "err", err)
	} else {
		p.log.Info("debug snapshot saved", "path", base)
	}
}
