package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"jobmate/apply-service/internal/browser"
	"jobmate/apply-service/internal/model"
)

// ErrAuthenticationFailed is fatal to a run. Credentials are never retried.
var ErrAuthenticationFailed = errors.New("authentication failed")

// Selectors of the login surface and of the signed-in chrome.
var (
	usernameField = "#username"
	passwordField = "#password"

	authIndicators = []string{
		"img.global-nav__me-photo",
		`a[href*="/feed/"]`,
		"nav.global-nav",
	}

	loginPaths = []string{"/login", "/uas/login", "/checkpoint"}
)

// Options tunes the login wait.
type Options struct {
	BaseURL      string
	SettleDelay  time.Duration // pause after submitting credentials
	PollInterval time.Duration
	Timeout      time.Duration // how long indicators are polled for
}

func (o Options) withDefaults() Options {
	if o.SettleDelay == 0 {
		o.SettleDelay = 2 * time.Second
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 500 * time.Millisecond
	}
	if o.Timeout <= 0 {
		o.Timeout = 20 * time.Second
	}
	return o
}

// Controller drives the login of one session.
type Controller struct {
	page  browser.Page
	opts  Options
	log   *slog.Logger
	state State
}

// New returns a controller in the ANONYMOUS state.
func New(page browser.Page, opts Options, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		page:  page,
		opts:  opts.withDefaults(),
		log:   log.With("component", "session"),
		state: StateAnonymous,
	}
}

// State returns the current authentication state.
func (c *Controller) State() State { return c.state }

func (c *Controller) transition(to State) error {
	if !IsTransitionAllowed(c.state, to) {
		return fmt.Errorf("session: transition %s → %s not allowed", c.state, to)
	}
	c.state = to
	return nil
}

func (c *Controller) fail(ctx context.Context, cause error) error {
	_ = c.transition(StateFailed)
	c.page.Snapshot(ctx, "not-logged-in")
	c.log.Warn("login failed", "err", cause)
	return fmt.Errorf("%w: %w", ErrAuthenticationFailed, cause)
}

// Login authenticates the session with creds. It may be called once; a
// session in a terminal state returns immediately.
func (c *Controller) Login(ctx context.Context, creds model.Credentials) error {
	switch c.state {
	case StateAuthenticated:
		return nil
	case StateFailed:
		return ErrAuthenticationFailed
	}

	if err := c.page.Navigate(ctx, c.opts.BaseURL+"/login"); err != nil {
		return c.fail(ctx, fmt.Errorf("open login page: %w", err))
	}

	// A persistent profile may already be signed in: the login surface then
	// redirects away and shows the signed-in chrome.
	if !c.page.Exists(ctx, usernameField) && c.IsAuthenticated(ctx) {
		c.log.Info("session already authenticated")
		return c.transition(StateAuthenticated)
	}

	if err := c.page.Fill(ctx, usernameField, creds.Email); err != nil {
		return c.fail(ctx, err)
	}
	if err := c.page.Fill(ctx, passwordField, creds.Password); err != nil {
		return c.fail(ctx, err)
	}
	submit := c.page.FindByIntent(ctx, browser.IntentSignIn)
	if submit == nil || !c.page.ClickWithFallback(ctx, submit) {
		return c.fail(ctx, errors.New("sign-in control not found"))
	}
	if err := c.transition(StateCredentialsSubmitted); err != nil {
		return err
	}

	if err := browser.Sleep(ctx, c.opts.SettleDelay); err != nil {
		return c.fail(ctx, err)
	}
	deadline := time.Now().Add(c.opts.Timeout)
	for {
		if c.IsAuthenticated(ctx) {
			c.log.Info("login succeeded")
			return c.transition(StateAuthenticated)
		}
		if time.Now().After(deadline) {
			return c.fail(ctx, errors.New("no signed-in indicator before timeout"))
		}
		if err := browser.Sleep(ctx, c.opts.PollInterval); err != nil {
			return c.fail(ctx, err)
		}
	}
}

// IsAuthenticated is an OR of independent indicators: a signed-in navigation
// element, a feed link, or a current URL that is no longer a login path.
func (c *Controller) IsAuthenticated(ctx context.Context) bool {
	for _, sel := range authIndicators {
		if c.page.Exists(ctx, sel) {
			return true
		}
	}
	u, err := c.page.CurrentURL(ctx)
	if err != nil {
		return false
	}
	return isSignedInURL(u)
}

func isSignedInURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	for _, p := range loginPaths {
		if strings.HasPrefix(u.Path, p) {
			return false
		}
	}
	return true
}
