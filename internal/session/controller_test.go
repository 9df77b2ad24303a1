package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/apply-service/internal/browser/fakepage"
	"jobmate/apply-service/internal/model"
	"jobmate/apply-service/internal/session"
)

var fastOpts = session.Options{
	BaseURL:      "https://jobs.example.test",
	SettleDelay:  time.Millisecond,
	PollInterval: time.Millisecond,
	Timeout:      20 * time.Millisecond,
}

func site() *fakepage.Site {
	return &fakepage.Site{BaseURL: "https://jobs.example.test", Email: "ana@example.com", Password: "s3cret"}
}

var goodCreds = model.Credentials{Email: "ana@example.com", Password: "s3cret"}

func TestLogin_Succeeds(t *testing.T) {
	page := fakepage.New(site())
	c := session.New(page, fastOpts, nil)

	require.NoError(t, c.Login(context.Background(), goodCreds))
	assert.Equal(t, session.StateAuthenticated, c.State())
	assert.Contains(t, page.Clicks, "signin")
	assert.Empty(t, page.Snapshots)
}

func TestLogin_AlreadyAuthenticatedSkipsCredentials(t *testing.T) {
	s := site()
	s.LoggedIn = true
	page := fakepage.New(s)
	c := session.New(page, fastOpts, nil)

	require.NoError(t, c.Login(context.Background(), goodCreds))
	assert.Equal(t, session.StateAuthenticated, c.State())
	assert.NotContains(t, page.Clicks, "signin")
}

func TestLogin_URLIndicatorAlone(t *testing.T) {
	s := site()
	s.HideIndicators = true
	c := session.New(fakepage.New(s), fastOpts, nil)

	require.NoError(t, c.Login(context.Background(), goodCreds))
	assert.Equal(t, session.StateAuthenticated, c.State())
}

func TestLogin_Failures(t *testing.T) {
	cases := []struct {
		name  string
		site  func() *fakepage.Site
		creds model.Credentials
	}{
		{"wrong password", site, model.Credentials{Email: "ana@example.com", Password: "nope"}},
		{"checkpoint challenge", func() *fakepage.Site { s := site(); s.Challenge = true; return s }, goodCreds},
		{"sign-in click fails", func() *fakepage.Site {
			s := site()
			s.FailClicks = map[string]bool{"signin": true}
			return s
		}, goodCreds},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := fakepage.New(tc.site())
			c := session.New(page, fastOpts, nil)

			err := c.Login(context.Background(), tc.creds)
			require.ErrorIs(t, err, session.ErrAuthenticationFailed)
			assert.Equal(t, session.StateFailed, c.State())
			assert.Equal(t, []string{"not-logged-in"}, page.Snapshots)
		})
	}
}

func TestLogin_NotRetriedAfterFailure(t *testing.T) {
	page := fakepage.New(site())
	c := session.New(page, fastOpts, nil)

	require.Error(t, c.Login(context.Background(), model.Credentials{Email: "ana@example.com", Password: "nope"}))
	navs := len(page.Navigations)

	err := c.Login(context.Background(), goodCreds)
	require.ErrorIs(t, err, session.ErrAuthenticationFailed)
	assert.Len(t, page.Navigations, navs, "a failed session must not navigate again")
}

type brokenNav struct{ *fakepage.Page }

var errOffline = errors.New("net::ERR_INTERNET_DISCONNECTED")

func (brokenNav) Navigate(context.Context, string) error { return errOffline }

func TestLogin_NavigationError(t *testing.T) {
	c := session.New(brokenNav{fakepage.New(site())}, fastOpts, nil)

	err := c.Login(context.Background(), goodCreds)
	require.ErrorIs(t, err, session.ErrAuthenticationFailed)
	assert.ErrorIs(t, err, errOffline)
	assert.Equal(t, session.StateFailed, c.State())
}
