// Package fakepage is a scriptable in-memory site implementing browser.Page.
//
// A Site describes the login behaviour, the search results and, per posting,
// the multi-step application form. Pages record what the engine did to them
// so tests can assert on navigations, submissions and discards.
package fakepage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"jobmate/apply-service/internal/browser"
)

// Step is one screen of the application form.
type Step struct {
	Next           bool // shows a Next control
	Review         bool // Next control labelled "Review"
	Submit         bool
	SubmitDisabled bool
	EmptyField     bool // empty free-text input; blocks Next and Submit
	Opaque         bool // inputs without any recognizable control
}

// Posting is a job page on the fake site.
type Posting struct {
	URL      string
	Title    string
	Company  string
	BodyText string

	AlreadyApplied bool // shows an "Applied" label
	NoApplyControl bool
	ApplyDisabled  bool
	ModalFails     bool // clicking quick apply opens nothing
	PanicOnApply   bool // clicking quick apply panics

	Steps         []Step
	SuccessDialog bool // submission leaves a success notice open
	NoDismiss     bool // form has no dismiss control
	StickyModal   bool // Escape does nothing
	PageClose     bool // a "Close" control outside the modal, e.g. a chat overlay

	NavigateErr error
}

// Site is shared by every Page of a test.
type Site struct {
	BaseURL  string
	Email    string
	Password string

	LoggedIn       bool // persistent profile already authenticated
	Challenge      bool // correct credentials land on a checkpoint
	HideIndicators bool // only the URL tells that login worked

	Postings       []Posting
	DuplicateLinks bool // every result listed twice with tracking params
	SearchErr      error

	FailClicks map[string]bool // control refs whose clicks always fail

	// OnClick runs after every click, outside the page lock.
	OnClick func(ref string)

	mu      sync.Mutex
	applied map[string]bool
}

func (s *Site) base() string {
	if s.BaseURL == "" {
		return "https://jobs.example.test"
	}
	return strings.TrimRight(s.BaseURL, "/")
}

// MarkApplied flags url as applied on the site itself.
func (s *Site) MarkApplied(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applied == nil {
		s.applied = make(map[string]bool)
	}
	s.applied[stripQuery(u)] = true
}

func (s *Site) isApplied(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied[stripQuery(u)]
}

func stripQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery, u.Fragment = "", ""
	return strings.TrimRight(u.String(), "/")
}

type modalState int

const (
	modalNone modalState = iota
	modalForm
	modalConfirm
	modalSuccess
)

// Page is a browser.Page over a Site.
type Page struct {
	site *Site

	mu       sync.Mutex
	url      string
	loggedIn bool
	filled   map[string]string
	cur      *Posting
	modal    modalState
	step     int

	Navigations []string
	Clicks      []string
	Submitted   []string
	Discarded   []string
	Snapshots   []string
	Escapes     int
	Scrolled    int
}

// New returns a blank page on site.
func New(site *Site) *Page {
	return &Page{site: site, url: "about:blank", loggedIn: site.LoggedIn, filled: map[string]string{}}
}

var _ browser.Page = (*Page)(nil)

func (p *Page) onLogin() bool {
	return strings.Contains(p.url, "/login") || strings.Contains(p.url, "/checkpoint")
}

func (p *Page) currentStep() (Step, bool) {
	if p.cur == nil || p.step >= len(p.cur.Steps) {
		return Step{}, false
	}
	return p.cur.Steps[p.step], true
}

func (p *Page) Navigate(ctx context.Context, target string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Navigations = append(p.Navigations, target)
	p.modal, p.step, p.cur = modalNone, 0, nil

	switch {
	case target == "about:blank":
		p.url = target
		return nil
	case strings.Contains(target, "/login"):
		if p.loggedIn {
			p.url = p.site.base() + "/feed/"
		} else {
			p.url = target
		}
		return nil
	}

	key := stripQuery(target)
	for i := range p.site.Postings {
		post := &p.site.Postings[i]
		if stripQuery(post.URL) != key {
			continue
		}
		if post.NavigateErr != nil {
			return post.NavigateErr
		}
		p.cur = post
	}
	p.url = target
	return nil
}

func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

func (p *Page) controls() []browser.Control {
	vis := func(ref, text string) browser.Control {
		return browser.Control{Ref: ref, Text: text, Visible: true}
	}
	modal := func(c browser.Control) browser.Control {
		c.InModal = true
		return c
	}

	if !p.loggedIn && p.onLogin() {
		return []browser.Control{vis("signin", "Sign in")}
	}
	if p.cur == nil {
		return nil
	}

	var out []browser.Control
	switch {
	case p.cur.AlreadyApplied || p.site.isApplied(p.cur.URL):
		out = append(out, browser.Control{Ref: "applied", Text: "Applied", Visible: true, Disabled: true})
	case !p.cur.NoApplyControl:
		c := vis("apply", "Easy Apply")
		c.Disabled = p.cur.ApplyDisabled
		out = append(out, c)
	}
	if p.cur.PageClose {
		out = append(out, browser.Control{Ref: "page-close", Label: "Close your conversation", Visible: true})
	}

	switch p.modal {
	case modalForm:
		if !p.cur.NoDismiss {
			out = append(out, modal(browser.Control{Ref: "dismiss", Label: "Dismiss", Visible: true}))
		}
		if st, ok := p.currentStep(); ok {
			if st.Next {
				out = append(out, modal(vis("next", "Next")))
			}
			if st.Review {
				out = append(out, modal(vis("next", "Review")))
			}
			if st.Submit {
				c := modal(vis("submit", "Submit application"))
				c.Disabled = st.SubmitDisabled
				out = append(out, c)
			}
		}
	case modalConfirm:
		out = append(out,
			modal(vis("discard", "Discard")),
			modal(vis("save", "Save")),
		)
	case modalSuccess:
		out = append(out,
			modal(vis("banner", "Your application was sent")),
			modal(browser.Control{Ref: "dismiss", Label: "Dismiss", Visible: true}),
			modal(vis("done", "Done")),
		)
	}
	return out
}

func (p *Page) FindByIntent(ctx context.Context, in browser.Intent) *browser.Control {
	p.mu.Lock()
	defer p.mu.Unlock()
	return browser.Match(in, p.controls())
}

func (p *Page) ClickWithFallback(ctx context.Context, c *browser.Control) bool {
	if c == nil {
		return false
	}
	if hook := p.site.OnClick; hook != nil {
		defer hook(c.Ref)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Clicks = append(p.Clicks, c.Ref)
	if p.site.FailClicks[c.Ref] {
		return false
	}

	switch c.Ref {
	case "signin":
		if p.filled["#username"] != p.site.Email || p.filled["#password"] != p.site.Password {
			return true
		}
		if p.site.Challenge {
			p.url = p.site.base() + "/checkpoint/challenge"
			return true
		}
		p.loggedIn = true
		p.url = p.site.base() + "/feed/"
	case "apply":
		if c.Disabled {
			return true
		}
		if p.cur.PanicOnApply {
			panic(fmt.Sprintf("fakepage: apply on %s", p.cur.URL))
		}
		if !p.cur.ModalFails {
			p.modal, p.step = modalForm, 0
		}
	case "next":
		if st, ok := p.currentStep(); ok && !st.EmptyField {
			p.step++
		}
	case "submit":
		st, ok := p.currentStep()
		if !ok || st.SubmitDisabled || st.EmptyField {
			return true
		}
		p.Submitted = append(p.Submitted, p.cur.URL)
		p.site.MarkApplied(p.cur.URL)
		p.modal = modalNone
		if p.cur.SuccessDialog {
			p.modal = modalSuccess
		}
	case "dismiss":
		switch p.modal {
		case modalForm:
			p.modal = modalConfirm
		case modalSuccess:
			p.modal = modalNone
		}
	case "done":
		p.modal = modalNone
	case "discard":
		p.Discarded = append(p.Discarded, p.cur.URL)
		p.modal = modalNone
	case "save":
		p.modal = modalNone
	}
	return true
}

func (p *Page) ReadBodyText(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur == nil {
		return "", nil
	}
	return p.cur.BodyText, nil
}

func (p *Page) HasOpenModal(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modal != modalNone
}

func (p *Page) PressEscape(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Escapes++
	if p.cur == nil || p.cur.StickyModal {
		return
	}
	switch p.modal {
	case modalForm:
		p.Discarded = append(p.Discarded, p.cur.URL)
		p.modal = modalNone
	case modalConfirm:
		p.modal = modalForm
	case modalSuccess:
		p.modal = modalNone
	}
}

func (p *Page) ClickOutsideModal(ctx context.Context) {}

func (p *Page) ScrollToBottomBounded(ctx context.Context, maxDistance int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Scrolled += maxDistance
}

func (p *Page) Exists(ctx context.Context, selector string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if selector == "#username" || selector == "#password" {
		return !p.loggedIn && p.onLogin()
	}
	return p.loggedIn && !p.site.HideIndicators
}

func (p *Page) Fill(ctx context.Context, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loggedIn || !p.onLogin() {
		return fmt.Errorf("fill %s: %w", selector, errNoField)
	}
	p.filled[selector] = value
	return nil
}

var errNoField = errors.New("no such field")

func (p *Page) CollectPostings(ctx context.Context, selectors []string) ([]browser.RawPosting, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.site.SearchErr != nil {
		return nil, p.site.SearchErr
	}
	if !strings.Contains(p.url, "/jobs/search") {
		return nil, nil
	}
	var out []browser.RawPosting
	for _, post := range p.site.Postings {
		raw := browser.RawPosting{Href: post.URL, Text: post.Title, Context: post.Company}
		out = append(out, raw)
		if p.site.DuplicateLinks {
			raw.Href = post.URL + "?refId=tracking&trk=search"
			out = append(out, raw)
		}
	}
	return out, nil
}

func (p *Page) HasEmptyFreeTextInput(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.currentStep()
	return p.modal == modalForm && ok && st.EmptyField
}

func (p *Page) HasInteractiveForm(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.modal == modalConfirm {
		return true
	}
	st, ok := p.currentStep()
	return p.modal == modalForm && ok && (st.Next || st.Review || st.Submit || st.EmptyField || st.Opaque)
}

func (p *Page) Snapshot(ctx context.Context, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Snapshots = append(p.Snapshots, name)
}

// NavigatedTo reports whether any navigation targeted u, ignoring query strings.
func (p *Page) NavigatedTo(u string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range p.Navigations {
		if stripQuery(n) == stripQuery(u) {
			return true
		}
	}
	return false
}

// Launcher hands out fake sessions over Site.
type Launcher struct {
	Site *Site
	Err  error

	mu     sync.Mutex
	Pages  []*Page
	Closed int
}

func (l *Launcher) Launch(ctx context.Context, profileID string) (browser.Session, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	pg := New(l.Site)
	l.Pages = append(l.Pages, pg)
	return &session{page: pg, l: l}, nil
}

// ClosedCount returns how many sessions were closed.
func (l *Launcher) ClosedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Closed
}

// Last returns the most recently launched page.
func (l *Launcher) Last() *Page {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.Pages) == 0 {
		return nil
	}
	return l.Pages[len(l.Pages)-1]
}

type session struct {
	page *Page
	l    *Launcher
}

func (s *session) Page() browser.Page { return s.page }

func (s *session) Close() error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	s.l.Closed++
	return nil
}
