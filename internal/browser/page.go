// Package browser is the capability surface over a controllable browser page.
//
// Everything above it (session, discovery, filter, apply) expresses what it
// wants as an Intent and never touches selectors for actionable controls.
// Every operation is bounded by a timeout; a timeout surfaces as nil, false or
// an error wrapping ErrTimeout, never as a panic.
package browser

import (
	"context"
	"errors"
	"strings"
)

// ErrTimeout is returned when an adapter operation exceeds its time budget.
var ErrTimeout = errors.New("browser operation timed out")

// Control is a located interactive element. Ref is an opaque adapter handle
// valid until the next lookup.
type Control struct {
	Ref      string  `json:"ref"`
	Text     string  `json:"text"`
	Label    string  `json:"label"`
	Title    string  `json:"title"`
	Value    string  `json:"value"`
	Href     string  `json:"href"` // anchors only
	Disabled bool    `json:"disabled"`
	Visible  bool    `json:"visible"`
	InModal  bool    `json:"inModal"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Actionable reports whether c can reasonably be clicked.
func (c *Control) Actionable() bool {
	return c != nil && c.Visible && !c.Disabled
}

// haystack is the lowercased text the intent synonyms are matched against.
func (c *Control) haystack() string {
	return normalize(c.Text + " " + c.Label + " " + c.Title + " " + c.Value)
}

// normalize lowercases s and collapses its whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// RawPosting is a posting anchor found on a listing page. Context is the
// secondary text of the card the anchor lives in (usually the employer name).
type RawPosting struct {
	Href    string `json:"href"`
	Text    string `json:"text"`
	Context string `json:"context"`
}

// Page is the contract every component above the adapter depends on.
type Page interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)

	// FindByIntent returns the best control for in, or nil.
	FindByIntent(ctx context.Context, in Intent) *Control
	// ClickWithFallback runs the click chain and reports whether any step worked.
	ClickWithFallback(ctx context.Context, c *Control) bool

	ReadBodyText(ctx context.Context) (string, error)
	HasOpenModal(ctx context.Context) bool
	PressEscape(ctx context.Context)
	ClickOutsideModal(ctx context.Context)
	ScrollToBottomBounded(ctx context.Context, maxDistance int)

	Exists(ctx context.Context, selector string) bool
	Fill(ctx context.Context, selector, value string) error
	CollectPostings(ctx context.Context, selectors []string) ([]RawPosting, error)

	// HasEmptyFreeTextInput reports an enabled, visible, empty free-text
	// input in the open form that is not a search box.
	HasEmptyFreeTextInput(ctx context.Context) bool
	// HasInteractiveForm reports whether an open modal still holds a form.
	HasInteractiveForm(ctx context.Context) bool

	// Snapshot stores a best-effort debug capture under name.
	Snapshot(ctx context.Context, name string)
}

// Session is one isolated browser owned by exactly one run.
type Session interface {
	Page() Page
	Close() error
}

// Launcher starts a browser session for a profile.
type Launcher interface {
	Launch(ctx context.Context, profileID string) (Session, error)
}
