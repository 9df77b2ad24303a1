// Package discovery finds job postings for a keyword on the site's search page.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"jobmate/apply-service/internal/browser"
	"jobmate/apply-service/internal/model"
)

const (
	// overCollectFactor leaves room for postings the filter will drop.
	overCollectFactor = 3
	// defaultScrollDistance is about three viewport heights.
	defaultScrollDistance = 2700
)

// postingSelectors match posting links on current and legacy result layouts.
var postingSelectors = []string{
	`a[href*="/jobs/view/"]`,
	`a[data-control-name="job_card_result_link"]`,
	"a.result-card__full-card-link",
	"a.job-card-list__title",
}

// Searcher runs keyword searches on one page.
type Searcher struct {
	page           browser.Page
	baseURL        string
	scrollDistance int
	log            *slog.Logger
}

// New returns a Searcher for the site at baseURL.
func New(page browser.Page, baseURL string, log *slog.Logger) *Searcher {
	if log == nil {
		log = slog.Default()
	}
	return &Searcher{
		page:           page,
		baseURL:        strings.TrimRight(baseURL, "/"),
		scrollDistance: defaultScrollDistance,
		log:            log.With("component", "discovery"),
	}
}

// SearchURL builds the search page address for keyword.
func SearchURL(baseURL, keyword string) string {
	return strings.TrimRight(baseURL, "/") + "/jobs/search/?keywords=" + url.QueryEscape(strings.TrimSpace(keyword))
}

// Search returns up to overCollectFactor×requestedMax postings in page order,
// de-duplicated by normalized URL. Finding nothing is not an error.
func (s *Searcher) Search(ctx context.Context, keyword string, requestedMax int) ([]model.JobPosting, error) {
	limit := overCollectFactor * max(requestedMax, 1)

	if err := s.page.Navigate(ctx, SearchURL(s.baseURL, keyword)); err != nil {
		return nil, fmt.Errorf("open search page: %w", err)
	}
	s.page.ScrollToBottomBounded(ctx, s.scrollDistance)

	raw, err := s.page.CollectPostings(ctx, postingSelectors)
	if err != nil {
		return nil, fmt.Errorf("collect postings: %w", err)
	}

	postings := make([]model.JobPosting, 0, min(len(raw), limit))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		u := model.NormalizeURL(r.Href)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		postings = append(postings, model.JobPosting{
			URL:     u,
			Title:   firstLine(r.Text),
			Company: firstLine(r.Context),
		})
		if len(postings) == limit {
			break
		}
	}

	if len(postings) == 0 {
		s.log.Warn("no posting links found", "keyword", keyword)
		s.page.Snapshot(ctx, "no-job-links-found")
		return postings, nil
	}
	s.log.Info("postings discovered", "keyword", keyword, "count", len(postings), "links", len(raw))
	return postings, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
