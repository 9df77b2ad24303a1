package discovery_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/apply-service/internal/browser/fakepage"
	"jobmate/apply-service/internal/discovery"
)

const base = "https://jobs.example.test"

func postings(n int) []fakepage.Posting {
	out := make([]fakepage.Posting, n)
	for i := range out {
		out[i] = fakepage.Posting{
			URL:     fmt.Sprintf("%s/jobs/view/%d/", base, 1000+i),
			Title:   fmt.Sprintf("Engineer %d\nPromoted", i),
			Company: fmt.Sprintf("Company %d", i),
		}
	}
	return out
}

func TestSearchURL_EscapesKeyword(t *testing.T) {
	assert.Equal(t, base+"/jobs/search/?keywords=go+developer%2Fbackend",
		discovery.SearchURL(base+"/", "  go developer/backend "))
}

func TestSearch_DeduplicatesAndNormalizes(t *testing.T) {
	site := &fakepage.Site{BaseURL: base, Postings: postings(3), DuplicateLinks: true}
	page := fakepage.New(site)

	got, err := discovery.New(page, base, nil).Search(context.Background(), "golang", 5)
	require.NoError(t, err)

	require.Len(t, got, 3)
	for i, p := range got {
		assert.Equal(t, fmt.Sprintf("%s/jobs/view/%d", base, 1000+i), p.URL)
		assert.Equal(t, fmt.Sprintf("Engineer %d", i), p.Title)
		assert.Equal(t, fmt.Sprintf("Company %d", i), p.Company)
	}
	assert.Positive(t, page.Scrolled)
}

func TestSearch_CapsAtOverCollectFactor(t *testing.T) {
	site := &fakepage.Site{BaseURL: base, Postings: postings(20)}

	got, err := discovery.New(fakepage.New(site), base, nil).Search(context.Background(), "golang", 2)
	require.NoError(t, err)
	assert.Len(t, got, 6)
	assert.Equal(t, base+"/jobs/view/1000", got[0].URL, "discovery order is kept")
}

func TestSearch_NoResultsIsEmptyNotError(t *testing.T) {
	page := fakepage.New(&fakepage.Site{BaseURL: base})

	got, err := discovery.New(page, base, nil).Search(context.Background(), "cobol", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, []string{"no-job-links-found"}, page.Snapshots)
}

func TestSearch_CollectError(t *testing.T) {
	boom := errors.New("execution context was destroyed")
	page := fakepage.New(&fakepage.Site{BaseURL: base, SearchErr: boom})

	_, err := discovery.New(page, base, nil).Search(context.Background(), "golang", 5)
	require.ErrorIs(t, err, boom)
}
