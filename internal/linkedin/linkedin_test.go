package linkedin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/driver/static"
	"github.com/spigell/easy-applier/internal/jobs"
)

type card struct {
	id, title, company, state string
}

func resultsPage(cards ...card) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="scaffold-layout__list"><div><ul>`)
	for _, c := range cards {
		fmt.Fprintf(&b, `<li class="scaffold-layout__list-item">
<a class="job-card-list__title--link" href="/jobs/view/%s/?refId=abc"><span><strong>%s</strong></span></a>
<div class="artdeco-entity-lockup__subtitle"><span>%s</span></div>
<ul class="job-card-list__footer-wrapper"><li>%s</li></ul>
</li>`, c.id, c.title, c.company, c.state)
	}
	// promoted placeholder without a link
	b.WriteString(`<li class="scaffold-layout__list-item"><div>Promoted</div></li>`)
	b.WriteString(`</ul></div></div>
<div id="job-details">
  <p>We build
  payment systems.</p>

  <p>Go and   Kubernetes</p>
</div>
</body></html>`)
	return b.String()
}

const noResultsPage = `<html><body><div><img class="jobs-search-no-results-banner__image"></div></body></html>`

func newSite(t *testing.T) (*Site, *static.Driver) {
	t.Helper()
	d, err := static.New("<html></html>")
	if err != nil {
		t.Fatalf("new driver: %v", err)
	}
	opts := DefaultOptions()
	opts.CardDelay = 0
	return New(d, opts, zap.NewNop()), d
}

func TestBuildSearchURL(t *testing.T) {
	search := Search{
		ExperienceLevels: []string{"mid_senior_level", "associate", "unknown"},
		WorkTypes:        []string{"remote", "hybrid"},
		DatePosted:       "week",
		Distance:         25,
	}

	tests := []struct {
		name   string
		page   int
		expect map[string]string
	}{
		{
			name: "first page has no offset",
			page: 0,
			expect: map[string]string{
				"keywords": "Go Engineer",
				"location": "Berlin, Germany",
				"f_E":      "4,3",
				"f_WT":     "2,3",
				"f_TPR":    "r604800",
				"f_AL":     "true",
				"f_VJ":     "true",
				"sortBy":   "DD",
				"distance": "25",
				"start":    "",
			},
		},
		{
			name:   "later pages are offset by page size",
			page:   2,
			expect: map[string]string{"start": "50"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := BuildSearchURL(search, "Go Engineer", "Berlin, Germany", tt.page)
			if !strings.HasPrefix(raw, SearchURL+"?") {
				t.Fatalf("unexpected base: %s", raw)
			}
			u, err := url.Parse(raw)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			q := u.Query()
			for k, v := range tt.expect {
				if got := q.Get(k); got != v {
					t.Fatalf("%s: expected %q, got %q", k, v, got)
				}
			}
		})
	}
}

func TestBuildSearchURLAllTime(t *testing.T) {
	u, _ := url.Parse(BuildSearchURL(Search{DatePosted: "all_time"}, "SRE", "Remote", 0))
	if got := u.Query().Get("f_TPR"); got != "" {
		t.Fatalf("expected no date filter, got %q", got)
	}
}

func TestPostingID(t *testing.T) {
	tests := []struct {
		href   string
		expect string
		err    bool
	}{
		{href: "/jobs/view/4012345678/?refId=x", expect: "4012345678"},
		{href: "https://www.linkedin.com/jobs/view/42", expect: "42"},
		{href: "/jobs/collections/recommended/", err: true},
		{href: "", err: true},
	}
	for _, tt := range tests {
		got, err := PostingID(tt.href)
		if tt.err {
			if err == nil {
				t.Fatalf("%q: expected an error, got %q", tt.href, got)
			}
			continue
		}
		if err != nil || got != tt.expect {
			t.Fatalf("%q: expected %q, got %q (%v)", tt.href, tt.expect, got, err)
		}
	}
}

func TestExtractPostings(t *testing.T) {
	site, d := newSite(t)
	if err := d.Load(resultsPage(
		card{id: "1", title: "Senior Go Engineer", company: "Acme", state: "Viewed"},
		card{id: "2", title: "Platform Engineer", company: "Globex", state: "Promoted"},
	)); err != nil {
		t.Fatalf("load: %v", err)
	}

	postings, err := site.ExtractPostings(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}

	first := postings[0]
	if first.ID != "1" || first.Title != "Senior Go Engineer" || first.Company != "Acme" {
		t.Fatalf("unexpected posting: %+v", first)
	}
	if first.PriorState != jobs.StateViewed {
		t.Fatalf("expected Viewed, got %s", first.PriorState)
	}
	if postings[1].PriorState != jobs.StateNew {
		t.Fatalf("unknown state text must map to New, got %s", postings[1].PriorState)
	}
	if first.Description != "We build\npayment systems.\nGo and Kubernetes" {
		t.Fatalf("unexpected description: %q", first.Description)
	}

	if clicks := d.ActionsOf(static.ActionClick); len(clicks) != 2 {
		t.Fatalf("expected every linked card to be opened, got %d clicks", len(clicks))
	}
}

func TestSearchPaginatesAndDeduplicates(t *testing.T) {
	site, d := newSite(t)

	search := Search{
		Positions: []string{"Go Engineer"},
		Locations: []string{"Berlin", "Belgrade"},
		MaxPages:  5,
	}
	d.AddPage(BuildSearchURL(search, "Go Engineer", "Berlin", 0), resultsPage(
		card{id: "1", title: "Go Engineer", company: "Acme", state: "New"},
		card{id: "2", title: "Backend Engineer", company: "Globex", state: "Applied"},
	))
	d.AddPage(BuildSearchURL(search, "Go Engineer", "Berlin", 1), resultsPage(
		card{id: "2", title: "Backend Engineer", company: "Globex", state: "Applied"},
		card{id: "3", title: "SRE", company: "Initech", state: "New"},
	))
	d.AddPage(BuildSearchURL(search, "Go Engineer", "Berlin", 2), noResultsPage)
	d.AddPage(BuildSearchURL(search, "Go Engineer", "Belgrade", 0), noResultsPage)

	postings, err := site.Search(context.Background(), search)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := strings.Join(postings.IDs(), ","); got != "1,2,3" {
		t.Fatalf("unexpected postings: %s", got)
	}
	if navs := d.ActionsOf(static.ActionNavigate); len(navs) != 4 {
		t.Fatalf("expected 4 result pages, got %d", len(navs))
	}
}

func TestSearchStopsAtMaxPages(t *testing.T) {
	site, d := newSite(t)

	search := Search{Positions: []string{"SRE"}, Locations: []string{"Remote"}, MaxPages: 1}
	d.AddPage(BuildSearchURL(search, "SRE", "Remote", 0), resultsPage(card{id: "9", title: "SRE", company: "Hooli", state: "New"}))

	postings, err := site.Search(context.Background(), search)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if postings.Len() != 1 {
		t.Fatalf("expected 1 posting, got %d", postings.Len())
	}
}

func TestSearchReportsMissingPage(t *testing.T) {
	site, _ := newSite(t)

	_, err := site.Search(context.Background(), Search{Positions: []string{"SRE"}, Locations: []string{"Remote"}, MaxPages: 1})
	if err == nil || !strings.Contains(err.Error(), `search "SRE" in "Remote", page 1`) {
		t.Fatalf("expected a search error, got %v", err)
	}
}

func TestValidateSession(t *testing.T) {
	t.Run("redirect to feed", func(t *testing.T) {
		site, d := newSite(t)
		d.AddRedirect(LoginURL, FeedURL+"/")
		d.AddPage(FeedURL+"/", "<html><body>feed</body></html>")

		if err := site.ValidateSession(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := site.WaitForLogin(context.Background(), 0); err != nil {
			t.Fatalf("already on the feed: %v", err)
		}
	})

	t.Run("login form", func(t *testing.T) {
		site, d := newSite(t)
		d.AddPage(LoginURL, "<html><body><form id=login></form></body></html>")

		if err := site.ValidateSession(context.Background()); !errors.Is(err, ErrNotLoggedIn) {
			t.Fatalf("expected ErrNotLoggedIn, got %v", err)
		}
	})
}

func TestWaitForLoginHonoursCancellation(t *testing.T) {
	site, d := newSite(t)
	d.AddPage(LoginURL, "<html></html>")
	if err := d.Navigate(context.Background(), LoginURL); err != nil {
		t.Fatalf("navigate: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := site.WaitForLogin(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOpenEasyApply(t *testing.T) {
	site, d := newSite(t)
	d.AddPage(JobURL+"42", `<html><body><div class="scaffold-layout__inner"><button class="jobs-apply-button">Easy Apply</button></div></body></html>`)
	d.AddPage(JobURL+"43", `<html><body><div class="scaffold-layout__inner"><a>Apply on company website</a></div></body></html>`)

	if err := site.OpenEasyApply(context.Background(), "42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clicks := d.ActionsOf(static.ActionClick); len(clicks) != 1 {
		t.Fatalf("expected the easy apply click, got %+v", clicks)
	}

	if err := site.OpenEasyApply(context.Background(), "43"); err == nil {
		t.Fatalf("expected an error for a posting without easy apply")
	}
}
