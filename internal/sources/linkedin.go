package sources

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nexora/opportunity-agent/internal/fetch"
	"github.com/nexora/opportunity-agent/internal/types"
)

const linkedinBaseURL = "https://www.linkedin.com/jobs"

// LinkedInAdapter scrapes job listings from LinkedIn search pages. The
// results render client-side, so pages are fetched through a headless
// browser rather than plain HTTP.
type LinkedInAdapter struct {
	baseURL string
	timeout time.Duration
	verbose bool
}

// NewLinkedInAdapter creates a browser-backed LinkedIn adapter.
func NewLinkedInAdapter(timeout time.Duration, verbose bool) *LinkedInAdapter {
	if timeout <= 0 {
		timeout = fetch.DefaultTimeout
	}
	return &LinkedInAdapter{baseURL: linkedinBaseURL, timeout: timeout, verbose: verbose}
}

func (a *LinkedInAdapter) Name() string                { return "linkedin" }
func (a *LinkedInAdapter) Type() types.OpportunityType { return types.TypeJob }

func (a *LinkedInAdapter) Fetch(ctx context.Context, q Query) ([]types.RawListing, error) {
	params := url.Values{}
	params.Set("keywords", q.Keywords)
	params.Set("location", q.Location)
	params.Set("sortBy", "DD")
	params.Set("f_TPR", "r604800")
	searchURL := fmt.Sprintf("%s/search?%s", a.baseURL, params.Encode())

	html, err := fetch.WithBrowser(ctx, searchURL, a.timeout, a.verbose)
	if err != nil {
		return nil, &SourceUnavailableError{
			Source:    a.Name(),
			Message:   "browser rendering failed",
			Retryable: true,
			Cause:     err,
		}
	}

	doc, err := fetch.Document(html)
	if err != nil {
		return nil, unavailable(a.Name(), "unparseable HTML", err)
	}

	var listings []types.RawListing
	doc.Find("li.jobs-search-results__list-item, div.base-card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(listings) >= q.Limit {
			return false
		}
		title := cardText(card, "h3.base-search-card__title, a.job-card-list__title")
		company := cardText(card, "h4.base-search-card__subtitle, a.job-card-container__company-name")
		if title == "" || company == "" {
			return true
		}
		href, _ := card.Find("a.base-card__full-link, a[href]").First().Attr("href")
		l := types.RawListing{
			Title:    title,
			Company:  company,
			Location: cardText(card, "span.job-search-card__location"),
			Type:     types.TypeJob,
			URL:      href,
			Source:   a.Name(),
		}
		listings = append(listings, finishListing(l, cardText(card, "time")))
		return true
	})

	return listings, nil
}
