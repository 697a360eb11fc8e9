package sources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/nexora/opportunity-agent/internal/fetch"
	"github.com/nexora/opportunity-agent/internal/types"
)

const (
	indeedBaseURL  = "https://www.indeed.com"
	indeedMaxPages = 10
	indeedPageSize = 10
)

// IndeedAdapter scrapes job listings from Indeed search result pages.
type IndeedAdapter struct {
	baseURL string
	opts    *fetch.Options
}

// NewIndeedAdapter creates an Indeed scrape adapter.
func NewIndeedAdapter(opts *fetch.Options) *IndeedAdapter {
	return &IndeedAdapter{baseURL: indeedBaseURL, opts: opts}
}

func (a *IndeedAdapter) Name() string                { return "indeed" }
func (a *IndeedAdapter) Type() types.OpportunityType { return types.TypeJob }

// Fetch walks paginated search results until limit listings are collected
// or the result pages run out.
func (a *IndeedAdapter) Fetch(ctx context.Context, q Query) ([]types.RawListing, error) {
	params := url.Values{}
	params.Set("q", q.Keywords)
	params.Set("l", q.Location)
	params.Set("sort", "date")
	params.Set("fromage", "7")
	searchURL := fmt.Sprintf("%s/jobs?%s", a.baseURL, params.Encode())

	var listings []types.RawListing
	for page := 0; len(listings) < q.Limit && page < indeedMaxPages; page++ {
		pageURL := fmt.Sprintf("%s&start=%d", searchURL, page*indeedPageSize)
		doc, err := fetchDocument(ctx, a.Name(), pageURL, a.opts)
		if err != nil {
			if page > 0 {
				break // keep what earlier pages yielded
			}
			return nil, err
		}

		cards := doc.Find("div[data-jk]")
		if cards.Length() == 0 {
			break
		}
		cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
			if len(listings) >= q.Limit {
				return false
			}
			if l, ok := a.parseCard(card); ok {
				listings = append(listings, l)
			}
			return true
		})
	}

	return listings, nil
}

func (a *IndeedAdapter) parseCard(card *goquery.Selection) (types.RawListing, bool) {
	title := cardText(card, "h2.jobTitle")
	company := cardText(card, "span.companyName")
	if title == "" || company == "" {
		return types.RawListing{}, false
	}

	href, _ := card.Find("h2.jobTitle a").First().Attr("href")
	l := types.RawListing{
		Title:       title,
		Company:     company,
		Description: cardText(card, "div.job-snippet"),
		Location:    cardText(card, "div.companyLocation"),
		SalaryRange: cardText(card, "div.salary-snippet"),
		Type:        types.TypeJob,
		URL:         absoluteURL(a.baseURL, href),
		Source:      a.Name(),
	}
	return finishListing(l, cardText(card, "span.date")), true
}
