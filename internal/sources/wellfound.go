package sources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/nexora/opportunity-agent/internal/fetch"
	"github.com/nexora/opportunity-agent/internal/types"
)

const wellfoundBaseURL = "https://wellfound.com"

// WellfoundAdapter scrapes startup job listings from Wellfound.
type WellfoundAdapter struct {
	baseURL string
	opts    *fetch.Options
}

// NewWellfoundAdapter creates a Wellfound scrape adapter.
func NewWellfoundAdapter(opts *fetch.Options) *WellfoundAdapter {
	return &WellfoundAdapter{baseURL: wellfoundBaseURL, opts: opts}
}

func (a *WellfoundAdapter) Name() string                { return "wellfound" }
func (a *WellfoundAdapter) Type() types.OpportunityType { return types.TypeJob }

func (a *WellfoundAdapter) Fetch(ctx context.Context, q Query) ([]types.RawListing, error) {
	params := url.Values{}
	params.Set("q", q.Keywords)
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	searchURL := fmt.Sprintf("%s/jobs?%s", a.baseURL, params.Encode())

	doc, err := fetchDocument(ctx, a.Name(), searchURL, a.opts)
	if err != nil {
		return nil, err
	}

	var listings []types.RawListing
	doc.Find("div.job-card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(listings) >= q.Limit {
			return false
		}
		title := cardText(card, "h3.job-title")
		company := cardText(card, "div.company-name")
		if title == "" || company == "" {
			return true
		}
		href, _ := card.Find("a[href]").First().Attr("href")
		l := types.RawListing{
			Title:       title,
			Company:     company,
			Description: cardText(card, "div.job-description"),
			Location:    cardText(card, "div.job-location"),
			SalaryRange: cardText(card, "div.salary"),
			Type:        types.TypeJob,
			URL:         absoluteURL(a.baseURL, href),
			Source:      a.Name(),
		}
		listings = append(listings, finishListing(l, cardText(card, "time")))
		return true
	})

	return listings, nil
}
