package sources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/nexora/opportunity-agent/internal/fetch"
	"github.com/nexora/opportunity-agent/internal/types"
)

const unstopBaseURL = "https://unstop.com"

// UnstopAdapter scrapes hackathon listings from Unstop.
type UnstopAdapter struct {
	baseURL string
	opts    *fetch.Options
}

// NewUnstopAdapter creates an Unstop scrape adapter.
func NewUnstopAdapter(opts *fetch.Options) *UnstopAdapter {
	return &UnstopAdapter{baseURL: unstopBaseURL, opts: opts}
}

func (a *UnstopAdapter) Name() string                { return "unstop" }
func (a *UnstopAdapter) Type() types.OpportunityType { return types.TypeHackathon }

func (a *UnstopAdapter) Fetch(ctx context.Context, q Query) ([]types.RawListing, error) {
	params := url.Values{}
	if q.Keywords != "" {
		params.Set("searchTerm", q.Keywords)
	}
	searchURL := fmt.Sprintf("%s/hackathons?%s", a.baseURL, params.Encode())

	doc, err := fetchDocument(ctx, a.Name(), searchURL, a.opts)
	if err != nil {
		return nil, err
	}

	var listings []types.RawListing
	doc.Find("div.hackathon-card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(listings) >= q.Limit {
			return false
		}
		title := cardText(card, "h3.hackathon-title")
		organizer := cardText(card, "div.hackathon-organizer")
		if title == "" {
			return true
		}
		if organizer == "" {
			organizer = "Unstop"
		}
		href, _ := card.Find("a[href]").First().Attr("href")
		description := cardText(card, "div.hackathon-description")
		if prize := cardText(card, "div.hackathon-prize"); prize != "" {
			description = fmt.Sprintf("%s Prize: %s", description, prize)
		}
		l := types.RawListing{
			Title:       title,
			Company:     organizer,
			Description: description,
			Location:    cardText(card, "div.hackathon-location"),
			Type:        types.TypeHackathon,
			URL:         absoluteURL(a.baseURL, href),
			Source:      a.Name(),
		}
		listing := finishListing(l, cardText(card, "div.hackathon-date"))
		if t, ok := parseDeadline(cardText(card, "div.hackathon-date")); ok {
			listing.Deadline = &t
		}
		listings = append(listings, listing)
		return true
	})

	return listings, nil
}
