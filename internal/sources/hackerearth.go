package sources

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nexora/opportunity-agent/internal/fetch"
	"github.com/nexora/opportunity-agent/internal/types"
)

const hackerearthChallengesURL = "https://www.hackerearth.com/challenges/hackathon/"

// HackerEarthAdapter scrapes hackathon listings from the HackerEarth
// challenges page through a headless browser.
type HackerEarthAdapter struct {
	pageURL string
	timeout time.Duration
	verbose bool
}

// NewHackerEarthAdapter creates a browser-backed HackerEarth adapter.
func NewHackerEarthAdapter(timeout time.Duration, verbose bool) *HackerEarthAdapter {
	if timeout <= 0 {
		timeout = fetch.DefaultTimeout
	}
	return &HackerEarthAdapter{pageURL: hackerearthChallengesURL, timeout: timeout, verbose: verbose}
}

func (a *HackerEarthAdapter) Name() string                { return "hackerearth" }
func (a *HackerEarthAdapter) Type() types.OpportunityType { return types.TypeHackathon }

func (a *HackerEarthAdapter) Fetch(ctx context.Context, q Query) ([]types.RawListing, error) {
	html, err := fetch.WithBrowser(ctx, a.pageURL, a.timeout, a.verbose)
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
	doc.Find("div.challenge-card-modern").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(listings) >= q.Limit {
			return false
		}
		title := cardText(card, "span.challenge-list-title")
		if title == "" {
			return true
		}
		href, _ := card.Find("a.challenge-card-wrapper, a[href]").First().Attr("href")
		l := types.RawListing{
			Title:       title,
			Company:     "HackerEarth",
			Description: cardText(card, "div.challenge-desc"),
			Location:    "Remote",
			Type:        types.TypeHackathon,
			URL:         absoluteURL("https://www.hackerearth.com", href),
			Source:      a.Name(),
		}
		listing := finishListing(l, "")
		if t, ok := parseDeadline(cardText(card, "div.challenge-list-meta div.date")); ok {
			listing.Deadline = &t
		}
		listings = append(listings, listing)
		return true
	})

	return listings, nil
}
