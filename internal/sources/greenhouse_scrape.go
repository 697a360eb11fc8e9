package sources

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/nexora/opportunity-agent/internal/fetch"
	"github.com/nexora/opportunity-agent/internal/types"
)

const greenhouseBoardsURL = "https://boards.greenhouse.io"

// GreenhouseScrapeAdapter scrapes public Greenhouse board pages directly.
// It serves as the fallback variant when the boards API is unreachable.
type GreenhouseScrapeAdapter struct {
	baseURL string
	boards  []string
	opts    *fetch.Options
}

// NewGreenhouseScrapeAdapter creates a scrape-based Greenhouse adapter.
func NewGreenhouseScrapeAdapter(boards []string, opts *fetch.Options) *GreenhouseScrapeAdapter {
	return &GreenhouseScrapeAdapter{baseURL: greenhouseBoardsURL, boards: boards, opts: opts}
}

func (a *GreenhouseScrapeAdapter) Name() string                { return "greenhouse" }
func (a *GreenhouseScrapeAdapter) Type() types.OpportunityType { return types.TypeJob }

func (a *GreenhouseScrapeAdapter) Fetch(ctx context.Context, q Query) ([]types.RawListing, error) {
	if len(a.boards) == 0 {
		return nil, &SourceUnavailableError{Source: a.Name(), Message: "no board tokens configured"}
	}

	var listings []types.RawListing
	var lastErr error

	for _, board := range a.boards {
		if len(listings) >= q.Limit {
			break
		}

		boardURL := fmt.Sprintf("%s/%s", a.baseURL, board)
		doc, err := fetchDocument(ctx, a.Name(), boardURL, a.opts)
		if err != nil {
			lastErr = err
			continue
		}

		company := boardCompanyName(board)
		doc.Find("div.opening").EachWithBreak(func(_ int, card *goquery.Selection) bool {
			if len(listings) >= q.Limit {
				return false
			}
			title := cardText(card, "a")
			if title == "" {
				return true
			}
			href, _ := card.Find("a[href]").First().Attr("href")
			l := types.RawListing{
				Title:    title,
				Company:  company,
				Location: cardText(card, "span.location"),
				Type:     types.TypeJob,
				URL:      absoluteURL(a.baseURL, href),
				Source:   a.Name(),
			}
			listings = append(listings, finishListing(l, ""))
			return true
		})
	}

	if len(listings) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return listings, nil
}
