package sources

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/nexora/opportunity-agent/internal/fetch"
	"github.com/nexora/opportunity-agent/internal/types"
)

const eventbriteSearchURL = "https://www.eventbrite.com/d/online/hackathon"

// EventbriteScrapeAdapter scrapes Eventbrite search pages. It is the
// tokenless fallback variant of the Eventbrite API adapter.
type EventbriteScrapeAdapter struct {
	searchURL string
	opts      *fetch.Options
}

// NewEventbriteScrapeAdapter creates a scrape-based Eventbrite adapter.
func NewEventbriteScrapeAdapter(opts *fetch.Options) *EventbriteScrapeAdapter {
	return &EventbriteScrapeAdapter{searchURL: eventbriteSearchURL, opts: opts}
}

func (a *EventbriteScrapeAdapter) Name() string                { return "eventbrite" }
func (a *EventbriteScrapeAdapter) Type() types.OpportunityType { return types.TypeHackathon }

func (a *EventbriteScrapeAdapter) Fetch(ctx context.Context, q Query) ([]types.RawListing, error) {
	doc, err := fetchDocument(ctx, a.Name(), a.searchURL, a.opts)
	if err != nil {
		return nil, err
	}

	var listings []types.RawListing
	doc.Find("div.search-event-card-wrapper").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(listings) >= q.Limit {
			return false
		}
		title := cardText(card, "h3.event-card__title")
		if title == "" {
			return true
		}
		organizer := cardText(card, "div.event-card__organizer")
		if organizer == "" {
			organizer = "Eventbrite"
		}
		href, _ := card.Find("a[href]").First().Attr("href")
		description := cardText(card, "div.event-card__description")
		if price := cardText(card, "div.event-card__price"); price != "" {
			description = fmt.Sprintf("%s Entry: %s", description, price)
		}
		l := types.RawListing{
			Title:       title,
			Company:     organizer,
			Description: description,
			Location:    cardText(card, "div.event-card__location"),
			Type:        types.TypeHackathon,
			URL:         href,
			Source:      a.Name(),
		}
		listing := finishListing(l, cardText(card, "div.event-card__date"))
		if t, ok := parseDeadline(cardText(card, "div.event-card__date")); ok {
			listing.Deadline = &t
		}
		listings = append(listings, listing)
		return true
	})

	return listings, nil
}
