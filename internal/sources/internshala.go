package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nexora/opportunity-agent/internal/fetch"
	"github.com/nexora/opportunity-agent/internal/types"
)

const internshalaBaseURL = "https://internshala.com"

// InternshalaAdapter scrapes internship listings from Internshala.
type InternshalaAdapter struct {
	baseURL string
	opts    *fetch.Options
}

// NewInternshalaAdapter creates an Internshala scrape adapter.
func NewInternshalaAdapter(opts *fetch.Options) *InternshalaAdapter {
	return &InternshalaAdapter{baseURL: internshalaBaseURL, opts: opts}
}

func (a *InternshalaAdapter) Name() string                { return "internshala" }
func (a *InternshalaAdapter) Type() types.OpportunityType { return types.TypeInternship }

func (a *InternshalaAdapter) Fetch(ctx context.Context, q Query) ([]types.RawListing, error) {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(q.Keywords)), " ", "-")
	searchURL := fmt.Sprintf("%s/internships/%s-internship", a.baseURL, slug)
	if slug == "" {
		searchURL = fmt.Sprintf("%s/internships", a.baseURL)
	}

	doc, err := fetchDocument(ctx, a.Name(), searchURL, a.opts)
	if err != nil {
		return nil, err
	}

	var listings []types.RawListing
	doc.Find("div.internship_meta").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(listings) >= q.Limit {
			return false
		}
		title := cardText(card, "h3.job-internship-name, h4.profile")
		company := cardText(card, "h4.company_name, p.company-name")
		if title == "" || company == "" {
			return true
		}
		href, _ := card.Find("a[href]").First().Attr("href")
		l := types.RawListing{
			Title:       title,
			Company:     company,
			Description: cardText(card, "div.internship_other_details"),
			Location:    cardText(card, "div.locations, span.location_link"),
			SalaryRange: cardText(card, "span.stipend"),
			Type:        types.TypeInternship,
			URL:         absoluteURL(a.baseURL, href),
			Source:      a.Name(),
		}
		listings = append(listings, finishListing(l, cardText(card, "div.status-success span, div.posted_by_container")))
		return true
	})

	return listings, nil
}
