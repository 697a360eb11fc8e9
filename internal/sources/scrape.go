package sources

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nexora/opportunity-agent/internal/fetch"
	"github.com/nexora/opportunity-agent/internal/parsing"
	"github.com/nexora/opportunity-agent/internal/types"
)

// fetchDocument retrieves a URL and parses it into a goquery document,
// translating failures into SourceUnavailableError.
func fetchDocument(ctx context.Context, source, url string, opts *fetch.Options) (*goquery.Document, error) {
	result, err := fetch.URL(ctx, url, opts)
	if err != nil {
		return nil, unavailable(source, "request failed", err)
	}
	doc, err := fetch.Document(result.Body)
	if err != nil {
		return nil, unavailable(source, "unparseable HTML", err)
	}
	return doc, nil
}

// absoluteURL resolves href against base when href is relative.
func absoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(href, "/")
}

// cardText extracts and cleans the text of the first node matching selector.
func cardText(card *goquery.Selection, selector string) string {
	return parsing.CleanText(card.Find(selector).First().Text())
}

// parseDeadline parses a date string as a deadline. Relative past forms are
// rejected; only concrete future dates count.
func parseDeadline(raw string) (time.Time, bool) {
	t, ok := parsing.ParseDate(raw)
	if !ok || t.Before(time.Now()) {
		return time.Time{}, false
	}
	return t, true
}

// finishListing fills the derived fields every scraped listing shares:
// extracted skills, parsed posted date, cleaned location and remote flag.
func finishListing(l types.RawListing, rawDate string) types.RawListing {
	l.Title = parsing.CleanText(l.Title)
	l.Company = parsing.CleanText(l.Company)
	l.Description = parsing.CleanText(l.Description)
	l.Remote = parsing.IsRemote(l.Location)
	l.Location = parsing.CleanLocation(l.Location)
	if len(l.Skills) == 0 {
		l.Skills = parsing.ExtractSkills(l.Title + " " + l.Description)
	}
	if l.PostedAt == nil {
		if t, ok := parsing.ParseDate(rawDate); ok {
			l.PostedAt = &t
		}
	}
	return l
}
