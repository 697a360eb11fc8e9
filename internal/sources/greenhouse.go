package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/nexora/opportunity-agent/internal/fetch"
	"github.com/nexora/opportunity-agent/internal/parsing"
	"github.com/nexora/opportunity-agent/internal/types"
)

const greenhouseAPIBase = "https://boards-api.greenhouse.io/v1/boards"

// GreenhouseAdapter fetches job listings from the public Greenhouse boards
// API for a configured set of company board tokens.
type GreenhouseAdapter struct {
	apiBase string
	boards  []string
	opts    *fetch.Options
}

// NewGreenhouseAdapter creates a Greenhouse API adapter. boards are the
// company board tokens to query, e.g. "stripe".
func NewGreenhouseAdapter(boards []string, opts *fetch.Options) *GreenhouseAdapter {
	return &GreenhouseAdapter{apiBase: greenhouseAPIBase, boards: boards, opts: opts}
}

func (a *GreenhouseAdapter) Name() string                { return "greenhouse" }
func (a *GreenhouseAdapter) Type() types.OpportunityType { return types.TypeJob }

type greenhouseJob struct {
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	Content     string `json:"content"`
	UpdatedAt   string `json:"updated_at"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
}

type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

func (a *GreenhouseAdapter) Fetch(ctx context.Context, q Query) ([]types.RawListing, error) {
	if len(a.boards) == 0 {
		return nil, &SourceUnavailableError{Source: a.Name(), Message: "no board tokens configured"}
	}

	keywords := strings.ToLower(q.Keywords)
	var listings []types.RawListing
	var lastErr error

	for _, board := range a.boards {
		if len(listings) >= q.Limit {
			break
		}

		url := fmt.Sprintf("%s/%s/jobs?content=true", a.apiBase, board)
		var payload greenhouseResponse
		if err := fetch.JSON(ctx, url, a.opts, &payload); err != nil {
			lastErr = unavailable(a.Name(), fmt.Sprintf("board %s request failed", board), err)
			continue
		}

		for _, job := range payload.Jobs {
			if len(listings) >= q.Limit {
				break
			}
			if keywords != "" && !strings.Contains(strings.ToLower(job.Title+" "+job.Content), keywords) {
				continue
			}
			l := types.RawListing{
				Title:       job.Title,
				Company:     boardCompanyName(board),
				Description: parsing.Truncate(htmlToText(job.Content), 2000),
				Location:    job.Location.Name,
				Type:        types.TypeJob,
				URL:         job.AbsoluteURL,
				Source:      a.Name(),
			}
			listings = append(listings, finishListing(l, job.UpdatedAt))
		}
	}

	// All boards failing is a source failure; partial failure is not.
	if len(listings) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return listings, nil
}

// boardCompanyName turns a board token like "acme-corp" into "Acme Corp".
func boardCompanyName(board string) string {
	words := strings.Split(strings.ReplaceAll(board, "-", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// htmlToText strips markup from Greenhouse job content, which arrives as
// HTML-encoded rich text.
func htmlToText(html string) string {
	text, err := fetch.ExtractMainText(html, nil)
	if err != nil {
		return parsing.CleanText(html)
	}
	return parsing.CleanText(text)
}
