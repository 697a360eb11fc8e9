package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nexora/opportunity-agent/internal/fetch"
	"github.com/nexora/opportunity-agent/internal/parsing"
	"github.com/nexora/opportunity-agent/internal/types"
)

const eventbriteAPIBase = "https://www.eventbriteapi.com/v3"

// hackathonMarkers identify hackathon-flavored events among general
// Eventbrite search results.
var hackathonMarkers = []string{"hackathon", "hack day", "codefest", "code sprint", "datathon"}

// EventbriteAdapter fetches hackathon events from the Eventbrite API.
type EventbriteAdapter struct {
	apiBase string
	token   string
	opts    *fetch.Options
}

// NewEventbriteAdapter creates an Eventbrite API adapter using a private
// API token.
func NewEventbriteAdapter(token string, opts *fetch.Options) *EventbriteAdapter {
	return &EventbriteAdapter{apiBase: eventbriteAPIBase, token: token, opts: opts}
}

func (a *EventbriteAdapter) Name() string                { return "eventbrite" }
func (a *EventbriteAdapter) Type() types.OpportunityType { return types.TypeHackathon }

type eventbriteEvent struct {
	Name struct {
		Text string `json:"text"`
	} `json:"name"`
	Description struct {
		Text string `json:"text"`
	} `json:"description"`
	URL   string `json:"url"`
	Start struct {
		UTC string `json:"utc"`
	} `json:"start"`
	End struct {
		UTC string `json:"utc"`
	} `json:"end"`
	OnlineEvent bool `json:"online_event"`
	Venue       *struct {
		Address struct {
			City   string `json:"city"`
			Region string `json:"region"`
		} `json:"address"`
	} `json:"venue"`
	Organizer *struct {
		Name string `json:"name"`
	} `json:"organizer"`
}

type eventbriteResponse struct {
	Events []eventbriteEvent `json:"events"`
}

func (a *EventbriteAdapter) Fetch(ctx context.Context, q Query) ([]types.RawListing, error) {
	if a.token == "" {
		return nil, &SourceUnavailableError{Source: a.Name(), Message: "no API token configured"}
	}

	opts := a.requestOptions()
	url := fmt.Sprintf("%s/events/search/?q=hackathon&expand=venue,organizer&sort_by=date", a.apiBase)

	var payload eventbriteResponse
	if err := fetch.JSON(ctx, url, opts, &payload); err != nil {
		// The search endpoint is gated on some plans; the caller's own
		// events remain available.
		fallback := fmt.Sprintf("%s/users/me/events/?expand=venue,organizer", a.apiBase)
		if ferr := fetch.JSON(ctx, fallback, opts, &payload); ferr != nil {
			return nil, unavailable(a.Name(), "request failed", err)
		}
	}

	var listings []types.RawListing
	for _, event := range payload.Events {
		if len(listings) >= q.Limit {
			break
		}
		if !isHackathonEvent(event) {
			continue
		}
		listings = append(listings, a.toListing(event))
	}
	return listings, nil
}

func (a *EventbriteAdapter) requestOptions() *fetch.Options {
	opts := a.opts
	if opts == nil {
		opts = fetch.DefaultOptions()
	}
	headers := map[string]string{"Authorization": "Bearer " + a.token}
	for k, v := range opts.Headers {
		headers[k] = v
	}
	return &fetch.Options{
		Timeout:   opts.Timeout,
		UserAgent: opts.UserAgent,
		Headers:   headers,
	}
}

func (a *EventbriteAdapter) toListing(event eventbriteEvent) types.RawListing {
	organizer := "Eventbrite"
	if event.Organizer != nil && event.Organizer.Name != "" {
		organizer = event.Organizer.Name
	}

	location := ""
	if event.OnlineEvent {
		location = "Remote"
	} else if event.Venue != nil {
		location = strings.TrimSuffix(strings.TrimSpace(event.Venue.Address.City+", "+event.Venue.Address.Region), ",")
	}

	l := types.RawListing{
		Title:       parsing.CleanText(event.Name.Text),
		Company:     organizer,
		Description: parsing.Truncate(parsing.CleanText(event.Description.Text), 2000),
		Location:    location,
		Type:        types.TypeHackathon,
		URL:         event.URL,
		Source:      a.Name(),
	}
	if t, err := time.Parse(time.RFC3339, event.Start.UTC); err == nil {
		l.PostedAt = &t
	}
	if t, err := time.Parse(time.RFC3339, event.End.UTC); err == nil {
		l.Deadline = &t
	}
	return finishListing(l, "")
}

func isHackathonEvent(event eventbriteEvent) bool {
	text := strings.ToLower(event.Name.Text + " " + event.Description.Text)
	for _, marker := range hackathonMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
