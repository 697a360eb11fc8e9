package sources

import (
	"fmt"
	"time"

	"github.com/nexora/opportunity-agent/internal/fetch"
)

// Mode selects how a source is accessed. Sources with both a scrape and an
// API variant honor a per-source override; the rest have one fixed mode.
type Mode string

const (
	// ModeScrape fetches and parses board HTML over plain HTTP.
	ModeScrape Mode = "scrape"
	// ModeBrowser renders the page in a headless browser before parsing.
	ModeBrowser Mode = "browser"
	// ModeAPI calls the vendor's JSON API.
	ModeAPI Mode = "api"
)

// Settings configures which adapters the registry builds and how.
type Settings struct {
	// Enabled lists the source names to build. Unknown names are an error.
	Enabled []string
	// Modes overrides the access mode per source, for sources that
	// support more than one.
	Modes map[string]Mode

	GreenhouseBoards []string
	EventbriteToken  string

	HTTPTimeout    time.Duration
	BrowserTimeout time.Duration
	Verbose        bool
}

// AdapterSet pairs a primary adapter with an optional secondary variant
// for the same source. The orchestrator falls back to the secondary when
// the primary fails all its retries.
type AdapterSet struct {
	Primary   Adapter
	Secondary Adapter
}

// Build constructs the adapter sets for the enabled sources.
func Build(s Settings) ([]AdapterSet, error) {
	opts := fetch.DefaultOptions()
	if s.HTTPTimeout > 0 {
		opts.Timeout = s.HTTPTimeout
	}

	var sets []AdapterSet
	for _, name := range s.Enabled {
		set, err := buildSource(name, s, opts)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func buildSource(name string, s Settings, opts *fetch.Options) (AdapterSet, error) {
	mode := s.Modes[name]

	switch name {
	case "indeed":
		return AdapterSet{Primary: NewIndeedAdapter(opts)}, nil
	case "wellfound":
		return AdapterSet{Primary: NewWellfoundAdapter(opts)}, nil
	case "internshala":
		return AdapterSet{Primary: NewInternshalaAdapter(opts)}, nil
	case "unstop":
		return AdapterSet{Primary: NewUnstopAdapter(opts)}, nil
	case "linkedin":
		return AdapterSet{Primary: NewLinkedInAdapter(s.BrowserTimeout, s.Verbose)}, nil
	case "hackerearth":
		return AdapterSet{Primary: NewHackerEarthAdapter(s.BrowserTimeout, s.Verbose)}, nil
	case "greenhouse":
		api := NewGreenhouseAdapter(s.GreenhouseBoards, opts)
		scrape := NewGreenhouseScrapeAdapter(s.GreenhouseBoards, opts)
		if mode == ModeScrape {
			return AdapterSet{Primary: scrape, Secondary: api}, nil
		}
		return AdapterSet{Primary: api, Secondary: scrape}, nil
	case "eventbrite":
		api := NewEventbriteAdapter(s.EventbriteToken, opts)
		scrape := NewEventbriteScrapeAdapter(opts)
		if mode == ModeScrape || s.EventbriteToken == "" {
			return AdapterSet{Primary: scrape}, nil
		}
		return AdapterSet{Primary: api, Secondary: scrape}, nil
	default:
		return AdapterSet{}, fmt.Errorf("unknown source: %s", name)
	}
}

// DefaultEnabled returns the source names enabled when configuration does
// not specify any.
func DefaultEnabled() []string {
	return []string{"indeed", "wellfound", "internshala", "unstop", "greenhouse", "eventbrite"}
}
