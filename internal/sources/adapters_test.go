package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexora/opportunity-agent/internal/types"
)

const indeedPageHTML = `<html><body>
<div data-jk="abc123">
  <h2 class="jobTitle"><a href="/viewjob?jk=abc123">Backend Engineer</a></h2>
  <span class="companyName">Acme Corp</span>
  <div class="companyLocation">Remote</div>
  <div class="salary-snippet">$120,000 - $150,000</div>
  <div class="job-snippet">Build Go and PostgreSQL services.</div>
  <span class="date">2 days ago</span>
</div>
<div data-jk="def456">
  <h2 class="jobTitle"><a href="/viewjob?jk=def456">Data Scientist</a></h2>
  <span class="companyName">Beta Labs</span>
  <div class="companyLocation">New York, NY</div>
  <div class="job-snippet">Python and Machine Learning role.</div>
</div>
<div data-jk="ghi789">
  <h2 class="jobTitle"><a href="/viewjob?jk=ghi789">Nameless role</a></h2>
</div>
</body></html>`

func TestIndeedAdapterFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") != "0" && r.URL.Query().Get("start") != "" {
			_, _ = w.Write([]byte("<html><body></body></html>"))
			return
		}
		_, _ = w.Write([]byte(indeedPageHTML))
	}))
	defer server.Close()

	adapter := NewIndeedAdapter(nil)
	adapter.baseURL = server.URL

	listings, err := adapter.Fetch(context.Background(), Query{Keywords: "engineer", Limit: 10})
	require.NoError(t, err)
	require.Len(t, listings, 2, "card without a company should be skipped")

	first := listings[0]
	assert.Equal(t, "Backend Engineer", first.Title)
	assert.Equal(t, "Acme Corp", first.Company)
	assert.Equal(t, "Remote", first.Location)
	assert.True(t, first.Remote)
	assert.Equal(t, "$120,000 - $150,000", first.SalaryRange)
	assert.Equal(t, types.TypeJob, first.Type)
	assert.Equal(t, "indeed", first.Source)
	assert.Contains(t, first.Skills, "Go")
	assert.Contains(t, first.Skills, "PostgreSQL")
	require.NotNil(t, first.PostedAt)

	second := listings[1]
	assert.False(t, second.Remote)
	assert.Contains(t, second.Skills, "Machine Learning")
}

func TestIndeedAdapterRespectsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(indeedPageHTML))
	}))
	defer server.Close()

	adapter := NewIndeedAdapter(nil)
	adapter.baseURL = server.URL

	listings, err := adapter.Fetch(context.Background(), Query{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestIndeedAdapterUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	adapter := NewIndeedAdapter(nil)
	adapter.baseURL = server.URL

	_, err := adapter.Fetch(context.Background(), Query{Limit: 5})
	require.Error(t, err)

	srcErr := &SourceUnavailableError{}
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "indeed", srcErr.Source)
	assert.True(t, srcErr.Retryable)
}

func TestGreenhouseAdapterFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acme-corp/jobs", r.URL.Path)
		_, _ = w.Write([]byte(`{"jobs":[
			{"title":"Platform Engineer","absolute_url":"https://boards.greenhouse.io/acmecorp/jobs/1",
			 "content":"Kubernetes and Terraform work.","updated_at":"2025-08-01T12:00:00Z",
			 "location":{"name":"Berlin"}},
			{"title":"Account Executive","absolute_url":"https://boards.greenhouse.io/acmecorp/jobs/2",
			 "content":"Sales role.","location":{"name":"London"}}
		]}`))
	}))
	defer server.Close()

	adapter := NewGreenhouseAdapter([]string{"acme-corp"}, nil)
	adapter.apiBase = server.URL

	listings, err := adapter.Fetch(context.Background(), Query{Keywords: "engineer", Limit: 10})
	require.NoError(t, err)
	require.Len(t, listings, 1, "keyword filter should drop the sales role")

	job := listings[0]
	assert.Equal(t, "Platform Engineer", job.Title)
	assert.Equal(t, "Acme Corp", job.Company)
	assert.Equal(t, "Berlin", job.Location)
	assert.Equal(t, "greenhouse", job.Source)
	assert.Contains(t, job.Skills, "Kubernetes")
	require.NotNil(t, job.PostedAt)
}

func TestGreenhouseAdapterNoBoards(t *testing.T) {
	adapter := NewGreenhouseAdapter(nil, nil)
	_, err := adapter.Fetch(context.Background(), Query{Limit: 5})
	require.Error(t, err)

	srcErr := &SourceUnavailableError{}
	require.ErrorAs(t, err, &srcErr)
	assert.False(t, srcErr.Retryable)
}

func TestEventbriteAdapterFiltersNonHackathons(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"events":[
			{"name":{"text":"City AI Hackathon"},"description":{"text":"48h build sprint with Python."},
			 "url":"https://eventbrite.com/e/1","online_event":true,
			 "start":{"utc":"2026-09-10T09:00:00Z"},"end":{"utc":"2026-09-12T18:00:00Z"},
			 "organizer":{"name":"City Tech"}},
			{"name":{"text":"Networking Brunch"},"description":{"text":"Meet people."},
			 "url":"https://eventbrite.com/e/2","online_event":false}
		]}`))
	}))
	defer server.Close()

	adapter := NewEventbriteAdapter("test-token", nil)
	adapter.apiBase = server.URL

	listings, err := adapter.Fetch(context.Background(), Query{Limit: 10})
	require.NoError(t, err)
	require.Len(t, listings, 1)

	event := listings[0]
	assert.Equal(t, "City AI Hackathon", event.Title)
	assert.Equal(t, "City Tech", event.Company)
	assert.Equal(t, "Remote", event.Location)
	assert.True(t, event.Remote)
	assert.Equal(t, types.TypeHackathon, event.Type)
	require.NotNil(t, event.Deadline)
}

func TestBuildRegistry(t *testing.T) {
	sets, err := Build(Settings{
		Enabled:          []string{"indeed", "greenhouse", "eventbrite"},
		GreenhouseBoards: []string{"acme"},
		EventbriteToken:  "tok",
	})
	require.NoError(t, err)
	require.Len(t, sets, 3)

	assert.Equal(t, "indeed", sets[0].Primary.Name())
	assert.Nil(t, sets[0].Secondary)

	// Greenhouse defaults to the API variant with scrape fallback
	_, ok := sets[1].Primary.(*GreenhouseAdapter)
	assert.True(t, ok)
	_, ok = sets[1].Secondary.(*GreenhouseScrapeAdapter)
	assert.True(t, ok)

	_, ok = sets[2].Primary.(*EventbriteAdapter)
	assert.True(t, ok)
}

func TestBuildRegistryModeOverride(t *testing.T) {
	sets, err := Build(Settings{
		Enabled:          []string{"greenhouse"},
		Modes:            map[string]Mode{"greenhouse": ModeScrape},
		GreenhouseBoards: []string{"acme"},
	})
	require.NoError(t, err)

	_, ok := sets[0].Primary.(*GreenhouseScrapeAdapter)
	assert.True(t, ok)
	_, ok = sets[0].Secondary.(*GreenhouseAdapter)
	assert.True(t, ok)
}

func TestBuildRegistryUnknownSource(t *testing.T) {
	_, err := Build(Settings{Enabled: []string{"monster"}})
	assert.Error(t, err)
}

func TestBuildRegistryEventbriteWithoutToken(t *testing.T) {
	sets, err := Build(Settings{Enabled: []string{"eventbrite"}})
	require.NoError(t, err)

	_, ok := sets[0].Primary.(*EventbriteScrapeAdapter)
	assert.True(t, ok, "tokenless Eventbrite should fall back to scraping")
}

func TestSourcePriority(t *testing.T) {
	assert.Less(t, SourcePriority("linkedin"), SourcePriority("indeed"))
	assert.Less(t, SourcePriority("indeed"), SourcePriority("eventbrite"))
	assert.Equal(t, len(sourcePriority), SourcePriority("unknown-board"))
}
