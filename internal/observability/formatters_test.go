package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/nexora/opportunity-agent/internal/pipeline"
	"github.com/nexora/opportunity-agent/internal/sources"
	"github.com/nexora/opportunity-agent/internal/types"
)

func TestPrintFetchStats(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	stats := &sources.Stats{
		Succeeded: 3,
		Failed:    1,
		FromCache: 1,
		PerSource: map[string]int{"indeed": 12, "greenhouse": 4},
		Errors:    []error{errors.New("linkedin: render timed out")},
	}

	p.PrintFetchStats(stats)
	output := buf.String()

	assert.Contains(t, output, "FETCH STATISTICS")
	assert.Contains(t, output, "indeed")
	assert.Contains(t, output, "12")
	assert.Contains(t, output, "render timed out")
}

func TestPrintFetchStats_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFetchStats(nil)

	assert.Empty(t, buf.String())
}

func TestPrintRankedMatches(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	ranked := &types.RankedMatches{
		BestMatches: []types.MatchResult{
			{
				Opportunity:   types.Opportunity{Title: "Go Developer", Company: "Acme", Source: "indeed"},
				Score:         0.85,
				MatchedSkills: []string{"Go", "Kubernetes"},
			},
		},
		OtherSuggestions: []types.MatchResult{
			{
				Opportunity: types.Opportunity{Title: "Data Intern", Company: "Globex", Source: "internshala"},
				Score:       0.42,
			},
		},
	}

	p.PrintRankedMatches(ranked)
	output := buf.String()

	assert.Contains(t, output, "RANKED MATCHES")
	assert.Contains(t, output, "Go Developer at Acme")
	assert.Contains(t, output, "0.85")
	assert.Contains(t, output, "Go, Kubernetes")
}

func TestPrintRankedMatches_Degraded(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	ranked := &types.RankedMatches{
		Degraded: true,
		OtherSuggestions: []types.MatchResult{
			{Opportunity: types.Opportunity{Title: "Go Developer", Company: "Acme"}, Score: 0.4},
		},
	}

	p.PrintRankedMatches(ranked)

	assert.Contains(t, buf.String(), "keyword fallback")
}

func TestPrintRankedMatches_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRankedMatches(&types.RankedMatches{})

	assert.Empty(t, buf.String())
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := &pipeline.Result{
		RunID:   uuid.New(),
		Fetched: 42,
		Deduped: 30,
		Matched: 12,
		Emailed: true,
	}

	p.PrintRunSummary(result)
	output := buf.String()

	assert.Contains(t, output, "PIPELINE RUN")
	assert.Contains(t, output, "42 listings")
	assert.Contains(t, output, "30 opportunities")
	assert.Contains(t, output, "12 recommendations")
	assert.Contains(t, output, "sent")
}

func TestPrintRunSummary_Skipped(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(&pipeline.Result{Skipped: true})

	assert.Contains(t, buf.String(), "Skipped")
}

func TestPrintOpportunities(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	opps := []types.Opportunity{
		{Title: "Go Developer", Company: "Acme", Type: types.TypeJob, Source: "indeed"},
		{Title: "City Hackathon", Company: "DevOrg", Type: types.TypeHackathon, Source: "unstop"},
	}

	p.PrintOpportunities(opps)
	output := buf.String()

	assert.Contains(t, output, "OPPORTUNITIES")
	assert.Contains(t, output, "Found 2 opportunities")
	assert.Contains(t, output, "Go Developer at Acme")
	assert.Contains(t, output, "hackathon")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	opps := []types.Opportunity{{
		Title:   "Senior Staff Principal Distinguished Engineer Level 99",
		Company: "A Very Long Company Name That Should Be Truncated To Fit",
		Type:    types.TypeJob,
		Source:  "indeed",
	}}

	p.PrintOpportunities(opps)
	output := buf.String()

	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.True(t, strings.Contains(output, "│"))
}
