// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nexora/opportunity-agent/internal/pipeline"
	"github.com/nexora/opportunity-agent/internal/sources"
	"github.com/nexora/opportunity-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintFetchStats outputs a per-source breakdown of one fetch sweep.
func (p *Printer) PrintFetchStats(stats *sources.Stats) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Sources ok:    %d\n", stats.Succeeded))
	sb.WriteString(fmt.Sprintf("Sources down:  %d\n", stats.Failed))
	sb.WriteString(fmt.Sprintf("Cache hits:    %d\n", stats.FromCache))

	if len(stats.PerSource) > 0 {
		sb.WriteString("\nListings per source:\n")
		names := make([]string, 0, len(stats.PerSource))
		for name := range stats.PerSource {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sb.WriteString(fmt.Sprintf("  %-14s %d\n", name, stats.PerSource[name]))
		}
	}

	if len(stats.Errors) > 0 {
		sb.WriteString("\nFailures:\n")
		count := min(len(stats.Errors), 3)
		for i := 0; i < count; i++ {
			msg := stats.Errors[i].Error()
			if len(msg) > 50 {
				msg = msg[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", msg))
		}
		if len(stats.Errors) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(stats.Errors)-3))
		}
	}

	p.printBox("FETCH STATISTICS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRankedMatches outputs the top matches with scores and matched skills.
func (p *Printer) PrintRankedMatches(ranked *types.RankedMatches) {
	if ranked == nil || (len(ranked.BestMatches) == 0 && len(ranked.OtherSuggestions) == 0) {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Best matches: %d, other suggestions: %d\n", len(ranked.BestMatches), len(ranked.OtherSuggestions)))
	if ranked.Degraded {
		sb.WriteString("(scored without embeddings, keyword fallback)\n")
	}
	sb.WriteString("\n")

	matches := ranked.All()
	count := min(len(matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := matches[i]
		title := fmt.Sprintf("%s at %s", m.Opportunity.Title, m.Opportunity.Company)
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, title))
		sb.WriteString(fmt.Sprintf("    Score: %.2f (%s)\n", m.Score, m.Opportunity.Source))
		if len(m.MatchedSkills) > 0 {
			skills := strings.Join(m.MatchedSkills, ", ")
			if len(skills) > 40 {
				skills = skills[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Skills: %s\n", skills))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more matches", len(matches)-maxItemsToShow))
	}

	p.printBox("RANKED MATCHES", sb.String())
}

// PrintRunSummary outputs the outcome of one pipeline run.
func (p *Printer) PrintRunSummary(result *pipeline.Result) {
	if result == nil {
		return
	}
	if result.Skipped {
		p.printBox("PIPELINE RUN", "Skipped (no profile or already in flight)")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run ID:       %s\n", result.RunID))
	sb.WriteString(fmt.Sprintf("Fetched:      %d listings\n", result.Fetched))
	sb.WriteString(fmt.Sprintf("Deduplicated: %d opportunities\n", result.Deduped))
	sb.WriteString(fmt.Sprintf("Matched:      %d recommendations\n", result.Matched))
	if result.Emailed {
		sb.WriteString("Digest:       sent")
	} else {
		sb.WriteString("Digest:       not sent")
	}

	p.printBox("PIPELINE RUN", sb.String())
}

// PrintOpportunities outputs a short listing preview, useful for the
// fetch-only CLI command.
func (p *Printer) PrintOpportunities(opps []types.Opportunity) {
	if len(opps) == 0 {
		p.printBox("OPPORTUNITIES", "No opportunities found")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d opportunities:\n\n", len(opps)))

	count := min(len(opps), maxItemsToShow)
	for i := 0; i < count; i++ {
		opp := opps[i]
		title := fmt.Sprintf("%s at %s", opp.Title, opp.Company)
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("• %s\n", title))
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", opp.Type, opp.Source))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(opps) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(opps)-maxItemsToShow))
	}

	p.printBox("OPPORTUNITIES", sb.String())
}
