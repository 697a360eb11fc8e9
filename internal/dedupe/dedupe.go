// Package dedupe collapses raw listings from multiple sources into
// canonical opportunities.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/nexora/opportunity-agent/internal/types"
)

// CompletenessScorer rates how complete a raw listing is. When two listings
// share a canonical key, the higher-scoring one wins; ties keep the record
// seen first.
type CompletenessScorer func(types.RawListing) int

// FieldCountScorer is the default scorer: one point per populated field.
func FieldCountScorer(l types.RawListing) int {
	score := 0
	for _, s := range []string{l.Title, l.Company, l.Description, l.Location, l.URL, l.SalaryRange, l.ExperienceLevel} {
		if strings.TrimSpace(s) != "" {
			score++
		}
	}
	if len(l.Skills) > 0 {
		score++
	}
	if l.PostedAt != nil {
		score++
	}
	if l.Deadline != nil {
		score++
	}
	return score
}

// WeightedScorer favors substantive fields over metadata: description and
// skills carry extra weight since they drive matching quality.
func WeightedScorer(l types.RawListing) int {
	score := FieldCountScorer(l)
	if len(strings.TrimSpace(l.Description)) > 100 {
		score += 2
	}
	score += len(l.Skills)
	return score
}

// Key returns the canonical dedupe key for a listing: title and company
// lowercased with whitespace runs collapsed.
func Key(title, company string) string {
	return collapse(title) + "|" + collapse(company)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ID derives a stable opportunity ID from the canonical key and source, so
// re-running the pipeline yields the same ID for the same listing.
func ID(title, company, source string) string {
	sum := sha256.Sum256([]byte(Key(title, company) + "|" + strings.ToLower(strings.TrimSpace(source))))
	return hex.EncodeToString(sum[:16])
}

// Normalize deduplicates raw listings into canonical opportunities.
// Output order is the first-occurrence order of each canonical key; when a
// later duplicate wins on completeness it replaces the earlier record in
// place, keeping the original position. A nil scorer falls back to
// FieldCountScorer.
func Normalize(listings []types.RawListing, scorer CompletenessScorer) []types.Opportunity {
	if scorer == nil {
		scorer = FieldCountScorer
	}

	type slot struct {
		index int
		score int
	}
	seen := make(map[string]slot, len(listings))
	var out []types.Opportunity

	for _, l := range listings {
		if strings.TrimSpace(l.Title) == "" {
			continue
		}
		key := Key(l.Title, l.Company)
		score := scorer(l)

		if existing, ok := seen[key]; ok {
			if score > existing.score {
				out[existing.index] = toOpportunity(l)
				seen[key] = slot{index: existing.index, score: score}
			}
			continue
		}

		seen[key] = slot{index: len(out), score: score}
		out = append(out, toOpportunity(l))
	}

	return out
}

func toOpportunity(l types.RawListing) types.Opportunity {
	return types.Opportunity{
		ID:              ID(l.Title, l.Company, l.Source),
		Title:           strings.TrimSpace(l.Title),
		Company:         strings.TrimSpace(l.Company),
		Description:     l.Description,
		Location:        l.Location,
		Type:            l.Type,
		URL:             l.URL,
		Source:          l.Source,
		Skills:          l.Skills,
		SalaryRange:     l.SalaryRange,
		ExperienceLevel: l.ExperienceLevel,
		Remote:          l.Remote,
		PostedAt:        l.PostedAt,
		Deadline:        l.Deadline,
	}
}
