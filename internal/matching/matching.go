// Package matching scores opportunities against user profiles. The score
// blends vendor embeddings with skill and interest overlap; when embeddings
// are unavailable it degrades to keyword-only scoring instead of failing.
package matching

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/nexora/opportunity-agent/internal/dedupe"
	"github.com/nexora/opportunity-agent/internal/embedding"
	"github.com/nexora/opportunity-agent/internal/sources"
	"github.com/nexora/opportunity-agent/internal/types"
)

// Weights control the blend of score components. Semantic, Skill and
// Interest should sum to 1; LocationBonus is added on top when the
// opportunity matches a preferred location, before clamping.
type Weights struct {
	Semantic      float64
	Skill         float64
	Interest      float64
	LocationBonus float64
}

// DefaultWeights returns the standard 60/30/10 blend with a 0.05
// location-preference bonus.
func DefaultWeights() Weights {
	return Weights{Semantic: 0.6, Skill: 0.3, Interest: 0.1, LocationBonus: 0.05}
}

// Thresholds partition scored matches. Best marks the best-match cutoff;
// Floor is the minimum score worth surfacing at all.
type Thresholds struct {
	Best  float64
	Floor float64
}

// DefaultThresholds returns the standard cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{Best: 0.7, Floor: 0.2}
}

// In degraded mode the semantic component is synthesized from keyword
// signals with this internal blend.
const (
	degradedSkillWeight    = 0.7
	degradedInterestWeight = 0.3
)

// Engine matches opportunities against profiles.
type Engine struct {
	embedder   embedding.Embedder
	weights    Weights
	thresholds Thresholds
}

// New creates a matching engine. embedder may be nil, in which case every
// run scores in degraded keyword mode.
func New(embedder embedding.Embedder, weights Weights, thresholds Thresholds) *Engine {
	if weights.Semantic+weights.Skill+weights.Interest == 0 {
		weights = DefaultWeights()
	}
	if thresholds.Best == 0 && thresholds.Floor == 0 {
		thresholds = DefaultThresholds()
	}
	return &Engine{embedder: embedder, weights: weights, thresholds: thresholds}
}

// Match scores all opportunities against the profile and partitions them
// into best matches and other suggestions. The same inputs always produce
// the same ranked order. The only error case is context cancellation;
// embedding failures degrade to keyword scoring and are logged.
func (e *Engine) Match(ctx context.Context, profile types.UserProfile, opportunities []types.Opportunity) (*types.RankedMatches, error) {
	if len(opportunities) == 0 {
		return &types.RankedMatches{}, nil
	}

	oppTexts := make([]string, len(opportunities))
	for i, opp := range opportunities {
		oppTexts[i] = OpportunityText(opp)
	}
	profileText := ProfileText(profile)

	similarities, degraded := e.semanticSimilarities(ctx, profileText, oppTexts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]types.MatchResult, 0, len(opportunities))
	for i, opp := range opportunities {
		result := e.scoreOne(profile, opp, oppTexts[i], similarities[i], degraded)
		if result.Score < e.thresholds.Floor {
			continue
		}
		results = append(results, result)
	}

	sortMatches(results)

	ranked := &types.RankedMatches{Degraded: degraded}
	for _, r := range results {
		if r.Score >= e.thresholds.Best {
			ranked.BestMatches = append(ranked.BestMatches, r)
		} else {
			ranked.OtherSuggestions = append(ranked.OtherSuggestions, r)
		}
	}
	return ranked, nil
}

// semanticSimilarities embeds the profile and every opportunity in one
// batch and returns per-opportunity cosine similarity. On embedding
// failure it returns a nil-safe zero slice and degraded=true.
func (e *Engine) semanticSimilarities(ctx context.Context, profileText string, oppTexts []string) ([]float64, bool) {
	similarities := make([]float64, len(oppTexts))
	if e.embedder == nil {
		return similarities, true
	}

	texts := append([]string{profileText}, oppTexts...)
	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		var unavailable *embedding.UnavailableError
		if errors.As(err, &unavailable) {
			log.Printf("[matching] degraded to keyword scoring: %v", err)
		} else {
			log.Printf("[matching] embedding failed, degraded to keyword scoring: %v", err)
		}
		return similarities, true
	}

	profileVec := vectors[0]
	for i := range oppTexts {
		similarities[i] = embedding.Cosine(profileVec, vectors[i+1])
	}
	return similarities, false
}

func (e *Engine) scoreOne(profile types.UserProfile, opp types.Opportunity, oppText string, semantic float64, degraded bool) types.MatchResult {
	matchedSkills, skillFrac := SkillOverlap(profile.Skills, opp.Skills)
	matchedInterests, interestFrac := InterestOverlap(profile.Interests, oppText)

	if degraded {
		semantic = degradedSkillWeight*skillFrac + degradedInterestWeight*interestFrac
	}

	locationMatch := locationMatches(profile, opp)

	score := e.weights.Semantic*semantic + e.weights.Skill*skillFrac + e.weights.Interest*interestFrac
	if locationMatch {
		score += e.weights.LocationBonus
	}
	score = clamp01(score)

	result := types.MatchResult{
		Opportunity:      opp,
		Score:            score,
		SemanticScore:    clamp01(semantic),
		SkillOverlap:     skillFrac,
		MatchedSkills:    matchedSkills,
		MatchedInterests: matchedInterests,
		LocationMatch:    locationMatch,
		Degraded:         degraded,
	}
	result.Reasoning = reasoning(profile, result)
	return result
}

// SkillOverlap returns the required skills the user covers and the covered
// fraction. Matching is substring containment in either direction, case
// insensitive. No required skills counts as full coverage.
func SkillOverlap(userSkills, requiredSkills []string) ([]string, float64) {
	if len(requiredSkills) == 0 {
		return nil, 1.0
	}

	var matched []string
	for _, required := range requiredSkills {
		reqLower := strings.ToLower(strings.TrimSpace(required))
		if reqLower == "" {
			continue
		}
		for _, userSkill := range userSkills {
			userLower := strings.ToLower(strings.TrimSpace(userSkill))
			if userLower == "" {
				continue
			}
			if strings.Contains(userLower, reqLower) || strings.Contains(reqLower, userLower) {
				matched = append(matched, required)
				break
			}
		}
	}
	return matched, float64(len(matched)) / float64(len(requiredSkills))
}

// InterestOverlap returns the user interests mentioned in the opportunity
// text and the mentioned fraction. No interests means no signal, not full
// credit.
func InterestOverlap(interests []string, oppText string) ([]string, float64) {
	if len(interests) == 0 {
		return nil, 0
	}

	textLower := strings.ToLower(oppText)
	var matched []string
	for _, interest := range interests {
		trimmed := strings.TrimSpace(interest)
		if trimmed == "" {
			continue
		}
		if strings.Contains(textLower, strings.ToLower(trimmed)) {
			matched = append(matched, trimmed)
		}
	}
	return matched, float64(len(matched)) / float64(len(interests))
}

// sortMatches orders results by score descending with a fully deterministic
// tie-break chain: matched skill count, source priority, canonical key.
func sortMatches(results []types.MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if len(a.MatchedSkills) != len(b.MatchedSkills) {
			return len(a.MatchedSkills) > len(b.MatchedSkills)
		}
		pa, pb := sources.SourcePriority(a.Opportunity.Source), sources.SourcePriority(b.Opportunity.Source)
		if pa != pb {
			return pa < pb
		}
		return dedupe.Key(a.Opportunity.Title, a.Opportunity.Company) < dedupe.Key(b.Opportunity.Title, b.Opportunity.Company)
	})
}

func locationMatches(profile types.UserProfile, opp types.Opportunity) bool {
	if opp.Remote && profile.RemotePreference {
		return true
	}
	if opp.Location == "" {
		return false
	}
	oppLocation := strings.ToLower(opp.Location)
	for _, preferred := range profile.PreferredLocations {
		p := strings.ToLower(strings.TrimSpace(preferred))
		if p != "" && strings.Contains(oppLocation, p) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// reasoning builds the human-readable explanation attached to a match.
func reasoning(profile types.UserProfile, m types.MatchResult) string {
	var parts []string

	if len(m.MatchedSkills) > 0 {
		parts = append(parts, fmt.Sprintf("Your skills in %s align well with this opportunity.", strings.Join(m.MatchedSkills, ", ")))
	}
	if len(m.MatchedInterests) > 0 {
		parts = append(parts, fmt.Sprintf("This opportunity matches your interests in %s.", strings.Join(m.MatchedInterests, ", ")))
	}
	if m.Opportunity.ExperienceLevel != "" && profile.ExperienceLevel != "" &&
		strings.Contains(strings.ToLower(profile.ExperienceLevel), strings.ToLower(m.Opportunity.ExperienceLevel)) {
		parts = append(parts, "The experience level requirement matches your background.")
	}
	if m.LocationMatch {
		if m.Opportunity.Remote && profile.RemotePreference {
			parts = append(parts, "This is a remote opportunity, which matches your preference.")
		} else {
			parts = append(parts, "The location matches your preferences.")
		}
	}

	switch {
	case m.Score > 0.8:
		parts = append(parts, "This is an excellent match based on your profile.")
	case m.Score > 0.6:
		parts = append(parts, "This is a good match for your profile.")
	case m.Score > 0.4:
		parts = append(parts, "This opportunity has some alignment with your profile.")
	}

	if len(parts) == 0 {
		return "This opportunity may be of interest based on your profile."
	}
	return strings.Join(parts, " ")
}
