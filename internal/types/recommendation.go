package types

import (
	"time"

	"github.com/google/uuid"
)

// MatchResult is the matching engine's verdict for one opportunity.
type MatchResult struct {
	Opportunity      Opportunity `json:"opportunity"`
	Score            float64     `json:"score"`
	SemanticScore    float64     `json:"semantic_score"`
	SkillOverlap     float64     `json:"skill_overlap"`
	MatchedSkills    []string    `json:"matched_skills,omitempty"`
	MatchedInterests []string    `json:"matched_interests,omitempty"`
	LocationMatch    bool        `json:"location_match"`
	Reasoning        string      `json:"reasoning"`
	Degraded         bool        `json:"degraded,omitempty"` // true when scored without embeddings
}

// RankedMatches partitions match results into best matches and other
// suggestions. Every best-match score is >= every other-suggestion score.
type RankedMatches struct {
	BestMatches      []MatchResult `json:"best_matches"`
	OtherSuggestions []MatchResult `json:"other_suggestions"`
	Degraded         bool          `json:"degraded"`
}

// All returns best matches followed by other suggestions.
func (r *RankedMatches) All() []MatchResult {
	out := make([]MatchResult, 0, len(r.BestMatches)+len(r.OtherSuggestions))
	out = append(out, r.BestMatches...)
	out = append(out, r.OtherSuggestions...)
	return out
}

// Recommendation is a persisted match for one user.
// Created by the pipeline; viewed/applied flags are mutated only by
// user-facing actions. A newer pipeline run supersedes the whole set.
type Recommendation struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	OpportunityID string          `json:"opportunity_id"`
	Type          OpportunityType `json:"type"`
	Score         float64         `json:"score"`
	MatchedSkills []string        `json:"matched_skills,omitempty"`
	Reasoning     string          `json:"reasoning"`
	Viewed        bool            `json:"viewed"`
	Applied       bool            `json:"applied"`
	CreatedAt     time.Time       `json:"created_at"`

	// Opportunity is populated on reads that join the opportunities table.
	Opportunity *Opportunity `json:"opportunity,omitempty"`
}
