package matching

import (
	"fmt"
	"strings"

	"github.com/nexora/opportunity-agent/internal/parsing"
	"github.com/nexora/opportunity-agent/internal/types"
)

// resumeExcerptLen caps how much resume text flows into the profile
// embedding.
const resumeExcerptLen = 500

// OpportunityText builds the text representation of an opportunity used
// for embedding and interest matching.
func OpportunityText(opp types.Opportunity) string {
	parts := []string{
		fmt.Sprintf("%s at %s", opp.Title, opp.Company),
		string(opp.Type),
	}
	if opp.Description != "" {
		parts = append(parts, opp.Description)
	}
	if opp.Location != "" {
		parts = append(parts, "Location: "+opp.Location)
	}
	if len(opp.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(opp.Skills, ", "))
	}
	if opp.ExperienceLevel != "" {
		parts = append(parts, "Experience: "+opp.ExperienceLevel)
	}
	if opp.SalaryRange != "" {
		parts = append(parts, "Salary: "+opp.SalaryRange)
	}
	return strings.Join(parts, " | ")
}

// ProfileText builds the text representation of a user profile used for
// embedding.
func ProfileText(profile types.UserProfile) string {
	var parts []string
	if len(profile.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(profile.Skills, ", "))
	}
	if len(profile.Interests) > 0 {
		parts = append(parts, "Interests: "+strings.Join(profile.Interests, ", "))
	}
	if profile.ExperienceLevel != "" {
		parts = append(parts, "Experience Level: "+profile.ExperienceLevel)
	}
	if len(profile.PreferredLocations) > 0 {
		parts = append(parts, "Preferred Locations: "+strings.Join(profile.PreferredLocations, ", "))
	}
	if profile.ResumeText != "" {
		parts = append(parts, "Resume: "+parsing.Truncate(profile.ResumeText, resumeExcerptLen))
	}
	return strings.Join(parts, " | ")
}
