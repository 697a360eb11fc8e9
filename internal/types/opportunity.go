// Package types defines the core data structures shared across the agent.
package types

import (
	"time"
)

// OpportunityType classifies what kind of listing an opportunity is.
type OpportunityType string

const (
	// TypeJob is a full-time or part-time job listing
	TypeJob OpportunityType = "job"
	// TypeInternship is an internship listing
	TypeInternship OpportunityType = "internship"
	// TypeHackathon is a hackathon or competition listing
	TypeHackathon OpportunityType = "hackathon"
)

// ValidOpportunityType reports whether t is one of the known opportunity types.
func ValidOpportunityType(t OpportunityType) bool {
	switch t {
	case TypeJob, TypeInternship, TypeHackathon:
		return true
	}
	return false
}

// RawListing is the unnormalized record a source adapter produces.
// Fields may be empty or partially populated; deduplication decides
// which record wins when multiple sources report the same listing.
type RawListing struct {
	Title           string
	Company         string
	Description     string
	Location        string
	Type            OpportunityType
	URL             string
	Source          string
	Skills          []string
	SalaryRange     string
	ExperienceLevel string
	Remote          bool
	PostedAt        *time.Time
	Deadline        *time.Time
}

// Opportunity is a canonical, deduplicated listing.
// ID is derived deterministically from the normalized (title, company, source)
// key, so the same listing gets the same ID across pipeline runs.
type Opportunity struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Company         string          `json:"company"`
	Description     string          `json:"description"`
	Location        string          `json:"location,omitempty"`
	Type            OpportunityType `json:"type"`
	URL             string          `json:"url,omitempty"`
	Source          string          `json:"source"`
	Skills          []string        `json:"skills,omitempty"`
	SalaryRange     string          `json:"salary_range,omitempty"`
	ExperienceLevel string          `json:"experience_level,omitempty"`
	Remote          bool            `json:"remote"`
	PostedAt        *time.Time      `json:"posted_at,omitempty"`
	Deadline        *time.Time      `json:"deadline,omitempty"`
}
