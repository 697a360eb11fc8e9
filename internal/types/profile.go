package types

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile holds the skills, interests and preferences used for matching.
// A profile is owned by exactly one user and mutated only through
// profile-update operations; the pipeline treats it as read-only.
type UserProfile struct {
	UserID             uuid.UUID `json:"user_id"`
	Skills             []string  `json:"skills"`
	Interests          []string  `json:"interests"`
	ExperienceLevel    string    `json:"experience_level,omitempty"`
	PreferredLocations []string  `json:"preferred_locations"`
	PreferredJobTypes  []string  `json:"preferred_job_types"`
	RemotePreference   bool      `json:"remote_preference"`
	ResumeText         string    `json:"resume_text,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UpdateProfileRequest is the payload for creating or updating a profile.
type UpdateProfileRequest struct {
	Skills             []string `json:"skills" validate:"required,min=1,dive,min=1"`
	Interests          []string `json:"interests" validate:"dive,min=1"`
	ExperienceLevel    string   `json:"experience_level" validate:"omitempty,oneof=entry mid senior lead any"`
	PreferredLocations []string `json:"preferred_locations" validate:"dive,min=1"`
	PreferredJobTypes  []string `json:"preferred_job_types" validate:"dive,oneof=job internship hackathon"`
	RemotePreference   bool     `json:"remote_preference"`
	ResumeText         string   `json:"resume_text" validate:"omitempty,max=20000"`
}

// UserPreferences controls notification and matching behavior per user.
type UserPreferences struct {
	UserID             uuid.UUID `json:"user_id"`
	EmailNotifications bool      `json:"email_notifications"`
	MinMatchScore      float64   `json:"min_match_score"`
	MaxResults         int       `json:"max_results"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UpdatePreferencesRequest is the payload for updating preferences.
type UpdatePreferencesRequest struct {
	EmailNotifications *bool    `json:"email_notifications"`
	MinMatchScore      *float64 `json:"min_match_score" validate:"omitempty,gte=0,lte=1"`
	MaxResults         *int     `json:"max_results" validate:"omitempty,gte=1,lte=100"`
}

// DefaultPreferences returns the preferences applied to new users.
func DefaultPreferences(userID uuid.UUID) UserPreferences {
	return UserPreferences{
		UserID:             userID,
		EmailNotifications: true,
		MinMatchScore:      0.3,
		MaxResults:         15,
	}
}
