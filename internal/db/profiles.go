package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nexora/opportunity-agent/internal/types"
)

// GetProfile returns a user's matching profile, or nil when none exists yet.
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	var p types.UserProfile
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, skills, interests, COALESCE(experience_level, ''),
		        preferred_locations, preferred_job_types, remote_preference,
		        COALESCE(resume_text, ''), created_at, updated_at
		 FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.Skills, &p.Interests, &p.ExperienceLevel,
		&p.PreferredLocations, &p.PreferredJobTypes, &p.RemotePreference,
		&p.ResumeText, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get profile", err)
	}
	return &p, nil
}

// UpsertProfile creates or replaces a user's profile.
func (db *DB) UpsertProfile(ctx context.Context, p *types.UserProfile) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO user_profiles
		    (user_id, skills, interests, experience_level, preferred_locations,
		     preferred_job_types, remote_preference, resume_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id) DO UPDATE SET
		    skills = $2,
		    interests = $3,
		    experience_level = $4,
		    preferred_locations = $5,
		    preferred_job_types = $6,
		    remote_preference = $7,
		    resume_text = $8,
		    updated_at = NOW()
		 RETURNING created_at, updated_at`,
		p.UserID, jsonArray(p.Skills), jsonArray(p.Interests), nullIfEmpty(p.ExperienceLevel),
		jsonArray(p.PreferredLocations), jsonArray(p.PreferredJobTypes),
		p.RemotePreference, nullIfEmpty(p.ResumeText),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return persistErr("upsert profile", err)
}

// GetPreferences returns a user's preferences, falling back to defaults
// when none are stored.
func (db *DB) GetPreferences(ctx context.Context, userID uuid.UUID) (*types.UserPreferences, error) {
	var p types.UserPreferences
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, email_notifications, min_match_score, max_results, updated_at
		 FROM user_preferences WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.EmailNotifications, &p.MinMatchScore, &p.MaxResults, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		defaults := types.DefaultPreferences(userID)
		return &defaults, nil
	}
	if err != nil {
		return nil, persistErr("get preferences", err)
	}
	return &p, nil
}

// UpdatePreferences applies the non-nil fields of req and returns the
// resulting preferences.
func (db *DB) UpdatePreferences(ctx context.Context, userID uuid.UUID, req types.UpdatePreferencesRequest) (*types.UserPreferences, error) {
	current, err := db.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.EmailNotifications != nil {
		current.EmailNotifications = *req.EmailNotifications
	}
	if req.MinMatchScore != nil {
		current.MinMatchScore = *req.MinMatchScore
	}
	if req.MaxResults != nil {
		current.MaxResults = *req.MaxResults
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO user_preferences (user_id, email_notifications, min_match_score, max_results)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
		    email_notifications = $2,
		    min_match_score = $3,
		    max_results = $4,
		    updated_at = NOW()
		 RETURNING updated_at`,
		userID, current.EmailNotifications, current.MinMatchScore, current.MaxResults,
	).Scan(&current.UpdatedAt)
	if err != nil {
		return nil, persistErr("update preferences", err)
	}
	return current, nil
}
