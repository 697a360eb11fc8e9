package db

import (
	"context"

	"github.com/google/uuid"
)

// Analytics summarizes how a user engages with their recommendations.
type Analytics struct {
	TotalRecommendations int            `json:"total_recommendations"`
	ViewedCount          int            `json:"viewed_count"`
	AppliedCount         int            `json:"applied_count"`
	ViewRate             float64        `json:"view_rate"`
	ApplicationRate      float64        `json:"application_rate"`
	AverageScore         float64        `json:"average_score"`
	TypeDistribution     map[string]int `json:"type_distribution"`
	TopSkills            []SkillCount   `json:"top_skills"`
}

// SkillCount is one entry of the top-skills breakdown.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// GetAnalytics computes recommendation engagement aggregates for one user.
func (db *DB) GetAnalytics(ctx context.Context, userID uuid.UUID) (*Analytics, error) {
	a := &Analytics{TypeDistribution: make(map[string]int)}

	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE viewed),
		        COUNT(*) FILTER (WHERE applied),
		        COALESCE(AVG(score), 0)
		 FROM recommendations WHERE user_id = $1`,
		userID,
	).Scan(&a.TotalRecommendations, &a.ViewedCount, &a.AppliedCount, &a.AverageScore)
	if err != nil {
		return nil, persistErr("get analytics", err)
	}

	if a.TotalRecommendations > 0 {
		a.ViewRate = float64(a.ViewedCount) / float64(a.TotalRecommendations)
		a.ApplicationRate = float64(a.AppliedCount) / float64(a.TotalRecommendations)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT type, COUNT(*) FROM recommendations WHERE user_id = $1 GROUP BY type`,
		userID,
	)
	if err != nil {
		return nil, persistErr("get analytics", err)
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var count int
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, persistErr("get analytics", err)
		}
		a.TypeDistribution[typ] = count
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("get analytics", err)
	}

	skillRows, err := db.pool.Query(ctx,
		`SELECT skill, COUNT(*) AS n
		 FROM recommendations, jsonb_array_elements_text(matched_skills) AS skill
		 WHERE user_id = $1
		 GROUP BY skill ORDER BY n DESC, skill LIMIT 10`,
		userID,
	)
	if err != nil {
		return nil, persistErr("get analytics", err)
	}
	defer skillRows.Close()
	for skillRows.Next() {
		var sc SkillCount
		if err := skillRows.Scan(&sc.Skill, &sc.Count); err != nil {
			return nil, persistErr("get analytics", err)
		}
		a.TopSkills = append(a.TopSkills, sc)
	}
	return a, persistErr("get analytics", skillRows.Err())
}
