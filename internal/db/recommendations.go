package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nexora/opportunity-agent/internal/types"
)

// ReplaceRecommendations supersedes a user's recommendation set in one
// transaction. Recommendations the user has already viewed or applied to
// survive the replacement; the new set skips opportunities that still have
// such a surviving record.
func (db *DB) ReplaceRecommendations(ctx context.Context, userID uuid.UUID, recs []types.Recommendation) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return persistErr("replace recommendations", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`DELETE FROM recommendations
		 WHERE user_id = $1 AND viewed = FALSE AND applied = FALSE`,
		userID,
	)
	if err != nil {
		return persistErr("replace recommendations", err)
	}

	for _, r := range recs {
		_, err := tx.Exec(ctx,
			`INSERT INTO recommendations
			    (user_id, opportunity_id, type, score, matched_skills, reasoning)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (user_id, opportunity_id) DO NOTHING`,
			userID, r.OpportunityID, string(r.Type), r.Score,
			jsonArray(r.MatchedSkills), nullIfEmpty(r.Reasoning),
		)
		if err != nil {
			return persistErr("replace recommendations", err)
		}
	}

	return persistErr("replace recommendations", tx.Commit(ctx))
}

// RecommendationFilters narrows ListRecommendations results.
type RecommendationFilters struct {
	Type     types.OpportunityType
	MinScore float64
	Limit    int
}

// ListRecommendations returns a user's recommendations joined with their
// opportunities, highest score first.
func (db *DB) ListRecommendations(ctx context.Context, userID uuid.UUID, filters RecommendationFilters) ([]types.Recommendation, error) {
	query := `SELECT r.id, r.user_id, r.opportunity_id, r.type, r.score, r.matched_skills,
	                 COALESCE(r.reasoning, ''), r.viewed, r.applied, r.created_at,
	                 o.id, o.title, o.company, COALESCE(o.description, ''), COALESCE(o.location, ''),
	                 o.type, COALESCE(o.url, ''), o.source, o.skills, COALESCE(o.salary_range, ''),
	                 COALESCE(o.experience_level, ''), o.remote, o.posted_at, o.deadline
	          FROM recommendations r
	          JOIN opportunities o ON o.id = r.opportunity_id
	          WHERE r.user_id = $1`
	args := []any{userID}
	argNum := 2

	if filters.Type != "" {
		query += fmt.Sprintf(" AND r.type = $%d", argNum)
		args = append(args, string(filters.Type))
		argNum++
	}
	if filters.MinScore > 0 {
		query += fmt.Sprintf(" AND r.score >= $%d", argNum)
		args = append(args, filters.MinScore)
		argNum++
	}

	query += " ORDER BY r.score DESC, r.opportunity_id"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, persistErr("list recommendations", err)
	}
	defer rows.Close()

	var recs []types.Recommendation
	for rows.Next() {
		var r types.Recommendation
		var o types.Opportunity
		if err := rows.Scan(&r.ID, &r.UserID, &r.OpportunityID, &r.Type, &r.Score, &r.MatchedSkills,
			&r.Reasoning, &r.Viewed, &r.Applied, &r.CreatedAt,
			&o.ID, &o.Title, &o.Company, &o.Description, &o.Location,
			&o.Type, &o.URL, &o.Source, &o.Skills, &o.SalaryRange,
			&o.ExperienceLevel, &o.Remote, &o.PostedAt, &o.Deadline); err != nil {
			return nil, persistErr("list recommendations", err)
		}
		r.Opportunity = &o
		recs = append(recs, r)
	}
	return recs, persistErr("list recommendations", rows.Err())
}

// MarkViewed flags a recommendation as viewed by its owner.
func (db *DB) MarkViewed(ctx context.Context, userID, recommendationID uuid.UUID) error {
	return db.markFlag(ctx, "viewed", userID, recommendationID)
}

// MarkApplied flags a recommendation as applied to by its owner. Applying
// implies having viewed it.
func (db *DB) MarkApplied(ctx context.Context, userID, recommendationID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE recommendations SET applied = TRUE, viewed = TRUE
		 WHERE id = $1 AND user_id = $2`,
		recommendationID, userID,
	)
	if err != nil {
		return persistErr("mark applied", err)
	}
	if tag.RowsAffected() == 0 {
		return persistErr("mark applied", pgx.ErrNoRows)
	}
	return nil
}

func (db *DB) markFlag(ctx context.Context, column string, userID, recommendationID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE recommendations SET %s = TRUE WHERE id = $1 AND user_id = $2`, column),
		recommendationID, userID,
	)
	if err != nil {
		return persistErr("mark "+column, err)
	}
	if tag.RowsAffected() == 0 {
		return persistErr("mark "+column, pgx.ErrNoRows)
	}
	return nil
}
