package db

import (
	"context"
	"fmt"

	"github.com/nexora/opportunity-agent/internal/types"
)

// UpsertOpportunities stores the deduplicated opportunities of one pipeline
// run, refreshing records that already exist.
func (db *DB) UpsertOpportunities(ctx context.Context, opps []types.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return persistErr("upsert opportunities", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, o := range opps {
		_, err := tx.Exec(ctx,
			`INSERT INTO opportunities
			    (id, title, company, description, location, type, url, source,
			     skills, salary_range, experience_level, remote, posted_at, deadline, fetched_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
			 ON CONFLICT (id) DO UPDATE SET
			    description = EXCLUDED.description,
			    location = EXCLUDED.location,
			    url = EXCLUDED.url,
			    skills = EXCLUDED.skills,
			    salary_range = EXCLUDED.salary_range,
			    experience_level = EXCLUDED.experience_level,
			    remote = EXCLUDED.remote,
			    posted_at = EXCLUDED.posted_at,
			    deadline = EXCLUDED.deadline,
			    fetched_at = NOW()`,
			o.ID, o.Title, o.Company, nullIfEmpty(o.Description), nullIfEmpty(o.Location),
			string(o.Type), nullIfEmpty(o.URL), o.Source, jsonArray(o.Skills),
			nullIfEmpty(o.SalaryRange), nullIfEmpty(o.ExperienceLevel), o.Remote,
			o.PostedAt, o.Deadline,
		)
		if err != nil {
			return persistErr("upsert opportunities", err)
		}
	}

	return persistErr("upsert opportunities", tx.Commit(ctx))
}

// OpportunityFilters narrows ListOpportunities results.
type OpportunityFilters struct {
	Type   types.OpportunityType
	Source string
	Remote *bool
	Limit  int
}

// ListOpportunities returns stored opportunities, newest fetch first.
func (db *DB) ListOpportunities(ctx context.Context, filters OpportunityFilters) ([]types.Opportunity, error) {
	query := `SELECT id, title, company, COALESCE(description, ''), COALESCE(location, ''),
	                 type, COALESCE(url, ''), source, skills, COALESCE(salary_range, ''),
	                 COALESCE(experience_level, ''), remote, posted_at, deadline
	          FROM opportunities WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argNum)
		args = append(args, string(filters.Type))
		argNum++
	}
	if filters.Source != "" {
		query += fmt.Sprintf(" AND source = $%d", argNum)
		args = append(args, filters.Source)
		argNum++
	}
	if filters.Remote != nil {
		query += fmt.Sprintf(" AND remote = $%d", argNum)
		args = append(args, *filters.Remote)
		argNum++
	}

	query += " ORDER BY fetched_at DESC, id"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, persistErr("list opportunities", err)
	}
	defer rows.Close()

	var opps []types.Opportunity
	for rows.Next() {
		var o types.Opportunity
		if err := rows.Scan(&o.ID, &o.Title, &o.Company, &o.Description, &o.Location,
			&o.Type, &o.URL, &o.Source, &o.Skills, &o.SalaryRange,
			&o.ExperienceLevel, &o.Remote, &o.PostedAt, &o.Deadline); err != nil {
			return nil, persistErr("list opportunities", err)
		}
		opps = append(opps, o)
	}
	return opps, persistErr("list opportunities", rows.Err())
}
