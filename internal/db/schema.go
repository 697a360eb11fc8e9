package db

import "context"

// schema is applied at startup. Statements are idempotent so repeated
// application is safe.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email         TEXT NOT NULL UNIQUE,
    name          TEXT,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_profiles (
    user_id             UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    skills              JSONB NOT NULL DEFAULT '[]',
    interests           JSONB NOT NULL DEFAULT '[]',
    experience_level    TEXT,
    preferred_locations JSONB NOT NULL DEFAULT '[]',
    preferred_job_types JSONB NOT NULL DEFAULT '[]',
    remote_preference   BOOLEAN NOT NULL DEFAULT FALSE,
    resume_text         TEXT,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_preferences (
    user_id             UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    email_notifications BOOLEAN NOT NULL DEFAULT TRUE,
    min_match_score     DOUBLE PRECISION NOT NULL DEFAULT 0.3,
    max_results         INT NOT NULL DEFAULT 15,
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS opportunities (
    id               TEXT PRIMARY KEY,
    title            TEXT NOT NULL,
    company          TEXT NOT NULL,
    description      TEXT,
    location         TEXT,
    type             TEXT NOT NULL,
    url              TEXT,
    source           TEXT NOT NULL,
    skills           JSONB NOT NULL DEFAULT '[]',
    salary_range     TEXT,
    experience_level TEXT,
    remote           BOOLEAN NOT NULL DEFAULT FALSE,
    posted_at        TIMESTAMPTZ,
    deadline         TIMESTAMPTZ,
    fetched_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_opportunities_type ON opportunities(type);

CREATE TABLE IF NOT EXISTS recommendations (
    id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id        UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    opportunity_id TEXT NOT NULL REFERENCES opportunities(id) ON DELETE CASCADE,
    type           TEXT NOT NULL,
    score          DOUBLE PRECISION NOT NULL,
    matched_skills JSONB NOT NULL DEFAULT '[]',
    reasoning      TEXT,
    viewed         BOOLEAN NOT NULL DEFAULT FALSE,
    applied        BOOLEAN NOT NULL DEFAULT FALSE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, opportunity_id)
);
CREATE INDEX IF NOT EXISTS idx_recommendations_user ON recommendations(user_id, score DESC);

CREATE TABLE IF NOT EXISTS resume_uploads (
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    filename    TEXT NOT NULL,
    content     TEXT NOT NULL,
    uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS pipeline_runs (
    id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id      UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    status       TEXT NOT NULL DEFAULT 'running',
    fetched      INT NOT NULL DEFAULT 0,
    matched      INT NOT NULL DEFAULT 0,
    error        TEXT,
    started_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    completed_at TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_pipeline_runs_inflight
    ON pipeline_runs(user_id) WHERE status = 'running';
`

// EnsureSchema applies the schema.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, schema)
	return persistErr("ensure schema", err)
}
