package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nexora/opportunity-agent/internal/types"
)

// CreateUser inserts a new user and returns the stored record.
func (db *DB) CreateUser(ctx context.Context, email, name, passwordHash string) (*types.User, error) {
	var u types.User
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, email, COALESCE(name, ''), created_at, updated_at`,
		email, nullIfEmpty(name), passwordHash,
	).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, persistErr("create user", err)
	}
	return &u, nil
}

// GetUserByEmail returns the user with the given email along with the
// password hash, or nil when no such user exists.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*types.User, string, error) {
	var u types.User
	var hash string
	err := db.pool.QueryRow(ctx,
		`SELECT id, email, COALESCE(name, ''), password_hash, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.Name, &hash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", persistErr("get user by email", err)
	}
	return &u, hash, nil
}

// GetUser returns a user by ID, or nil when not found.
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	var u types.User
	err := db.pool.QueryRow(ctx,
		`SELECT id, email, COALESCE(name, ''), created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get user", err)
	}
	return &u, nil
}

// ListUserIDs returns every user ID. The scheduler walks this list when
// running the pipeline for all users.
func (db *DB) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := db.pool.Query(ctx, `SELECT id FROM users ORDER BY created_at`)
	if err != nil {
		return nil, persistErr("list user ids", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, persistErr("list user ids", err)
		}
		ids = append(ids, id)
	}
	return ids, persistErr("list user ids", rows.Err())
}

// UpdatePassword replaces a user's password hash.
func (db *DB) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return persistErr("update password", err)
	}
	if tag.RowsAffected() == 0 {
		return persistErr("update password", pgx.ErrNoRows)
	}
	return nil
}
