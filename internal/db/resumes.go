package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ResumeUpload records one uploaded resume document.
type ResumeUpload struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Filename   string    `json:"filename"`
	Content    string    `json:"-"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// CreateResumeUpload stores an uploaded resume and returns its record.
func (db *DB) CreateResumeUpload(ctx context.Context, userID uuid.UUID, filename, content string) (*ResumeUpload, error) {
	r := &ResumeUpload{UserID: userID, Filename: filename, Content: content}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO resume_uploads (user_id, filename, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, uploaded_at`,
		userID, filename, content,
	).Scan(&r.ID, &r.UploadedAt)
	if err != nil {
		return nil, persistErr("create resume upload", err)
	}
	return r, nil
}

// ListResumeUploads returns a user's uploads, newest first, without content.
func (db *DB) ListResumeUploads(ctx context.Context, userID uuid.UUID) ([]ResumeUpload, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, filename, uploaded_at
		 FROM resume_uploads WHERE user_id = $1 ORDER BY uploaded_at DESC`,
		userID,
	)
	if err != nil {
		return nil, persistErr("list resume uploads", err)
	}
	defer rows.Close()

	var uploads []ResumeUpload
	for rows.Next() {
		var r ResumeUpload
		if err := rows.Scan(&r.ID, &r.UserID, &r.Filename, &r.UploadedAt); err != nil {
			return nil, persistErr("list resume uploads", err)
		}
		uploads = append(uploads, r)
	}
	return uploads, persistErr("list resume uploads", rows.Err())
}
