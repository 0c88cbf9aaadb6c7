package repository

import (
	"context"
	"database/sql"
)

// EmailHistoryRepository reaches into the notifications service's email_history
// table to flag sends that bounced.
type EmailHistoryRepository struct {
	db *sql.DB
}

// NewEmailHistoryRepository constructs a repository backed by MySQL.
func NewEmailHistoryRepository(db *sql.DB) *EmailHistoryRepository {
	return &EmailHistoryRepository{db: db}
}

// MarkBounced raises the status of a send to status. A permanent failure is
// never downgraded by a later temporary one. It reports whether a row changed.
func (r *EmailHistoryRepository) MarkBounced(ctx context.Context, requestID string, status int16) (bool, error) {
	const query = `
		UPDATE email_history
		SET status = ?
		WHERE request_id = ? AND status < ?
	`
	res, err := r.db.ExecContext(ctx, query, status, requestID, status)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
