package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-bounces/app/entity"
)

type BounceHistoryRepository struct {
	db *sql.DB
}

// NewBounceHistoryRepository constructs a repository backed by MySQL.
func NewBounceHistoryRepository(db *sql.DB) *BounceHistoryRepository {
	return &BounceHistoryRepository{db: db}
}

// Create inserts a new bounce history record.
func (r *BounceHistoryRepository) Create(ctx context.Context, requestID string, raw string, status int16) error {
	const query = `
		INSERT INTO bounce_history (request_id, raw, status, retries)
		VALUES (?, ?, ?, 0)
	`
	_, err := r.db.ExecContext(ctx, query, requestID, raw, status)
	return err
}

// FindByRequestID loads a record; it returns nil without error when none exists.
// adapter stays NULL until the bounce is parsed.
func (r *BounceHistoryRepository) FindByRequestID(ctx context.Context, requestID string) (*entity.BounceHistory, error) {
	const query = `
		SELECT request_id, adapter, raw, status, retries
		FROM bounce_history
		WHERE request_id = ?
	`
	var (
		h       entity.BounceHistory
		adapter sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, requestID).Scan(&h.RequestID, &adapter, &h.Raw, &h.Status, &h.Retries)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	h.Adapter = adapter.String
	return &h, nil
}

// DeleteByRequestID removes a history record by request ID.
func (r *BounceHistoryRepository) DeleteByRequestID(ctx context.Context, requestID string) error {
	const query = `
		DELETE FROM bounce_history
		WHERE request_id = ?
	`
	_, err := r.db.ExecContext(ctx, query, requestID)
	return err
}

// UpdateStatus updates the status for a request ID.
func (r *BounceHistoryRepository) UpdateStatus(ctx context.Context, requestID string, status int16) error {
	const query = `
		UPDATE bounce_history
		SET status = ?
		WHERE request_id = ?
	`
	_, err := r.db.ExecContext(ctx, query, status, requestID)
	return err
}

// MarkParsed stores the winning adapter together with the parsed status.
func (r *BounceHistoryRepository) MarkParsed(ctx context.Context, requestID string, adapter string) error {
	const query = `
		UPDATE bounce_history
		SET status = ?, adapter = ?
		WHERE request_id = ?
	`
	_, err := r.db.ExecContext(ctx, query, entity.BounceStatusParsed, adapter, requestID)
	return err
}

// IncrementRetries counts a failed processing attempt.
func (r *BounceHistoryRepository) IncrementRetries(ctx context.Context, requestID string) error {
	const query = `
		UPDATE bounce_history
		SET retries = retries + 1
		WHERE request_id = ?
	`
	_, err := r.db.ExecContext(ctx, query, requestID)
	return err
}
