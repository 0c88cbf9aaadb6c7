package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vibast-solutions/ms-go-bounces/app/entity"
)

type DeliveryRecordRepository struct {
	db *sql.DB
}

// NewDeliveryRecordRepository constructs a repository backed by MySQL.
func NewDeliveryRecordRepository(db *sql.DB) *DeliveryRecordRepository {
	return &DeliveryRecordRepository{db: db}
}

// Replace swaps the stored records of a request for records in one transaction,
// so a reprocessed bounce never leaves duplicates behind.
func (r *DeliveryRecordRepository) Replace(ctx context.Context, requestID string, records []entity.DeliveryRecord) error {
	const deleteQuery = `
		DELETE FROM delivery_records
		WHERE request_id = ?
	`
	const insertQuery = `
		INSERT INTO delivery_records (
			request_id, recipient, alias, action, bounced_at, lhost, rhost, command,
			status, reply_code, diagnostic_type, diagnosis, reason, envelope_id, adapter
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, deleteQuery, requestID); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, insertQuery,
			requestID, rec.Recipient, rec.Alias, rec.Action, rec.Date, rec.LocalHost, rec.RemoteHost, rec.Command,
			rec.Status, rec.ReplyCode, rec.DiagnosticType, rec.Diagnosis, string(rec.Reason), rec.EnvelopeID, rec.Adapter,
		); err != nil {
			return fmt.Errorf("insert record %s: %w", rec.Recipient, err)
		}
	}
	return tx.Commit()
}

// ListByRequestID returns the records of a request in insertion order.
func (r *DeliveryRecordRepository) ListByRequestID(ctx context.Context, requestID string) ([]entity.DeliveryRecord, error) {
	const query = `
		SELECT recipient, alias, action, bounced_at, lhost, rhost, command,
			status, reply_code, diagnostic_type, diagnosis, reason, envelope_id, adapter
		FROM delivery_records
		WHERE request_id = ?
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.DeliveryRecord
	for rows.Next() {
		var rec entity.DeliveryRecord
		var reason string
		if err := rows.Scan(
			&rec.Recipient, &rec.Alias, &rec.Action, &rec.Date, &rec.LocalHost, &rec.RemoteHost, &rec.Command,
			&rec.Status, &rec.ReplyCode, &rec.DiagnosticType, &rec.Diagnosis, &reason, &rec.EnvelopeID, &rec.Adapter,
		); err != nil {
			return nil, err
		}
		rec.Reason = entity.Reason(reason)
		out = append(out, rec)
	}
	return out, rows.Err()
}
