package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"orgnotify/internal/models"
)

type recipientRepository struct {
	db *sql.DB
}

// NewRecipientRepository creates a new recipient repository
func NewRecipientRepository(db *sql.DB) RecipientRepository {
	return &recipientRepository{db: db}
}

// GetByID retrieves a recipient by ID
func (r *recipientRepository) GetByID(ctx context.Context, id int64) (*models.Recipient, error) {
	query := `
		SELECT id, message_id, phone, name, member_id, body, status, cost, last_error, sent_at, created_at
		FROM message_recipients
		WHERE id = $1
	`

	recipient := &models.Recipient{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&recipient.ID,
		&recipient.MessageID,
		&recipient.Phone,
		&recipient.Name,
		&recipient.MemberID,
		&recipient.Body,
		&recipient.Status,
		&recipient.Cost,
		&recipient.LastError,
		&recipient.SentAt,
		&recipient.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("recipient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}

	return recipient, nil
}

// ListByMessageID retrieves all recipients of a message
func (r *recipientRepository) ListByMessageID(ctx context.Context, messageID int64) ([]*models.Recipient, error) {
	query := `
		SELECT id, message_id, phone, name, member_id, body, status, cost, last_error, sent_at, created_at
		FROM message_recipients
		WHERE message_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	defer rows.Close()

	recipients := []*models.Recipient{}
	for rows.Next() {
		recipient := &models.Recipient{}
		err := rows.Scan(
			&recipient.ID,
			&recipient.MessageID,
			&recipient.Phone,
			&recipient.Name,
			&recipient.MemberID,
			&recipient.Body,
			&recipient.Status,
			&recipient.Cost,
			&recipient.LastError,
			&recipient.SentAt,
			&recipient.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		recipients = append(recipients, recipient)
	}

	return recipients, nil
}

// UpdateBodies persists personalized bodies in one transaction
func (r *recipientRepository) UpdateBodies(ctx context.Context, bodies map[int64]string) error {
	if len(bodies) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE message_recipients SET body = $1 WHERE id = $2`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for id, body := range bodies {
		if _, err := stmt.ExecContext(ctx, body, id); err != nil {
			return fmt.Errorf("failed to update recipient body: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// MarkBatch applies one status to every recipient in a batch
func (r *recipientRepository) MarkBatch(ctx context.Context, ids []int64, status models.RecipientStatus, lastError *string, sentAt *time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE message_recipients
		SET status = $1, last_error = $2, sent_at = COALESCE($3, sent_at)
		WHERE id = ANY($4)
	`

	if _, err := r.db.ExecContext(ctx, query, status, lastError, sentAt, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to mark recipient batch: %w", err)
	}

	return nil
}

// UpdateDelivery applies an asynchronous delivery outcome to one recipient
func (r *recipientRepository) UpdateDelivery(ctx context.Context, id int64, status models.RecipientStatus, lastError *string, sentAt *time.Time) error {
	query := `
		UPDATE message_recipients
		SET status = $1, last_error = COALESCE($2, last_error), sent_at = COALESCE($3, sent_at)
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, status, lastError, sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to update recipient delivery: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("recipient not found")
	}

	return nil
}
