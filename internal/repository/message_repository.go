package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"orgnotify/internal/models"
)

type messageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{db: db}
}

// CreateWithRecipients creates a message and all its recipients atomically
func (r *messageRepository) CreateWithRecipients(ctx context.Context, message *models.Message, recipients []*models.Recipient) error {
	if len(recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	message.RecipientCount = len(recipients)

	err = tx.QueryRowContext(ctx, `
		INSERT INTO messages (tenant_id, title, body, recipient_type, recipient_count, status, template_id, provider_config_id, cost, last_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`,
		message.TenantID,
		message.Title,
		message.Body,
		message.RecipientType,
		message.RecipientCount,
		message.Status,
		message.TemplateID,
		message.ProviderConfigID,
		message.Cost,
		message.LastError,
	).Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO message_recipients (message_id, phone, name, member_id, body, status, cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare recipient statement: %w", err)
	}
	defer stmt.Close()

	for _, recipient := range recipients {
		recipient.MessageID = message.ID
		err := stmt.QueryRowContext(
			ctx,
			recipient.MessageID,
			recipient.Phone,
			recipient.Name,
			recipient.MemberID,
			recipient.Body,
			recipient.Status,
			recipient.Cost,
		).Scan(&recipient.ID, &recipient.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create recipient: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a message by ID within a tenant
func (r *messageRepository) GetByID(ctx context.Context, tenantID string, id int64) (*models.Message, error) {
	query := `
		SELECT id, tenant_id, title, body, recipient_type, recipient_count, status, template_id, provider_config_id, cost, last_error, created_at, sent_at
		FROM messages
		WHERE tenant_id = $1 AND id = $2
	`

	message := &models.Message{}
	err := r.db.QueryRowContext(ctx, query, tenantID, id).Scan(
		&message.ID,
		&message.TenantID,
		&message.Title,
		&message.Body,
		&message.RecipientType,
		&message.RecipientCount,
		&message.Status,
		&message.TemplateID,
		&message.ProviderConfigID,
		&message.Cost,
		&message.LastError,
		&message.CreatedAt,
		&message.SentAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("message not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	return message, nil
}

// GetWithRecipients retrieves a message with its full recipient set and outcome counts
func (r *messageRepository) GetWithRecipients(ctx context.Context, tenantID string, id int64) (*models.MessageWithRecipients, error) {
	message, err := r.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, message_id, phone, name, member_id, body, status, cost, last_error, sent_at, created_at
		FROM message_recipients
		WHERE message_id = $1
		ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipients: %w", err)
	}
	defer rows.Close()

	result := &models.MessageWithRecipients{Message: *message}
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
		result.Recipients = append(result.Recipients, recipient)

		result.Stats.Total++
		switch recipient.Status {
		case models.RecipientStatusSent:
			result.Stats.Sent++
		case models.RecipientStatusFailed:
			result.Stats.Failed++
		default:
			result.Stats.Pending++
		}
	}

	return result, nil
}

// UpdateStatus updates message status, error annotation and sent timestamp
func (r *messageRepository) UpdateStatus(ctx context.Context, id int64, status models.MessageStatus, lastError *string, sentAt *time.Time) error {
	query := `
		UPDATE messages
		SET status = $1, last_error = $2, sent_at = COALESCE($3, sent_at)
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, status, lastError, sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to update message status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("message not found")
	}

	return nil
}

// ExistsWithTitleSince checks the duplicate-suppression guard for automated sends
func (r *messageRepository) ExistsWithTitleSince(ctx context.Context, tenantID, title string, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM messages
			WHERE tenant_id = $1 AND title = $2 AND created_at >= $3
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, tenantID, title, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check for existing message: %w", err)
	}

	return exists, nil
}
