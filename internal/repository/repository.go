package repository

import (
	"context"
	"database/sql"
	"time"

	"orgnotify/internal/models"
)

// MessageRepository defines message data access operations
type MessageRepository interface {
	// CreateWithRecipients persists a message and its full recipient set in
	// one transaction. RecipientCount is fixed at this point.
	CreateWithRecipients(ctx context.Context, message *models.Message, recipients []*models.Recipient) error
	GetByID(ctx context.Context, tenantID string, id int64) (*models.Message, error)
	GetWithRecipients(ctx context.Context, tenantID string, id int64) (*models.MessageWithRecipients, error)
	UpdateStatus(ctx context.Context, id int64, status models.MessageStatus, lastError *string, sentAt *time.Time) error
	// ExistsWithTitleSince reports whether the tenant already has a message
	// with the given derived title created at or after the given instant.
	// The automation sweeps use it for same-day duplicate suppression.
	ExistsWithTitleSince(ctx context.Context, tenantID, title string, since time.Time) (bool, error)
}

// RecipientRepository defines recipient data access operations
type RecipientRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Recipient, error)
	ListByMessageID(ctx context.Context, messageID int64) ([]*models.Recipient, error)
	// UpdateBodies persists personalized bodies keyed by recipient id
	UpdateBodies(ctx context.Context, bodies map[int64]string) error
	// MarkBatch applies one status to every recipient in a batch
	MarkBatch(ctx context.Context, ids []int64, status models.RecipientStatus, lastError *string, sentAt *time.Time) error
	// UpdateDelivery applies an asynchronous delivery outcome to one recipient
	UpdateDelivery(ctx context.Context, id int64, status models.RecipientStatus, lastError *string, sentAt *time.Time) error
}

// ProviderConfigRepository defines provider credential data access operations
type ProviderConfigRepository interface {
	// GetActive returns the tenant's active config, or nil when none exists
	GetActive(ctx context.Context, tenantID string) (*models.ProviderConfig, error)
	GetByID(ctx context.Context, tenantID string, id int64) (*models.ProviderConfig, error)
	// Activate flips the active flag to the given config and clears it on
	// every other config of the tenant, in a single transaction.
	Activate(ctx context.Context, tenantID string, id int64) error
	// ListActiveTenantIDs returns every tenant with an active config; the
	// sweep scheduler iterates these.
	ListActiveTenantIDs(ctx context.Context) ([]string, error)
}

// SettingsRepository defines automation settings and template data access
type SettingsRepository interface {
	// Get returns the tenant's settings row, creating a default one lazily
	Get(ctx context.Context, tenantID string) (*models.NotificationSettings, error)
	Update(ctx context.Context, settings *models.NotificationSettings) error
	GetTemplate(ctx context.Context, tenantID string, id int64) (*models.Template, error)
}

// DirectoryRepository defines read-only access to the member directory
type DirectoryRepository interface {
	GetByIDs(ctx context.Context, tenantID string, ids []string) ([]*models.Member, error)
	ListActive(ctx context.Context, tenantID string) ([]*models.Member, error)
	MembersOfGroups(ctx context.Context, tenantID string, groupIDs []string) ([]*models.Member, error)
	BirthdaysOn(ctx context.Context, tenantID string, month time.Month, day int) ([]*models.Member, error)
}

// ContributionRepository defines contribution data access operations
type ContributionRepository interface {
	Create(ctx context.Context, contribution *models.Contribution) error
	GetCategory(ctx context.Context, tenantID string, id int64) (*models.ContributionCategory, error)
}

// EventRepository defines event data access for the reminder sweep
type EventRepository interface {
	// DueForReminder returns events whose reminder is enabled and whose
	// configured lead time matches today relative to the event date.
	DueForReminder(ctx context.Context, tenantID string, today time.Time) ([]*models.Event, error)
}

// DB is a wrapper around *sql.DB to allow passing in transaction
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
