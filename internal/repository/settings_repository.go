package repository

import (
	"context"
	"database/sql"
	"fmt"

	"orgnotify/internal/models"
)

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the tenant's settings row, inserting a default one when the
// tenant has never touched its settings.
func (r *settingsRepository) Get(ctx context.Context, tenantID string) (*models.NotificationSettings, error) {
	query := `
		INSERT INTO notification_settings (tenant_id)
		VALUES ($1)
		ON CONFLICT (tenant_id) DO UPDATE SET tenant_id = EXCLUDED.tenant_id
		RETURNING tenant_id, birthday_enabled, birthday_template_id, contribution_enabled, contribution_template_id, event_reminder_enabled, event_reminder_template_id, updated_at
	`

	settings := &models.NotificationSettings{}
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&settings.TenantID,
		&settings.BirthdayEnabled,
		&settings.BirthdayTemplateID,
		&settings.ContributionEnabled,
		&settings.ContributionTemplateID,
		&settings.EventReminderEnabled,
		&settings.EventReminderTemplateID,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification settings: %w", err)
	}

	return settings, nil
}

// Update writes the tenant's settings row
func (r *settingsRepository) Update(ctx context.Context, settings *models.NotificationSettings) error {
	query := `
		INSERT INTO notification_settings (tenant_id, birthday_enabled, birthday_template_id, contribution_enabled, contribution_template_id, event_reminder_enabled, event_reminder_template_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (tenant_id) DO UPDATE SET
			birthday_enabled = EXCLUDED.birthday_enabled,
			birthday_template_id = EXCLUDED.birthday_template_id,
			contribution_enabled = EXCLUDED.contribution_enabled,
			contribution_template_id = EXCLUDED.contribution_template_id,
			event_reminder_enabled = EXCLUDED.event_reminder_enabled,
			event_reminder_template_id = EXCLUDED.event_reminder_template_id,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		settings.TenantID,
		settings.BirthdayEnabled,
		settings.BirthdayTemplateID,
		settings.ContributionEnabled,
		settings.ContributionTemplateID,
		settings.EventReminderEnabled,
		settings.EventReminderTemplateID,
	)
	if err != nil {
		return fmt.Errorf("failed to update notification settings: %w", err)
	}

	return nil
}

// GetTemplate retrieves a template by ID within a tenant
func (r *settingsRepository) GetTemplate(ctx context.Context, tenantID string, id int64) (*models.Template, error) {
	query := `
		SELECT id, tenant_id, name, body, created_at
		FROM templates
		WHERE tenant_id = $1 AND id = $2
	`

	template := &models.Template{}
	err := r.db.QueryRowContext(ctx, query, tenantID, id).Scan(
		&template.ID,
		&template.TenantID,
		&template.Name,
		&template.Body,
		&template.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("template not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return template, nil
}
