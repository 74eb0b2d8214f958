package models

import "time"

// NotificationSettings represents a tenant's automation rules.
// One row per tenant, created lazily the first time it is read or written.
type NotificationSettings struct {
	TenantID                string    `json:"tenant_id" db:"tenant_id"`
	BirthdayEnabled         bool      `json:"birthday_enabled" db:"birthday_enabled"`
	BirthdayTemplateID      *int64    `json:"birthday_template_id,omitempty" db:"birthday_template_id"`
	ContributionEnabled     bool      `json:"contribution_enabled" db:"contribution_enabled"`
	ContributionTemplateID  *int64    `json:"contribution_template_id,omitempty" db:"contribution_template_id"`
	EventReminderEnabled    bool      `json:"event_reminder_enabled" db:"event_reminder_enabled"`
	EventReminderTemplateID *int64    `json:"event_reminder_template_id,omitempty" db:"event_reminder_template_id"`
	UpdatedAt               time.Time `json:"updated_at" db:"updated_at"`
}

// Template represents a reusable message body with placeholders
type Template struct {
	ID        int64     `json:"id" db:"id"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Name      string    `json:"name" db:"name"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
