package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"orgnotify/internal/models"
)

type eventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

// DueForReminder returns events whose reminder fires today: reminder
// enabled, and either the event is today with lead "day_of" or tomorrow
// with lead "day_before".
func (r *eventRepository) DueForReminder(ctx context.Context, tenantID string, today time.Time) ([]*models.Event, error) {
	day := today.Truncate(24 * time.Hour)
	query := `
		SELECT id, tenant_id, title, starts_at, reminder_enabled, reminder_lead, audience, group_ids, member_ids
		FROM events
		WHERE tenant_id = $1 AND reminder_enabled = true
		  AND (
			(reminder_lead = 'day_of' AND starts_at::date = $2::date)
			OR (reminder_lead = 'day_before' AND starts_at::date = ($2::date + 1))
		  )
		ORDER BY starts_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query due events: %w", err)
	}
	defer rows.Close()

	events := []*models.Event{}
	for rows.Next() {
		event := &models.Event{}
		err := rows.Scan(
			&event.ID,
			&event.TenantID,
			&event.Title,
			&event.StartsAt,
			&event.ReminderEnabled,
			&event.ReminderLead,
			&event.Audience,
			pq.Array(&event.GroupIDs),
			pq.Array(&event.MemberIDs),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, nil
}
