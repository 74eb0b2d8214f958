package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"orgnotify/internal/models"
)

type directoryRepository struct {
	db *sql.DB
}

// NewDirectoryRepository creates a new directory repository. The pipeline
// only ever reads from it.
func NewDirectoryRepository(db *sql.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

const memberColumns = `id, tenant_id, first_name, last_name, phone, birth_date, active`

func (r *directoryRepository) queryMembers(ctx context.Context, query string, args ...interface{}) ([]*models.Member, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	members := []*models.Member{}
	for rows.Next() {
		member := &models.Member{}
		err := rows.Scan(
			&member.ID,
			&member.TenantID,
			&member.FirstName,
			&member.LastName,
			&member.Phone,
			&member.BirthDate,
			&member.Active,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	return members, nil
}

// GetByIDs retrieves members by ID in one batch
func (r *directoryRepository) GetByIDs(ctx context.Context, tenantID string, ids []string) ([]*models.Member, error) {
	if len(ids) == 0 {
		return []*models.Member{}, nil
	}

	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE tenant_id = $1 AND id = ANY($2)
	`
	return r.queryMembers(ctx, query, tenantID, pq.Array(ids))
}

// ListActive retrieves every active member of a tenant
func (r *directoryRepository) ListActive(ctx context.Context, tenantID string) ([]*models.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE tenant_id = $1 AND active = true
		ORDER BY id
	`
	return r.queryMembers(ctx, query, tenantID)
}

// MembersOfGroups retrieves the active members of the selected groups
func (r *directoryRepository) MembersOfGroups(ctx context.Context, tenantID string, groupIDs []string) ([]*models.Member, error) {
	if len(groupIDs) == 0 {
		return []*models.Member{}, nil
	}

	query := `
		SELECT DISTINCT m.id, m.tenant_id, m.first_name, m.last_name, m.phone, m.birth_date, m.active
		FROM members m
		JOIN member_groups mg ON mg.member_id = m.id
		WHERE m.tenant_id = $1 AND m.active = true AND mg.group_id = ANY($2)
	`
	return r.queryMembers(ctx, query, tenantID, pq.Array(groupIDs))
}

// BirthdaysOn retrieves active members whose birth month and day match
func (r *directoryRepository) BirthdaysOn(ctx context.Context, tenantID string, month time.Month, day int) ([]*models.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE tenant_id = $1 AND active = true
		  AND birth_date IS NOT NULL
		  AND EXTRACT(MONTH FROM birth_date) = $2
		  AND EXTRACT(DAY FROM birth_date) = $3
	`
	return r.queryMembers(ctx, query, tenantID, int(month), day)
}
