package repository

import (
	"context"
	"database/sql"
	"fmt"

	"orgnotify/internal/models"
)

type contributionRepository struct {
	db *sql.DB
}

// NewContributionRepository creates a new contribution repository
func NewContributionRepository(db *sql.DB) ContributionRepository {
	return &contributionRepository{db: db}
}

// Create records a contribution
func (r *contributionRepository) Create(ctx context.Context, contribution *models.Contribution) error {
	query := `
		INSERT INTO contributions (tenant_id, member_id, category_id, amount, currency, given_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		contribution.TenantID,
		contribution.MemberID,
		contribution.CategoryID,
		contribution.Amount,
		contribution.Currency,
		contribution.GivenAt,
	).Scan(&contribution.ID)
	if err != nil {
		return fmt.Errorf("failed to create contribution: %w", err)
	}

	return nil
}

// GetCategory retrieves a contribution category by ID within a tenant
func (r *contributionRepository) GetCategory(ctx context.Context, tenantID string, id int64) (*models.ContributionCategory, error) {
	query := `
		SELECT id, tenant_id, name, member_tracked
		FROM contribution_categories
		WHERE tenant_id = $1 AND id = $2
	`

	category := &models.ContributionCategory{}
	err := r.db.QueryRowContext(ctx, query, tenantID, id).Scan(
		&category.ID,
		&category.TenantID,
		&category.Name,
		&category.MemberTracked,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("contribution category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contribution category: %w", err)
	}

	return category, nil
}
