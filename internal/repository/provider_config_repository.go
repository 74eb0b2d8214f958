package repository

import (
	"context"
	"database/sql"
	"fmt"

	"orgnotify/internal/models"
)

type providerConfigRepository struct {
	db *sql.DB
}

// NewProviderConfigRepository creates a new provider config repository
func NewProviderConfigRepository(db *sql.DB) ProviderConfigRepository {
	return &providerConfigRepository{db: db}
}

const providerConfigColumns = `id, tenant_id, api_key, partner_id, sender_id, active, created_at, updated_at`

func scanProviderConfig(row *sql.Row) (*models.ProviderConfig, error) {
	config := &models.ProviderConfig{}
	err := row.Scan(
		&config.ID,
		&config.TenantID,
		&config.APIKey,
		&config.PartnerID,
		&config.SenderID,
		&config.Active,
		&config.CreatedAt,
		&config.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return config, nil
}

// GetActive returns the tenant's active config, or nil when none exists
func (r *providerConfigRepository) GetActive(ctx context.Context, tenantID string) (*models.ProviderConfig, error) {
	query := `
		SELECT ` + providerConfigColumns + `
		FROM provider_configs
		WHERE tenant_id = $1 AND active = true
		LIMIT 1
	`

	config, err := scanProviderConfig(r.db.QueryRowContext(ctx, query, tenantID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active provider config: %w", err)
	}

	return config, nil
}

// GetByID retrieves a provider config by ID within a tenant
func (r *providerConfigRepository) GetByID(ctx context.Context, tenantID string, id int64) (*models.ProviderConfig, error) {
	query := `
		SELECT ` + providerConfigColumns + `
		FROM provider_configs
		WHERE tenant_id = $1 AND id = $2
	`

	config, err := scanProviderConfig(r.db.QueryRowContext(ctx, query, tenantID, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("provider config not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provider config: %w", err)
	}

	return config, nil
}

// Activate flips the active flag to one config and clears all others for
// the tenant inside a single transaction, so a concurrent reader never
// observes zero or two active configs.
func (r *providerConfigRepository) Activate(ctx context.Context, tenantID string, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE provider_configs
		SET active = (id = $2), updated_at = NOW()
		WHERE tenant_id = $1
	`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to activate provider config: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("provider config not found")
	}

	// Verify the target row actually belongs to the tenant; the tenant-wide
	// UPDATE above succeeds even when the id does not exist.
	var active bool
	err = tx.QueryRowContext(ctx, `
		SELECT active FROM provider_configs WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(&active)
	if err == sql.ErrNoRows {
		return fmt.Errorf("provider config not found")
	}
	if err != nil {
		return fmt.Errorf("failed to verify provider config: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListActiveTenantIDs returns every tenant with an active provider config
func (r *providerConfigRepository) ListActiveTenantIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT tenant_id FROM provider_configs WHERE active = true ORDER BY tenant_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tenants: %w", err)
	}
	defer rows.Close()

	tenants := []string{}
	for rows.Next() {
		var tenantID string
		if err := rows.Scan(&tenantID); err != nil {
			return nil, fmt.Errorf("failed to scan tenant id: %w", err)
		}
		tenants = append(tenants, tenantID)
	}

	return tenants, nil
}
