package models

import (
	"fmt"
	"time"
)

// ProviderConfig represents a tenant's credentials for the SMS gateway.
// At most one row per tenant carries Active = true; the application layer
// enforces that, not the store.
type ProviderConfig struct {
	ID        int64     `json:"id" db:"id"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	APIKey    string    `json:"-" db:"api_key"`
	PartnerID string    `json:"partner_id" db:"partner_id"`
	SenderID  string    `json:"sender_id" db:"sender_id"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks the credential fields are usable before any network call
func (c *ProviderConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key is required")
	}
	if c.PartnerID == "" {
		return fmt.Errorf("partner id is required")
	}
	if c.SenderID == "" {
		return fmt.Errorf("sender id is required")
	}
	return nil
}
