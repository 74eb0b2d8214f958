package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"orgnotify/internal/models"
	"orgnotify/internal/provider"
	"orgnotify/internal/repository"
)

// GatewayClient is the slice of the provider adapter the settings surface
// needs for balance and connection checks.
type GatewayClient interface {
	GetBalance(ctx context.Context, creds *models.ProviderConfig) (*provider.Balance, error)
	TestConnection(ctx context.Context, creds *models.ProviderConfig, testPhone string) (provider.Outcome, error)
}

// SettingsService handles provider configuration and automation settings
type SettingsService struct {
	providerCfgRepo repository.ProviderConfigRepository
	settingsRepo    repository.SettingsRepository
	gateway         GatewayClient
}

// NewSettingsService creates a new settings service
func NewSettingsService(providerCfgRepo repository.ProviderConfigRepository, settingsRepo repository.SettingsRepository, gateway GatewayClient) *SettingsService {
	return &SettingsService{
		providerCfgRepo: providerCfgRepo,
		settingsRepo:    settingsRepo,
		gateway:         gateway,
	}
}

// GetNotificationSettings returns the tenant's automation settings,
// creating the default row on first read.
func (s *SettingsService) GetNotificationSettings(ctx context.Context, tenantID string) (*models.NotificationSettings, error) {
	settings, err := s.settingsRepo.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// UpdateNotificationSettings writes the tenant's automation settings. An
// enabled trigger must reference a template.
func (s *SettingsService) UpdateNotificationSettings(ctx context.Context, settings *models.NotificationSettings) error {
	if settings.TenantID == "" {
		return &ValidationError{Message: "tenant id is required"}
	}
	if settings.BirthdayEnabled && settings.BirthdayTemplateID == nil {
		return &ValidationError{Message: "birthday notifications require a template"}
	}
	if settings.ContributionEnabled && settings.ContributionTemplateID == nil {
		return &ValidationError{Message: "contribution notifications require a template"}
	}
	if settings.EventReminderEnabled && settings.EventReminderTemplateID == nil {
		return &ValidationError{Message: "event reminders require a template"}
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

// ActivateProviderConfig makes one config the tenant's active one and
// deactivates every other, atomically.
func (s *SettingsService) ActivateProviderConfig(ctx context.Context, tenantID string, id int64) error {
	err := s.providerCfgRepo.Activate(ctx, tenantID, id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return &NotFoundError{Resource: "provider config", ID: strconv.FormatInt(id, 10)}
		}
		return fmt.Errorf("failed to activate provider config: %w", err)
	}
	return nil
}

// GetBalance queries the gateway balance with the tenant's active
// credentials. provider.ErrUnauthorized passes through untouched so the
// caller can prompt for re-configuration.
func (s *SettingsService) GetBalance(ctx context.Context, tenantID string) (*provider.Balance, error) {
	config, err := s.activeConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.gateway.GetBalance(ctx, config)
}

// TestConnection sends a single test message with the tenant's active
// credentials and returns the collapsed outcome.
func (s *SettingsService) TestConnection(ctx context.Context, tenantID, testPhone string) (provider.Outcome, error) {
	if testPhone == "" {
		return provider.Outcome{}, &ValidationError{Message: "test phone is required"}
	}
	config, err := s.activeConfig(ctx, tenantID)
	if err != nil {
		return provider.Outcome{}, err
	}
	return s.gateway.TestConnection(ctx, config, testPhone)
}

func (s *SettingsService) activeConfig(ctx context.Context, tenantID string) (*models.ProviderConfig, error) {
	config, err := s.providerCfgRepo.GetActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up provider config: %w", err)
	}
	if config == nil {
		return nil, &ConfigurationError{Message: "no active SMS provider configuration for this organization"}
	}
	return config, nil
}
