package service

import (
	"context"
	"time"

	"orgnotify/internal/models"
	"orgnotify/internal/provider"
)

// mockMessageRepository mocks repository.MessageRepository
type mockMessageRepository struct {
	CreateWithRecipientsFunc func(ctx context.Context, message *models.Message, recipients []*models.Recipient) error
	GetByIDFunc              func(ctx context.Context, tenantID string, id int64) (*models.Message, error)
	GetWithRecipientsFunc    func(ctx context.Context, tenantID string, id int64) (*models.MessageWithRecipients, error)
	UpdateStatusFunc         func(ctx context.Context, id int64, status models.MessageStatus, lastError *string, sentAt *time.Time) error
	ExistsWithTitleSinceFunc func(ctx context.Context, tenantID, title string, since time.Time) (bool, error)

	Calls map[string]int
	// StatusUpdates records every UpdateStatus call in order
	StatusUpdates []statusUpdate
}

type statusUpdate struct {
	ID        int64
	Status    models.MessageStatus
	LastError *string
	SentAt    *time.Time
}

func newMockMessageRepository() *mockMessageRepository {
	return &mockMessageRepository{Calls: make(map[string]int)}
}

func (m *mockMessageRepository) CreateWithRecipients(ctx context.Context, message *models.Message, recipients []*models.Recipient) error {
	m.Calls["CreateWithRecipients"]++
	if m.CreateWithRecipientsFunc != nil {
		return m.CreateWithRecipientsFunc(ctx, message, recipients)
	}
	message.ID = 1
	message.RecipientCount = len(recipients)
	message.CreatedAt = time.Now()
	for i, recipient := range recipients {
		recipient.ID = int64(i + 1)
		recipient.MessageID = message.ID
		recipient.CreatedAt = message.CreatedAt
	}
	return nil
}

func (m *mockMessageRepository) GetByID(ctx context.Context, tenantID string, id int64) (*models.Message, error) {
	m.Calls["GetByID"]++
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	return &models.Message{ID: id, TenantID: tenantID, Body: "hello", Status: models.MessageStatusSent}, nil
}

func (m *mockMessageRepository) GetWithRecipients(ctx context.Context, tenantID string, id int64) (*models.MessageWithRecipients, error) {
	m.Calls["GetWithRecipients"]++
	if m.GetWithRecipientsFunc != nil {
		return m.GetWithRecipientsFunc(ctx, tenantID, id)
	}
	return nil, nil
}

func (m *mockMessageRepository) UpdateStatus(ctx context.Context, id int64, status models.MessageStatus, lastError *string, sentAt *time.Time) error {
	m.Calls["UpdateStatus"]++
	m.StatusUpdates = append(m.StatusUpdates, statusUpdate{ID: id, Status: status, LastError: lastError, SentAt: sentAt})
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, lastError, sentAt)
	}
	return nil
}

func (m *mockMessageRepository) ExistsWithTitleSince(ctx context.Context, tenantID, title string, since time.Time) (bool, error) {
	m.Calls["ExistsWithTitleSince"]++
	if m.ExistsWithTitleSinceFunc != nil {
		return m.ExistsWithTitleSinceFunc(ctx, tenantID, title, since)
	}
	return false, nil
}

// lastStatus returns the final recorded message status update
func (m *mockMessageRepository) lastStatus() statusUpdate {
	if len(m.StatusUpdates) == 0 {
		return statusUpdate{}
	}
	return m.StatusUpdates[len(m.StatusUpdates)-1]
}

// mockRecipientRepository mocks repository.RecipientRepository
type mockRecipientRepository struct {
	GetByIDFunc         func(ctx context.Context, id int64) (*models.Recipient, error)
	ListByMessageIDFunc func(ctx context.Context, messageID int64) ([]*models.Recipient, error)
	UpdateBodiesFunc    func(ctx context.Context, bodies map[int64]string) error
	MarkBatchFunc       func(ctx context.Context, ids []int64, status models.RecipientStatus, lastError *string, sentAt *time.Time) error
	UpdateDeliveryFunc  func(ctx context.Context, id int64, status models.RecipientStatus, lastError *string, sentAt *time.Time) error

	Calls map[string]int
	// BatchMarks records every MarkBatch call in order
	BatchMarks []batchMark
}

type batchMark struct {
	IDs       []int64
	Status    models.RecipientStatus
	LastError *string
}

func newMockRecipientRepository() *mockRecipientRepository {
	return &mockRecipientRepository{Calls: make(map[string]int)}
}

func (m *mockRecipientRepository) GetByID(ctx context.Context, id int64) (*models.Recipient, error) {
	m.Calls["GetByID"]++
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return newTestRecipient(id), nil
}

func (m *mockRecipientRepository) ListByMessageID(ctx context.Context, messageID int64) ([]*models.Recipient, error) {
	m.Calls["ListByMessageID"]++
	if m.ListByMessageIDFunc != nil {
		return m.ListByMessageIDFunc(ctx, messageID)
	}
	return []*models.Recipient{}, nil
}

func (m *mockRecipientRepository) UpdateBodies(ctx context.Context, bodies map[int64]string) error {
	m.Calls["UpdateBodies"]++
	if m.UpdateBodiesFunc != nil {
		return m.UpdateBodiesFunc(ctx, bodies)
	}
	return nil
}

func (m *mockRecipientRepository) MarkBatch(ctx context.Context, ids []int64, status models.RecipientStatus, lastError *string, sentAt *time.Time) error {
	m.Calls["MarkBatch"]++
	m.BatchMarks = append(m.BatchMarks, batchMark{IDs: ids, Status: status, LastError: lastError})
	if m.MarkBatchFunc != nil {
		return m.MarkBatchFunc(ctx, ids, status, lastError, sentAt)
	}
	return nil
}

func (m *mockRecipientRepository) UpdateDelivery(ctx context.Context, id int64, status models.RecipientStatus, lastError *string, sentAt *time.Time) error {
	m.Calls["UpdateDelivery"]++
	if m.UpdateDeliveryFunc != nil {
		return m.UpdateDeliveryFunc(ctx, id, status, lastError, sentAt)
	}
	return nil
}

// mockProviderConfigRepository mocks repository.ProviderConfigRepository
type mockProviderConfigRepository struct {
	GetActiveFunc           func(ctx context.Context, tenantID string) (*models.ProviderConfig, error)
	GetByIDFunc             func(ctx context.Context, tenantID string, id int64) (*models.ProviderConfig, error)
	ActivateFunc            func(ctx context.Context, tenantID string, id int64) error
	ListActiveTenantIDsFunc func(ctx context.Context) ([]string, error)

	Calls map[string]int
}

func newMockProviderConfigRepository() *mockProviderConfigRepository {
	return &mockProviderConfigRepository{Calls: make(map[string]int)}
}

func (m *mockProviderConfigRepository) GetActive(ctx context.Context, tenantID string) (*models.ProviderConfig, error) {
	m.Calls["GetActive"]++
	if m.GetActiveFunc != nil {
		return m.GetActiveFunc(ctx, tenantID)
	}
	return newTestConfig(), nil
}

func (m *mockProviderConfigRepository) GetByID(ctx context.Context, tenantID string, id int64) (*models.ProviderConfig, error) {
	m.Calls["GetByID"]++
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	return newTestConfig(), nil
}

func (m *mockProviderConfigRepository) Activate(ctx context.Context, tenantID string, id int64) error {
	m.Calls["Activate"]++
	if m.ActivateFunc != nil {
		return m.ActivateFunc(ctx, tenantID, id)
	}
	return nil
}

func (m *mockProviderConfigRepository) ListActiveTenantIDs(ctx context.Context) ([]string, error) {
	m.Calls["ListActiveTenantIDs"]++
	if m.ListActiveTenantIDsFunc != nil {
		return m.ListActiveTenantIDsFunc(ctx)
	}
	return []string{testTenantID}, nil
}

// mockSettingsRepository mocks repository.SettingsRepository
type mockSettingsRepository struct {
	GetFunc         func(ctx context.Context, tenantID string) (*models.NotificationSettings, error)
	UpdateFunc      func(ctx context.Context, settings *models.NotificationSettings) error
	GetTemplateFunc func(ctx context.Context, tenantID string, id int64) (*models.Template, error)

	Calls map[string]int
}

func newMockSettingsRepository() *mockSettingsRepository {
	return &mockSettingsRepository{Calls: make(map[string]int)}
}

func (m *mockSettingsRepository) Get(ctx context.Context, tenantID string) (*models.NotificationSettings, error) {
	m.Calls["Get"]++
	if m.GetFunc != nil {
		return m.GetFunc(ctx, tenantID)
	}
	return &models.NotificationSettings{TenantID: tenantID}, nil
}

func (m *mockSettingsRepository) Update(ctx context.Context, settings *models.NotificationSettings) error {
	m.Calls["Update"]++
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, settings)
	}
	return nil
}

func (m *mockSettingsRepository) GetTemplate(ctx context.Context, tenantID string, id int64) (*models.Template, error) {
	m.Calls["GetTemplate"]++
	if m.GetTemplateFunc != nil {
		return m.GetTemplateFunc(ctx, tenantID, id)
	}
	return &models.Template{ID: id, TenantID: tenantID, Name: "Test", Body: "Hello {first_name}"}, nil
}

// mockDirectoryRepository mocks repository.DirectoryRepository
type mockDirectoryRepository struct {
	GetByIDsFunc        func(ctx context.Context, tenantID string, ids []string) ([]*models.Member, error)
	ListActiveFunc      func(ctx context.Context, tenantID string) ([]*models.Member, error)
	MembersOfGroupsFunc func(ctx context.Context, tenantID string, groupIDs []string) ([]*models.Member, error)
	BirthdaysOnFunc     func(ctx context.Context, tenantID string, month time.Month, day int) ([]*models.Member, error)

	Calls map[string]int
}

func newMockDirectoryRepository() *mockDirectoryRepository {
	return &mockDirectoryRepository{Calls: make(map[string]int)}
}

func (m *mockDirectoryRepository) GetByIDs(ctx context.Context, tenantID string, ids []string) ([]*models.Member, error) {
	m.Calls["GetByIDs"]++
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, tenantID, ids)
	}
	return []*models.Member{}, nil
}

func (m *mockDirectoryRepository) ListActive(ctx context.Context, tenantID string) ([]*models.Member, error) {
	m.Calls["ListActive"]++
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, tenantID)
	}
	return []*models.Member{}, nil
}

func (m *mockDirectoryRepository) MembersOfGroups(ctx context.Context, tenantID string, groupIDs []string) ([]*models.Member, error) {
	m.Calls["MembersOfGroups"]++
	if m.MembersOfGroupsFunc != nil {
		return m.MembersOfGroupsFunc(ctx, tenantID, groupIDs)
	}
	return []*models.Member{}, nil
}

func (m *mockDirectoryRepository) BirthdaysOn(ctx context.Context, tenantID string, month time.Month, day int) ([]*models.Member, error) {
	m.Calls["BirthdaysOn"]++
	if m.BirthdaysOnFunc != nil {
		return m.BirthdaysOnFunc(ctx, tenantID, month, day)
	}
	return []*models.Member{}, nil
}

// mockContributionRepository mocks repository.ContributionRepository
type mockContributionRepository struct {
	CreateFunc      func(ctx context.Context, contribution *models.Contribution) error
	GetCategoryFunc func(ctx context.Context, tenantID string, id int64) (*models.ContributionCategory, error)

	Calls map[string]int
}

func newMockContributionRepository() *mockContributionRepository {
	return &mockContributionRepository{Calls: make(map[string]int)}
}

func (m *mockContributionRepository) Create(ctx context.Context, contribution *models.Contribution) error {
	m.Calls["Create"]++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, contribution)
	}
	contribution.ID = 1
	return nil
}

func (m *mockContributionRepository) GetCategory(ctx context.Context, tenantID string, id int64) (*models.ContributionCategory, error) {
	m.Calls["GetCategory"]++
	if m.GetCategoryFunc != nil {
		return m.GetCategoryFunc(ctx, tenantID, id)
	}
	return &models.ContributionCategory{ID: id, TenantID: tenantID, Name: "Tithe", MemberTracked: true}, nil
}

// mockEventRepository mocks repository.EventRepository
type mockEventRepository struct {
	DueForReminderFunc func(ctx context.Context, tenantID string, today time.Time) ([]*models.Event, error)

	Calls map[string]int
}

func newMockEventRepository() *mockEventRepository {
	return &mockEventRepository{Calls: make(map[string]int)}
}

func (m *mockEventRepository) DueForReminder(ctx context.Context, tenantID string, today time.Time) ([]*models.Event, error) {
	m.Calls["DueForReminder"]++
	if m.DueForReminderFunc != nil {
		return m.DueForReminderFunc(ctx, tenantID, today)
	}
	return []*models.Event{}, nil
}

// mockProvider mocks the SMSProvider slice of the gateway client
type mockProvider struct {
	SendFunc func(ctx context.Context, creds *models.ProviderConfig, destinations []provider.Destination) (provider.Outcome, error)

	// Batches records the destinations of every Send call in order
	Batches [][]provider.Destination
}

func (m *mockProvider) Send(ctx context.Context, creds *models.ProviderConfig, destinations []provider.Destination) (provider.Outcome, error) {
	m.Batches = append(m.Batches, destinations)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, creds, destinations)
	}
	return provider.Outcome{Success: true}, nil
}

func (m *mockProvider) Normalize(phone string) string {
	return provider.NormalizePhone(phone, provider.DefaultCountryCode)
}

// batchSizes returns the recipient count of each recorded batch
func (m *mockProvider) batchSizes() []int {
	sizes := make([]int, len(m.Batches))
	for i, batch := range m.Batches {
		sizes[i] = len(batch)
	}
	return sizes
}

// mockGateway mocks the GatewayClient used by the settings service
type mockGateway struct {
	GetBalanceFunc     func(ctx context.Context, creds *models.ProviderConfig) (*provider.Balance, error)
	TestConnectionFunc func(ctx context.Context, creds *models.ProviderConfig, testPhone string) (provider.Outcome, error)
}

func (m *mockGateway) GetBalance(ctx context.Context, creds *models.ProviderConfig) (*provider.Balance, error) {
	if m.GetBalanceFunc != nil {
		return m.GetBalanceFunc(ctx, creds)
	}
	return &provider.Balance{Cash: 100}, nil
}

func (m *mockGateway) TestConnection(ctx context.Context, creds *models.ProviderConfig, testPhone string) (provider.Outcome, error) {
	if m.TestConnectionFunc != nil {
		return m.TestConnectionFunc(ctx, creds, testPhone)
	}
	return provider.Outcome{Success: true}, nil
}
