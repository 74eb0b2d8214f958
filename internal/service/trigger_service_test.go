package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"orgnotify/internal/models"
)

type triggerFixture struct {
	svc           *TriggerService
	messageRepo   *mockMessageRepository
	settingsRepo  *mockSettingsRepository
	configRepo    *mockProviderConfigRepository
	directoryRepo *mockDirectoryRepository
	contribRepo   *mockContributionRepository
	eventRepo     *mockEventRepository
	gateway       *mockProvider
}

func newTriggerFixture() *triggerFixture {
	f := &triggerFixture{
		messageRepo:   newMockMessageRepository(),
		settingsRepo:  newMockSettingsRepository(),
		configRepo:    newMockProviderConfigRepository(),
		directoryRepo: newMockDirectoryRepository(),
		contribRepo:   newMockContributionRepository(),
		eventRepo:     newMockEventRepository(),
		gateway:       &mockProvider{},
	}
	dispatch, _ := newTestDispatcher(f.messageRepo, newMockRecipientRepository(), f.configRepo, f.directoryRepo, f.gateway)
	f.svc = NewTriggerService(dispatch, f.messageRepo, f.settingsRepo, f.configRepo, f.directoryRepo, f.contribRepo, f.eventRepo)
	return f
}

func enabledSettings(tenantID string) *models.NotificationSettings {
	return &models.NotificationSettings{
		TenantID:                tenantID,
		BirthdayEnabled:         true,
		BirthdayTemplateID:      int64Ptr(1),
		ContributionEnabled:     true,
		ContributionTemplateID:  int64Ptr(2),
		EventReminderEnabled:    true,
		EventReminderTemplateID: int64Ptr(3),
	}
}

func TestBirthdaySweepDisabledIsSkipped(t *testing.T) {
	f := newTriggerFixture()
	f.settingsRepo.GetFunc = func(ctx context.Context, tenantID string) (*models.NotificationSettings, error) {
		return &models.NotificationSettings{TenantID: tenantID}, nil
	}

	sent, err := f.svc.RunBirthdaySweep(context.Background(), testTenantID)
	assertNoError(t, err)
	assertEqual(t, sent, 0)
	assertEqual(t, f.directoryRepo.Calls["BirthdaysOn"], 0)
}

func TestBirthdaySweepSuppressesDuplicateRun(t *testing.T) {
	f := newTriggerFixture()
	f.settingsRepo.GetFunc = func(ctx context.Context, tenantID string) (*models.NotificationSettings, error) {
		return enabledSettings(tenantID), nil
	}
	f.messageRepo.ExistsWithTitleSinceFunc = func(ctx context.Context, tenantID, title string, since time.Time) (bool, error) {
		return true, nil
	}

	sent, err := f.svc.RunBirthdaySweep(context.Background(), testTenantID)
	assertNoError(t, err)
	assertEqual(t, sent, 0)
	assertEqual(t, len(f.gateway.Batches), 0)
}

func TestBirthdaySweepDispatchesToMatchingMembers(t *testing.T) {
	f := newTriggerFixture()
	f.settingsRepo.GetFunc = func(ctx context.Context, tenantID string) (*models.NotificationSettings, error) {
		return enabledSettings(tenantID), nil
	}
	f.settingsRepo.GetTemplateFunc = func(ctx context.Context, tenantID string, id int64) (*models.Template, error) {
		return &models.Template{ID: id, Body: "Happy birthday {first_name}!"}, nil
	}
	f.directoryRepo.BirthdaysOnFunc = func(ctx context.Context, tenantID string, month time.Month, day int) ([]*models.Member, error) {
		grace := newTestMember("3f8a1c2e-9b4d-4e6f-8a70-12c3d4e5f601", "Grace", "Mwangi")
		john := newTestMember("3f8a1c2e-9b4d-4e6f-8a70-12c3d4e5f602", "John", "Ochieng")
		john.Phone = "254700100002"
		return []*models.Member{grace, john}, nil
	}
	f.directoryRepo.GetByIDsFunc = func(ctx context.Context, tenantID string, ids []string) ([]*models.Member, error) {
		grace := newTestMember("3f8a1c2e-9b4d-4e6f-8a70-12c3d4e5f601", "Grace", "Mwangi")
		john := newTestMember("3f8a1c2e-9b4d-4e6f-8a70-12c3d4e5f602", "John", "Ochieng")
		john.Phone = "254700100002"
		return []*models.Member{grace, john}, nil
	}

	sent, err := f.svc.RunBirthdaySweep(context.Background(), testTenantID)
	assertNoError(t, err)
	assertEqual(t, sent, 2)

	if len(f.gateway.Batches) != 1 {
		t.Fatalf("Expected 1 gateway batch but got %d", len(f.gateway.Batches))
	}
	// Personalized per member, automation prefix on the correlation id
	assertEqual(t, f.gateway.Batches[0][0].Message, "Happy birthday Grace!")
	assertEqual(t, f.gateway.Batches[0][1].Message, "Happy birthday John!")
	for _, dest := range f.gateway.Batches[0] {
		if !strings.HasPrefix(dest.CorrelationID, "AUTO_") {
			t.Errorf("Expected AUTO correlation prefix but got %q", dest.CorrelationID)
		}
	}
}

func TestBirthdaySweepNoMatchesSendsNothing(t *testing.T) {
	f := newTriggerFixture()
	f.settingsRepo.GetFunc = func(ctx context.Context, tenantID string) (*models.NotificationSettings, error) {
		return enabledSettings(tenantID), nil
	}

	sent, err := f.svc.RunBirthdaySweep(context.Background(), testTenantID)
	assertNoError(t, err)
	assertEqual(t, sent, 0)
	assertEqual(t, len(f.gateway.Batches), 0)
}

func newTestContribution() *models.Contribution {
	return &models.Contribution{
		ID:         1,
		TenantID:   testTenantID,
		MemberID:   "3f8a1c2e-9b4d-4e6f-8a70-12c3d4e5f601",
		CategoryID: 4,
		Amount:     500,
		Currency:   "KES",
		GivenAt:    time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestHandleContributionUntrackedCategorySkips(t *testing.T) {
	f := newTriggerFixture()
	f.contribRepo.GetCategoryFunc = func(ctx context.Context, tenantID string, id int64) (*models.ContributionCategory, error) {
		return &models.ContributionCategory{ID: id, Name: "Open Offering", MemberTracked: false}, nil
	}

	f.svc.HandleContribution(context.Background(), newTestContribution())
	assertEqual(t, len(f.gateway.Batches), 0)
}

func TestHandleContributionDisabledSkips(t *testing.T) {
	f := newTriggerFixture()
	f.settingsRepo.GetFunc = func(ctx context.Context, tenantID string) (*models.NotificationSettings, error) {
		return &models.NotificationSettings{TenantID: tenantID}, nil
	}

	f.svc.HandleContribution(context.Background(), newTestContribution())
	assertEqual(t, len(f.gateway.Batches), 0)
}

func TestHandleContributionMemberWithoutPhoneSkips(t *testing.T) {
	f := newTriggerFixture()
	f.settingsRepo.GetFunc = func(ctx context.Context, tenantID string) (*models.NotificationSettings, error) {
		return enabledSettings(tenantID), nil
	}
	f.directoryRepo.GetByIDsFunc = func(ctx context.Context, tenantID string, ids []string) ([]*models.Member, error) {
		member := newTestMember(ids[0], "Grace", "Mwangi")
		member.Phone = ""
		return []*models.Member{member}, nil
	}

	f.svc.HandleContribution(context.Background(), newTestContribution())
	assertEqual(t, len(f.gateway.Batches), 0)
}

func TestHandleContributionSendsReceipt(t *testing.T) {
	f := newTriggerFixture()
	f.settingsRepo.GetFunc = func(ctx context.Context, tenantID string) (*models.NotificationSettings, error) {
		return enabledSettings(tenantID), nil
	}
	f.settingsRepo.GetTemplateFunc = func(ctx context.Context, tenantID string, id int64) (*models.Template, error) {
		return &models.Template{ID: id, Body: "Dear {first_name}, received {currency} {amount} for {category}."}, nil
	}
	f.contribRepo.GetCategoryFunc = func(ctx context.Context, tenantID string, id int64) (*models.ContributionCategory, error) {
		return &models.ContributionCategory{ID: id, Name: "Tithe", MemberTracked: true}, nil
	}
	f.directoryRepo.GetByIDsFunc = func(ctx context.Context, tenantID string, ids []string) ([]*models.Member, error) {
		return []*models.Member{newTestMember(ids[0], "Grace", "Mwangi")}, nil
	}

	f.svc.HandleContribution(context.Background(), newTestContribution())

	if len(f.gateway.Batches) != 1 || len(f.gateway.Batches[0]) != 1 {
		t.Fatalf("Expected exactly one dispatched recipient, got %v", f.gateway.batchSizes())
	}
	assertEqual(t, f.gateway.Batches[0][0].Message, "Dear Grace, received KES 500.00 for Tithe.")
}

func TestEventReminderSweepResolvesGroupAudience(t *testing.T) {
	f := newTriggerFixture()
	f.settingsRepo.GetFunc = func(ctx context.Context, tenantID string) (*models.NotificationSettings, error) {
		return enabledSettings(tenantID), nil
	}
	f.settingsRepo.GetTemplateFunc = func(ctx context.Context, tenantID string, id int64) (*models.Template, error) {
		return &models.Template{ID: id, Body: "Reminder: {event} on {date}"}, nil
	}
	f.eventRepo.DueForReminderFunc = func(ctx context.Context, tenantID string, today time.Time) ([]*models.Event, error) {
		return []*models.Event{{
			ID:              5,
			TenantID:        tenantID,
			Title:           "Youth Fellowship",
			StartsAt:        time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC),
			ReminderEnabled: true,
			ReminderLead:    models.ReminderLeadDayBefore,
			Audience:        models.EventAudienceGroups,
			GroupIDs:        []string{"9e0f1a2b-3c4d-5e6f-7a8b-9c0d1e2f3a4b"},
		}}, nil
	}
	f.directoryRepo.MembersOfGroupsFunc = func(ctx context.Context, tenantID string, groupIDs []string) ([]*models.Member, error) {
		return []*models.Member{newTestMember("3f8a1c2e-9b4d-4e6f-8a70-12c3d4e5f601", "Grace", "Mwangi")}, nil
	}
	f.directoryRepo.GetByIDsFunc = func(ctx context.Context, tenantID string, ids []string) ([]*models.Member, error) {
		return []*models.Member{newTestMember(ids[0], "Grace", "Mwangi")}, nil
	}

	sent, err := f.svc.RunEventReminderSweep(context.Background(), testTenantID)
	assertNoError(t, err)
	assertEqual(t, sent, 1)
	assertEqual(t, f.directoryRepo.Calls["MembersOfGroups"], 1)
	assertEqual(t, f.gateway.Batches[0][0].Message, "Reminder: Youth Fellowship on 2 March 2026")
}

func TestEventReminderSweepSkipsAlreadyReminded(t *testing.T) {
	f := newTriggerFixture()
	f.settingsRepo.GetFunc = func(ctx context.Context, tenantID string) (*models.NotificationSettings, error) {
		return enabledSettings(tenantID), nil
	}
	f.eventRepo.DueForReminderFunc = func(ctx context.Context, tenantID string, today time.Time) ([]*models.Event, error) {
		return []*models.Event{{
			ID:       5,
			TenantID: tenantID,
			Title:    "Sunday Service",
			StartsAt: time.Now(),
			Audience: models.EventAudienceAll,
		}}, nil
	}
	f.messageRepo.ExistsWithTitleSinceFunc = func(ctx context.Context, tenantID, title string, since time.Time) (bool, error) {
		return true, nil
	}

	sent, err := f.svc.RunEventReminderSweep(context.Background(), testTenantID)
	assertNoError(t, err)
	assertEqual(t, sent, 0)
	assertEqual(t, len(f.gateway.Batches), 0)
}
