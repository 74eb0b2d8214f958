package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"orgnotify/internal/correlation"
	"orgnotify/internal/models"
	"orgnotify/internal/observability"
	"orgnotify/internal/repository"
)

// TriggerService synthesizes send requests from domain events and hands
// them to the dispatcher. Every guard failure is a silent skip: an
// automated notification is a best-effort side effect, and the domain
// event that produced it must never fail because dispatch did.
type TriggerService struct {
	dispatch         *DispatchService
	messageRepo      repository.MessageRepository
	settingsRepo     repository.SettingsRepository
	providerCfgRepo  repository.ProviderConfigRepository
	directoryRepo    repository.DirectoryRepository
	contributionRepo repository.ContributionRepository
	eventRepo        repository.EventRepository
	now              func() time.Time
}

// NewTriggerService creates a new trigger service
func NewTriggerService(
	dispatch *DispatchService,
	messageRepo repository.MessageRepository,
	settingsRepo repository.SettingsRepository,
	providerCfgRepo repository.ProviderConfigRepository,
	directoryRepo repository.DirectoryRepository,
	contributionRepo repository.ContributionRepository,
	eventRepo repository.EventRepository,
) *TriggerService {
	return &TriggerService{
		dispatch:         dispatch,
		messageRepo:      messageRepo,
		settingsRepo:     settingsRepo,
		providerCfgRepo:  providerCfgRepo,
		directoryRepo:    directoryRepo,
		contributionRepo: contributionRepo,
		eventRepo:        eventRepo,
		now:              time.Now,
	}
}

// RunBirthdaySweep finds directory records whose birth month/day equals
// today and sends them the tenant's birthday template. Returns the number
// of recipients dispatched to.
func (s *TriggerService) RunBirthdaySweep(ctx context.Context, tenantID string) (int, error) {
	settings, err := s.settingsRepo.Get(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.BirthdayEnabled || settings.BirthdayTemplateID == nil {
		return 0, nil
	}

	template, err := s.settingsRepo.GetTemplate(ctx, tenantID, *settings.BirthdayTemplateID)
	if err != nil {
		log.Printf("WARN: birthday sweep for tenant %s skipped: %v", tenantID, err)
		return 0, nil
	}

	today := s.now()
	title := fmt.Sprintf("Birthday Wishes %s", today.Format("2006-01-02"))
	sent, err := s.alreadySentToday(ctx, tenantID, title, today)
	if err != nil {
		return 0, err
	}
	if sent {
		return 0, nil
	}

	members, err := s.directoryRepo.BirthdaysOn(ctx, tenantID, today.Month(), today.Day())
	if err != nil {
		return 0, fmt.Errorf("failed to find birthdays: %w", err)
	}
	if len(members) == 0 {
		return 0, nil
	}

	result, err := s.dispatchToMembers(ctx, tenantID, title, template.Body, members, map[string]string{
		"date": today.Format("2 January 2006"),
	})
	s.count("birthday", result, err)
	if err != nil {
		return 0, err
	}
	return result.RecipientCount, nil
}

// HandleContribution fires the acknowledgement notification for a freshly
// recorded contribution. It never returns an error: recording the
// contribution must not roll back because the notification failed.
func (s *TriggerService) HandleContribution(ctx context.Context, contribution *models.Contribution) {
	category, err := s.contributionRepo.GetCategory(ctx, contribution.TenantID, contribution.CategoryID)
	if err != nil || !category.MemberTracked {
		return
	}

	settings, err := s.settingsRepo.Get(ctx, contribution.TenantID)
	if err != nil || !settings.ContributionEnabled || settings.ContributionTemplateID == nil {
		return
	}

	config, err := s.providerCfgRepo.GetActive(ctx, contribution.TenantID)
	if err != nil || config == nil {
		return
	}

	template, err := s.settingsRepo.GetTemplate(ctx, contribution.TenantID, *settings.ContributionTemplateID)
	if err != nil {
		return
	}

	members, err := s.directoryRepo.GetByIDs(ctx, contribution.TenantID, []string{contribution.MemberID})
	if err != nil || len(members) == 0 || members[0].Phone == "" {
		return
	}

	title := fmt.Sprintf("Contribution Receipt %s", category.Name)
	result, err := s.dispatchToMembers(ctx, contribution.TenantID, title, template.Body, members, map[string]string{
		"amount":   fmt.Sprintf("%.2f", contribution.Amount),
		"currency": contribution.Currency,
		"category": category.Name,
		"date":     contribution.GivenAt.Format("2 January 2006"),
	})
	s.count("contribution", result, err)
	if err != nil {
		log.Printf("WARN: contribution notification for tenant %s skipped: %v", contribution.TenantID, err)
	}
}

// RunEventReminderSweep sends reminders for events whose configured lead
// time matches today. Returns the number of recipients dispatched to.
func (s *TriggerService) RunEventReminderSweep(ctx context.Context, tenantID string) (int, error) {
	settings, err := s.settingsRepo.Get(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.EventReminderEnabled || settings.EventReminderTemplateID == nil {
		return 0, nil
	}

	template, err := s.settingsRepo.GetTemplate(ctx, tenantID, *settings.EventReminderTemplateID)
	if err != nil {
		log.Printf("WARN: event reminder sweep for tenant %s skipped: %v", tenantID, err)
		return 0, nil
	}

	today := s.now()
	events, err := s.eventRepo.DueForReminder(ctx, tenantID, today)
	if err != nil {
		return 0, fmt.Errorf("failed to find due events: %w", err)
	}

	total := 0
	for _, event := range events {
		title := fmt.Sprintf("Event Reminder %s %s", event.Title, today.Format("2006-01-02"))
		sent, err := s.alreadySentToday(ctx, tenantID, title, today)
		if err != nil || sent {
			continue
		}

		members, err := s.resolveAudience(ctx, event)
		if err != nil {
			log.Printf("WARN: could not resolve audience for event %d: %v", event.ID, err)
			continue
		}
		if len(members) == 0 {
			continue
		}

		result, err := s.dispatchToMembers(ctx, tenantID, title, template.Body, members, map[string]string{
			"event": event.Title,
			"date":  event.StartsAt.Format("2 January 2006"),
		})
		s.count("event_reminder", result, err)
		if err != nil {
			log.Printf("WARN: event reminder for event %d skipped: %v", event.ID, err)
			continue
		}
		total += result.RecipientCount
	}

	return total, nil
}

// resolveAudience turns an event's audience mode into a member list
func (s *TriggerService) resolveAudience(ctx context.Context, event *models.Event) ([]*models.Member, error) {
	switch event.Audience {
	case models.EventAudienceAll:
		return s.directoryRepo.ListActive(ctx, event.TenantID)
	case models.EventAudienceGroups:
		return s.directoryRepo.MembersOfGroups(ctx, event.TenantID, event.GroupIDs)
	case models.EventAudienceMembers:
		return s.directoryRepo.GetByIDs(ctx, event.TenantID, event.MemberIDs)
	default:
		return nil, fmt.Errorf("unknown event audience %q", event.Audience)
	}
}

// dispatchToMembers builds a send request from directory records and runs it
func (s *TriggerService) dispatchToMembers(ctx context.Context, tenantID, title, body string, members []*models.Member, extra map[string]string) (*SendResult, error) {
	recipients := make([]RecipientInput, 0, len(members))
	for _, member := range members {
		if member.Phone == "" {
			continue
		}
		name := member.FullName()
		id := member.ID
		recipients = append(recipients, RecipientInput{
			Phone:    member.Phone,
			Name:     &name,
			MemberID: &id,
		})
	}

	return s.dispatch.Send(ctx, &SendRequest{
		TenantID:          tenantID,
		Title:             &title,
		Body:              body,
		RecipientType:     models.RecipientTypeIndividual,
		Recipients:        recipients,
		CorrelationPrefix: correlation.PrefixAuto,
		ExtraVars:         extra,
	})
}

// alreadySentToday is the duplicate-suppression guard shared by the sweeps
func (s *TriggerService) alreadySentToday(ctx context.Context, tenantID, title string, today time.Time) (bool, error) {
	startOfDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	exists, err := s.messageRepo.ExistsWithTitleSince(ctx, tenantID, title, startOfDay)
	if err != nil {
		return false, fmt.Errorf("failed duplicate check: %w", err)
	}
	return exists, nil
}

func (s *TriggerService) count(kind string, result *SendResult, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	} else if result != nil && result.Status == models.MessageStatusFailed {
		outcome = "failed"
	}
	observability.TriggerSends.WithLabelValues(kind, outcome).Inc()
}
