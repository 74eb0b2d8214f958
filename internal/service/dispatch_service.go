package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"orgnotify/internal/correlation"
	"orgnotify/internal/models"
	"orgnotify/internal/observability"
	"orgnotify/internal/provider"
	"orgnotify/internal/repository"
)

const (
	// DefaultBatchSize is the maximum number of recipients per gateway call
	DefaultBatchSize = 100
	// DefaultBatchPause is the fixed pause between consecutive batches, a
	// courtesy to the rate-limited gateway.
	DefaultBatchPause = 500 * time.Millisecond
)

// SMSProvider is the slice of the gateway client the dispatcher needs
type SMSProvider interface {
	Send(ctx context.Context, creds *models.ProviderConfig, destinations []provider.Destination) (provider.Outcome, error)
	Normalize(phone string) string
}

// DispatchService turns a resolved send request into gateway calls and
// tracks the per-recipient outcome.
type DispatchService struct {
	messageRepo     repository.MessageRepository
	recipientRepo   repository.RecipientRepository
	providerCfgRepo repository.ProviderConfigRepository
	personalizer    *PersonalizeService
	provider        SMSProvider

	batchSize  int
	batchPause time.Duration
	sleep      func(time.Duration)
	now        func() time.Time
}

// NewDispatchService creates a new dispatch service
func NewDispatchService(
	messageRepo repository.MessageRepository,
	recipientRepo repository.RecipientRepository,
	providerCfgRepo repository.ProviderConfigRepository,
	personalizer *PersonalizeService,
	smsProvider SMSProvider,
	batchSize int,
	batchPause time.Duration,
) *DispatchService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchPause <= 0 {
		batchPause = DefaultBatchPause
	}
	return &DispatchService{
		messageRepo:     messageRepo,
		recipientRepo:   recipientRepo,
		providerCfgRepo: providerCfgRepo,
		personalizer:    personalizer,
		provider:        smsProvider,
		batchSize:       batchSize,
		batchPause:      batchPause,
		sleep:           time.Sleep,
		now:             time.Now,
	}
}

// RecipientInput is one requested destination before normalization
type RecipientInput struct {
	Phone    string  `json:"phone"`
	Name     *string `json:"name,omitempty"`
	MemberID *string `json:"member_id,omitempty"`
}

// SendRequest is a resolved request to dispatch one message
type SendRequest struct {
	TenantID      string               `json:"tenant_id"`
	Title         *string              `json:"title,omitempty"`
	Body          string               `json:"body"`
	TemplateID    *int64               `json:"template_id,omitempty"`
	RecipientType models.RecipientType `json:"recipient_type"`
	Recipients    []RecipientInput     `json:"recipients"`

	// CorrelationPrefix distinguishes user sends from automated ones;
	// defaults to the user prefix.
	CorrelationPrefix string `json:"-"`
	// ExtraVars carries trigger-only personalization substitutions
	ExtraVars map[string]string `json:"-"`
}

// SendResult summarises a completed dispatch
type SendResult struct {
	MessageID      int64                `json:"message_id"`
	Status         models.MessageStatus `json:"status"`
	RecipientCount int                  `json:"recipient_count"`
	SentCount      int                  `json:"sent_count"`
	FailedCount    int                  `json:"failed_count"`
	Cost           float64              `json:"cost"`
}

// Send runs the full dispatch pipeline: validate, persist, personalize,
// batch, call the gateway and roll up the outcome. Batches are processed
// strictly sequentially; a batch failure never aborts the remaining
// batches, and there is no automatic retry.
func (s *DispatchService) Send(ctx context.Context, req *SendRequest) (*SendResult, error) {
	if req.TenantID == "" {
		return nil, &ValidationError{Message: "tenant id is required"}
	}
	if req.Body == "" {
		return nil, &ValidationError{Message: "message body is required"}
	}

	recipients := s.normalizeRecipients(req.Recipients)
	if len(recipients) == 0 {
		return nil, &ValidationError{Message: "no recipient has a usable phone number"}
	}

	config, err := s.providerCfgRepo.GetActive(ctx, req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up provider config: %w", err)
	}
	if config == nil {
		return nil, &ConfigurationError{Message: "no active SMS provider configuration for this organization"}
	}

	// Cost is fixed here, before any gateway call, and never recomputed.
	cost := EstimateCost(len(req.Body), len(recipients))

	message := &models.Message{
		TenantID:         req.TenantID,
		Title:            req.Title,
		Body:             req.Body,
		RecipientType:    req.RecipientType,
		Status:           models.MessageStatusDraft,
		TemplateID:       req.TemplateID,
		ProviderConfigID: config.ID,
		Cost:             cost,
	}
	if err := message.Validate(); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	share := ApportionCost(cost, len(recipients))
	for _, recipient := range recipients {
		recipient.Cost = share
		recipient.Body = req.Body
	}

	if err := s.messageRepo.CreateWithRecipients(ctx, message, recipients); err != nil {
		return nil, fmt.Errorf("failed to create message records: %w", err)
	}

	if err := s.messageRepo.UpdateStatus(ctx, message.ID, models.MessageStatusSending, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to mark message sending: %w", err)
	}

	bodies, err := s.personalizer.Resolve(ctx, req.TenantID, req.Body, recipients, req.ExtraVars)
	if err != nil {
		// Personalization failure falls back to the literal body; the send
		// itself still goes out.
		log.Printf("WARN: personalization failed for message %d: %v", message.ID, err)
		bodies = make(map[int64]string, len(recipients))
		for _, recipient := range recipients {
			bodies[recipient.ID] = req.Body
		}
	}
	for _, recipient := range recipients {
		if body, ok := bodies[recipient.ID]; ok {
			recipient.Body = body
		}
	}
	if err := s.recipientRepo.UpdateBodies(ctx, bodies); err != nil {
		log.Printf("WARN: failed to persist personalized bodies for message %d: %v", message.ID, err)
	}

	prefix := req.CorrelationPrefix
	if prefix == "" {
		prefix = correlation.PrefixUser
	}

	failed := s.dispatchBatches(ctx, config, message.ID, prefix, recipients)

	result := &SendResult{
		MessageID:      message.ID,
		RecipientCount: len(recipients),
		SentCount:      len(recipients) - failed,
		FailedCount:    failed,
		Cost:           cost,
	}

	now := s.now()
	switch {
	case failed == len(recipients):
		result.Status = models.MessageStatusFailed
		errText := "all recipients failed"
		if err := s.messageRepo.UpdateStatus(ctx, message.ID, models.MessageStatusFailed, &errText, &now); err != nil {
			return nil, fmt.Errorf("failed to mark message failed: %w", err)
		}
	case failed > 0:
		// A partially-successful send is still a completed send.
		result.Status = models.MessageStatusSent
		errText := fmt.Sprintf("%d of %d recipients failed", failed, len(recipients))
		if err := s.messageRepo.UpdateStatus(ctx, message.ID, models.MessageStatusSent, &errText, &now); err != nil {
			return nil, fmt.Errorf("failed to mark message sent: %w", err)
		}
	default:
		result.Status = models.MessageStatusSent
		if err := s.messageRepo.UpdateStatus(ctx, message.ID, models.MessageStatusSent, nil, &now); err != nil {
			return nil, fmt.Errorf("failed to mark message sent: %w", err)
		}
	}

	observability.MessagesFinished.WithLabelValues(string(result.Status)).Inc()
	return result, nil
}

// normalizeRecipients normalizes every requested phone and drops the
// unusable ones.
func (s *DispatchService) normalizeRecipients(inputs []RecipientInput) []*models.Recipient {
	recipients := []*models.Recipient{}
	for _, input := range inputs {
		phone := s.provider.Normalize(input.Phone)
		if !provider.UsablePhone(phone) {
			continue
		}
		recipients = append(recipients, &models.Recipient{
			Phone:    phone,
			Name:     input.Name,
			MemberID: input.MemberID,
			Status:   models.RecipientStatusPending,
		})
	}
	return recipients
}

// dispatchBatches partitions the recipients into fixed-size batches and
// sends them sequentially with the inter-batch pause, skipped after the
// last batch. Returns the number of failed recipients.
func (s *DispatchService) dispatchBatches(ctx context.Context, config *models.ProviderConfig, messageID int64, prefix string, recipients []*models.Recipient) int {
	failed := 0

	for start := 0; start < len(recipients); start += s.batchSize {
		end := start + s.batchSize
		if end > len(recipients) {
			end = len(recipients)
		}
		batch := recipients[start:end]

		ids := make([]int64, len(batch))
		destinations := make([]provider.Destination, len(batch))
		for i, recipient := range batch {
			ids[i] = recipient.ID
			destinations[i] = provider.Destination{
				Phone:         recipient.Phone,
				Message:       recipient.Body,
				CorrelationID: correlation.New(prefix, messageID, recipient.ID, s.now()),
			}
		}

		if err := s.recipientRepo.MarkBatch(ctx, ids, models.RecipientStatusSending, nil, nil); err != nil {
			log.Printf("WARN: failed to mark batch sending for message %d: %v", messageID, err)
		}

		outcome := s.sendBatch(ctx, config, destinations)
		if outcome.Success {
			observability.DispatchBatches.WithLabelValues("success").Inc()
			now := s.now()
			if err := s.recipientRepo.MarkBatch(ctx, ids, models.RecipientStatusSent, nil, &now); err != nil {
				log.Printf("ERROR: failed to mark batch sent for message %d: %v", messageID, err)
			}
			for _, recipient := range batch {
				recipient.Status = models.RecipientStatusSent
			}
		} else {
			observability.DispatchBatches.WithLabelValues("failure").Inc()
			failed += len(batch)
			errText := outcome.Error
			if errText == "" {
				errText = "gateway rejected the batch"
			}
			log.Printf("ERROR: batch %d-%d of message %d failed: %s", start, end, messageID, errText)
			if err := s.recipientRepo.MarkBatch(ctx, ids, models.RecipientStatusFailed, &errText, nil); err != nil {
				log.Printf("ERROR: failed to mark batch failed for message %d: %v", messageID, err)
			}
			for _, recipient := range batch {
				recipient.Status = models.RecipientStatusFailed
			}
		}

		if end < len(recipients) {
			s.sleep(s.batchPause)
		}
	}

	return failed
}

// sendBatch calls the gateway and collapses every failure mode, panics
// included, into an unsuccessful outcome so one bad batch can never abort
// the rest of the dispatch.
func (s *DispatchService) sendBatch(ctx context.Context, config *models.ProviderConfig, destinations []provider.Destination) (outcome provider.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = provider.Outcome{Success: false, Error: fmt.Sprintf("provider adapter panic: %v", r)}
		}
	}()

	start := s.now()
	outcome, err := s.provider.Send(ctx, config, destinations)
	observability.ProviderLatency.Observe(s.now().Sub(start).Seconds())
	if err != nil {
		return provider.Outcome{Success: false, Error: err.Error()}
	}
	return outcome
}
