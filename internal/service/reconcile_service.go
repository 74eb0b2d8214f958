package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"orgnotify/internal/correlation"
	"orgnotify/internal/models"
	"orgnotify/internal/observability"
	"orgnotify/internal/repository"
)

// PhoneNormalizer normalizes a phone number to the canonical wire format
type PhoneNormalizer interface {
	Normalize(phone string) string
}

// ReconcileService ingests asynchronous delivery-status callbacks and
// folds them back into recipient and message state. Replaying the same
// callback twice produces the same final state.
type ReconcileService struct {
	messageRepo   repository.MessageRepository
	recipientRepo repository.RecipientRepository
	normalizer    PhoneNormalizer
	now           func() time.Time
}

// NewReconcileService creates a new reconcile service
func NewReconcileService(messageRepo repository.MessageRepository, recipientRepo repository.RecipientRepository, normalizer PhoneNormalizer) *ReconcileService {
	return &ReconcileService{
		messageRepo:   messageRepo,
		recipientRepo: recipientRepo,
		normalizer:    normalizer,
		now:           time.Now,
	}
}

// DeliveryCallback is one decoded webhook payload
type DeliveryCallback struct {
	CorrelationID  string
	ProviderStatus string
	Phone          string
	Timestamp      *time.Time
	Error          *string
}

// Reconcile applies one delivery callback. Validation failures are
// reported before any state is mutated; an unrecognised provider status
// succeeds without mutating anything.
func (s *ReconcileService) Reconcile(ctx context.Context, cb *DeliveryCallback) error {
	id, err := correlation.Parse(cb.CorrelationID)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}

	status := models.ParseRecipientStatus(cb.ProviderStatus)
	observability.WebhookEvents.WithLabelValues(cb.ProviderStatus).Inc()
	if !status.IsTerminal() {
		// Intermediate provider statuses are acknowledged but not recorded
		return nil
	}

	recipient, err := s.recipientRepo.GetByID(ctx, id.RecipientID)
	if err != nil {
		return &NotFoundError{Resource: "recipient", ID: strconv.FormatInt(id.RecipientID, 10)}
	}

	// Match on both the decoded recipient id and the callback's phone, as
	// a defense against a stale or forged identifier.
	if recipient.MessageID != id.MessageID || recipient.Phone != s.normalizer.Normalize(cb.Phone) {
		return &ValidationError{Message: "callback does not match the recipient it references"}
	}

	if !recipient.Status.CanTransition(status) {
		// A terminal recipient only accepts an idempotent re-application of
		// the same status; anything else is silently dropped.
		log.Printf("WARN: dropping callback moving recipient %d from %s to %s", recipient.ID, recipient.Status, status)
		return nil
	}

	sentAt := cb.Timestamp
	if sentAt == nil {
		t := s.now()
		sentAt = &t
	}
	if err := s.recipientRepo.UpdateDelivery(ctx, recipient.ID, status, cb.Error, sentAt); err != nil {
		return fmt.Errorf("failed to update recipient delivery: %w", err)
	}

	return s.rollupMessage(ctx, id.MessageID)
}

// rollupMessage recomputes the aggregate status from all recipients of the
// owning message. While any recipient is non-terminal the message status is
// left alone; once every recipient is terminal the message is failed only
// if all of them failed, otherwise sent.
func (s *ReconcileService) rollupMessage(ctx context.Context, messageID int64) error {
	recipients, err := s.recipientRepo.ListByMessageID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to load recipients for rollup: %w", err)
	}
	if len(recipients) == 0 {
		return nil
	}

	failed := 0
	for _, recipient := range recipients {
		if !recipient.Status.IsTerminal() {
			return nil
		}
		if recipient.Status == models.RecipientStatusFailed {
			failed++
		}
	}

	status := models.MessageStatusSent
	var errText *string
	switch {
	case failed == len(recipients):
		status = models.MessageStatusFailed
		t := "all recipients failed"
		errText = &t
	case failed > 0:
		t := fmt.Sprintf("%d of %d recipients failed", failed, len(recipients))
		errText = &t
	}

	now := s.now()
	if err := s.messageRepo.UpdateStatus(ctx, messageID, status, errText, &now); err != nil {
		return fmt.Errorf("failed to roll up message status: %w", err)
	}
	return nil
}
