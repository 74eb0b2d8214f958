package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"orgnotify/internal/models"
)

func newTestReconciler(messageRepo *mockMessageRepository, recipientRepo *mockRecipientRepository) *ReconcileService {
	return NewReconcileService(messageRepo, recipientRepo, &mockProvider{})
}

func newTestCallback(status string) *DeliveryCallback {
	return &DeliveryCallback{
		CorrelationID:  "SMS_1_7_1717000000000",
		ProviderStatus: status,
		Phone:          "254700100007",
	}
}

func TestReconcileRejectsMalformedCorrelationID(t *testing.T) {
	messageRepo := newMockMessageRepository()
	recipientRepo := newMockRecipientRepository()
	svc := newTestReconciler(messageRepo, recipientRepo)

	cb := newTestCallback("delivered")
	cb.CorrelationID = "garbage"
	err := svc.Reconcile(context.Background(), cb)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError but got %v", err)
	}
	// Rejected before any lookup or mutation
	assertEqual(t, recipientRepo.Calls["GetByID"], 0)
	assertEqual(t, recipientRepo.Calls["UpdateDelivery"], 0)
}

func TestReconcileIgnoresIntermediateStatus(t *testing.T) {
	recipientRepo := newMockRecipientRepository()
	svc := newTestReconciler(newMockMessageRepository(), recipientRepo)

	err := svc.Reconcile(context.Background(), newTestCallback("queued"))
	assertNoError(t, err)

	// Acknowledged without touching any record
	assertEqual(t, recipientRepo.Calls["GetByID"], 0)
	assertEqual(t, recipientRepo.Calls["UpdateDelivery"], 0)
}

func TestReconcileRejectsPhoneMismatch(t *testing.T) {
	recipientRepo := newMockRecipientRepository()
	svc := newTestReconciler(newMockMessageRepository(), recipientRepo)

	cb := newTestCallback("delivered")
	cb.Phone = "254799999999"
	err := svc.Reconcile(context.Background(), cb)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError but got %v", err)
	}
	assertEqual(t, recipientRepo.Calls["UpdateDelivery"], 0)
}

func TestReconcileRejectsMessageIDMismatch(t *testing.T) {
	recipientRepo := newMockRecipientRepository()
	recipientRepo.GetByIDFunc = func(ctx context.Context, id int64) (*models.Recipient, error) {
		recipient := newTestRecipient(id)
		recipient.MessageID = 99
		return recipient, nil
	}
	svc := newTestReconciler(newMockMessageRepository(), recipientRepo)

	err := svc.Reconcile(context.Background(), newTestCallback("delivered"))

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError but got %v", err)
	}
}

func TestReconcileMatchesNormalizedPhone(t *testing.T) {
	recipientRepo := newMockRecipientRepository()
	svc := newTestReconciler(newMockMessageRepository(), recipientRepo)

	// Same number in local format with whitespace
	cb := newTestCallback("delivered")
	cb.Phone = "+254 700 100 007"
	err := svc.Reconcile(context.Background(), cb)
	assertNoError(t, err)

	assertEqual(t, recipientRepo.Calls["UpdateDelivery"], 1)
}

func TestReconcileNotFoundRecipient(t *testing.T) {
	recipientRepo := newMockRecipientRepository()
	recipientRepo.GetByIDFunc = func(ctx context.Context, id int64) (*models.Recipient, error) {
		return nil, errors.New("sql: no rows in result set")
	}
	svc := newTestReconciler(newMockMessageRepository(), recipientRepo)

	err := svc.Reconcile(context.Background(), newTestCallback("delivered"))

	var notFoundErr *NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError but got %v", err)
	}
}

func TestReconcileDropsBackwardTransition(t *testing.T) {
	recipientRepo := newMockRecipientRepository()
	recipientRepo.GetByIDFunc = func(ctx context.Context, id int64) (*models.Recipient, error) {
		recipient := newTestRecipient(id)
		recipient.Status = models.RecipientStatusSent
		return recipient, nil
	}
	svc := newTestReconciler(newMockMessageRepository(), recipientRepo)

	// A sent recipient must not move to failed
	err := svc.Reconcile(context.Background(), newTestCallback("failed"))
	assertNoError(t, err)
	assertEqual(t, recipientRepo.Calls["UpdateDelivery"], 0)
}

func TestReconcileReplayIsIdempotent(t *testing.T) {
	messageRepo := newMockMessageRepository()
	recipientRepo := newMockRecipientRepository()
	recipientRepo.GetByIDFunc = func(ctx context.Context, id int64) (*models.Recipient, error) {
		recipient := newTestRecipient(id)
		recipient.Status = models.RecipientStatusSent
		return recipient, nil
	}
	recipientRepo.ListByMessageIDFunc = func(ctx context.Context, messageID int64) ([]*models.Recipient, error) {
		recipient := newTestRecipient(7)
		recipient.Status = models.RecipientStatusSent
		return []*models.Recipient{recipient}, nil
	}
	svc := newTestReconciler(messageRepo, recipientRepo)

	// The same delivered callback twice lands on the same final state
	for i := 0; i < 2; i++ {
		err := svc.Reconcile(context.Background(), newTestCallback("delivered"))
		assertNoError(t, err)
	}

	assertEqual(t, recipientRepo.Calls["UpdateDelivery"], 2)
	for _, update := range messageRepo.StatusUpdates {
		assertEqual(t, update.Status, models.MessageStatusSent)
	}
}

func TestRollupWaitsForAllTerminal(t *testing.T) {
	messageRepo := newMockMessageRepository()
	recipientRepo := newMockRecipientRepository()
	recipientRepo.ListByMessageIDFunc = func(ctx context.Context, messageID int64) ([]*models.Recipient, error) {
		sent := newTestRecipient(1)
		sent.Status = models.RecipientStatusSent
		pending := newTestRecipient(2)
		pending.Status = models.RecipientStatusPending
		return []*models.Recipient{sent, pending}, nil
	}
	svc := newTestReconciler(messageRepo, recipientRepo)

	err := svc.Reconcile(context.Background(), newTestCallback("delivered"))
	assertNoError(t, err)

	// Message status untouched while a recipient is still pending
	assertEqual(t, messageRepo.Calls["UpdateStatus"], 0)
}

func TestRollupAllFailed(t *testing.T) {
	messageRepo := newMockMessageRepository()
	recipientRepo := newMockRecipientRepository()
	recipientRepo.GetByIDFunc = func(ctx context.Context, id int64) (*models.Recipient, error) {
		recipient := newTestRecipient(id)
		recipient.Status = models.RecipientStatusSending
		return recipient, nil
	}
	recipientRepo.ListByMessageIDFunc = func(ctx context.Context, messageID int64) ([]*models.Recipient, error) {
		a := newTestRecipient(7)
		a.Status = models.RecipientStatusFailed
		b := newTestRecipient(8)
		b.Status = models.RecipientStatusFailed
		return []*models.Recipient{a, b}, nil
	}
	svc := newTestReconciler(messageRepo, recipientRepo)

	err := svc.Reconcile(context.Background(), newTestCallback("failed"))
	assertNoError(t, err)

	last := messageRepo.lastStatus()
	assertEqual(t, last.Status, models.MessageStatusFailed)
	if last.LastError == nil {
		t.Fatal("Expected failure annotation")
	}
	assertEqual(t, *last.LastError, "all recipients failed")
}

func TestRollupPartialFailureAnnotatesSent(t *testing.T) {
	messageRepo := newMockMessageRepository()
	recipientRepo := newMockRecipientRepository()
	recipientRepo.ListByMessageIDFunc = func(ctx context.Context, messageID int64) ([]*models.Recipient, error) {
		sent := newTestRecipient(7)
		sent.Status = models.RecipientStatusSent
		failed := newTestRecipient(8)
		failed.Status = models.RecipientStatusFailed
		return []*models.Recipient{sent, failed}, nil
	}
	svc := newTestReconciler(messageRepo, recipientRepo)

	err := svc.Reconcile(context.Background(), newTestCallback("delivered"))
	assertNoError(t, err)

	last := messageRepo.lastStatus()
	assertEqual(t, last.Status, models.MessageStatusSent)
	if last.LastError == nil {
		t.Fatal("Expected partial failure annotation")
	}
	assertEqual(t, *last.LastError, "1 of 2 recipients failed")
}

func TestReconcileDefaultsMissingTimestamp(t *testing.T) {
	recipientRepo := newMockRecipientRepository()
	var gotSentAt *time.Time
	recipientRepo.UpdateDeliveryFunc = func(ctx context.Context, id int64, status models.RecipientStatus, lastError *string, sentAt *time.Time) error {
		gotSentAt = sentAt
		return nil
	}
	svc := newTestReconciler(newMockMessageRepository(), recipientRepo)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	err := svc.Reconcile(context.Background(), newTestCallback("delivered"))
	assertNoError(t, err)

	if gotSentAt == nil || !gotSentAt.Equal(fixed) {
		t.Errorf("Expected sent_at to default to now but got %v", gotSentAt)
	}
}
