package models

// MessageStatus represents valid message statuses
type MessageStatus string

const (
	MessageStatusDraft     MessageStatus = "draft"
	MessageStatusScheduled MessageStatus = "scheduled"
	MessageStatusSending   MessageStatus = "sending"
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusFailed    MessageStatus = "failed"
	MessageStatusCancelled MessageStatus = "cancelled"
)

// RecipientStatus represents valid recipient statuses
type RecipientStatus string

const (
	RecipientStatusPending RecipientStatus = "pending"
	RecipientStatusSending RecipientStatus = "sending"
	RecipientStatusSent    RecipientStatus = "sent"
	RecipientStatusFailed  RecipientStatus = "failed"
)

// IsTerminal reports whether the message status is final
func (s MessageStatus) IsTerminal() bool {
	return s == MessageStatusSent || s == MessageStatusFailed || s == MessageStatusCancelled
}

// IsTerminal reports whether the recipient status is final
func (s RecipientStatus) IsTerminal() bool {
	return s == RecipientStatusSent || s == RecipientStatusFailed
}

// messageTransitions holds the allowed forward transitions for messages.
// Scheduled and cancelled are administrative states; the pipeline only
// produces draft -> sending -> sent/failed.
var messageTransitions = map[MessageStatus][]MessageStatus{
	MessageStatusDraft:     {MessageStatusScheduled, MessageStatusSending, MessageStatusCancelled},
	MessageStatusScheduled: {MessageStatusSending, MessageStatusCancelled},
	MessageStatusSending:   {MessageStatusSent, MessageStatusFailed},
}

var recipientTransitions = map[RecipientStatus][]RecipientStatus{
	RecipientStatusPending: {RecipientStatusSending, RecipientStatusSent, RecipientStatusFailed},
	RecipientStatusSending: {RecipientStatusSent, RecipientStatusFailed},
}

// CanTransition checks whether a message may move from its current status to the target.
// Re-applying the same terminal status is allowed so callback replays stay idempotent.
func (s MessageStatus) CanTransition(to MessageStatus) bool {
	if s == to {
		return true
	}
	for _, allowed := range messageTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanTransition checks whether a recipient may move from its current status to the target.
// Terminal statuses only accept an idempotent re-application of themselves.
func (s RecipientStatus) CanTransition(to RecipientStatus) bool {
	if s == to {
		return true
	}
	for _, allowed := range recipientTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ParseRecipientStatus maps the provider's delivery-status vocabulary onto
// the internal one. Anything unrecognised maps to pending, which callers
// treat as a no-op rather than an error.
func ParseRecipientStatus(providerStatus string) RecipientStatus {
	switch providerStatus {
	case "delivered", "sent":
		return RecipientStatusSent
	case "failed":
		return RecipientStatusFailed
	default:
		return RecipientStatusPending
	}
}
