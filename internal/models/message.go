package models

import (
	"fmt"
	"time"
)

// RecipientType represents how the recipient set of a message was chosen
type RecipientType string

const (
	RecipientTypeIndividual RecipientType = "individual"
	RecipientTypeGroup      RecipientType = "group"
	RecipientTypeBroadcast  RecipientType = "broadcast"
)

// Message represents one logical send operation
type Message struct {
	ID               int64         `json:"id" db:"id"`
	TenantID         string        `json:"tenant_id" db:"tenant_id"`
	Title            *string       `json:"title,omitempty" db:"title"`
	Body             string        `json:"body" db:"body"`
	RecipientType    RecipientType `json:"recipient_type" db:"recipient_type"`
	RecipientCount   int           `json:"recipient_count" db:"recipient_count"`
	Status           MessageStatus `json:"status" db:"status"`
	TemplateID       *int64        `json:"template_id,omitempty" db:"template_id"`
	ProviderConfigID int64         `json:"provider_config_id" db:"provider_config_id"`
	Cost             float64       `json:"cost" db:"cost"`
	LastError        *string       `json:"last_error,omitempty" db:"last_error"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	SentAt           *time.Time    `json:"sent_at,omitempty" db:"sent_at"`
}

// Validate checks if the message fields are valid
func (m *Message) Validate() error {
	if m.TenantID == "" {
		return fmt.Errorf("tenant id is required")
	}
	if m.Body == "" {
		return fmt.Errorf("message body is required")
	}
	switch m.RecipientType {
	case RecipientTypeIndividual, RecipientTypeGroup, RecipientTypeBroadcast:
	default:
		return fmt.Errorf("invalid recipient type: must be 'individual', 'group' or 'broadcast'")
	}
	return nil
}

// MessageStats represents per-recipient outcome counts for a message
type MessageStats struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

// MessageWithRecipients represents a message with its full recipient set
type MessageWithRecipients struct {
	Message
	Recipients []*Recipient `json:"recipients"`
	Stats      MessageStats `json:"stats"`
}
