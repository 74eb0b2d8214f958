package models

import "time"

// Recipient represents one destination within a message
type Recipient struct {
	ID        int64           `json:"id" db:"id"`
	MessageID int64           `json:"message_id" db:"message_id"`
	Phone     string          `json:"phone" db:"phone"`
	Name      *string         `json:"name,omitempty" db:"name"`
	MemberID  *string         `json:"member_id,omitempty" db:"member_id"`
	Body      string          `json:"body" db:"body"`
	Status    RecipientStatus `json:"status" db:"status"`
	Cost      float64         `json:"cost" db:"cost"`
	LastError *string         `json:"last_error,omitempty" db:"last_error"`
	SentAt    *time.Time      `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// DisplayName returns the recipient's name or a generic fallback
func (r *Recipient) DisplayName() string {
	if r.Name != nil && *r.Name != "" {
		return *r.Name
	}
	return "Member"
}
