package models

import "time"

// Member represents a directory record. The pipeline consumes these
// read-only for personalization and trigger sweeps.
type Member struct {
	ID        string     `json:"id" db:"id"`
	TenantID  string     `json:"tenant_id" db:"tenant_id"`
	FirstName *string    `json:"first_name,omitempty" db:"first_name"`
	LastName  *string    `json:"last_name,omitempty" db:"last_name"`
	Phone     string     `json:"phone" db:"phone"`
	BirthDate *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	Active    bool       `json:"active" db:"active"`
}

// FullName returns the member's full name
func (m *Member) FullName() string {
	var first, last string
	if m.FirstName != nil {
		first = *m.FirstName
	}
	if m.LastName != nil {
		last = *m.LastName
	}
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	}
	return "Member"
}

// ContributionCategory classifies a financial contribution. Only
// member-tracked categories produce acknowledgement notifications.
type ContributionCategory struct {
	ID            int64  `json:"id" db:"id"`
	TenantID      string `json:"tenant_id" db:"tenant_id"`
	Name          string `json:"name" db:"name"`
	MemberTracked bool   `json:"member_tracked" db:"member_tracked"`
}

// Contribution represents a recorded financial contribution
type Contribution struct {
	ID         int64     `json:"id" db:"id"`
	TenantID   string    `json:"tenant_id" db:"tenant_id"`
	MemberID   string    `json:"member_id" db:"member_id"`
	CategoryID int64     `json:"category_id" db:"category_id"`
	Amount     float64   `json:"amount" db:"amount"`
	Currency   string    `json:"currency" db:"currency"`
	GivenAt    time.Time `json:"given_at" db:"given_at"`
}

// ReminderLead represents when an event reminder goes out relative to the event
type ReminderLead string

const (
	ReminderLeadDayBefore ReminderLead = "day_before"
	ReminderLeadDayOf     ReminderLead = "day_of"
)

// EventAudience represents how an event resolves its reminder recipients
type EventAudience string

const (
	EventAudienceAll     EventAudience = "all"
	EventAudienceGroups  EventAudience = "groups"
	EventAudienceMembers EventAudience = "members"
)

// Event represents a scheduled event whose reminder may be automated
type Event struct {
	ID              int64         `json:"id" db:"id"`
	TenantID        string        `json:"tenant_id" db:"tenant_id"`
	Title           string        `json:"title" db:"title"`
	StartsAt        time.Time     `json:"starts_at" db:"starts_at"`
	ReminderEnabled bool          `json:"reminder_enabled" db:"reminder_enabled"`
	ReminderLead    ReminderLead  `json:"reminder_lead" db:"reminder_lead"`
	Audience        EventAudience `json:"audience" db:"audience"`
	GroupIDs        []string      `json:"group_ids,omitempty" db:"group_ids"`
	MemberIDs       []string      `json:"member_ids,omitempty" db:"member_ids"`
}
