package notifications

import "time"

// Kind values used across the app. Services pass these as the kind
// argument to Notify.
const (
	KindMatch             = "match"
	KindDateProposal      = "date_proposal"
	KindProposalAccepted  = "proposal_accepted"
	KindProposalRejected  = "proposal_rejected"
	KindProposalCountered = "proposal_countered"
	KindMeetupJoin        = "meetup_join"
	KindStoryView         = "story_view"
)

// Notification is an in-app notification row.
type Notification struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Kind        string    `json:"kind" db:"kind"`
	ReferenceID *int64    `json:"reference_id,omitempty" db:"reference_id"`
	Message     string    `json:"message" db:"message"`
	IsRead      bool      `json:"is_read" db:"is_read"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// EmailMessage is an outbound email.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
}

// SMSMessage is an outbound text message.
type SMSMessage struct {
	To   string
	Body string
}
