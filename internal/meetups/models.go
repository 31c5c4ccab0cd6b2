package meetups

import "time"

type MeetupStatus string

const (
	MeetupOpen      MeetupStatus = "OPEN"
	MeetupFull      MeetupStatus = "FULL"
	MeetupCancelled MeetupStatus = "CANCELLED"
	MeetupCompleted MeetupStatus = "COMPLETED"
)

func (s MeetupStatus) Valid() bool {
	switch s {
	case MeetupOpen, MeetupFull, MeetupCancelled, MeetupCompleted:
		return true
	}
	return false
}

// Meetup is a group activity a user hosts for others to join.
type Meetup struct {
	ID               int64        `json:"id" db:"id"`
	OrganizerID      int64        `json:"organizer_id" db:"organizer_id"`
	Title            string       `json:"title" db:"title"`
	Description      *string      `json:"description,omitempty" db:"description"`
	Category         string       `json:"category" db:"category"`
	LocationName     *string      `json:"location_name,omitempty" db:"location_name"`
	Latitude         *float64     `json:"latitude,omitempty" db:"latitude"`
	Longitude        *float64     `json:"longitude,omitempty" db:"longitude"`
	ScheduledAt      time.Time    `json:"scheduled_at" db:"scheduled_at"`
	MaxParticipants  int          `json:"max_participants" db:"max_participants"`
	ParticipantCount int          `json:"participant_count" db:"participant_count"`
	Status           MeetupStatus `json:"status" db:"status"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

func (m *Meetup) IsJoinable() bool {
	return m.Status == MeetupOpen && m.ParticipantCount < m.MaxParticipants
}

// Participant is a membership row on a meetup.
type Participant struct {
	ID       int64     `json:"id" db:"id"`
	MeetupID int64     `json:"meetup_id" db:"meetup_id"`
	UserID   int64     `json:"user_id" db:"user_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}
