package meetups

import "time"

// CreateMeetupDTO is the payload for hosting a meetup.
type CreateMeetupDTO struct {
	Title           string    `json:"title" validate:"required,max=255"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category" validate:"required,max=100"`
	LocationName    string    `json:"location_name,omitempty" validate:"max=255"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	MaxParticipants int       `json:"max_participants" validate:"required,min=2,max=500"`
}

// ListMeetupsParams filters meetup listings.
type ListMeetupsParams struct {
	Category string
	Page     int
	Size     int
}
