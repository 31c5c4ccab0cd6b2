package dates

import "time"

// CreateDateDTO is the payload for publishing a date plan.
type CreateDateDTO struct {
	Title           string    `json:"title" validate:"required,max=255"`
	Description     string    `json:"description,omitempty"`
	PlaceType       PlaceType `json:"place_type,omitempty"`
	PlaceName       string    `json:"place_name,omitempty" validate:"max=255"`
	PlaceAddress    string    `json:"place_address,omitempty"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	IsPublic        bool      `json:"is_public"`
	ConnectionType  string    `json:"connection_type,omitempty"`
	MaxProposals    int       `json:"max_proposals,omitempty"`
}

// ProposalDTO is the payload for proposing to join a date.
type ProposalDTO struct {
	Message      string     `json:"message,omitempty"`
	ProposedTime *time.Time `json:"proposed_time,omitempty"`
}

// CounterProposalDTO is the owner's suggestion of a different time.
type CounterProposalDTO struct {
	ProposedTime time.Time `json:"proposed_time" validate:"required"`
	Message      string    `json:"message,omitempty"`
}

// ListDatesParams filters date listings.
type ListDatesParams struct {
	Status         DateStatus
	ConnectionType string
	Page           int
	Size           int
}
